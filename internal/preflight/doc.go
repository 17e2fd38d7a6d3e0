// Package preflight checks that the files and directories a stage needs are
// usable before the stage starts streaming.
//
// A classify run over millions of registrations should not fail at the end
// because the output directory is read-only or a renewal file was mistyped.
// The CLI runs the checks for the invoked stage and refuses to start when
// any of them fails, listing every failure at once.
package preflight

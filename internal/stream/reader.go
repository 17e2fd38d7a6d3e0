package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"crclear/internal/faults"
)

// MaxLineSize bounds a single input line. Registration trees with many
// children produce long lines.
const MaxLineSize = 64 << 20

// Lines calls fn with every non-blank line of r and its 1-based line number.
// Only a trailing carriage return is removed; tabs are significant.
// It stops at the first error fn returns or when ctx is cancelled.
func Lines(ctx context.Context, r io.Reader, fn func(line int, text []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		text := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		if err := fn(line, text); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return faults.Wrap(faults.ErrIO, "stream", "read", fmt.Sprintf("after line %d", line), err)
	}
	return nil
}

// Decode calls fn with each line of r decoded into a fresh T. A line that
// does not decode is passed with v nil, a copy of the raw text, and an
// error wrapping faults.ErrMalformedRecord; fn decides what to do with it.
// On success raw is only valid until fn returns.
func Decode[T any](ctx context.Context, r io.Reader, fn func(line int, v *T, raw []byte, err error) error) error {
	return Lines(ctx, r, func(line int, text []byte) error {
		v := new(T)
		if err := json.Unmarshal(text, v); err != nil {
			raw := append([]byte(nil), text...)
			return fn(line, nil, raw, faults.Wrap(faults.ErrMalformedRecord, "", "decode", fmt.Sprintf("line %d", line), err))
		}
		return fn(line, v, text, nil)
	})
}

// DecodeFiles runs Decode over each path in turn. fn receives the path of
// the file the record came from.
func DecodeFiles[T any](ctx context.Context, paths []string, fn func(path string, line int, v *T, raw []byte, err error) error) error {
	for _, path := range paths {
		if err := decodeFile(ctx, path, fn); err != nil {
			return err
		}
	}
	return nil
}

func decodeFile[T any](ctx context.Context, path string, fn func(path string, line int, v *T, raw []byte, err error) error) error {
	f, err := os.Open(path)
	if err != nil {
		return faults.Wrap(faults.ErrIO, "stream", "open", path, err)
	}
	defer f.Close()
	return Decode(ctx, f, func(line int, v *T, raw []byte, err error) error {
		return fn(path, line, v, raw, err)
	})
}

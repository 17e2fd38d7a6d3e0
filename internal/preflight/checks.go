package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that path is an existing directory the
// process can list and write.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatableDirectory passes when path is a usable directory or can be
// created inside its nearest existing ancestor.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	ancestor, err := existingAncestor(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckFileReadable verifies that path is a regular file the process can read.
func CheckFileReadable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckFileWritable passes when path can be opened for writing: either it
// exists and is writable, or its directory can hold it.
func CheckFileWritable(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	case err == nil:
		if err := unix.Access(path, unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not writable: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", path)}
	case !os.IsNotExist(err):
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	dir := CheckCreatableDirectory(name, filepath.Dir(path))
	if !dir.Passed {
		return dir
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func existingAncestor(path string) (string, error) {
	dir := filepath.Clean(path)
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return "", fmt.Errorf("%s is not a directory", dir)
			}
			return dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no existing ancestor")
		}
		dir = parent
	}
}

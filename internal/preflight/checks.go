package preflight

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrOutputDir marks a destination directory that is missing, not a
// directory, or not writable.
var ErrOutputDir = errors.New("output directory unavailable")

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
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

// CheckOutputDir runs CheckDirectoryAccess against the directory a channel
// map will be written to and converts a failure into an ErrOutputDir error.
func CheckOutputDir(dir string) error {
	result := CheckDirectoryAccess("Output directory", dir)
	if result.Passed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrOutputDir, result.Detail)
}

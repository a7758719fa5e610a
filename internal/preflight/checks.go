package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"webfonts/internal/config"
	"webfonts/internal/deps"
	"webfonts/internal/services"
)

// CheckSource verifies that a typeface source exists, is a regular file and
// is readable by the current user.
func CheckSource(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrMissingSource, "preflight", "source", path, err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrMissingSource, "preflight", "source",
			fmt.Sprintf("%s is not a regular file", path), nil)
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return services.Wrap(services.ErrMissingSource, "preflight", "source",
			fmt.Sprintf("%s is not readable", path), err)
	}
	return nil
}

// CheckReadable verifies that a file exists and is readable.
func CheckReadable(name, path string) Result {
	if err := CheckSource(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

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

// CheckWritableAncestor verifies that path, or its nearest existing ancestor,
// is a writable directory.
func CheckWritableAncestor(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	current := filepath.Clean(path)
	for {
		info, err := os.Stat(current)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, current)}
			}
			if err := unix.Access(current, unix.W_OK|unix.X_OK); err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s not writable: %v)", path, current, err)}
			}
			if current == path {
				return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (write ok)", path)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created under %s)", path, current)}
		}
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
		}
		current = parent
	}
}

// CheckSystemDeps evaluates the external tools a build and fetch rely on.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Subsetter",
			Command:     cfg.SubsetterBinary(),
			Description: "Required to produce WOFF2 subsets and style fragments",
		},
		{
			Name:        "Archive tool",
			Command:     cfg.Acquisition.ArchiveTool,
			Description: "Extracts .7z source archives during fetch",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}

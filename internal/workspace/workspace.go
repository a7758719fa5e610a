package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"webfonts/internal/fileutil"
	"webfonts/internal/services"
	"webfonts/internal/textutil"
)

const stageName = "workspace"

// Workspace owns the output and scratch roots of a build.
type Workspace struct {
	OutputRoot  string
	ScratchRoot string

	lock *flock.Flock
}

// DirInfo describes a scratch directory left on disk.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// New validates the two roots and returns a Workspace. Both must be set, must
// differ, and neither may contain the other.
func New(outputRoot, scratchRoot string) (*Workspace, error) {
	outputRoot = strings.TrimSpace(outputRoot)
	scratchRoot = strings.TrimSpace(scratchRoot)
	if outputRoot == "" || scratchRoot == "" {
		return nil, services.Wrap(services.ErrWorkspace, stageName, "init", "output and scratch roots are required", nil)
	}
	output, err := filepath.Abs(outputRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrWorkspace, stageName, "init", "resolve output root", err)
	}
	scratch, err := filepath.Abs(scratchRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrWorkspace, stageName, "init", "resolve scratch root", err)
	}
	if output == scratch {
		return nil, services.Wrap(services.ErrWorkspace, stageName, "init", "output and scratch roots must differ", nil)
	}
	if contains(output, scratch) || contains(scratch, output) {
		return nil, services.Wrap(services.ErrWorkspace, stageName, "init", "output and scratch roots must not contain each other", nil)
	}
	return &Workspace{
		OutputRoot:  output,
		ScratchRoot: scratch,
		lock:        flock.New(lockPath(output)),
	}, nil
}

// Reset removes both roots if present and recreates an empty output root.
func (w *Workspace) Reset() error {
	if err := os.RemoveAll(w.OutputRoot); err != nil {
		return services.Wrap(services.ErrWorkspace, stageName, "reset", "remove output root", err)
	}
	if err := os.RemoveAll(w.ScratchRoot); err != nil {
		return services.Wrap(services.ErrWorkspace, stageName, "reset", "remove scratch root", err)
	}
	if err := os.MkdirAll(w.OutputRoot, 0o755); err != nil {
		return services.Wrap(services.ErrWorkspace, stageName, "reset", "create output root", err)
	}
	return nil
}

// ScratchName returns the scratch subdirectory name for an entry.
func ScratchName(localeTag, label string) string {
	return textutil.SanitizeFileName(localeTag) + "-" + textutil.NormalizeLabel(label)
}

// ScratchDirFor creates and returns <scratch>/<locale>-<normalized label>.
func (w *Workspace) ScratchDirFor(localeTag, label string) (string, error) {
	dir := filepath.Join(w.ScratchRoot, ScratchName(localeTag, label))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrWorkspace, stageName, "scratch", "create scratch directory", err)
	}
	return dir, nil
}

// LocaleDirName returns the output directory name for a locale tag. The tag
// is used as-is, so it must already be a single safe path element.
func LocaleDirName(localeTag string) (string, error) {
	name := textutil.SanitizeFileName(localeTag)
	switch {
	case name == "" || name == "." || name == "..":
		return "", services.Wrap(services.ErrWorkspace, stageName, "locale_dir",
			fmt.Sprintf("locale %q is not a usable directory name", localeTag), nil)
	case name != localeTag:
		return "", services.Wrap(services.ErrWorkspace, stageName, "locale_dir",
			fmt.Sprintf("locale %q contains characters not allowed in a directory name", localeTag), nil)
	}
	return name, nil
}

// LocaleOutputDir creates and returns <output>/<locale>. The result is always
// a direct child of the output root.
func (w *Workspace) LocaleOutputDir(localeTag string) (string, error) {
	name, err := LocaleDirName(localeTag)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(w.OutputRoot, name)
	if filepath.Dir(dir) != filepath.Clean(w.OutputRoot) {
		return "", services.Wrap(services.ErrWorkspace, stageName, "locale_dir",
			fmt.Sprintf("locale %q escapes the output root", localeTag), nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrWorkspace, stageName, "locale_dir", "create locale output directory", err)
	}
	return dir, nil
}

// CleanupScratch removes the scratch root recursively.
func (w *Workspace) CleanupScratch() error {
	if err := os.RemoveAll(w.ScratchRoot); err != nil {
		return services.Wrap(services.ErrWorkspace, stageName, "cleanup", "remove scratch root", err)
	}
	return nil
}

// Lock takes the advisory build lock. A second holder fails immediately.
func (w *Workspace) Lock() error {
	if err := os.MkdirAll(filepath.Dir(w.lock.Path()), 0o755); err != nil {
		return services.Wrap(services.ErrWorkspace, stageName, "lock", "create lock directory", err)
	}
	ok, err := w.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrWorkspace, stageName, "lock", "acquire build lock", err)
	}
	if !ok {
		return services.Wrap(services.ErrWorkspace, stageName, "lock",
			fmt.Sprintf("another build holds %s", w.lock.Path()), nil)
	}
	return nil
}

// Unlock releases the build lock.
func (w *Workspace) Unlock() error {
	return w.lock.Unlock()
}

// LockPath returns the lock file location.
func (w *Workspace) LockPath() string {
	return w.lock.Path()
}

// ListScratch returns the scratch subdirectories left on disk.
func (w *Workspace) ListScratch() ([]DirInfo, error) {
	entries, err := os.ReadDir(w.ScratchRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrWorkspace, stageName, "list", "read scratch root", err)
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(w.ScratchRoot, entry.Name())
		size, _ := fileutil.DirSize(path)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return dirs, nil
}

func lockPath(outputRoot string) string {
	return filepath.Join(filepath.Dir(outputRoot), "."+filepath.Base(outputRoot)+".lock")
}

func contains(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

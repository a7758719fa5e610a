package acquire

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	getter "github.com/hashicorp/go-getter"

	"webfonts/internal/catalogue"
	"webfonts/internal/fileutil"
	"webfonts/internal/logging"
	"webfonts/internal/services"
	"webfonts/internal/services/process"
)

const (
	stageName = "acquire"
	// TempDirName is the scratch area for archive downloads under the source dir.
	TempDirName = ".tmp-download"
)

// Source describes one remote typeface file.
type Source = catalogue.Download

// ArchiveMember names the file extracted from an archive source.
type ArchiveMember = catalogue.ArchiveMember

// Result lists the source names fetched and skipped, in input order.
type Result struct {
	Downloaded []string `json:"downloaded"`
	Skipped    []string `json:"skipped"`
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithExecutor injects the executor used for the archive tool.
func WithExecutor(exec process.Executor) Option {
	return func(f *Fetcher) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// WithLogger sets the fetcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// Fetcher downloads missing source files into a source directory.
type Fetcher struct {
	sourceDir   string
	archiveTool string
	exec        process.Executor
	logger      *slog.Logger
	httpClient  *http.Client
}

// New constructs a Fetcher. A requestTimeoutSeconds of zero disables the
// per-request timeout.
func New(sourceDir, archiveTool string, requestTimeoutSeconds int, opts ...Option) *Fetcher {
	f := &Fetcher{
		sourceDir:   sourceDir,
		archiveTool: strings.TrimSpace(archiveTool),
		exec:        process.CommandExecutor{},
		logger:      logging.NewNop(),
		httpClient:  &http.Client{Timeout: time.Duration(requestTimeoutSeconds) * time.Second},
	}
	if f.archiveTool == "" {
		f.archiveTool = "7z"
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll fetches each source in order, skipping those whose destination
// already exists. The first failure stops the run.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) (Result, error) {
	var result Result
	if err := os.MkdirAll(f.sourceDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrAcquisition, stageName, "prepare", "create source directory", err)
	}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		skipped, err := f.Fetch(ctx, src)
		if err != nil {
			return result, err
		}
		if skipped {
			result.Skipped = append(result.Skipped, src.Name)
		} else {
			result.Downloaded = append(result.Downloaded, src.Name)
		}
	}
	return result, nil
}

// Fetch retrieves a single source. It reports true when the destination was
// already present.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (bool, error) {
	logger := f.logger.With(logging.String("source", src.Name))
	dest := filepath.Join(f.sourceDir, src.Filename)

	exists, err := fileutil.Exists(dest)
	if err != nil {
		return false, services.Wrap(services.ErrAcquisition, stageName, "stat", dest, err)
	}
	if exists {
		logger.Info("source present, skipping", logging.String(logging.FieldEventType, "fetch_skip"))
		return true, nil
	}

	if src.Archive != nil {
		err = f.fetchArchive(ctx, src, dest, logger)
	} else {
		err = f.fetchFile(ctx, src, dest, logger)
	}
	if err != nil {
		return false, err
	}

	if info, statErr := os.Stat(dest); statErr == nil {
		logger.Info("source downloaded",
			logging.String("path", dest),
			logging.String("size", logging.FormatBytes(info.Size())),
			logging.String(logging.FieldEventType, "fetch_done"),
		)
	}
	return false, nil
}

func (f *Fetcher) fetchFile(ctx context.Context, src Source, dest string, logger *slog.Logger) error {
	tmp, err := os.CreateTemp(f.sourceDir, "."+src.Filename+".*.part")
	if err != nil {
		return services.Wrap(services.ErrAcquisition, stageName, "download", "create temp file", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	_ = os.Remove(tmpPath)

	logger.Info("downloading source", logging.String("url", src.URL), logging.String(logging.FieldEventType, "fetch_start"))
	if err := f.download(ctx, src.URL, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrAcquisition, stageName, "download", src.Name, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrAcquisition, stageName, "download", "move into place", err)
	}
	return nil
}

func (f *Fetcher) fetchArchive(ctx context.Context, src Source, dest string, logger *slog.Logger) error {
	tmpRoot := filepath.Join(f.sourceDir, TempDirName)
	if err := os.MkdirAll(tmpRoot, 0o755); err != nil {
		return services.Wrap(services.ErrAcquisition, stageName, "archive", "create temp directory", err)
	}
	work, err := os.MkdirTemp(tmpRoot, "fetch-*")
	if err != nil {
		return services.Wrap(services.ErrAcquisition, stageName, "archive", "create temp directory", err)
	}
	defer func() {
		_ = os.RemoveAll(work)
		_ = os.Remove(tmpRoot)
	}()

	archiveName := archiveFileName(src)
	archivePath := filepath.Join(work, archiveName)
	logger.Info("downloading archive",
		logging.String("url", src.URL),
		logging.String("archive", archiveName),
		logging.String(logging.FieldEventType, "fetch_start"),
	)
	if err := f.download(ctx, src.URL, archivePath); err != nil {
		return services.Wrap(services.ErrAcquisition, stageName, "download", src.Name, err)
	}

	extractDir := filepath.Join(work, "extract")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return services.Wrap(services.ErrAcquisition, stageName, "archive", "create extract directory", err)
	}
	logger.Info("extracting archive member",
		logging.String("member", src.Archive.Extract),
		logging.String(logging.FieldEventType, "fetch_extract"),
	)
	if err := f.extract(ctx, archivePath, extractDir, src.Archive.Extract); err != nil {
		return err
	}

	member, err := findMember(extractDir, src.Archive.Extract)
	if err != nil {
		return err
	}
	if err := fileutil.CopyFileAtomic(member, dest); err != nil {
		return services.Wrap(services.ErrAcquisition, stageName, "archive", "copy extracted member", err)
	}
	return nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, dst string) error {
	httpGetter := &getter.HttpGetter{Client: f.httpClient}
	client := &getter.Client{
		Ctx:  ctx,
		Src:  rawURL,
		Dst:  dst,
		Mode: getter.ClientModeFile,
		Getters: map[string]getter.Getter{
			"http":  httpGetter,
			"https": httpGetter,
			"file":  new(getter.FileGetter),
		},
		Decompressors: map[string]getter.Decompressor{},
	}
	return client.Get()
}

func (f *Fetcher) extract(ctx context.Context, archivePath, dir, member string) error {
	name := strings.ToLower(filepath.Base(archivePath))
	if strings.HasSuffix(name, ".7z") {
		args := []string{"e", "-y", "-o" + dir, archivePath, member}
		if err := f.exec.Run(ctx, f.archiveTool, args, func(line string) {
			f.logger.Debug(line, logging.String(logging.FieldEventType, "archive_output"))
		}); err != nil {
			return services.Wrap(services.ErrAcquisition, stageName, "extract", filepath.Base(archivePath), err)
		}
		return nil
	}

	key := decompressorKey(name)
	if key == "" {
		return services.Wrap(services.ErrAcquisition, stageName, "extract",
			fmt.Sprintf("unsupported archive format %q", filepath.Base(archivePath)), nil)
	}
	if err := getter.Decompressors[key].Decompress(dir, archivePath, true, 0o022); err != nil {
		return services.Wrap(services.ErrAcquisition, stageName, "extract", filepath.Base(archivePath), err)
	}
	return nil
}

// decompressorKey returns the longest go-getter decompressor key that name
// ends with, so "tar.gz" wins over "gz".
func decompressorKey(name string) string {
	keys := make([]string, 0, len(getter.Decompressors))
	for key := range getter.Decompressors {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, key := range keys {
		if strings.HasSuffix(name, "."+key) {
			return key
		}
	}
	return ""
}

func archiveFileName(src Source) string {
	if src.Archive != nil && strings.TrimSpace(src.Archive.File) != "" {
		return filepath.Base(src.Archive.File)
	}
	if u, err := url.Parse(src.URL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			return base
		}
	}
	return "archive"
}

// findMember locates the extracted file by exact relative path or, failing
// that, by base name anywhere under dir.
func findMember(dir, member string) (string, error) {
	direct := filepath.Join(dir, filepath.FromSlash(member))
	if info, err := os.Stat(direct); err == nil && info.Mode().IsRegular() {
		return direct, nil
	}
	want := path.Base(filepath.ToSlash(member))
	var found string
	errFound := errors.New("found")
	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && d.Name() == want {
			found = p
			return errFound
		}
		return nil
	})
	if found != "" {
		return found, nil
	}
	if walkErr != nil && !errors.Is(walkErr, errFound) {
		return "", services.Wrap(services.ErrAcquisition, stageName, "extract", "scan extracted files", walkErr)
	}
	return "", services.Wrap(services.ErrAcquisition, stageName, "extract",
		fmt.Sprintf("%s not found in archive", member), nil)
}

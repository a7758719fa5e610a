package subset

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"webfonts/internal/catalogue"
	"webfonts/internal/fileutil"
	"webfonts/internal/logging"
	"webfonts/internal/preflight"
	"webfonts/internal/services"
	"webfonts/internal/services/process"
)

const (
	// Format is the binary format requested from the subsetter.
	Format = "woff2"
	// BinaryExt is the extension of subset output files.
	BinaryExt = ".woff2"
	// FragmentName is the style fragment file the subsetter may write.
	FragmentName = "result.css"

	stageName = "subset"
)

// Request describes one subsetter invocation.
type Request struct {
	Source    string
	OutputDir string
	Style     catalogue.Style
}

// Result lists what the subsetter left in the output directory. StyleFragment
// is empty when no fragment was produced.
type Result struct {
	Binaries      []string
	StyleFragment string
}

// Invoker runs the subsetter for one source file.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Result, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec process.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger routes subsetter output lines to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client invokes an external subsetter described by a command template.
type Client struct {
	binary  string
	args    []string
	timeout time.Duration
	exec    process.Executor
	logger  *slog.Logger
}

// New parses the shell-quoted command template. A timeoutSeconds of zero
// means no timeout.
func New(command string, timeoutSeconds int, opts ...Option) (*Client, error) {
	tokens, err := shellquote.Split(strings.TrimSpace(command))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "parse command", command, err)
	}
	if len(tokens) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "parse command", "subsetter command required", nil)
	}
	if strings.Contains(tokens[0], "{") {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "parse command", "binary must not be a placeholder", nil)
	}
	client := &Client{
		binary:  tokens[0],
		args:    tokens[1:],
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    process.CommandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the executable the client runs.
func (c *Client) Binary() string {
	return c.binary
}

// Invoke checks preconditions, runs the subsetter and collects its output.
func (c *Client) Invoke(ctx context.Context, req Request) (Result, error) {
	if err := preflight.CheckSource(req.Source); err != nil {
		return Result{}, err
	}
	info, err := os.Stat(req.OutputDir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = errors.New("not a directory")
		}
		return Result{}, services.Wrap(services.ErrWorkspace, stageName, "invoke", "output directory unavailable", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := ExpandArgs(c.args, Placeholders(req))
	c.logger.Debug("subsetter starting",
		logging.String("binary", c.binary),
		logging.Strings("args", args),
		logging.String(logging.FieldEventType, "subset_start"),
	)
	if err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		c.logger.Debug(line, logging.String(logging.FieldEventType, "subset_output"))
	}); err != nil {
		return Result{}, services.Wrap(services.ErrSubset, stageName, "invoke", filepath.Base(req.Source), err)
	}

	result, err := Collect(req.OutputDir)
	if err != nil {
		return Result{}, services.Wrap(services.ErrSubset, stageName, "collect", "read output directory", err)
	}
	return result, nil
}

// Collect lists binaries and the optional style fragment directly under dir.
func Collect(dir string) (Result, error) {
	binaries, err := fileutil.ListByExtension(dir, BinaryExt)
	if err != nil {
		return Result{}, err
	}
	result := Result{Binaries: binaries}
	fragment := filepath.Join(dir, FragmentName)
	if info, err := os.Stat(fragment); err == nil && info.Mode().IsRegular() {
		result.StyleFragment = fragment
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Result{}, err
	}
	return result, nil
}

// Placeholders maps template placeholders to the values of req.
func Placeholders(req Request) map[string]string {
	return map[string]string{
		"{input}":   req.Source,
		"{output}":  req.OutputDir,
		"{format}":  Format,
		"{family}":  req.Style.Family,
		"{weight}":  req.Style.CSSWeight(),
		"{style}":   req.Style.Style,
		"{display}": req.Style.Display,
	}
}

// ExpandArgs substitutes placeholders in each token in a single pass, so
// values that themselves look like placeholders are kept verbatim. A token
// whose placeholders all expand to empty strings is dropped.
func ExpandArgs(tokens []string, values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, key, values[key])
	}
	replacer := strings.NewReplacer(pairs...)

	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		seen, filled := 0, 0
		for _, key := range keys {
			if !strings.Contains(token, key) {
				continue
			}
			seen++
			if values[key] != "" {
				filled++
			}
		}
		if seen > 0 && filled == 0 {
			continue
		}
		out = append(out, replacer.Replace(token))
	}
	return out
}

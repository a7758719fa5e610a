package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"webfonts/internal/catalogue"
	"webfonts/internal/history"
	"webfonts/internal/locale"
	"webfonts/internal/logging"
	"webfonts/internal/manifest"
	"webfonts/internal/preflight"
	"webfonts/internal/services"
	"webfonts/internal/subset"
	"webfonts/internal/workspace"
)

// Recorder stores finished builds.
type Recorder interface {
	RecordBuild(ctx context.Context, rec history.Record) error
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObserver registers an observer for state transitions.
func WithObserver(observer Observer) Option {
	return func(d *Driver) {
		d.observer = observer
	}
}

// WithRecorder records every finished run.
func WithRecorder(recorder Recorder) Option {
	return func(d *Driver) {
		d.recorder = recorder
	}
}

// WithBuildID fixes the build identifier instead of generating one.
func WithBuildID(id string) Option {
	return func(d *Driver) {
		d.buildID = strings.TrimSpace(id)
	}
}

// Driver runs a build: reset, subset each entry in order, merge manifests,
// remove scratch. Any entry failure aborts the run before merging.
type Driver struct {
	ws       *workspace.Workspace
	invoker  subset.Invoker
	logger   *slog.Logger
	observer Observer
	recorder Recorder
	buildID  string
	now      func() time.Time

	cleanupScratch func() error

	state State
}

// New constructs a Driver for one build.
func New(ws *workspace.Workspace, invoker subset.Invoker, opts ...Option) *Driver {
	d := &Driver{
		ws:      ws,
		invoker: invoker,
		logger:  logging.NewNop(),
		now:     time.Now,
		state:   Idle,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.buildID == "" {
		d.buildID = uuid.NewString()
	}
	d.cleanupScratch = ws.CleanupScratch
	return d
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// BuildID returns the identifier of this run.
func (d *Driver) BuildID() string {
	return d.buildID
}

func (d *Driver) transition(ctx context.Context, to State, index int) {
	from := d.state
	d.state = to
	logger := logging.WithContext(ctx, d.logger)
	attrs := []logging.Attr{
		logging.String("from", from.String()),
		logging.String("to", to.String()),
		logging.String(logging.FieldEventType, "state_transition"),
	}
	if index >= 0 {
		attrs = append(attrs, logging.Int("index", index))
	}
	logger.Debug("build state changed", logging.Args(attrs...)...)
	if d.observer != nil {
		d.observer.OnTransition(from, to, index)
	}
}

// Run executes the build over entries in order. On failure the returned
// report holds whatever completed before the error.
func (d *Driver) Run(ctx context.Context, entries []catalogue.Typeface) (Report, error) {
	if d.state != Idle {
		return Report{}, fmt.Errorf("build %s already ran (state %s)", d.buildID, d.state)
	}
	ctx = services.WithBuildID(ctx, d.buildID)
	report := Report{BuildID: d.buildID, StartedAt: d.now()}

	err := d.run(ctx, entries, &report)
	report.FinishedAt = d.now()

	logger := logging.WithContext(ctx, d.logger)
	if err != nil {
		d.transition(ctx, Failed, -1)
		kind := services.KindOf(err)
		logging.ErrorWithContext(logger, "build failed", "build_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, string(kind)),
			logging.String(logging.FieldErrorHint, services.Hint(kind)),
		)
	} else {
		logger.Info("build complete",
			logging.Int("entries", report.Entries),
			logging.Int("locales", len(report.Summaries)),
			logging.Duration("duration", report.Duration()),
			logging.String(logging.FieldEventType, "build_complete"),
		)
	}
	d.record(ctx, &report, err)
	return report, err
}

func (d *Driver) run(ctx context.Context, entries []catalogue.Typeface, report *Report) error {
	if err := d.ws.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := d.ws.Unlock(); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, d.logger), "build lock release failed", "lock_release_failed",
				logging.Error(err),
				logging.String("lock", d.ws.LockPath()),
				logging.String(logging.FieldImpact, "next build may need the lock file removed"),
			)
		}
	}()

	d.transition(services.WithStage(ctx, "reset"), WorkspaceReset, -1)
	if err := d.ws.Reset(); err != nil {
		return err
	}

	agg := locale.NewAggregator()
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		entryCtx := services.WithStage(ctx, "transform")
		entryCtx = services.WithLocale(entryCtx, entry.Locale)
		entryCtx = services.WithEntry(entryCtx, entry.Label)
		d.transition(entryCtx, ProcessingEntries, i)
		if err := d.processEntry(entryCtx, agg, entry); err != nil {
			return err
		}
		report.Entries++
	}

	mergeCtx := services.WithStage(ctx, "merge")
	d.transition(mergeCtx, Merging, -1)
	summaries, warnings, err := d.merge(mergeCtx, agg)
	if err != nil {
		return err
	}
	report.Summaries = summaries
	report.Warnings = append(report.Warnings, warnings...)

	cleanupCtx := services.WithStage(ctx, "cleanup")
	d.transition(cleanupCtx, CleaningUp, -1)
	if err := d.cleanupScratch(); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("scratch cleanup failed: %v", err))
		logging.WarnWithContext(logging.WithContext(cleanupCtx, d.logger), "scratch cleanup failed; build output is complete", "scratch_cleanup_failed",
			logging.Error(err),
			logging.String("scratch_root", d.ws.ScratchRoot),
			logging.String(logging.FieldErrorHint, "remove the scratch directory manually or run 'webfonts workspace clean'"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
	}

	d.transition(ctx, Done, -1)
	return nil
}

func (d *Driver) processEntry(ctx context.Context, agg *locale.Aggregator, entry catalogue.Typeface) error {
	logger := logging.WithContext(ctx, d.logger)

	if _, err := workspace.LocaleDirName(entry.Locale); err != nil {
		return err
	}
	if err := preflight.CheckSource(entry.Source); err != nil {
		return err
	}
	scratch, err := d.ws.ScratchDirFor(entry.Locale, entry.Label)
	if err != nil {
		return err
	}

	logger.Info("subsetting entry",
		logging.String("source", entry.Source),
		logging.String(logging.FieldEventType, "entry_start"),
	)
	result, err := d.invoker.Invoke(ctx, subset.Request{
		Source:    entry.Source,
		OutputDir: scratch,
		Style:     entry.Style,
	})
	if err != nil {
		return err
	}

	localeDir, err := d.ws.LocaleOutputDir(entry.Locale)
	if err != nil {
		return err
	}
	copied, err := agg.RecordBinaries(entry.Locale, result.Binaries, localeDir)
	if err != nil {
		return err
	}

	var fragment string
	if result.StyleFragment != "" {
		data, err := os.ReadFile(result.StyleFragment)
		if err != nil {
			return services.Wrap(services.ErrRelocation, "transform", "read style fragment", result.StyleFragment, err)
		}
		fragment = string(data)
	} else {
		logger.Debug("entry produced no style fragment",
			logging.String(logging.FieldEventType, "fragment_missing"),
		)
	}
	agg.RecordStyleFragment(entry.Locale, fragment)

	logger.Info("entry complete",
		logging.Int("binaries", copied),
		logging.Bool("fragment", fragment != ""),
		logging.String(logging.FieldEventType, "entry_complete"),
	)
	return nil
}

func (d *Driver) merge(ctx context.Context, agg *locale.Aggregator) ([]manifest.Summary, []string, error) {
	var (
		summaries []manifest.Summary
		warnings  []string
	)
	for _, tag := range agg.LocaleTags() {
		localeCtx := services.WithLocale(ctx, tag)
		logger := logging.WithContext(localeCtx, d.logger)

		localeDir, err := d.ws.LocaleOutputDir(tag)
		if err != nil {
			return nil, nil, err
		}
		fragments := agg.Fragments(tag)
		summary, err := manifest.Merge(tag, fragments, localeDir)
		if err != nil {
			return nil, nil, err
		}

		inspection, err := manifest.Inspect(strings.Join(fragments, "\n"), localeDir)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: manifest could not be parsed: %v", tag, err))
			logging.WarnWithContext(logger, "manifest inspection failed", "manifest_parse_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "families and dangling sources not reported"),
			)
		} else {
			summary.Families = inspection.Families
			summary.DanglingSources = inspection.DanglingSources
			for _, src := range inspection.DanglingSources {
				warnings = append(warnings, fmt.Sprintf("%s: %s references missing file %s", tag, manifest.FileName, src))
			}
			if len(inspection.DanglingSources) > 0 {
				logging.WarnWithContext(logger, "manifest references missing binaries", "manifest_dangling_sources",
					logging.Strings("sources", inspection.DanglingSources),
					logging.String(logging.FieldErrorHint, "check the subsetter output naming"),
					logging.String(logging.FieldImpact, "browsers will fail to load those faces"),
				)
			}
		}

		logger.Info("manifest written",
			logging.Int("faces", summary.FaceCount),
			logging.Int("binaries", summary.BinaryCount),
			logging.String("path", summary.ManifestPath),
			logging.String(logging.FieldEventType, "manifest_written"),
		)
		summaries = append(summaries, summary)
	}
	return summaries, warnings, nil
}

func (d *Driver) record(ctx context.Context, report *Report, runErr error) {
	if d.recorder == nil {
		return
	}
	var kind, message string
	if runErr != nil {
		kind = string(services.KindOf(runErr))
		message = runErr.Error()
	}
	// Recording outlives a canceled build context.
	recordCtx := context.WithoutCancel(ctx)
	if err := d.recorder.RecordBuild(recordCtx, report.historyRecord(runErr, kind, message)); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("build history not recorded: %v", err))
		logging.WarnWithContext(logging.WithContext(ctx, d.logger), "build history not recorded", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this build is missing from 'webfonts history'"),
		)
	}
}

package services

import "context"

type contextKey string

const (
	buildIDKey contextKey = "build_id"
	stageKey   contextKey = "stage"
	localeKey  contextKey = "locale"
	entryKey   contextKey = "entry"
)

// WithBuildID annotates context with the build run identifier.
func WithBuildID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, buildIDKey, id)
}

// BuildIDFromContext extracts the build run identifier if present.
func BuildIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(buildIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithLocale annotates context with the locale tag being processed.
func WithLocale(ctx context.Context, locale string) context.Context {
	if locale == "" {
		return ctx
	}
	return context.WithValue(ctx, localeKey, locale)
}

// LocaleFromContext returns the locale tag if present.
func LocaleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(localeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEntry annotates context with the catalogue entry label.
func WithEntry(ctx context.Context, label string) context.Context {
	if label == "" {
		return ctx
	}
	return context.WithValue(ctx, entryKey, label)
}

// EntryFromContext returns the catalogue entry label if present.
func EntryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(entryKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

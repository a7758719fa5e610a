package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrWorkspace     = errors.New("workspace failure")
	ErrMissingSource = errors.New("missing source")
	ErrSubset        = errors.New("subset failure")
	ErrRelocation    = errors.New("relocation failure")
	ErrAcquisition   = errors.New("acquisition failure")
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
)

// Kind is a stable classification string for logs, history rows and CLI output.
type Kind string

const (
	KindNone          Kind = ""
	KindWorkspace     Kind = "workspace"
	KindMissingSource Kind = "missing_source"
	KindSubset        Kind = "subset"
	KindRelocation    Kind = "relocation"
	KindAcquisition   Kind = "acquisition"
	KindExternalTool  Kind = "external_tool"
	KindConfiguration Kind = "configuration"
	KindCanceled      Kind = "canceled"
	KindUnknown       Kind = "unknown"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf maps an error to its classification. Markers are checked in order of
// specificity so a subset failure caused by a missing file still reports as
// missing_source.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingSource):
		return KindMissingSource
	case errors.Is(err, ErrWorkspace):
		return KindWorkspace
	case errors.Is(err, ErrSubset):
		return KindSubset
	case errors.Is(err, ErrRelocation):
		return KindRelocation
	case errors.Is(err, ErrAcquisition):
		return KindAcquisition
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrExternalTool):
		return KindExternalTool
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// Hint returns an operator-facing next step for the given failure kind.
func Hint(kind Kind) string {
	switch kind {
	case KindWorkspace:
		return "check output_dir/scratch_dir permissions and that no other build is running"
	case KindMissingSource:
		return "run 'webfonts fetch' or fix the catalogue source path"
	case KindSubset:
		return "inspect the scratch directory and the subsetter output above"
	case KindRelocation:
		return "check free disk space and output_dir permissions"
	case KindAcquisition:
		return "verify the source URL and network connectivity"
	case KindConfiguration:
		return "run 'webfonts config validate'"
	case KindExternalTool:
		return "run 'webfonts deps' to verify external tools"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

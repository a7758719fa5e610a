package pipeline

import (
	"time"

	"webfonts/internal/history"
	"webfonts/internal/manifest"
)

// Report summarizes a build run. Summaries follow locale first-encounter order.
type Report struct {
	BuildID    string             `json:"build_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Summaries  []manifest.Summary `json:"summaries"`
	Warnings   []string           `json:"warnings,omitempty"`
	Entries    int                `json:"entries"`
}

// Duration returns the wall time of the run.
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// historyRecord converts the report and the run's error into a history row.
func (r Report) historyRecord(runErr error, kind, message string) history.Record {
	rec := history.Record{
		ID:         r.BuildID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Status:     history.StatusSucceeded,
		Entries:    r.Entries,
	}
	if runErr != nil {
		rec.Status = history.StatusFailed
		rec.ErrorKind = kind
		rec.ErrorMessage = message
		return rec
	}
	for _, s := range r.Summaries {
		rec.Locales = append(rec.Locales, history.LocaleCount{
			Locale:      s.Locale,
			FaceCount:   s.FaceCount,
			BinaryCount: s.BinaryCount,
		})
	}
	return rec
}

// Package services defines shared utilities consumed by the build stages and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp build IDs, stage names, locale tags and
//     catalogue entry labels for logging.
//   - Structured error markers plus the Wrap helper so callers can tell a
//     fatal workspace, source, subset or relocation failure apart with
//     errors.Is, and KindOf/Hint for reporting.
//
// Use these helpers when wiring new stage logic so failure classification and
// observability stay uniform across the pipeline.
package services

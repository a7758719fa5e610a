// Package process runs external tools (the glyph subsetter and the archive
// extractor) behind a small Executor interface so callers can substitute a
// stub in tests.
package process

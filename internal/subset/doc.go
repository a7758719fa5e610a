// Package subset drives the external glyph subsetter.
//
// The subsetter is configured as a single shell-quoted command template whose
// placeholders are filled from the source path, the scratch output directory
// and the entry's CSS descriptors. After the process exits, Collect reports
// the WOFF2 files and the optional result.css it left behind.
package subset

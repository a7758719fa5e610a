// Package locale groups subset output by locale: binaries are copied into the
// locale's output directory as each entry finishes, and style fragments are
// held in memory until the manifest is merged.
package locale

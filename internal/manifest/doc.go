// Package manifest merges a locale's style fragments into index.css and
// reports what the merged stylesheet declares.
//
// Merge counts @font-face markers in the raw text. Inspect parses the same
// text with a CSS parser to list families and catch src urls that point at
// files missing from the locale directory.
package manifest

package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"webfonts/internal/fileutil"
	"webfonts/internal/services"
)

const (
	// FileName is the manifest written into each locale directory.
	FileName = "index.css"
	// FaceMarker is counted to report the number of face declarations.
	FaceMarker = "@font-face"
	// BinaryExt is the extension counted as locale binaries.
	BinaryExt = ".woff2"

	stageName = "manifest"
)

// Summary reports the outcome of merging one locale.
type Summary struct {
	Locale          string   `json:"locale"`
	FaceCount       int      `json:"face_count"`
	BinaryCount     int      `json:"binary_count"`
	ManifestPath    string   `json:"manifest_path"`
	Families        []string `json:"families,omitempty"`
	DanglingSources []string `json:"dangling_sources,omitempty"`
}

// Merge joins fragments with a single newline, writes the result to
// <localeDir>/index.css (truncating any previous file) and counts faces and
// binaries.
func Merge(tag string, fragments []string, localeDir string) (Summary, error) {
	merged := strings.Join(fragments, "\n")
	path := filepath.Join(localeDir, FileName)
	if err := os.WriteFile(path, []byte(merged), 0o644); err != nil {
		return Summary{}, services.Wrap(services.ErrRelocation, stageName, "write", tag, err)
	}
	binaries, err := fileutil.ListByExtension(localeDir, BinaryExt)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrRelocation, stageName, "count", tag, err)
	}
	return Summary{
		Locale:       tag,
		FaceCount:    strings.Count(merged, FaceMarker),
		BinaryCount:  len(binaries),
		ManifestPath: path,
	}, nil
}

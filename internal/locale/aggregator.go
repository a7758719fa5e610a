package locale

import (
	"path/filepath"
	"strings"

	"webfonts/internal/fileutil"
	"webfonts/internal/services"
)

const stageName = "relocation"

// BinaryExt is the extension of files relocated into locale directories.
const BinaryExt = ".woff2"

// Aggregator accumulates per-locale style fragments in catalogue order and
// copies subset binaries into locale output directories. It is not safe for
// concurrent use.
type Aggregator struct {
	order     []string
	fragments map[string][]string
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{fragments: make(map[string][]string)}
}

func (a *Aggregator) register(tag string) {
	if _, ok := a.fragments[tag]; ok {
		return
	}
	a.fragments[tag] = nil
	a.order = append(a.order, tag)
}

// RecordBinaries copies every file in files whose name ends in .woff2 into
// outputDir and registers the locale. Sources are left in place. It returns
// the number of files copied.
func (a *Aggregator) RecordBinaries(tag string, files []string, outputDir string) (int, error) {
	a.register(tag)
	copied := 0
	for _, file := range files {
		name := filepath.Base(file)
		if !strings.HasSuffix(name, BinaryExt) {
			continue
		}
		if err := fileutil.CopyFile(file, filepath.Join(outputDir, name)); err != nil {
			return copied, services.Wrap(services.ErrRelocation, stageName, "copy", name, err)
		}
		copied++
	}
	return copied, nil
}

// RecordStyleFragment appends text to the locale's fragment list. Empty text
// registers the locale without adding a fragment.
func (a *Aggregator) RecordStyleFragment(tag, text string) {
	a.register(tag)
	if text == "" {
		return
	}
	a.fragments[tag] = append(a.fragments[tag], text)
}

// LocaleTags returns the locales seen so far in first-encounter order.
func (a *Aggregator) LocaleTags() []string {
	return append([]string(nil), a.order...)
}

// Fragments returns a copy of the locale's fragments in recording order.
func (a *Aggregator) Fragments(tag string) []string {
	return append([]string(nil), a.fragments[tag]...)
}

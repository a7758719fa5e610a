package preflight

import (
	"webfonts/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the filesystem checks a build depends on. The output and
// scratch roots are recreated by every build, so their nearest existing
// ancestor is checked instead.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Source directory", cfg.Paths.SourceDir),
		CheckWritableAncestor("Output directory", cfg.Paths.OutputDir),
		CheckWritableAncestor("Scratch directory", cfg.Paths.ScratchDir),
	}
	if cfg.Paths.Catalogue != "" {
		results = append(results, CheckReadable("Catalogue", cfg.Paths.Catalogue))
	}
	if cfg.History.Enabled {
		results = append(results, CheckWritableAncestor("State directory", cfg.Paths.StateDir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

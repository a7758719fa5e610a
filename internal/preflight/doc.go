// Package preflight provides readiness checks for the filesystem paths and
// external tools a build depends on.
//
// The pipeline calls CheckSource before subsetting each catalogue entry so a
// missing file fails with a clear classification instead of a subsetter error.
// The CLI "deps" command uses RunAll and CheckSystemDeps to report status.
package preflight

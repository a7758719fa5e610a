// Package pipeline drives a transformation build from start to finish.
//
// A Driver moves through Idle, WorkspaceReset, ProcessingEntries (once per
// catalogue entry), Merging, CleaningUp and Done. Any entry failure moves it
// straight to Failed: no later entry runs, no manifest is written and the
// scratch tree is left in place for inspection. A scratch cleanup failure
// after a successful merge only adds a warning to the report.
package pipeline

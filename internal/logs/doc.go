// Package logs reads the per-build JSON logs written under the log directory.
//
// Tail keeps memory bounded with a ring buffer so very long build logs can be
// inspected from the CLI.
package logs

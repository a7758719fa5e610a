// Package history keeps a SQLite log of finished builds: when they ran, how
// they ended, and how many faces and binaries each locale received.
package history

// Package fileutil holds the copy and directory listing helpers shared by the
// workspace, relocation and acquisition code.
package fileutil

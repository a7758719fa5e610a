// Package acquire fetches source typeface files into the source directory.
//
// Sources already on disk are skipped. Plain files are downloaded into a
// temporary file and renamed into place; archive sources are downloaded into
// a temporary directory, the named member is extracted (zip and tar variants
// in process, .7z through the configured archive tool) and copied out.
package acquire

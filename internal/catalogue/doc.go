// Package catalogue loads the ordered list of typefaces a build processes and
// the download descriptions that supply their source files.
//
// Catalogues are TOML documents decoded strictly: unknown keys are errors. A
// default catalogue is embedded so a bare checkout can build without one.
package catalogue

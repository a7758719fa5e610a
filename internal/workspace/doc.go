// Package workspace manages the two directory trees a build touches: the
// output root that receives one subdirectory per locale, and the scratch
// root that holds one directory per catalogue entry while it is subset.
//
// Reset gives every build a clean slate, and an advisory lock next to the
// output root keeps two builds from interleaving writes.
package workspace

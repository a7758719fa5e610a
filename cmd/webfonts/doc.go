// Package main hosts the webfonts CLI entrypoint and command graph.
//
// Commands resolve configuration once through commandContext, then hand off
// to the internal packages: build drives the pipeline, fetch runs the
// acquisition stage, and the remaining commands inspect the catalogue, the
// workspace, build history and host dependencies.
package main

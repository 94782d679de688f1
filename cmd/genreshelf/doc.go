// Package main hosts the genreshelf CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the structured
// logger, and hands off to the internal packages: reorganize drives the
// genre-tree rebuild, count walks a directory, columns rewrites the dataset
// CSV header, and history reads the run journal.
package main

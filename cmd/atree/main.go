// Command atree is the interactive REPL and one-shot CLI front end over
// the A-Tree index (C8): declare attributes from a schema file,
// insert/delete/search, export Graphviz, and load/save snapshots.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

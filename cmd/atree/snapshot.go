package main

import "os"

// saveSnapshot writes s's current tree and tracked subscription source
// text to a JSON file at path (spec §6 [FULL], "Snapshot I/O").
func saveSnapshot(s *session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.tree.Save(f, s.exprs)
}

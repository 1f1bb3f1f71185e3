package atree

import (
	"encoding/json"
	"fmt"
	"io"
)

// snapshotAttr and snapshotSub mirror AttrDef/subscription source text in
// a JSON-friendly shape, the same plain-DTO-plus-json-tag approach the
// teacher repository's serialization package uses for its graph snapshot
// format.
type snapshotAttr struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Scale uint32 `json:"scale,omitempty"`
}

type snapshotSub struct {
	ID   uint64 `json:"id"`
	Expr string `json:"expr"`
}

type snapshot struct {
	Attrs         []snapshotAttr `json:"attrs"`
	Subscriptions []snapshotSub  `json:"subscriptions"`
}

var typeNames = map[Type]string{
	Bool:   "bool",
	Int:    "i64",
	Dec:    "decimal",
	Str:    "string",
	StrSet: "set-of-string",
	IntSet: "set-of-i64",
}

var namesToType = func() map[string]Type {
	out := make(map[string]Type, len(typeNames))
	for t, n := range typeNames {
		out[n] = t
	}
	return out
}()

// Save writes the declared attributes and the source text of every live
// subscription to w as JSON. This is a one-shot export for C8/C9 tooling,
// not a durability mechanism for the engine itself: the arena structure is
// never serialized, only enough to rebuild it (spec §6 [FULL], "Snapshot
// I/O").
func (t *Tree) Save(w io.Writer, exprs map[uint64]string) error {
	snap := snapshot{}
	for _, a := range t.reg.All() {
		snap.Attrs = append(snap.Attrs, snapshotAttr{Name: a.Name, Type: typeNames[a.Type], Scale: a.Scale})
	}
	for id := range t.subs.All() {
		src, ok := exprs[id]
		if !ok {
			return fmt.Errorf("atree: missing source text for subscription %d", id)
		}
		snap.Subscriptions = append(snap.Subscriptions, snapshotSub{ID: id, Expr: src})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// LoadFrom reads a snapshot written by Save, rebuilding a fresh Tree by
// re-declaring its attributes and re-inserting each subscription's source
// text (the DAG is never a carried wire format; it is reconstructed by
// re-parsing, exactly as the teacher's serialization package rebuilds a
// graph from its node/edge DTOs rather than any internal pointer layout).
func LoadFrom(r io.Reader) (*Tree, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("atree: decoding snapshot: %w", err)
	}

	defs := make([]AttrDef, 0, len(snap.Attrs))
	for _, a := range snap.Attrs {
		typ, ok := namesToType[a.Type]
		if !ok {
			return nil, fmt.Errorf("atree: unknown attribute type %q for %q", a.Type, a.Name)
		}
		defs = append(defs, AttrDef{Name: a.Name, Type: typ, Scale: a.Scale})
	}

	tree, err := New(defs)
	if err != nil {
		return nil, err
	}
	for _, s := range snap.Subscriptions {
		if err := tree.Insert(s.ID, s.Expr); err != nil {
			return nil, fmt.Errorf("atree: reinserting subscription %d: %w", s.ID, err)
		}
	}
	return tree, nil
}

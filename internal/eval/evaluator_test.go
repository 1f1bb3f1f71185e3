package eval

import (
	"testing"

	"github.com/kaleidodag/atree/internal/attrs"
	"github.com/kaleidodag/atree/internal/dag"
	"github.com/kaleidodag/atree/internal/event"
	"github.com/kaleidodag/atree/internal/lang"
	"github.com/kaleidodag/atree/internal/subs"
	"github.com/kaleidodag/atree/internal/value"
)

type fixture struct {
	reg   *attrs.Registry
	arena *dag.Arena
	table *subs.Table
	ev    *Evaluator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := attrs.New()
	for _, d := range []struct {
		name  string
		typ   value.Type
		scale uint32
	}{
		{"private", value.Bool, 0},
		{"exchange_id", value.Int, 0},
		{"price", value.Dec, 2},
		{"country", value.Str, 0},
		{"tags", value.StrSet, 0},
		{"age", value.Int, 0},
		{"premium", value.Bool, 0},
	} {
		if _, err := reg.Declare(d.name, d.typ, d.scale); err != nil {
			t.Fatalf("declare %s: %v", d.name, err)
		}
	}
	return &fixture{reg: reg, arena: dag.New(), table: subs.New(), ev: New()}
}

func (f *fixture) insert(t *testing.T, id uint64, src string) {
	t.Helper()
	root, err := lang.Build(src, f.reg, f.arena)
	if err != nil {
		t.Fatalf("Build(%q): %v", src, err)
	}
	if err := f.table.Insert(id, root, f.arena); err != nil {
		t.Fatalf("Insert(%d): %v", id, err)
	}
}

func (f *fixture) search(t *testing.T, configure func(*event.Builder)) []uint64 {
	t.Helper()
	b := event.New(f.reg)
	configure(b)
	return f.ev.Search(f.arena, f.table, b)
}

func assertSet(t *testing.T, got []uint64, want ...uint64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	seen := make(map[uint64]bool, len(want))
	for _, w := range want {
		seen[w] = true
	}
	for _, g := range got {
		if !seen[g] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScenario_PrivateExchange(t *testing.T) {
	f := newFixture(t)
	f.insert(t, 42, `exchange_id = 1 and private`)

	got := f.search(t, func(b *event.Builder) {
		b.WithBool("private", true)
		b.WithInt("exchange_id", 1)
	})
	assertSet(t, got, 42)

	got = f.search(t, func(b *event.Builder) {
		b.WithBool("private", false)
		b.WithInt("exchange_id", 1)
	})
	assertSet(t, got)

	got = f.search(t, func(b *event.Builder) {
		b.WithInt("exchange_id", 1)
	})
	assertSet(t, got)
}

func TestScenario_SharedAndOrderInsensitive(t *testing.T) {
	f := newFixture(t)
	root1, err := lang.Build(`exchange_id = 1 and private`, f.reg, f.arena)
	if err != nil {
		t.Fatal(err)
	}
	root2, err := lang.Build(`private and exchange_id = 1`, f.reg, f.arena)
	if err != nil {
		t.Fatal(err)
	}
	if root1 != root2 {
		t.Fatalf("expected shared root, got %d and %d", root1, root2)
	}
	f.table.Insert(1, root1, f.arena)
	f.table.Insert(2, root2, f.arena)

	if f.arena.RefCount(root1) != 2 {
		t.Fatalf("expected refcount 2, got %d", f.arena.RefCount(root1))
	}
	f.table.Delete(1, f.arena)
	if !f.arena.Live(root1) {
		t.Fatalf("node should still be live: subscription 2 still references it")
	}
	f.table.Delete(2, f.arena)
	if f.arena.NumLive() != 0 {
		t.Fatalf("expected 0 live nodes, got %d", f.arena.NumLive())
	}
}

func TestScenario_DecimalRange(t *testing.T) {
	f := newFixture(t)
	f.insert(t, 10, `price >= 50.0 and price <= 100.0`)
	f.insert(t, 11, `price > 25.0`)

	got := f.search(t, func(b *event.Builder) {
		b.WithDec("price", 7550, 2) // 75.50
	})
	assertSet(t, got, 10, 11)

	got = f.search(t, func(b *event.Builder) {
		b.WithDec("price", 3000, 2) // 30.00
	})
	assertSet(t, got, 11)
}

func TestScenario_DeleteThenReevaluate(t *testing.T) {
	f := newFixture(t)
	f.insert(t, 7, `country = "US"`)

	got := f.search(t, func(b *event.Builder) { b.WithStr("country", "US") })
	assertSet(t, got, 7)

	root, _ := f.table.Root(7)
	f.table.Delete(7, f.arena)
	_ = root

	got = f.search(t, func(b *event.Builder) { b.WithStr("country", "US") })
	assertSet(t, got)
}

func TestScenario_AgeThresholds(t *testing.T) {
	f := newFixture(t)
	f.insert(t, 3, `age >= 18 and premium`)
	f.insert(t, 4, `age >= 21`)

	got := f.search(t, func(b *event.Builder) {
		b.WithInt("age", 25)
		b.WithBool("premium", true)
	})
	assertSet(t, got, 3, 4)

	got = f.search(t, func(b *event.Builder) {
		b.WithInt("age", 20)
		b.WithBool("premium", true)
	})
	assertSet(t, got, 3)
}

func TestScenario_SetMembership(t *testing.T) {
	f := newFixture(t)
	f.insert(t, 5, `tags in ["sale"]`)

	got := f.search(t, func(b *event.Builder) { b.WithStrSet("tags", "sale", "new") })
	assertSet(t, got, 5)

	got = f.search(t, func(b *event.Builder) { b.WithStrSet("tags", "new") })
	assertSet(t, got)

	got = f.search(t, func(b *event.Builder) {})
	assertSet(t, got)
}

func TestKleeneTruthTables(t *testing.T) {
	vals := []Tri{True, False, Unknown}
	andWant := map[[2]Tri]Tri{
		{True, True}: True, {True, False}: False, {True, Unknown}: Unknown,
		{False, True}: False, {False, False}: False, {False, Unknown}: False,
		{Unknown, True}: Unknown, {Unknown, False}: False, {Unknown, Unknown}: Unknown,
	}
	orWant := map[[2]Tri]Tri{
		{True, True}: True, {True, False}: True, {True, Unknown}: True,
		{False, True}: True, {False, False}: False, {False, Unknown}: Unknown,
		{Unknown, True}: True, {Unknown, False}: Unknown, {Unknown, Unknown}: Unknown,
	}
	for _, l := range vals {
		for _, r := range vals {
			if got := kleeneAnd(l, r); got != andWant[[2]Tri{l, r}] {
				t.Fatalf("AND(%v,%v) = %v, want %v", l, r, got, andWant[[2]Tri{l, r}])
			}
			if got := kleeneOr(l, r); got != orWant[[2]Tri{l, r}] {
				t.Fatalf("OR(%v,%v) = %v, want %v", l, r, got, orWant[[2]Tri{l, r}])
			}
		}
	}
	if kleeneNot(True) != False || kleeneNot(False) != True || kleeneNot(Unknown) != Unknown {
		t.Fatalf("Not truth table incorrect")
	}
}

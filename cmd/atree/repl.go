package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kaleidodag/atree"
)

const helpText = `atree interactive REPL

Commands:
  insert <id> <expr...>        Insert a subscription
  delete <id>                  Delete a subscription
  search <attr=value> ...      Evaluate an event against all subscriptions
  render                       Print the DAG as Graphviz DOT
  save <file>                  Write a snapshot to a JSON file
  help                         Show this help message
  exit / quit                  Exit the REPL

search values: bare numbers are i64, quoted strings are string, true/false
are bool, a decimal point marks a decimal, and ["a","b"] marks a
set-of-string value.
`

// session holds the mutable state one REPL (or one-shot command)
// operates on: the tree itself plus the source text of every live
// subscription, needed to round-trip a snapshot (spec §6 [FULL]).
type session struct {
	tree  *atree.Tree
	exprs map[uint64]string
}

func newSession(tree *atree.Tree) *session {
	return &session{tree: tree, exprs: make(map[uint64]string)}
}

func (s *session) insert(idStr string, expr string) error {
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid subscription id %q: %w", idStr, err)
	}
	if err := s.tree.Insert(id, expr); err != nil {
		return err
	}
	s.exprs[id] = expr
	return nil
}

func (s *session) delete(idStr string) error {
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid subscription id %q: %w", idStr, err)
	}
	s.tree.Delete(id)
	delete(s.exprs, id)
	return nil
}

func (s *session) search(tokens []string) ([]uint64, error) {
	ev := s.tree.MakeEvent()
	for _, tok := range tokens {
		name, raw, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, fmt.Errorf("malformed event token %q, want attr=value", tok)
		}
		if err := applyEventToken(ev, name, raw); err != nil {
			return nil, err
		}
	}
	return s.tree.Search(ev), nil
}

func applyEventToken(ev *atree.EventBuilder, name, raw string) error {
	switch {
	case raw == "true" || raw == "false":
		return ev.WithBool(name, raw == "true")
	case strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2:
		return ev.WithStr(name, raw[1:len(raw)-1])
	case strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		items := strings.Split(strings.Trim(raw, "[]"), ",")
		for i, it := range items {
			items[i] = strings.Trim(strings.TrimSpace(it), `"`)
		}
		return ev.WithStrSet(name, items...)
	case strings.Contains(raw, "."):
		dot := strings.IndexByte(raw, '.')
		scale := uint32(len(raw) - dot - 1)
		digits := raw[:dot] + raw[dot+1:]
		mantissa, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid decimal %q for %q: %w", raw, name, err)
		}
		return ev.WithDec(name, mantissa, scale)
	default:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value %q for %q: %w", raw, name, err)
		}
		return ev.WithInt(name, n)
	}
}

// runREPL drives an interactive bufio command loop over s, in the same
// shape as the teacher repository's cmd/cli main loop (read a line, split
// on whitespace, dispatch on the first token).
func runREPL(s *session) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("atree — shared expression DAG subscription matcher")
	fmt.Println(`Type "help" for available commands.`)
	fmt.Println()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "exit", "quit":
			return

		case "help":
			fmt.Print(helpText)

		case "insert":
			if len(parts) < 3 {
				fmt.Fprintln(os.Stderr, "usage: insert <id> <expr...>")
				continue
			}
			expr := strings.Join(parts[2:], " ")
			if err := s.insert(parts[1], expr); err != nil {
				fmt.Fprintf(os.Stderr, "insert error: %v\n", err)
				continue
			}
			fmt.Printf("inserted %s\n", parts[1])

		case "delete":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: delete <id>")
				continue
			}
			if err := s.delete(parts[1]); err != nil {
				fmt.Fprintf(os.Stderr, "delete error: %v\n", err)
				continue
			}
			fmt.Printf("deleted %s\n", parts[1])

		case "search":
			ids, err := s.search(parts[1:])
			if err != nil {
				fmt.Fprintf(os.Stderr, "search error: %v\n", err)
				continue
			}
			fmt.Printf("matched: %v\n", ids)

		case "render":
			fmt.Print(s.tree.ToGraphviz())

		case "save":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: save <file>")
				continue
			}
			if err := saveSnapshot(s, parts[1]); err != nil {
				fmt.Fprintf(os.Stderr, "save error: %v\n", err)
				continue
			}
			fmt.Printf("saved snapshot to %s\n", parts[1])

		default:
			fmt.Fprintf(os.Stderr, "unknown command %q; type \"help\"\n", cmd)
		}
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kaleidodag/atree"
)

// Global flags available to every subcommand, in the same
// PersistentFlags-on-the-root shape the holomush CLI uses.
var (
	schemaPath   string
	snapshotPath string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atree",
		Short: "atree — shared expression DAG subscription matcher",
		Long: `atree is a command-line front end over the A-Tree index: an
in-memory matcher for large collections of boolean subscription
expressions that share common sub-expressions.`,
	}

	cmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "attribute schema YAML file (required)")
	cmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "snapshot JSON file to preload and save back to")
	cmd.MarkPersistentFlagRequired("schema")

	cmd.AddCommand(newInsertCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newReplCmd())

	return cmd
}

// buildSession loads the attribute schema and, if --snapshot points at an
// existing file, builds the tree from that snapshot instead (its own
// attribute declarations and subscriptions), keeping each subscription's
// source text so the session can be saved back.
func buildSession() (*session, error) {
	defs, err := loadSchema(schemaPath)
	if err != nil {
		return nil, err
	}

	if snapshotPath != "" {
		if data, readErr := os.ReadFile(snapshotPath); readErr == nil {
			tree, loadErr := atree.LoadFrom(bytes.NewReader(data))
			if loadErr != nil {
				return nil, fmt.Errorf("loading snapshot %s: %w", snapshotPath, loadErr)
			}
			s := newSession(tree)
			var snap struct {
				Subscriptions []struct {
					ID   uint64 `json:"id"`
					Expr string `json:"expr"`
				} `json:"subscriptions"`
			}
			if err := json.Unmarshal(data, &snap); err == nil {
				for _, sub := range snap.Subscriptions {
					s.exprs[sub.ID] = sub.Expr
				}
			}
			return s, nil
		}
	}

	tree, err := atree.New(defs)
	if err != nil {
		return nil, err
	}
	return newSession(tree), nil
}

// persist writes s back to --snapshot after a mutating one-shot command,
// if a snapshot path was given.
func persist(s *session) error {
	if snapshotPath == "" {
		return nil
	}
	return saveSnapshot(s, snapshotPath)
}

func newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <id> <expr>",
		Short: "Insert a subscription",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSession()
			if err != nil {
				return err
			}
			if err := s.insert(args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return persist(s)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSession()
			if err != nil {
				return err
			}
			if err := s.delete(args[0]); err != nil {
				return err
			}
			return persist(s)
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <attr=value>...",
		Short: "Evaluate an event against all installed subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSession()
			if err != nil {
				return err
			}
			ids, err := s.search(args)
			if err != nil {
				return err
			}
			fmt.Println(ids)
			return nil
		},
	}
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Print the DAG as Graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSession()
			if err != nil {
				return err
			}
			fmt.Print(s.tree.ToGraphviz())
			return nil
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSession()
			if err != nil {
				return err
			}
			runREPL(s)
			return persist(s)
		},
	}
}

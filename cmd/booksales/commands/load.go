package commands

import (
	"context"
	"fmt"

	"github.com/marshallshelly/booksales/cmd/booksales/output"
	"github.com/marshallshelly/booksales/pkg/loader"
	"github.com/spf13/cobra"
)

var (
	// Load flags
	strictLoad bool
)

// loadCmd bulk-loads a fixture file
var loadCmd = &cobra.Command{
	Use:   "load FILE",
	Short: "Load publishers, books, shops, stock and sales from a file",
	Long: `Load a JSON or YAML list of {model, pk, fields} records and commit them
in a single transaction.

Records are inserted in file order, so parents must come before the rows
that reference them. Records with an unknown model tag are skipped.

Examples:
  booksales load fixtures.json
  booksales load fixtures.yaml --strict`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, reg, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		session := newSession(db, reg)
		defer func() { _ = session.Close(context.WithoutCancel(ctx)) }()

		result, err := loadFile(session, args[0])
		if err != nil {
			return err
		}

		if err := session.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit %s: %w", args[0], err)
		}
		output.Success("committed %d rows from %s", result.Staged, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().BoolVar(&strictLoad, "strict", false, "Validate every record before staging it")
}

// loadFile decodes path and stages its records.
func loadFile(stager loader.Stager, path string) (*loader.Result, error) {
	records, err := loader.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var opts []loader.Option
	if strictLoad {
		opts = append(opts, loader.WithStrict())
	}

	result, err := loader.New(stager, opts...).Load(records)
	if err != nil {
		return result, fmt.Errorf("failed to load %s: %w", path, err)
	}

	output.Info("staged %d records from %s", result.Staged, path)
	if result.Skipped > 0 {
		output.Warning("skipped %d records with unknown model", result.Skipped)
	}
	if verbose {
		for _, m := range loader.Models() {
			output.Muted("  %-10s %d", m, result.Counts[m])
		}
	}
	return result, nil
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/marshallshelly/booksales/cmd/booksales/output"
	"github.com/marshallshelly/booksales/pkg/migration"
	"github.com/marshallshelly/booksales/pkg/registry"
	"github.com/spf13/cobra"
)

// initCmd creates the schema in an empty database
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema in an empty database",
	Long: `Create every registered table in one transaction when the database has
no tables yet.

If any table already exists nothing is created; the command lists what is
there and which registered tables are missing. Connection-level failures
during creation are reported and the command still exits zero.

Examples:
  booksales init --db postgres://localhost/books
  booksales init --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, reg, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		_, err = initialize(ctx, db, reg)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initialize(ctx context.Context, db migration.Store, reg *registry.Registry) (*migration.InitResult, error) {
	result, err := migration.NewInitializer(db, reg).Initialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if jsonOutput {
		return result, printInitJSON(result)
	}
	printInitResult(result)
	return result, nil
}

func printInitResult(result *migration.InitResult) {
	icon := output.StatusIcon(string(result.Status))

	switch result.Status {
	case migration.StatusCreated:
		output.Success("tables created: %s", strings.Join(result.Created, ", "))
	case migration.StatusExisting:
		output.Info("tables already exist: %s", strings.Join(result.Existing, ", "))
	case migration.StatusPartial:
		output.Warning("tables already exist: %s", strings.Join(result.Existing, ", "))
		output.Muted("%s missing: %s (not created)", icon, strings.Join(result.Missing, ", "))
	case migration.StatusFailed:
		output.Error("failed to create tables: %v", result.Err)
	}

	if verbose && result.Status != migration.StatusFailed {
		output.Muted("%s status %s", icon, result.Status)
	}
}

func printInitJSON(result *migration.InitResult) error {
	payload := struct {
		Status   migration.InitStatus `json:"status"`
		Existing []string             `json:"existing"`
		Missing  []string             `json:"missing"`
		Created  []string             `json:"created"`
		Error    string               `json:"error,omitempty"`
	}{
		Status:   result.Status,
		Existing: result.Existing,
		Missing:  result.Missing,
		Created:  result.Created,
	}
	if result.Err != nil {
		payload.Error = result.Err.Error()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

package commands

import (
	"fmt"
	"os"

	"github.com/marshallshelly/booksales/cmd/booksales/output"
	"github.com/marshallshelly/booksales/pkg/migration"
	"github.com/marshallshelly/booksales/pkg/models"
	"github.com/spf13/cobra"
)

var (
	// Schema flags
	schemaOut   string
	ifNotExists bool
)

// schemaCmd prints the DDL for the registered models
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the CREATE TABLE statements for the schema",
	Long: `Print the DDL that init runs against an empty database, in foreign-key
dependency order. No database connection is needed.

Examples:
  booksales schema
  booksales schema --out schema.sql`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := models.NewRegistry()
		if err != nil {
			return fmt.Errorf("failed to register models: %w", err)
		}

		tables, err := reg.Tables()
		if err != nil {
			return err
		}

		planner := migration.NewPlannerWithOptions(migration.PlannerOptions{IfNotExists: ifNotExists})
		sql := planner.SchemaSQL(tables)

		if schemaOut == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), sql)
			return err
		}

		if err := os.WriteFile(schemaOut, []byte(sql), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", schemaOut, err)
		}
		output.Success("wrote %d tables to %s", len(tables), schemaOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringVarP(&schemaOut, "out", "o", "", "Write the DDL to a file instead of stdout")
	schemaCmd.Flags().BoolVar(&ifNotExists, "if-not-exists", false, "Emit CREATE TABLE IF NOT EXISTS")
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/marshallshelly/booksales/cmd/booksales/output"
	"github.com/marshallshelly/booksales/pkg/migration"
	"github.com/marshallshelly/booksales/pkg/registry"
	"github.com/spf13/cobra"
)

// tableStatus is one row of the tables listing.
type tableStatus struct {
	Name       string `json:"name"`
	Registered bool   `json:"registered"`
	Present    bool   `json:"present"`
	Columns    int    `json:"columns"`
}

// tablesCmd lists existing and missing tables
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables in the database and registered tables that are missing",
	Long: `Compare the base tables of the public schema with the registered models.

Examples:
  booksales tables
  booksales tables --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, reg, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		statuses, err := collectTables(ctx, migration.NewIntrospector(db), reg)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(statuses)
		}

		if len(statuses) == 0 {
			output.Warning("No tables found in database")
			return nil
		}
		return printTables(cmd.OutOrStdout(), statuses)
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

// collectTables merges the database tables with the registered ones. Present
// tables come first in database order, then missing registered tables.
func collectTables(ctx context.Context, introspector *migration.Introspector, reg *registry.Registry) ([]tableStatus, error) {
	existing, err := introspector.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	statuses := make([]tableStatus, 0, len(existing))
	for _, name := range existing {
		st := tableStatus{Name: name, Present: true, Registered: reg.HasTable(name)}
		table, err := introspector.IntrospectTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect table %s: %w", name, err)
		}
		st.Columns = len(table.Columns)
		statuses = append(statuses, st)
	}

	for _, name := range reg.Names() {
		if slices.Contains(existing, name) {
			continue
		}
		table, err := reg.GetByName(name)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, tableStatus{Name: name, Registered: true, Columns: len(table.Columns)})
	}
	return statuses, nil
}

func printTables(out io.Writer, statuses []tableStatus) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TABLE\tSTATUS\tCOLUMNS")
	_, _ = fmt.Fprintln(w, "-----\t------\t-------")

	for _, st := range statuses {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", st.Name, st.label(), st.Columns)
	}
	return w.Flush()
}

func (s tableStatus) label() string {
	switch {
	case s.Present && s.Registered:
		return "present"
	case s.Present:
		return "unmanaged"
	default:
		return "missing"
	}
}

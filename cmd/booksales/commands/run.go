package commands

import (
	"context"
	"fmt"

	"github.com/marshallshelly/booksales/cmd/booksales/output"
	"github.com/spf13/cobra"
)

var (
	// Run flags
	runInit  bool
	dataFile string
)

// runCmd runs the whole session: schema, load, report, commit
var runCmd = &cobra.Command{
	Use:   "run [IDENTIFIER]",
	Short: "Initialize, load, report and commit in one session",
	Long: `Run the full workflow against one database session:

  1. optionally create the schema (--init)
  2. optionally stage a data file (--data)
  3. read a publisher identifier and print its sales
  4. commit once at the end

Staged rows are visible to the report before they are committed. If any
step fails nothing from the data file is kept.

Examples:
  booksales run --init --data fixtures.json 1
  booksales run --data fixtures.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, reg, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if runInit {
			if _, err := initialize(ctx, db, reg); err != nil {
				return err
			}
		}

		session := newSession(db, reg)
		defer func() { _ = session.Close(context.WithoutCancel(ctx)) }()

		if dataFile != "" {
			if _, err := loadFile(session, dataFile); err != nil {
				return err
			}
		}

		identifier, err := readIdentifier(ctx, args)
		if err != nil {
			return err
		}

		if err := printReport(ctx, session, reg, identifier, cmd.OutOrStdout()); err != nil {
			return err
		}

		rows := session.Pending() + session.Flushed()
		if err := session.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit session: %w", err)
		}
		if verbose {
			output.Muted("committed %d rows", rows)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runInit, "init", false, "Create the schema first if the database is empty")
	runCmd.Flags().StringVar(&dataFile, "data", "", "JSON or YAML data file to load before reporting")
	runCmd.Flags().BoolVar(&strictLoad, "strict", false, "Validate every record before staging it")
}

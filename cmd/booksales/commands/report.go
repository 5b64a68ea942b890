package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/marshallshelly/booksales/cmd/booksales/output"
	"github.com/marshallshelly/booksales/cmd/booksales/tui"
	"github.com/marshallshelly/booksales/pkg/builder"
	"github.com/marshallshelly/booksales/pkg/registry"
	"github.com/marshallshelly/booksales/pkg/report"
	"github.com/marshallshelly/booksales/pkg/runtime"
	"github.com/spf13/cobra"
)

const promptTitle = "Publisher id or name:"

// reportCmd lists the sales of one publisher
var reportCmd = &cobra.Command{
	Use:   "report [IDENTIFIER]",
	Short: "List every sale of a publisher's books",
	Long: `Resolve a publisher by id or exact name and print one line per sale:

  title | shop | price | date

An identifier that parses as an integer is looked up by id only; anything
else is matched against the publisher name exactly. Without an argument
the identifier is read from the terminal.

Examples:
  booksales report 1
  booksales report "Acme"
  booksales report 1 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, reg, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		identifier, err := readIdentifier(ctx, args)
		if err != nil {
			return err
		}
		return printReport(ctx, db, reg, identifier, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

// readIdentifier takes the positional argument or prompts for one.
func readIdentifier(ctx context.Context, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	out := os.Stdout
	if jsonOutput {
		out = os.Stderr
	}
	return tui.ReadLine(ctx, promptTitle, os.Stdin, out)
}

// printReport resolves identifier through q and writes the result to w.
func printReport(ctx context.Context, q builder.Querier, reg *registry.Registry, identifier string, w io.Writer) error {
	reporter := report.New(report.NewStoreSource(q, reg))

	if !jsonOutput {
		outcome, err := reporter.Run(ctx, identifier, w)
		if err != nil {
			return err
		}
		if verbose {
			output.Muted("outcome: %s", outcome)
		}
		return nil
	}

	rep, err := reporter.Lines(ctx, identifier)
	if err != nil {
		return err
	}
	return writeReportJSON(rep, w)
}

func writeReportJSON(rep *report.Report, w io.Writer) error {
	payload := struct {
		Outcome   string            `json:"outcome"`
		Publisher *publisherJSON    `json:"publisher,omitempty"`
		Message   string            `json:"message,omitempty"`
		Lines     []report.SaleLine `json:"lines"`
	}{
		Outcome: rep.Outcome.String(),
		Lines:   rep.Lines,
	}
	if payload.Lines == nil {
		payload.Lines = []report.SaleLine{}
	}
	if rep.Publisher != nil {
		payload.Publisher = &publisherJSON{ID: rep.Publisher.ID, Name: rep.Publisher.Name}
	}
	switch rep.Outcome {
	case report.NotFound:
		payload.Message = report.MsgNotFound
	case report.NoSales:
		payload.Message = report.MsgNoSales
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

type publisherJSON struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
}

func newSession(db *runtime.DB, reg *registry.Registry) *builder.Session {
	return builder.NewSession(db, reg)
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/marshallshelly/booksales/cmd/booksales/output"
	"github.com/marshallshelly/booksales/pkg/models"
	"github.com/marshallshelly/booksales/pkg/registry"
	"github.com/marshallshelly/booksales/pkg/runtime"
	"github.com/spf13/cobra"
)

// Environment variables consulted for the connection string, in order.
const (
	EnvDBURL       = "BOOKSALES_DB_URL"
	EnvDatabaseURL = "DATABASE_URL"
)

var (
	// Global flags
	dbURL      string
	envFile    string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "booksales",
	Short: "Book sales ledger for publishers, shops and stock",
	Long: `booksales keeps a small PostgreSQL ledger of publishers, books, shops,
stock and sales.

It creates the schema in an empty database, bulk-loads fixture files
(JSON or YAML records of the form {model, pk, fields}) and reports every
sale of a publisher's books by title, shop, price and date.`,
	Version:       "0.4.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			// Keep stdout a single JSON document.
			output.SetOutput(os.Stderr)
		}
		return loadEnv(envFile)
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to $"+EnvDBURL+", then $"+EnvDatabaseURL+", then localhost/book_db)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// loadEnv reads a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// resolveDSN picks the connection string from the flag or the environment.
// An empty result means no connection was configured.
func resolveDSN(flag string, getenv func(string) string) string {
	if flag != "" {
		return flag
	}
	for _, key := range []string{EnvDBURL, EnvDatabaseURL} {
		if v := getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// connect opens the pool and builds the model registry. Without a
// configured DSN it falls back to runtime.DefaultConfig.
func connect(ctx context.Context) (*runtime.DB, *registry.Registry, error) {
	reg, err := models.NewRegistry()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register models: %w", err)
	}

	var db *runtime.DB
	if dsn := resolveDSN(dbURL, os.Getenv); dsn != "" {
		db, err = runtime.ConnectWithURL(ctx, dsn)
	} else {
		if verbose {
			output.Muted("no --db or $%s set, using local defaults", EnvDBURL)
		}
		db, err = runtime.Connect(ctx, runtime.DefaultConfig())
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if verbose {
		cfg := db.Config()
		output.Muted("connected to %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	}
	return db, reg, nil
}

package runtime

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName is reported to the server for every pooled connection.
const ApplicationName = "booksales"

// DB is the process-wide connection pool. It satisfies the Querier and
// Beginner interfaces of the builder and migration packages.
type DB struct {
	pool   *pgxpool.Pool
	config Config
}

// Config describes a connection. Empty fields are left to libpq defaults,
// so PGHOST, PGUSER, PGPASSWORD and friends still apply.
type Config struct {
	Host           string
	Port           int
	Database       string
	User           string
	Password       string
	SSLMode        string
	ConnectTimeout time.Duration
	MaxConns       int32
	MinConns       int32
}

// DefaultConfig points at a local book_db database.
func DefaultConfig() *Config {
	return &Config{
		Host:           "localhost",
		Port:           5432,
		Database:       "book_db",
		SSLMode:        "prefer",
		ConnectTimeout: 10 * time.Second,
		MaxConns:       4,
		MinConns:       1,
	}
}

// ConnString renders the keyword/value form of c. Values containing spaces
// or quotes are quoted.
func (c *Config) ConnString() string {
	var parts []string
	add := func(key, value string) {
		if value == "" {
			return
		}
		if strings.ContainsAny(value, ` '\`) {
			value = "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value) + "'"
		}
		parts = append(parts, key+"="+value)
	}

	add("host", c.Host)
	if c.Port != 0 {
		add("port", strconv.Itoa(c.Port))
	}
	add("user", c.User)
	add("password", c.Password)
	add("dbname", c.Database)
	add("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		add("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}
	add("application_name", ApplicationName)
	return strings.Join(parts, " ")
}

// Connect opens a pool for config and pings it.
func Connect(ctx context.Context, config *Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(config.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return open(ctx, poolConfig, *config)
}

// ConnectWithURL opens a pool for a postgres:// URL or keyword/value DSN and
// pings it. Pool sizes come from DefaultConfig.
func ConnectWithURL(ctx context.Context, url string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}

	defaults := DefaultConfig()
	return open(ctx, poolConfig, Config{
		Host:     poolConfig.ConnConfig.Host,
		Port:     int(poolConfig.ConnConfig.Port),
		Database: poolConfig.ConnConfig.Database,
		User:     poolConfig.ConnConfig.User,
		MaxConns: defaults.MaxConns,
		MinConns: defaults.MinConns,
	})
}

func open(ctx context.Context, poolConfig *pgxpool.Config, config Config) (*DB, error) {
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach %s:%d/%s: %w", config.Host, config.Port, config.Database, err)
	}

	config.Password = ""
	return &DB{pool: pool, config: config}, nil
}

// Pool returns the underlying pgxpool.Pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Config returns the settings the pool was opened with, without the password.
func (db *DB) Config() Config {
	return db.config
}

// Close closes every pooled connection.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the server answers.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Begin starts a transaction on a pooled connection.
func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Exec runs sql and returns the number of affected rows. Constraint
// violations come back classified.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := db.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, &QueryError{Query: sql, Err: Classify(err)}
	}
	return tag.RowsAffected(), nil
}

// Query runs sql and returns its rows. The caller closes them.
func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &QueryError{Query: sql, Err: err}
	}
	return rows, nil
}

// QueryRow runs sql expecting at most one row. Errors surface on Scan.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

// Package dialect names the supported database backends and defines the
// driver abstraction the generated models run on.
package dialect

import "context"

// Supported dialects.
const (
	// SQLite is the sqlite dialect (modernc.org/sqlite driver).
	SQLite = "sqlite"
	// MySQL is the mysql dialect.
	MySQL = "mysql"
	// Postgres is the postgres dialect (lib/pq driver).
	Postgres = "postgres"
)

// ExecQuerier wraps the two standard SQL operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the minimal interface a database handle exposes to generated
// code.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps transaction completion around the standard operations.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

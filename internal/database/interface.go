package database

import (
	"context"

	"github.com/koustreak/dbee/internal/coerce"
)

// Conn is the live handle a session owns. All layers above this package
// talk only to this interface; they never import the postgres or mysql
// packages directly, except to open one.
//
// A Conn is safe for concurrent use by multiple goroutines.
type Conn interface {
	Introspector

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close waits for in-flight work to finish and releases the pool.
	Close()

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string) (Rows, error)

	// Exec executes a statement and returns the number of rows affected.
	Exec(ctx context.Context, sql string) (int64, error)

	// Coercer returns the coercion rules for this engine's type names.
	Coercer() *coerce.Coercer
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Columns returns the column names of the result set.
	Columns() []string

	// Cells returns the current row's values in native form. The cells
	// own their data and stay valid after Next is called again.
	Cells() []coerce.Cell

	// Err returns any error encountered during iteration.
	Err() error

	// Close releases resources held by the result set.
	Close()
}

// Opener opens a Conn for a validated descriptor.
type Opener func(ctx context.Context, d *Descriptor, pool PoolConfig) (Conn, error)

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koustreak/dbee/internal/coerce"
	"github.com/koustreak/dbee/internal/database"
)

// Driver is a PostgreSQL implementation of database.Conn backed by pgxpool.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, d *database.Descriptor, cfg database.PoolConfig) (*Driver, error) {
	pool, err := buildPool(ctx, d, cfg)
	if err != nil {
		return nil, err
	}

	drv := &Driver{pool: pool}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.WithDefaults().ConnectTimeout)
	defer cancel()

	if err := drv.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return drv, nil
}

// Open is New with the database.Opener signature.
func Open(ctx context.Context, d *database.Descriptor, cfg database.PoolConfig) (database.Conn, error) {
	return New(ctx, d, cfg)
}

// --- database.Conn implementation ---

// Ping verifies the database is reachable by acquiring and releasing a connection.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return mapError(err, "failed to connect")
	}
	return nil
}

// Close waits for acquired connections to be released, then closes the pool.
func (d *Driver) Close() {
	d.pool.Close()
}

// Query executes a statement that returns rows.
func (d *Driver) Query(ctx context.Context, sql string) (database.Rows, error) {
	rows, err := d.pool.Query(ctx, sql)
	if err != nil {
		return nil, mapError(err, "query error")
	}
	return newRows(rows), nil
}

// Exec executes a statement and reports the rows it affected.
func (d *Driver) Exec(ctx context.Context, sql string) (int64, error) {
	tag, err := d.pool.Exec(ctx, sql)
	if err != nil {
		return 0, mapError(err, "query error")
	}
	return tag.RowsAffected(), nil
}

// Coercer returns the coercion rules for PostgreSQL type names.
func (d *Driver) Coercer() *coerce.Coercer {
	return coercer
}

package mysql

import (
	"context"
	"database/sql"

	"github.com/koustreak/dbee/internal/coerce"
	"github.com/koustreak/dbee/internal/database"
)

// Driver is a MySQL implementation of database.Conn backed by database/sql.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	db *sql.DB
}

// New opens a MySQL connection pool for the descriptor and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, d *database.Descriptor, cfg database.PoolConfig) (*Driver, error) {
	db, err := buildPool(d, cfg)
	if err != nil {
		return nil, err
	}

	drv := &Driver{db: db}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.WithDefaults().ConnectTimeout)
	defer cancel()

	if err := drv.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return drv, nil
}

// Open is New with the database.Opener signature.
func Open(ctx context.Context, d *database.Descriptor, cfg database.PoolConfig) (database.Conn, error) {
	return New(ctx, d, cfg)
}

// --- database.Conn implementation ---

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "failed to connect")
	}
	return nil
}

// Close stops new statements and waits for running ones to finish.
func (d *Driver) Close() {
	_ = d.db.Close()
}

func (d *Driver) Query(ctx context.Context, query string) (database.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, "query error")
	}
	return newRows(rows), nil
}

func (d *Driver) Exec(ctx context.Context, query string) (int64, error) {
	res, err := d.db.ExecContext(ctx, query)
	if err != nil {
		return 0, mapError(err, "query error")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(err, "failed to read affected rows")
	}
	return n, nil
}

func (d *Driver) Coercer() *coerce.Coercer {
	return coercer
}

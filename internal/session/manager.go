// Package session owns the process's single live database connection.
//
// A Manager holds at most one database.Conn together with the descriptor
// it was opened from. The pair is guarded by one mutex: connect and
// disconnect hold it across their network I/O, while queries and schema
// reads hold it only long enough to pick up the handle.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/koustreak/dbee/internal/database"
	"github.com/koustreak/dbee/internal/database/mysql"
	"github.com/koustreak/dbee/internal/database/postgres"
	"github.com/koustreak/dbee/internal/errs"
	"github.com/koustreak/dbee/internal/logger"
)

// Manager is the session state manager. The zero value is not usable;
// build one with NewManager.
type Manager struct {
	mu   sync.Mutex
	conn database.Conn
	desc *database.Descriptor

	open database.Opener
	pool database.PoolConfig
	log  *logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithOpener replaces the engine dispatch used to open connections.
func WithOpener(open database.Opener) Option {
	return func(m *Manager) { m.open = open }
}

// WithPoolConfig sets the pool settings applied to every connection.
func WithPoolConfig(cfg database.PoolConfig) Option {
	return func(m *Manager) { m.pool = cfg }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *logger.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager returns a Manager with no live connection.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		open: Open,
		pool: database.DefaultPoolConfig(),
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open dispatches to the driver package for the descriptor's engine.
func Open(ctx context.Context, d *database.Descriptor, pool database.PoolConfig) (database.Conn, error) {
	switch d.Engine() {
	case database.DriverPostgres:
		return postgres.Open(ctx, d, pool)
	case database.DriverMySQL:
		return mysql.Open(ctx, d, pool)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported driver %q", d.Driver))
	}
}

// Connect validates d, opens a connection and makes it the session's.
// On any failure the previous session, if there is one, stays in place.
// On success the previous connection is closed after the swap.
func (m *Manager) Connect(ctx context.Context, d database.Descriptor) (*database.Summary, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	log := m.connLogger(&d)

	m.mu.Lock()
	defer m.mu.Unlock()

	conn, err := m.open(ctx, &d, m.pool)
	if err != nil {
		log.ErrorWith("connect failed", err, nil)
		return nil, err
	}

	prev := m.conn
	m.conn, m.desc = conn, &d
	if prev != nil {
		prev.Close()
	}

	log.InfoWith("connected", map[string]any{"max_conns": m.pool.MaxConns})
	return m.summaryLocked(), nil
}

// Disconnect closes the live connection, waiting for in-flight work, and
// clears the session. Without a live connection it does nothing.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}

	log := m.connLogger(m.desc)
	m.conn.Close()
	m.conn, m.desc = nil, nil

	log.Info("disconnected")
	return nil
}

// Status returns the summary of the live connection, or nil when the
// session is not connected.
func (m *Manager) Status() *database.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaryLocked()
}

// Test opens a throwaway connection to d and closes it again. The session
// is never touched.
func (m *Manager) Test(ctx context.Context, d database.Descriptor) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}

	conn, err := m.open(ctx, &d, m.pool)
	if err != nil {
		m.connLogger(&d).With().Err(err).Logger().Debug("test connection failed")
		return false, err
	}
	conn.Close()
	return true, nil
}

// handle returns the live connection without holding the lock for the
// caller's subsequent work.
func (m *Manager) handle() (database.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil, errs.New(errs.ErrKindNotConnected, "not connected to a database")
	}
	return m.conn, nil
}

func (m *Manager) summaryLocked() *database.Summary {
	if m.conn == nil || m.desc == nil {
		return nil
	}
	return m.desc.Summary()
}

// connLogger never carries the credential.
func (m *Manager) connLogger(d *database.Descriptor) *logger.Logger {
	return m.log.With().
		Str("connection_id", d.ID).
		Str("driver", string(d.Engine())).
		Str("host", d.Host).
		Int("port", d.Port).
		Str("database", d.Database).
		Logger()
}

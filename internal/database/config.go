package database

import "time"

// PoolConfig holds the pool settings applied to every session connection.
// The session exposes one logical connection; the driver may still keep
// several physical sockets behind it.
type PoolConfig struct {
	MaxConns        int32         // maximum number of connections in the pool
	MinConns        int32         // minimum number of idle connections kept alive
	MaxConnLifetime time.Duration // maximum time a connection may be reused
	MaxConnIdleTime time.Duration // maximum time a connection may sit idle

	// ConnectTimeout bounds establishing a new connection. Statements
	// themselves run without a deadline.
	ConnectTimeout time.Duration
}

// DefaultPoolConfig returns settings sized for a single interactive user.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:        5,
		MinConns:        0,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// WithDefaults fills zero fields from DefaultPoolConfig.
func (c PoolConfig) WithDefaults() PoolConfig {
	def := DefaultPoolConfig()
	if c.MaxConns == 0 {
		c.MaxConns = def.MaxConns
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = def.MaxConnLifetime
	}
	if c.MaxConnIdleTime == 0 {
		c.MaxConnIdleTime = def.MaxConnIdleTime
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	return c
}

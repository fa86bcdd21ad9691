package database

import (
	"fmt"

	"github.com/koustreak/dbee/internal/errs"
)

// Driver identifies the database engine.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Descriptor identifies and authenticates one database target.
// It is created by the caller and never mutated once a session holds it.
type Descriptor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Driver   Driver `json:"driver,omitempty"` // empty means DriverPostgres
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode,omitempty"`
}

// Engine returns the descriptor's driver, defaulting to Postgres.
func (d *Descriptor) Engine() Driver {
	if d.Driver == "" {
		return DriverPostgres
	}
	return d.Driver
}

// Validate checks the descriptor locally. It never touches the network.
func (d *Descriptor) Validate() error {
	switch {
	case d.Host == "":
		return errs.New(errs.ErrKindInvalidInput, "host cannot be empty")
	case d.Port < 1 || d.Port > 65535:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("invalid port number %d", d.Port))
	case d.User == "":
		return errs.New(errs.ErrKindInvalidInput, "user cannot be empty")
	case d.Database == "":
		return errs.New(errs.ErrKindInvalidInput, "database name cannot be empty")
	}

	switch d.Engine() {
	case DriverPostgres, DriverMySQL:
		return nil
	default:
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported driver %q", d.Driver))
	}
}

// Summary is the public view of a live connection. It never carries
// credentials.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Driver      Driver `json:"driver"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Database    string `json:"database"`
	IsConnected bool   `json:"isConnected"`
}

// Summary returns the credential-free view of d as a connected target.
func (d *Descriptor) Summary() *Summary {
	return &Summary{
		ID:          d.ID,
		Name:        d.Name,
		Driver:      d.Engine(),
		Host:        d.Host,
		Port:        d.Port,
		Database:    d.Database,
		IsConnected: true,
	}
}

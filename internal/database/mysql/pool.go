package mysql

import (
	"database/sql"
	"net"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/dbee/internal/database"
	"github.com/koustreak/dbee/internal/errs"
)

// buildPool configures and returns a *sql.DB with pool settings.
// No connection is made until the first use.
func buildPool(d *database.Descriptor, cfg database.PoolConfig) (*sql.DB, error) {
	cfg = cfg.WithDefaults()

	connector, err := gomysql.NewConnector(buildConfig(d, cfg.ConnectTimeout))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid mysql connection settings", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(max(cfg.MinConns, 1)))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	return db, nil
}

// buildConfig maps a descriptor onto the driver's config. Credentials are
// carried as fields, so no escaping is needed.
func buildConfig(d *database.Descriptor, timeout time.Duration) *gomysql.Config {
	c := gomysql.NewConfig()
	c.User = d.User
	c.Passwd = d.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	c.DBName = d.Database
	c.ParseTime = true
	c.Loc = time.UTC
	c.Timeout = timeout
	if tls := tlsMode(d.SSLMode); tls != "" {
		c.TLSConfig = tls
	}
	return c
}

// tlsMode translates libpq-style sslmode values into the driver's tls
// parameter so one descriptor field serves both engines.
func tlsMode(sslMode string) string {
	switch sslMode {
	case "disable":
		return "false"
	case "prefer", "allow":
		return "preferred"
	case "require":
		return "skip-verify"
	case "verify-ca", "verify-full":
		return "true"
	default:
		return ""
	}
}

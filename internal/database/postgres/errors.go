package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/dbee/internal/errs"
)

// SQLSTATE classes and codes that mean the session itself is unusable.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnection   = "08"
	pgClassInvalidAuth  = "28"
	pgClassInsufficient = "53"
	pgAdminShutdown     = "57P01"
	pgCannotConnectNow  = "57P03"
	pgInvalidCatalog    = "3D000"
	pgInsufficientPriv  = "42501"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classify(pgErr.Code), fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth handshake)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classify maps a SQLSTATE to an ErrKind.
func classify(code string) errs.ErrKind {
	if len(code) >= 2 {
		switch code[:2] {
		case pgClassConnection, pgClassInvalidAuth, pgClassInsufficient:
			return errs.ErrKindConnectionFailed
		}
	}
	switch code {
	case pgAdminShutdown, pgCannotConnectNow, pgInvalidCatalog:
		return errs.ErrKindConnectionFailed
	case pgInsufficientPriv:
		return errs.ErrKindPermissionDenied
	}
	return errs.ErrKindQueryFailed
}

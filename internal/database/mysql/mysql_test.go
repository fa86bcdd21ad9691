package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/dbee/internal/coerce"
	"github.com/koustreak/dbee/internal/database"
	"github.com/koustreak/dbee/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConfig(t *testing.T) {
	d := database.Descriptor{
		Driver:   database.DriverMySQL,
		Host:     "db.internal",
		Port:     3307,
		User:     "app:ro",
		Password: "p@ss/w:rd",
		Database: "shop",
	}

	c := buildConfig(&d, 3*time.Second)
	assert.Equal(t, "app:ro", c.User)
	assert.Equal(t, "p@ss/w:rd", c.Passwd)
	assert.Equal(t, "tcp", c.Net)
	assert.Equal(t, "db.internal:3307", c.Addr)
	assert.Equal(t, "shop", c.DBName)
	assert.True(t, c.ParseTime)
	assert.Equal(t, time.UTC, c.Loc)
	assert.Equal(t, 3*time.Second, c.Timeout)
}

func TestBuildConfig_FormatsAndParsesBack(t *testing.T) {
	d := database.Descriptor{Host: "::1", Port: 3306, User: "u", Password: "a@b:c", Database: "d"}

	dsn := buildConfig(&d, time.Second).FormatDSN()
	parsed, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "[::1]:3306", parsed.Addr)
	assert.Equal(t, "a@b:c", parsed.Passwd)
	assert.Equal(t, "d", parsed.DBName)
}

func TestTLSMode(t *testing.T) {
	tests := []struct {
		sslMode string
		want    string
	}{
		{"", ""},
		{"disable", "false"},
		{"allow", "preferred"},
		{"prefer", "preferred"},
		{"require", "skip-verify"},
		{"verify-ca", "true"},
		{"verify-full", "true"},
		{"bogus", ""},
	}

	for _, tt := range tests {
		t.Run(tt.sslMode, func(t *testing.T) {
			assert.Equal(t, tt.want, tlsMode(tt.sslMode))
		})
	}
}

func TestBuildPool_DoesNotDial(t *testing.T) {
	d := database.Descriptor{Host: "127.0.0.1", Port: 1, User: "u", Database: "d"}

	db, err := buildPool(&d, database.PoolConfig{})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, int(database.DefaultPoolConfig().MaxConns), db.Stats().MaxOpenConnections)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.ErrKind
	}{
		{"syntax error", &gomysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"}, errs.ErrKindQueryFailed},
		{"duplicate entry", &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, errs.ErrKindQueryFailed},
		{"access denied", &gomysql.MySQLError{Number: 1045}, errs.ErrKindConnectionFailed},
		{"unknown database", &gomysql.MySQLError{Number: 1049}, errs.ErrKindConnectionFailed},
		{"too many connections", &gomysql.MySQLError{Number: 1040}, errs.ErrKindConnectionFailed},
		{"table access denied", &gomysql.MySQLError{Number: 1142}, errs.ErrKindPermissionDenied},
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), errs.ErrKindTimeout},
		{"no rows", sql.ErrNoRows, errs.ErrKindNotFound},
		{"bad connection", gomysql.ErrInvalidConn, errs.ErrKindConnectionFailed},
		{"network", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "query error")
			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, mapError(nil, "query error"))
}

func TestMapError_CarriesEngineMessage(t *testing.T) {
	err := mapError(&gomysql.MySQLError{Number: 1146, Message: "Table 'shop.nope' doesn't exist"}, "query error")
	assert.Equal(t, "query error: Table 'shop.nope' doesn't exist", err.Message)
}

// The driver hands back []byte for text-protocol values, int64/float64 for
// some binary-protocol values, and time.Time for DATE/DATETIME when
// parseTime is on.
func TestCoerce_DriverValues(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 120000000, time.UTC)

	tests := []struct {
		typeName string
		src      any
		want     coerce.Value
	}{
		{"INT", []byte("42"), int64(42)},
		{"BIGINT", int64(-9000000000), int64(-9000000000)},
		{"TINYINT", []byte("1"), int64(1)},
		{"YEAR", []byte("2024"), int64(2024)},
		{"DOUBLE", []byte("2.5"), 2.5},
		{"DECIMAL", []byte("12.50"), 12.5},
		{"FLOAT", float64(0.25), 0.25},
		{"VARCHAR", []byte("héllo"), "héllo"},
		{"ENUM", []byte("small"), "small"},
		{"BLOB", []byte{0, 1, 2, 3}, "<BLOB 4 bytes>"},
		{"VARBINARY", []byte{}, "<BLOB 0 bytes>"},
		{"JSON", []byte(`{"a":[1,2]}`), json.RawMessage(`{"a":[1,2]}`)},
		{"DATETIME", ts, "2024-03-09 14:05:07.12"},
		{"TIMESTAMP", ts, "2024-03-09 14:05:07.12"},
		{"DATE", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "2024-03-09"},
		{"TIME", []byte("08:30:00"), "08:30:00"},
		{"TIME", []byte("08:30:00.250000"), "08:30:00.25"},
		{"UNSIGNED BIGINT", []byte("18446744073709551615"), "18446744073709551615"},
		{"INT", nil, nil},
		{"JSON", nil, nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.typeName, tt.src), func(t *testing.T) {
			got := coercer.Coerce(&cell{typeName: tt.typeName, src: tt.src})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_OutOfRangeTimeFallsBackToText(t *testing.T) {
	got := coercer.Coerce(&cell{typeName: "TIME", src: []byte("-838:59:59")})
	assert.Equal(t, "-838:59:59", got)
}

func TestCell_ScanNull(t *testing.T) {
	var s string
	err := (&cell{typeName: "VARCHAR"}).Scan(&s)
	assert.ErrorIs(t, err, coerce.ErrNull)
}

func TestCell_ScanUnsupported(t *testing.T) {
	var m map[string]any
	err := (&cell{typeName: "JSON", src: []byte("{}")}).Scan(&m)
	assert.Error(t, err)
}

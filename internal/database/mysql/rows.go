package mysql

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/koustreak/dbee/internal/coerce"
)

// Type names as reported by ColumnType.DatabaseTypeName. UNSIGNED BIGINT
// is left to the generic chain so values above MaxInt64 survive as text.
var coercer = coerce.New(coerce.Vocabulary{
	"TINYINT":            coerce.FamilyInteger,
	"SMALLINT":           coerce.FamilyInteger,
	"MEDIUMINT":          coerce.FamilyInteger,
	"INT":                coerce.FamilyInteger,
	"BIGINT":             coerce.FamilyInteger,
	"UNSIGNED TINYINT":   coerce.FamilyInteger,
	"UNSIGNED SMALLINT":  coerce.FamilyInteger,
	"UNSIGNED MEDIUMINT": coerce.FamilyInteger,
	"UNSIGNED INT":       coerce.FamilyInteger,
	"YEAR":               coerce.FamilyInteger,
	"FLOAT":              coerce.FamilyFloat,
	"DOUBLE":             coerce.FamilyFloat,
	"DECIMAL":            coerce.FamilyFloat,
	"CHAR":               coerce.FamilyText,
	"VARCHAR":            coerce.FamilyText,
	"TINYTEXT":           coerce.FamilyText,
	"TEXT":               coerce.FamilyText,
	"MEDIUMTEXT":         coerce.FamilyText,
	"LONGTEXT":           coerce.FamilyText,
	"ENUM":               coerce.FamilyText,
	"SET":                coerce.FamilyText,
	"BINARY":             coerce.FamilyBinary,
	"VARBINARY":          coerce.FamilyBinary,
	"TINYBLOB":           coerce.FamilyBinary,
	"BLOB":               coerce.FamilyBinary,
	"MEDIUMBLOB":         coerce.FamilyBinary,
	"LONGBLOB":           coerce.FamilyBinary,
	"BIT":                coerce.FamilyBinary,
	"GEOMETRY":           coerce.FamilyBinary,
	"JSON":               coerce.FamilyJSON,
	"DATETIME":           coerce.FamilyTimestamp,
	"TIMESTAMP":          coerce.FamilyTimestamp,
	"DATE":               coerce.FamilyDate,
	"TIME":               coerce.FamilyTime,
})

// sqlRows wraps *sql.Rows to satisfy database.Rows.
type sqlRows struct {
	rows    *sql.Rows
	columns []string
	types   []string
	err     error
}

func newRows(rows *sql.Rows) *sqlRows {
	return &sqlRows{rows: rows}
}

func (r *sqlRows) Next() bool {
	if r.err != nil {
		return false
	}
	return r.rows.Next()
}

func (r *sqlRows) Close() { _ = r.rows.Close() }

func (r *sqlRows) Err() error {
	if r.err != nil {
		return mapError(r.err, "query error")
	}
	if err := r.rows.Err(); err != nil {
		return mapError(err, "query error")
	}
	return nil
}

func (r *sqlRows) Columns() []string {
	r.describe()
	return r.columns
}

// Cells scans the current row. database/sql copies []byte values into *any
// destinations, so the cells own their data.
func (r *sqlRows) Cells() []coerce.Cell {
	r.describe()

	values := make([]any, len(r.columns))
	ptrs := make([]any, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = err
		return nil
	}

	cells := make([]coerce.Cell, len(values))
	for i, v := range values {
		cells[i] = &cell{typeName: r.types[i], src: v}
	}
	return cells
}

func (r *sqlRows) describe() {
	if r.columns != nil {
		return
	}
	cols, err := r.rows.ColumnTypes()
	if err != nil {
		r.err = err
		r.columns, r.types = []string{}, []string{}
		return
	}
	r.columns = make([]string, len(cols))
	r.types = make([]string, len(cols))
	for i, c := range cols {
		r.columns[i] = c.Name()
		r.types[i] = c.DatabaseTypeName()
	}
}

// cell is one column value as returned by the driver: nil, []byte,
// int64, float64 or time.Time.
type cell struct {
	typeName string
	src      any
}

func (c *cell) TypeName() string { return c.typeName }

func (c *cell) Scan(dst any) error {
	if c.src == nil {
		return coerce.ErrNull
	}

	switch d := dst.(type) {
	case *int64:
		return assign(c.src, d)
	case *int32:
		return assign(c.src, d)
	case *int16:
		return assign(c.src, d)
	case *float64:
		return assign(c.src, d)
	case *float32:
		return assign(c.src, d)
	case *bool:
		return assign(c.src, d)
	case *string:
		return assign(c.src, d)
	case *[]byte:
		return assign(c.src, d)
	case *time.Time:
		return assign(c.src, d)
	case *coerce.LocalTimestamp:
		return assign(c.src, &d.Time)
	case *coerce.TimeOfDay:
		var s string
		if err := assign(c.src, &s); err != nil {
			return err
		}
		return parseClock(s, d)
	case *json.RawMessage:
		var b []byte
		if err := assign(c.src, &b); err != nil {
			return err
		}
		if !json.Valid(b) {
			return errors.New("invalid JSON document")
		}
		*d = b
	case *uuid.UUID:
		var s string
		if err := assign(c.src, &s); err != nil {
			return err
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return err
		}
		*d = u
	default:
		return fmt.Errorf("unsupported scan destination %T", dst)
	}
	return nil
}

// assign converts src into *dst with database/sql's own conversion rules.
func assign[T any](src any, dst *T) error {
	var n sql.Null[T]
	if err := n.Scan(src); err != nil {
		return err
	}
	if !n.Valid {
		return coerce.ErrNull
	}
	*dst = n.V
	return nil
}

// parseClock reads a TIME value. Negative values and values past 24h are
// valid MySQL intervals but not times of day, so they are rejected.
func parseClock(s string, dst *coerce.TimeOfDay) error {
	if strings.HasPrefix(s, "-") {
		return fmt.Errorf("time %q is not a time of day", s)
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return err
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	*dst = coerce.TimeOfDay(t.Sub(midnight))
	return nil
}

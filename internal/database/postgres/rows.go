package postgres

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/koustreak/dbee/internal/coerce"
)

var coercer = coerce.New(coerce.Vocabulary{
	"int2":        coerce.FamilyInteger,
	"int4":        coerce.FamilyInteger,
	"int8":        coerce.FamilyInteger,
	"smallserial": coerce.FamilyInteger,
	"serial":      coerce.FamilyInteger,
	"bigserial":   coerce.FamilyInteger,
	"float4":      coerce.FamilyFloat,
	"float8":      coerce.FamilyFloat,
	"numeric":     coerce.FamilyFloat,
	"bool":        coerce.FamilyBool,
	"text":        coerce.FamilyText,
	"varchar":     coerce.FamilyText,
	"char":        coerce.FamilyText,
	"bpchar":      coerce.FamilyText,
	"name":        coerce.FamilyText,
	"bytea":       coerce.FamilyBinary,
	"json":        coerce.FamilyJSON,
	"jsonb":       coerce.FamilyJSON,
	"uuid":        coerce.FamilyUUID,
	"timestamp":   coerce.FamilyTimestamp,
	"timestamptz": coerce.FamilyTimestamp,
	"date":        coerce.FamilyDate,
	"time":        coerce.FamilyTime,
	"timetz":      coerce.FamilyTime,
})

var errInfinite = errors.New("infinite value has no finite representation")

// pgxRows wraps pgx.Rows to satisfy database.Rows.
//
// Cells are decoded with a type map private to this result set: the
// connection's own map is not safe to share once the connection goes back
// to the pool.
type pgxRows struct {
	rows    pgx.Rows
	typeMap *pgtype.Map
	columns []string
	types   []string
}

func newRows(rows pgx.Rows) *pgxRows {
	return &pgxRows{rows: rows, typeMap: pgtype.NewMap()}
}

func (r *pgxRows) Next() bool { return r.rows.Next() }
func (r *pgxRows) Close()     { r.rows.Close() }

func (r *pgxRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return mapError(err, "query error")
	}
	return nil
}

func (r *pgxRows) Columns() []string {
	r.describe()
	return r.columns
}

func (r *pgxRows) Cells() []coerce.Cell {
	r.describe()
	fields := r.rows.FieldDescriptions()
	raw := r.rows.RawValues()

	cells := make([]coerce.Cell, len(raw))
	for i, v := range raw {
		cells[i] = &cell{
			typeMap:  r.typeMap,
			oid:      fields[i].DataTypeOID,
			format:   fields[i].Format,
			typeName: r.types[i],
			raw:      bytes.Clone(v), // RawValues is reused by the next call to Next
		}
	}
	return cells
}

func (r *pgxRows) describe() {
	if r.columns != nil {
		return
	}
	fields := r.rows.FieldDescriptions()
	r.columns = make([]string, len(fields))
	r.types = make([]string, len(fields))
	for i, f := range fields {
		r.columns[i] = f.Name
		r.types[i] = typeName(r.typeMap, f.DataTypeOID)
	}
}

// typeName reports the registered name for oid, or "oid:N" when the type
// is not known to pgx (enums, domains, extension types).
func typeName(m *pgtype.Map, oid uint32) string {
	if t, ok := m.TypeForOID(oid); ok {
		return t.Name
	}
	return "oid:" + strconv.FormatUint(uint64(oid), 10)
}

// cell is one raw column value. raw is nil for SQL NULL.
type cell struct {
	typeMap  *pgtype.Map
	oid      uint32
	format   int16
	typeName string
	raw      []byte
}

func (c *cell) TypeName() string { return c.typeName }

func (c *cell) Scan(dst any) error {
	if c.raw == nil {
		return coerce.ErrNull
	}

	switch d := dst.(type) {
	case *coerce.LocalTimestamp:
		var ts pgtype.Timestamp
		if err := c.scan(&ts); err != nil {
			return err
		}
		if ts.InfinityModifier != pgtype.Finite {
			return errInfinite
		}
		d.Time = ts.Time
	case *coerce.TimeOfDay:
		var t pgtype.Time
		if err := c.scan(&t); err != nil {
			return err
		}
		*d = coerce.TimeOfDay(time.Duration(t.Microseconds) * time.Microsecond)
	case *uuid.UUID:
		var u pgtype.UUID
		if err := c.scan(&u); err != nil {
			return err
		}
		*d = u.Bytes
	case *json.RawMessage:
		var b []byte
		if err := c.scan(&b); err != nil {
			return err
		}
		*d = b
	case *string:
		err := c.scan(d)
		if err == nil {
			return nil
		}
		s, ok := c.text()
		if !ok {
			return err
		}
		*d = s
	default:
		return c.scan(dst)
	}
	return nil
}

// text renders a binary value of a type pgx knows in the engine's text
// form, so types without a family still read as something other than null.
func (c *cell) text() (string, bool) {
	if c.format != pgtype.BinaryFormatCode {
		return "", false
	}
	if _, ok := c.typeMap.TypeForOID(c.oid); !ok {
		return "", false
	}

	var v any
	if err := c.scan(&v); err != nil {
		return "", false
	}
	buf, err := c.typeMap.Encode(c.oid, pgtype.TextFormatCode, v, nil)
	if err != nil {
		return fmt.Sprint(v), true
	}
	return string(buf), true
}

func (c *cell) scan(dst any) error {
	return c.typeMap.Scan(c.oid, c.format, c.raw, dst)
}

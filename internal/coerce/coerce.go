// Package coerce converts driver-native column values into the JSON-like
// values handed to the presentation layer.
//
// Every column type reported by a driver is mapped, by exact name, to a
// Family. Each family is an ordered chain of decode attempts; the first
// attempt that decodes wins and an exhausted chain yields nil. A single
// uncoercible cell never fails the surrounding query.
//
// The values produced are limited to nil, bool, int64, float64 (always
// finite), string and json.RawMessage, so encoding/json can marshal any
// row without error.
package coerce

import (
	"errors"
	"fmt"
	"time"
)

// Value is a coerced cell value.
type Value = any

// ErrNull is returned by Cell.Scan when the native value is SQL NULL.
var ErrNull = errors.New("coerce: value is NULL")

// Cell is one column value of one row, still in its driver-native form.
type Cell interface {
	// TypeName is the type name the engine reported for the column.
	TypeName() string

	// Scan decodes the native value into dst. It fails when the value
	// cannot be represented by dst's type, including when it is NULL.
	//
	// Drivers must understand at least: *int64, *int32, *int16, *float64,
	// *float32, *bool, *string, *[]byte, *json.RawMessage, *uuid.UUID,
	// *time.Time, *LocalTimestamp and *TimeOfDay.
	Scan(dst any) error
}

// LocalTimestamp is a timestamp decoded without any time zone. Only its
// wall-clock fields are meaningful.
type LocalTimestamp struct {
	time.Time
}

// TimeOfDay is a wall-clock time, stored as the offset from midnight.
type TimeOfDay time.Duration

// String renders t as HH:MM:SS with fractional seconds when present.
// PostgreSQL admits 24:00:00 as a time of day; hours past 23 are written
// out rather than wrapped to the next day.
func (t TimeOfDay) String() string {
	d := time.Duration(t)
	if d >= 24*time.Hour {
		rest := time.Time{}.Add(d % time.Hour).Format("04:05.999999999")
		return fmt.Sprintf("%02d:%s", int64(d/time.Hour), rest)
	}
	return time.Time{}.Add(d).Format("15:04:05.999999999")
}

// Vocabulary maps an engine's reported type names onto families.
type Vocabulary map[string]Family

// Coercer applies a driver's vocabulary to cells.
// It is immutable and safe for concurrent use.
type Coercer struct {
	vocab Vocabulary
}

// New returns a Coercer for the given vocabulary. Names are matched
// exactly and case-sensitively; unknown names fall into FamilyGeneric.
func New(vocab Vocabulary) *Coercer {
	v := make(Vocabulary, len(vocab))
	for name, f := range vocab {
		v[name] = f
	}
	return &Coercer{vocab: v}
}

// Family reports which family typeName dispatches to.
func (c *Coercer) Family(typeName string) Family {
	if f, ok := c.vocab[typeName]; ok {
		return f
	}
	return FamilyGeneric
}

// Coerce converts one cell. It never fails; undecodable cells become nil.
func (c *Coercer) Coerce(cell Cell) Value {
	for _, try := range chains[c.Family(cell.TypeName())] {
		if v, ok := try(cell); ok {
			return v
		}
	}
	return nil
}

// Row converts a whole row, preserving column order.
func (c *Coercer) Row(cells []Cell) []Value {
	out := make([]Value, len(cells))
	for i, cell := range cells {
		out[i] = c.Coerce(cell)
	}
	return out
}

package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Family groups column types that share a decode chain.
type Family int

const (
	FamilyGeneric Family = iota
	FamilyInteger
	FamilyFloat
	FamilyBool
	FamilyText
	FamilyBinary
	FamilyJSON
	FamilyUUID
	FamilyTimestamp
	FamilyDate
	FamilyTime
)

func (f Family) String() string {
	switch f {
	case FamilyInteger:
		return "integer"
	case FamilyFloat:
		return "float"
	case FamilyBool:
		return "bool"
	case FamilyText:
		return "text"
	case FamilyBinary:
		return "binary"
	case FamilyJSON:
		return "json"
	case FamilyUUID:
		return "uuid"
	case FamilyTimestamp:
		return "timestamp"
	case FamilyDate:
		return "date"
	case FamilyTime:
		return "time"
	default:
		return "generic"
	}
}

const (
	timestampLayout = "2006-01-02 15:04:05.999999999"
	dateLayout      = "2006-01-02"
)

// attempt is one fallible decode. ok reports whether the cell decoded; a
// decoded value that has no JSON form is returned as (nil, true) and ends
// the chain.
type attempt func(c Cell) (v Value, ok bool)

var chains = map[Family][]attempt{
	FamilyInteger:   {asInt[int64], asInt[int32], asInt[int16]},
	FamilyFloat:     {asFloat[float64], asFloat[float32]},
	FamilyBool:      {as[bool]},
	FamilyText:      {as[string]},
	FamilyBinary:    {blob},
	FamilyJSON:      {rawJSON},
	FamilyUUID:      {uuidString},
	FamilyTimestamp: {localTimestamp, zonedTimestamp, as[string]},
	FamilyDate:      {date, as[string]},
	FamilyTime:      {timeOfDay, as[string]},
	FamilyGeneric:   {as[string], asInt[int64], asFloat[float64], as[bool]},
}

func scan[T any](c Cell) (T, bool) {
	var v T
	if err := c.Scan(&v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

func as[T bool | string](c Cell) (Value, bool) {
	v, ok := scan[T](c)
	if !ok {
		return nil, false
	}
	return v, true
}

func asInt[T int16 | int32 | int64](c Cell) (Value, bool) {
	v, ok := scan[T](c)
	if !ok {
		return nil, false
	}
	return int64(v), true
}

func asFloat[T float32 | float64](c Cell) (Value, bool) {
	v, ok := scan[T](c)
	if !ok {
		return nil, false
	}
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, true
	}
	return f, true
}

func blob(c Cell) (Value, bool) {
	b, ok := scan[[]byte](c)
	if !ok {
		return nil, false
	}
	return fmt.Sprintf("<BLOB %d bytes>", len(b)), true
}

func rawJSON(c Cell) (Value, bool) {
	raw, ok := scan[json.RawMessage](c)
	if !ok || !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}

func uuidString(c Cell) (Value, bool) {
	u, ok := scan[uuid.UUID](c)
	if !ok {
		return nil, false
	}
	return u.String(), true
}

func localTimestamp(c Cell) (Value, bool) {
	ts, ok := scan[LocalTimestamp](c)
	if !ok {
		return nil, false
	}
	return ts.Format(timestampLayout), true
}

// zonedTimestamp renders in UTC with the same layout as localTimestamp, so
// a value reads the same whichever branch decoded it.
func zonedTimestamp(c Cell) (Value, bool) {
	t, ok := scan[time.Time](c)
	if !ok {
		return nil, false
	}
	return t.UTC().Format(timestampLayout), true
}

func date(c Cell) (Value, bool) {
	t, ok := scan[time.Time](c)
	if !ok {
		return nil, false
	}
	return t.Format(dateLayout), true
}

func timeOfDay(c Cell) (Value, bool) {
	t, ok := scan[TimeOfDay](c)
	if !ok {
		return nil, false
	}
	return t.String(), true
}

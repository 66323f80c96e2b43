package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindText
	KindNumber
)

// Value is a single record field: text, number, or absent.
// The zero Value is Absent.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Absent is the value of a field a record does not carry.
var Absent = Value{}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value. NaN is stored as Absent.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Absent
	}
	return Value{kind: KindNumber, num: f}
}

// ValueOf converts a loosely typed value (decoded JSON, database driver
// output) into a Value. Timestamps become epoch seconds.
func ValueOf(v any) Value {
	switch val := v.(type) {
	case nil:
		return Absent
	case Value:
		return val
	case string:
		return Text(val)
	case []byte:
		return Text(string(val))
	case float64:
		return Number(val)
	case float32:
		return Number(float64(val))
	case int:
		return Number(float64(val))
	case int8:
		return Number(float64(val))
	case int16:
		return Number(float64(val))
	case int32:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case uint:
		return Number(float64(val))
	case uint8:
		return Number(float64(val))
	case uint16:
		return Number(float64(val))
	case uint32:
		return Number(float64(val))
	case uint64:
		return Number(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Text(val.String())
		}
		return Number(f)
	case bool:
		if val {
			return Text("true")
		}
		return Text("false")
	case time.Time:
		if val.IsZero() {
			return Absent
		}
		return Number(float64(val.Unix()))
	case fmt.Stringer:
		return Text(val.String())
	default:
		return Text(fmt.Sprintf("%v", v))
	}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v carries no data.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// String returns the display form: the text itself, the shortest decimal
// form of a number, or "" when absent.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns v as a number. Text is coerced by parsing its trimmed form;
// ok is false for absent or non-numeric values.
func (v Value) Float() (f float64, ok bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MarshalJSON encodes text as a string, numbers as numbers and Absent as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		if math.IsInf(v.num, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// Record is one row of input data keyed by field key.
type Record map[string]Value

// Get returns the value at key, or Absent.
func (r Record) Get(key string) Value {
	return r[key]
}

// Row is a record together with its position in the input collection.
type Row struct {
	Index  int
	Record Record
}

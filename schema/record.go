package schema

import (
	"encoding/json"
	"strconv"
)

// InputRecord is a flat mapping from field name to a scalar value
// (number, string, bool or nil). It is read-only during evaluation.
type InputRecord map[string]any

// ValueKind tells what a resolved Value holds.
type ValueKind int

// All value kinds.
const (
	KindMissing ValueKind = iota
	KindNumber
	KindText
)

// Value is a resolved, typed variable value.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// NotFound is the sentinel returned when a variable cannot be resolved.
var NotFound = Value{Kind: KindMissing}

// NumberValue wraps a float.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// TextValue wraps a string.
func TextValue(s string) Value { return Value{Kind: KindText, Str: s} }

// Missing reports whether the value was not found.
func (v Value) Missing() bool { return v.Kind == KindMissing }

// String renders the value for reason codes and tables.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Str
	default:
		return "<missing>"
	}
}

// MarshalJSON renders missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindText:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		*v = NumberValue(t)
	case string:
		*v = TextValue(t)
	default:
		*v = NotFound
	}
	return nil
}

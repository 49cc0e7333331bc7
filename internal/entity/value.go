package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type presence uint8

const (
	absent presence = iota
	null
	present
)

// Value is an optional record field. The zero Value is absent, which is
// distinct from a field the model reported as null.
type Value struct {
	state presence
	v     any
}

// Absent returns a Value for a key the payload did not carry.
func Absent() Value { return Value{} }

// Null returns a Value for a key explicitly set to null.
func Null() Value { return Value{state: null} }

// Of wraps v. A nil v yields Null.
func Of(v any) Value {
	if v == nil {
		return Null()
	}
	return Value{state: present, v: v}
}

// ValueFrom looks key up in a decoded JSON object.
func ValueFrom(m map[string]any, key string) Value {
	v, ok := m[key]
	if !ok {
		return Absent()
	}
	return Of(v)
}

func (v Value) IsAbsent() bool  { return v.state == absent }
func (v Value) IsNull() bool    { return v.state == null }
func (v Value) IsPresent() bool { return v.state == present }

// Raw returns the wrapped value, nil unless present.
func (v Value) Raw() any {
	if v.state != present {
		return nil
	}
	return v.v
}

// Text renders the value for display. Absent and null render as "".
func (v Value) Text() string {
	if v.state != present {
		return ""
	}
	switch x := v.v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Float reports the value as a float64 when it holds a number.
func (v Value) Float() (float64, bool) {
	if v.state != present {
		return 0, false
	}
	switch x := v.v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

func (v Value) GoString() string {
	switch v.state {
	case absent:
		return "<absent>"
	case null:
		return "<null>"
	default:
		return fmt.Sprintf("%#v", v.v)
	}
}

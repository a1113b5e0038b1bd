package apistore

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Kind identifies which scalar a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a stored scalar: a string, a number, a boolean or Null. The zero
// Value is Null, which is what storages return when nothing is stored.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Null returns the value used for "nothing stored".
func Null() Value {
	return Value{}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v holds no value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// String returns the text form of v as it is written to text based
// storages. Numbers use the shortest decimal representation, booleans are
// "true" or "false" and Null is the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Float64 returns the number held by v. A string Value is parsed, which is
// how numbers come back from text based storages.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(v.str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool returns the boolean held by v. A string Value is parsed with
// strconv.ParseBool.
func (v Value) Bool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindString:
		b, err := strconv.ParseBool(v.str)
		return b, err == nil
	default:
		return false, false
	}
}

// ErrNotScalar is returned when decoding a JSON object or array into a Value.
var ErrNotScalar = errors.New("value is not a scalar")

// MarshalJSON encodes v as a JSON null, string, number or boolean.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(t)
	case float64:
		*v = Number(t)
	case bool:
		*v = Bool(t)
	default:
		return errors.Wrapf(ErrNotScalar, "cannot decode %s", string(data))
	}
	return nil
}

package form

import (
	"encoding/json"
	"strconv"
)

// Kind tags the content of a Value.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindBool
	KindNumber
)

// Value is a primitive extracted value. The zero Value is "absent".
type Value struct {
	Kind Kind
	Str  string
	Flag bool
	Num  float64
}

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Flag: b} }
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// IsZero reports whether the value is absent or empty.
func (v Value) IsZero() bool {
	switch v.Kind {
	case KindString:
		return v.Str == ""
	case KindBool:
		return !v.Flag
	case KindNumber:
		return v.Num == 0
	}
	return true
}

// Checked reports the boolean reading of the value. Strings are checked when
// they are "true", "oui" or "1".
func (v Value) Checked() bool {
	switch v.Kind {
	case KindBool:
		return v.Flag
	case KindNumber:
		return v.Num != 0
	case KindString:
		switch v.Str {
		case "true", "oui", "Oui", "1", "yes":
			return true
		}
	}
	return false
}

// Text is the flat rendering of the value.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindBool:
		if v.Flag {
			return "Oui"
		}
		return "Non"
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindBool:
		return json.Marshal(v.Flag)
	case KindNumber:
		return json.Marshal(v.Num)
	}
	return []byte("null"), nil
}

// Data maps field IDs to extracted values.
type Data map[string]Value

// Get returns the value for id, the zero Value when missing.
func (d Data) Get(id string) Value {
	return d[id]
}

package value

import (
	"math"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// AppendJSON appends the JSON encoding of v to dst. Records keep their
// column order; Binary is base64 encoded; non-finite floats become null.
func AppendJSON(dst []byte, v Value) ([]byte, error) {
	switch t := v.(type) {
	case nil, Null:
		return append(dst, "null"...), nil
	case Bool:
		return strconv.AppendBool(dst, bool(t)), nil
	case Int:
		return strconv.AppendInt(dst, int64(t), 10), nil
	case Float:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return append(dst, "null"...), nil
		}
		return strconv.AppendFloat(dst, f, 'g', -1, 64), nil
	case String:
		b, err := gojson.Marshal(string(t))
		if err != nil {
			return dst, err
		}
		return append(dst, b...), nil
	case Binary:
		b, err := gojson.Marshal([]byte(t))
		if err != nil {
			return dst, err
		}
		return append(dst, b...), nil
	case List:
		dst = append(dst, '[')
		for i, e := range t {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = AppendJSON(dst, e); err != nil {
				return dst, err
			}
		}
		return append(dst, ']'), nil
	case *Record:
		dst = append(dst, '{')
		for i := 0; i < t.Len(); i++ {
			if i > 0 {
				dst = append(dst, ',')
			}
			name, val := t.At(i)
			key, err := gojson.Marshal(name)
			if err != nil {
				return dst, err
			}
			dst = append(dst, key...)
			dst = append(dst, ':')
			if dst, err = AppendJSON(dst, val); err != nil {
				return dst, err
			}
		}
		return append(dst, '}'), nil
	default:
		return gojson.Marshal(v)
	}
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) { return AppendJSON(nil, r) }

// MarshalJSON implements json.Marshaler.
func (l List) MarshalJSON() ([]byte, error) { return AppendJSON(nil, l) }

// MarshalJSON implements json.Marshaler.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) { return AppendJSON(nil, f) }

package value

import "sort"

// ToNative converts v into plain Go values: nil, bool, int64, float64,
// string, []byte, []interface{} and map[string]interface{}. Column order
// is lost for records.
func ToNative(v Value) interface{} {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case Int:
		return int64(t)
	case Float:
		return float64(t)
	case String:
		return string(t)
	case Binary:
		return []byte(t)
	case List:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = ToNative(e)
		}
		return out
	case *Record:
		out := make(map[string]interface{}, t.Len())
		for i := 0; i < t.Len(); i++ {
			name, val := t.At(i)
			out[name] = ToNative(val)
		}
		return out
	}
	return nil
}

// FromNative converts plain Go values back into a Value. Maps become
// records with their keys sorted; unsupported types yield Null.
func FromNative(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(t)
	case int32:
		return Int(t)
	case int64:
		return Int(t)
	case uint8:
		return Int(t)
	case uint32:
		return Int(t)
	case float32:
		return Float(t)
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []byte:
		return Binary(t)
	case []string:
		return Strings(t)
	case []interface{}:
		l := make(List, len(t))
		for i, e := range t {
			l[i] = FromNative(e)
		}
		return l
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		r := NewRecord(len(keys))
		for _, k := range keys {
			r.Set(k, FromNative(t[k]))
		}
		return r
	}
	return Null{}
}

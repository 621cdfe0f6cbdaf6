// Package value defines the structured value model every format adapter
// produces: a closed union of scalars, lists and ordered records.
package value

import (
	"fmt"
	"strconv"
)

// Kind identifies the concrete variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBinary
	KindList
	KindRecord
)

var kindNames = [...]string{
	KindNull:   "nothing",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindBinary: "binary",
	KindList:   "list",
	KindRecord: "record",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Value is a structured value. The set of implementations is closed.
type Value interface {
	Kind() Kind
	sealed()
}

// Null is the absent value.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Int is a 64-bit signed integer value.
type Int int64

// Float is a 64-bit floating point value.
type Float float64

// String is a UTF-8 text value.
type String string

// Binary is an opaque byte payload.
type Binary []byte

// List is an ordered sequence of values.
type List []Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (String) Kind() Kind { return KindString }
func (Binary) Kind() Kind { return KindBinary }
func (List) Kind() Kind   { return KindList }

func (Null) sealed()   {}
func (Bool) sealed()   {}
func (Int) sealed()    {}
func (Float) sealed()  {}
func (String) sealed() {}
func (Binary) sealed() {}
func (List) sealed()   {}

// Strings builds a list of string values.
func Strings(ss []string) List {
	l := make(List, len(ss))
	for i, s := range ss {
		l[i] = String(s)
	}
	return l
}

// AsString returns the text of a String value.
func AsString(v Value) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}

// AsList returns the elements of a List value.
func AsList(v Value) (List, bool) {
	l, ok := v.(List)
	return l, ok
}

// AsRecord returns v as a record.
func AsRecord(v Value) (*Record, bool) {
	r, ok := v.(*Record)
	return r, ok && r != nil
}

// Describe renders a short human readable form of v, used in error messages.
func Describe(v Value) string {
	if v == nil {
		return "nothing"
	}
	switch t := v.(type) {
	case String:
		return fmt.Sprintf("string %q", truncate(string(t), 32))
	case List:
		return fmt.Sprintf("list with %d elements", len(t))
	case *Record:
		return fmt.Sprintf("record with %d columns", t.Len())
	default:
		return v.Kind().String()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Package tags holds the optional field model shared by SAM auxiliary data
// and GFA optional fields, and the codec that renders a field as a canonical
// TAG:TYPE:VALUE string.
package tags

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the typed payload carried by a Field.
type Kind int

const (
	KindChar Kind = iota
	KindInt
	KindFloat
	KindString
	KindHex
	KindJSON
	KindIntArray
	KindFloatArray
)

// Letter returns the SAM/GFA type letter of k.
func (k Kind) Letter() byte {
	switch k {
	case KindChar:
		return 'A'
	case KindInt:
		return 'i'
	case KindFloat:
		return 'f'
	case KindString:
		return 'Z'
	case KindHex:
		return 'H'
	case KindJSON:
		return 'J'
	default:
		return 'B'
	}
}

// Field is one optional field. Only the payload matching Kind is set.
// Text payloads (String, Hex, JSON) are kept as raw bytes so the codec
// decides how to treat invalid UTF-8.
type Field struct {
	Tag    []byte
	Kind   Kind
	Char   byte
	Int    int64
	Float  float32
	Text   []byte
	Ints   []int64
	Floats []float32
}

// Char returns a character field.
func Char(tag string, c byte) Field { return Field{Tag: []byte(tag), Kind: KindChar, Char: c} }

// Int returns an integer field.
func Int(tag string, n int64) Field { return Field{Tag: []byte(tag), Kind: KindInt, Int: n} }

// Float returns a float field.
func Float(tag string, f float32) Field { return Field{Tag: []byte(tag), Kind: KindFloat, Float: f} }

// String returns a string field.
func String(tag string, s []byte) Field { return Field{Tag: []byte(tag), Kind: KindString, Text: s} }

// Hex returns a hex field holding the hex digit text.
func Hex(tag string, digits []byte) Field { return Field{Tag: []byte(tag), Kind: KindHex, Text: digits} }

// JSON returns a JSON field holding the raw JSON text.
func JSON(tag string, doc []byte) Field { return Field{Tag: []byte(tag), Kind: KindJSON, Text: doc} }

// IntArray returns a numeric array field with integer elements.
func IntArray(tag string, ns []int64) Field {
	return Field{Tag: []byte(tag), Kind: KindIntArray, Ints: ns}
}

// FloatArray returns a numeric array field with float elements.
func FloatArray(tag string, fs []float32) Field {
	return Field{Tag: []byte(tag), Kind: KindFloatArray, Floats: fs}
}

// Parse reads one TAG:TYPE:VALUE field as written in SAM text or GFA lines.
// Values are not checked for UTF-8 here.
func Parse(b []byte) (Field, error) {
	if len(b) < 5 || b[2] != ':' || b[4] != ':' {
		return Field{}, fmt.Errorf("malformed optional field %q", b)
	}
	if !isAlpha(b[0]) || !(isAlpha(b[1]) || isDigit(b[1])) {
		return Field{}, fmt.Errorf("invalid optional field tag %q", b[:2])
	}
	tag := string(b[:2])
	val := b[5:]

	switch b[3] {
	case 'A':
		if len(val) != 1 || val[0] < '!' || val[0] > '~' {
			return Field{}, fmt.Errorf("invalid character value in %q", b)
		}
		return Char(tag, val[0]), nil
	case 'i':
		n, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return Field{}, fmt.Errorf("invalid integer value in %q: %w", b, err)
		}
		return Int(tag, n), nil
	case 'f':
		f, err := strconv.ParseFloat(string(val), 32)
		if err != nil {
			return Field{}, fmt.Errorf("invalid float value in %q: %w", b, err)
		}
		return Float(tag, float32(f)), nil
	case 'Z':
		return String(tag, clone(val)), nil
	case 'J':
		return JSON(tag, clone(val)), nil
	case 'H':
		if len(val)%2 != 0 || !isHex(val) {
			return Field{}, fmt.Errorf("invalid hex value in %q", b)
		}
		return Hex(tag, clone(val)), nil
	case 'B':
		return parseArray(tag, val, b)
	}
	return Field{}, fmt.Errorf("unknown optional field type %q in %q", b[3], b)
}

func parseArray(tag string, val, whole []byte) (Field, error) {
	if len(val) == 0 {
		return Field{}, fmt.Errorf("missing array subtype in %q", whole)
	}
	sub := val[0]
	var elems []string
	if rest := string(val[1:]); rest != "" {
		if rest[0] != ',' {
			return Field{}, fmt.Errorf("malformed array in %q", whole)
		}
		elems = strings.Split(rest[1:], ",")
	}
	switch sub {
	case 'c', 'C', 's', 'S', 'i', 'I':
		var ns []int64
		if len(elems) > 0 {
			ns = make([]int64, len(elems))
		}
		for i, e := range elems {
			n, err := strconv.ParseInt(e, 10, 64)
			if err != nil {
				return Field{}, fmt.Errorf("invalid array element in %q: %w", whole, err)
			}
			ns[i] = n
		}
		return IntArray(tag, ns), nil
	case 'f':
		var fs []float32
		if len(elems) > 0 {
			fs = make([]float32, len(elems))
		}
		for i, e := range elems {
			f, err := strconv.ParseFloat(e, 32)
			if err != nil {
				return Field{}, fmt.Errorf("invalid array element in %q: %w", whole, err)
			}
			fs[i] = float32(f)
		}
		return FloatArray(tag, fs), nil
	}
	return Field{}, fmt.Errorf("unknown array subtype %q in %q", sub, whole)
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

func isAlpha(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(b []byte) bool {
	for _, c := range b {
		if !isDigit(c) && !(c >= 'A' && c <= 'F') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

package bcf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BCF2 typed value type codes.
const (
	typeMissing = 0
	typeInt8    = 1
	typeInt16   = 2
	typeInt32   = 3
	typeFloat   = 5
	typeChar    = 7
)

const (
	floatMissing = 0x7F800001
	floatEOV     = 0x7F800002
)

func typeSize(t byte) int {
	switch t {
	case typeInt8, typeChar:
		return 1
	case typeInt16:
		return 2
	case typeInt32, typeFloat:
		return 4
	}
	return 0
}

// intSentinels returns the missing and end-of-vector values for an integer
// type.
func intSentinels(t byte) (missing, eov int64) {
	switch t {
	case typeInt8:
		return math.MinInt8, math.MinInt8 + 1
	case typeInt16:
		return math.MinInt16, math.MinInt16 + 1
	default:
		return math.MinInt32, math.MinInt32 + 1
	}
}

// cursor decodes little endian BCF2 values from a record block. The first
// failure is sticky.
type cursor struct {
	b   []byte
	off int
	err error
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.off+n > len(c.b) {
		c.err = fmt.Errorf("record block truncated at offset %d", c.off)
		return nil
	}
	p := c.b[c.off : c.off+n]
	c.off += n
	return p
}

// fits reports whether n values of type t remain in the block. A count that
// overruns the block is recorded as a truncation before anything is
// allocated for it.
func (c *cursor) fits(t byte, n int) bool {
	if c.err != nil {
		return false
	}
	if size := typeSize(t); size > 0 && n > (len(c.b)-c.off)/size {
		c.err = fmt.Errorf("record block truncated at offset %d: %d values of %d bytes declared", c.off, n, size)
		return false
	}
	return true
}

func (c *cursor) u8() byte {
	p := c.take(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (c *cursor) i32() int32 {
	p := c.take(4)
	if p == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(p))
}

func (c *cursor) u32() uint32 {
	p := c.take(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

// int reads one integer of type t without sentinel handling.
func (c *cursor) int(t byte) int64 {
	p := c.take(typeSize(t))
	if p == nil {
		return 0
	}
	switch t {
	case typeInt8:
		return int64(int8(p[0]))
	case typeInt16:
		return int64(int16(binary.LittleEndian.Uint16(p)))
	case typeInt32:
		return int64(int32(binary.LittleEndian.Uint32(p)))
	}
	c.err = fmt.Errorf("type %d is not an integer type", t)
	return 0
}

// descriptor reads a typed value descriptor: the element type and count.
func (c *cursor) descriptor() (byte, int) {
	d := c.u8()
	t, n := d&0x0f, int(d>>4)
	if n == 15 {
		nt, _ := c.descriptor()
		if nt != typeInt8 && nt != typeInt16 && nt != typeInt32 {
			if c.err == nil {
				c.err = fmt.Errorf("invalid overflow count type %d", nt)
			}
			return t, 0
		}
		n = int(c.int(nt))
		if n < 0 && c.err == nil {
			c.err = fmt.Errorf("negative vector length %d", n)
		}
	}
	switch t {
	case typeMissing, typeInt8, typeInt16, typeInt32, typeFloat, typeChar:
	default:
		if c.err == nil {
			c.err = fmt.Errorf("unknown typed value type %d", t)
		}
	}
	return t, n
}

// typedInt reads a typed scalar integer (a dictionary key or a length).
func (c *cursor) typedInt() int64 {
	t, n := c.descriptor()
	if c.err != nil {
		return 0
	}
	if n != 1 {
		c.err = fmt.Errorf("expected a single typed integer, got %d values", n)
		return 0
	}
	return c.int(t)
}

// typedString reads a typed character vector.
func (c *cursor) typedString() string {
	t, n := c.descriptor()
	if t == typeMissing {
		return ""
	}
	if t != typeChar {
		if c.err == nil {
			c.err = fmt.Errorf("expected a character vector, got type %d", t)
		}
		return ""
	}
	return trimNUL(c.take(n))
}

// vector reads n elements of type t. Integers and floats come back as
// []interface{} with nil for missing elements, truncated at the
// end-of-vector marker. Character vectors come back as a string.
func (c *cursor) vector(t byte, n int) interface{} {
	switch t {
	case typeMissing:
		return []interface{}{}
	case typeChar:
		return trimNUL(c.take(n))
	case typeFloat:
		if !c.fits(t, n) {
			return nil
		}
		out := make([]interface{}, 0, n)
		end := false
		for i := 0; i < n && c.err == nil; i++ {
			bits := c.u32()
			switch {
			case end:
			case bits == floatEOV:
				end = true
			case bits == floatMissing:
				out = append(out, nil)
			default:
				out = append(out, float64(math.Float32frombits(bits)))
			}
		}
		return out
	default:
		if !c.fits(t, n) {
			return nil
		}
		missing, eov := intSentinels(t)
		out := make([]interface{}, 0, n)
		end := false
		for i := 0; i < n && c.err == nil; i++ {
			v := c.int(t)
			switch {
			case end:
			case v == eov:
				end = true
			case v == missing:
				out = append(out, nil)
			default:
				out = append(out, v)
			}
		}
		return out
	}
}

// rawInts reads n integers of type t, truncated at end-of-vector; missing
// values are kept as the sentinel.
func (c *cursor) rawInts(t byte, n int) []int64 {
	if !c.fits(t, n) {
		return nil
	}
	_, eov := intSentinels(t)
	out := make([]int64, 0, n)
	end := false
	for i := 0; i < n && c.err == nil; i++ {
		v := c.int(t)
		if v == eov {
			end = true
		}
		if !end {
			out = append(out, v)
		}
	}
	return out
}

func trimNUL(p []byte) string {
	for len(p) > 0 && p[len(p)-1] == 0 {
		p = p[:len(p)-1]
	}
	return string(p)
}

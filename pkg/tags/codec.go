package tags

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ajitpratap0/biostruct/pkg/errors"
)

// Codec renders fields as TAG:TYPE:VALUE strings. The zero value is not
// useful; use SAM or GFA.
type Codec struct {
	// Strict rejects malformed UTF-8 instead of substituting U+FFFD.
	Strict bool
	// HexAsString re-tags hex payloads as Z and spells every byte out as
	// 0x%03x followed by a comma.
	HexAsString bool
}

var (
	// SAM is the best-effort codec for alignment auxiliary data.
	SAM = Codec{}
	// GFA is the validating codec for graph optional fields.
	GFA = Codec{Strict: true, HexAsString: true}
)

// Encode renders one field.
func (c Codec) Encode(f Field) (string, error) {
	tag, err := c.text(f.Tag, "optional field tag")
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(tag)
	sb.WriteByte(':')

	switch f.Kind {
	case KindChar:
		ch, err := c.text([]byte{f.Char}, "character value of "+tag)
		if err != nil {
			return "", err
		}
		sb.WriteString("A:")
		sb.WriteString(ch)
	case KindInt:
		sb.WriteString("i:")
		sb.WriteString(strconv.FormatInt(f.Int, 10))
	case KindFloat:
		sb.WriteString("f:")
		sb.WriteString(formatFloat(f.Float))
	case KindString, KindJSON:
		s, err := c.text(f.Text, "string value of "+tag)
		if err != nil {
			return "", err
		}
		sb.WriteByte(f.Kind.Letter())
		sb.WriteByte(':')
		sb.WriteString(s)
	case KindHex:
		if err := c.encodeHex(&sb, tag, f.Text); err != nil {
			return "", err
		}
	case KindIntArray:
		sb.WriteString("B:i:")
		for _, n := range f.Ints {
			sb.WriteString(strconv.FormatInt(n, 10))
			sb.WriteByte(',')
		}
	case KindFloatArray:
		sb.WriteString("B:f:")
		for _, v := range f.Floats {
			sb.WriteString(formatFloat(v))
			sb.WriteByte(',')
		}
	default:
		return "", errors.Newf(errors.ErrorTypeInternal, "unknown optional field kind %d", f.Kind)
	}
	return sb.String(), nil
}

func (c Codec) encodeHex(sb *strings.Builder, tag string, digits []byte) error {
	if !c.HexAsString {
		s, err := c.text(digits, "hex value of "+tag)
		if err != nil {
			return err
		}
		sb.WriteString("H:")
		sb.WriteString(s)
		return nil
	}
	raw := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(raw, digits); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeEncoding, "hex value of %s", tag)
	}
	sb.WriteString("Z:")
	for _, b := range raw {
		fmt.Fprintf(sb, "0x%03x,", b)
	}
	return nil
}

// EncodeAll renders fields in order.
func (c Codec) EncodeAll(fields []Field) ([]string, error) {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		s, err := c.Encode(f)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Join renders fields separated by tabs. No fields yield "".
func (c Codec) Join(fields []Field) (string, error) {
	parts, err := c.EncodeAll(fields)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, "\t"), nil
}

// Text converts b to a string under the codec's UTF-8 policy. what names
// the field in the error.
func (c Codec) Text(b []byte, what string) (string, error) { return c.text(b, what) }

func (c Codec) text(b []byte, what string) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	if c.Strict {
		return "", errors.Newf(errors.ErrorTypeEncoding, "%s is not valid UTF-8", what).
			WithDetail("bytes", b)
	}
	return strings.ToValidUTF8(string(b), "\uFFFD"), nil
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

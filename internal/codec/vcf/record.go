package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is one INFO or FORMAT entry. Value is nil (missing), true (flag),
// int64, float64, string, or []interface{} of those.
type Field struct {
	Key   string
	Value interface{}
}

// Genotype holds one sample's FORMAT values in FORMAT order.
type Genotype struct {
	Sample string
	Fields []Field
}

// Record is one variant.
type Record struct {
	Chrom     string
	Pos       int64
	Rlen      int64
	IDs       []string
	Ref       string
	Alt       []string
	Qual      float64
	HasQual   bool
	Filters   []string
	Info      []Field
	Format    []string
	Genotypes []Genotype
}

// InfoValue returns the value of the INFO key.
func (r *Record) InfoValue(key string) (interface{}, bool) {
	for _, f := range r.Info {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// TypeValue converts raw text into a typed value following def. A nil def
// keeps text, splitting on commas.
func TypeValue(def *Definition, raw string) (interface{}, error) {
	if def != nil && def.Type == "Flag" {
		return true, nil
	}
	if raw == "." {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	vals := make([]interface{}, len(parts))
	for i, p := range parts {
		v, err := typeScalar(def, p)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	if Scalar(def, len(vals)) {
		return vals[0], nil
	}
	return vals, nil
}

// Scalar reports whether a value with n elements defined by def is
// represented as a single value rather than a list.
func Scalar(def *Definition, n int) bool {
	if def == nil {
		return n == 1
	}
	return def.Number == "1" && n <= 1
}

func typeScalar(def *Definition, s string) (interface{}, error) {
	if s == "." {
		return nil, nil
	}
	typ := "String"
	if def != nil {
		typ = def.Type
	}
	switch typ {
	case "Integer":
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Integer value %q for %s", s, def.ID)
		}
		return n, nil
	case "Float":
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Float value %q for %s", s, def.ID)
		}
		return f, nil
	default:
		return s, nil
	}
}

// ParseRecord decodes one tab separated data line against h.
func ParseRecord(h *Header, line string) (*Record, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 8 {
		return nil, fmt.Errorf("expected at least 8 columns, got %d", len(cols))
	}
	if want := 9 + len(h.Samples); len(h.Samples) > 0 && len(cols) != want {
		return nil, fmt.Errorf("expected %d columns, got %d", want, len(cols))
	}

	rec := &Record{Chrom: cols[0], Ref: cols[3]}
	if rec.Chrom == "" {
		return nil, fmt.Errorf("empty CHROM")
	}
	pos, err := strconv.ParseInt(cols[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid POS %q", cols[1])
	}
	rec.Pos = pos
	rec.IDs = splitMissing(cols[2], ";")
	rec.Alt = splitMissing(cols[4], ",")
	if cols[5] != "." {
		q, err := strconv.ParseFloat(cols[5], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid QUAL %q", cols[5])
		}
		rec.Qual, rec.HasQual = q, true
	}
	rec.Filters = splitMissing(cols[6], ";")

	if cols[7] != "." && cols[7] != "" {
		for _, entry := range strings.Split(cols[7], ";") {
			key, raw, hasValue := strings.Cut(entry, "=")
			def, _ := h.Info(key)
			var v interface{} = true
			if hasValue {
				if v, err = TypeValue(def, raw); err != nil {
					return nil, fmt.Errorf("INFO: %w", err)
				}
			}
			rec.Info = append(rec.Info, Field{Key: key, Value: v})
		}
	}
	rec.Rlen = referenceLength(rec)

	if len(cols) > 8 {
		rec.Format = splitMissing(cols[8], ":")
		for i, sample := range h.Samples {
			g, err := parseGenotype(h, rec.Format, sample, cols[9+i])
			if err != nil {
				return nil, err
			}
			rec.Genotypes = append(rec.Genotypes, g)
		}
	}
	return rec, nil
}

func parseGenotype(h *Header, keys []string, sample, col string) (Genotype, error) {
	g := Genotype{Sample: sample, Fields: make([]Field, 0, len(keys))}
	vals := strings.Split(col, ":")
	for i, key := range keys {
		raw := "."
		if i < len(vals) {
			raw = vals[i]
		}
		def, _ := h.Format(key)
		var v interface{}
		var err error
		if key == "GT" {
			if raw != "." {
				v = raw
			}
		} else if v, err = TypeValue(def, raw); err != nil {
			return g, fmt.Errorf("sample %s: %w", sample, err)
		}
		g.Fields = append(g.Fields, Field{Key: key, Value: v})
	}
	return g, nil
}

// referenceLength is END-POS+1 when INFO/END is present, else len(REF).
func referenceLength(rec *Record) int64 {
	if end, ok := rec.InfoValue("END"); ok {
		if n, ok := end.(int64); ok && n >= rec.Pos {
			return n - rec.Pos + 1
		}
	}
	return int64(len(rec.Ref))
}

func splitMissing(s, sep string) []string {
	if s == "." || s == "" {
		return []string{}
	}
	return strings.Split(s, sep)
}

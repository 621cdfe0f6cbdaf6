// Package vcf models VCF headers and records and decodes the VCF text format.
// The BCF decoder reuses the same types.
package vcf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Attr is one key=value pair of a structured header line.
type Attr struct {
	Key   string
	Value string
}

// Definition is an INFO, FORMAT, FILTER or ALT header entry.
type Definition struct {
	ID          string
	Number      string
	Type        string
	Description string
	Other       []Attr
}

// Contig is a contig header entry.
type Contig struct {
	ID        string
	Length    int64
	HasLength bool
	Other     []Attr
}

// Header is a decoded VCF header.
type Header struct {
	FileFormat string
	Infos      []*Definition
	Filters    []*Definition
	Formats    []*Definition
	AltAlleles []*Definition
	Contigs    []*Contig
	// Other holds every remaining meta line (META, SAMPLE, PEDIGREE,
	// assembly, free key=value lines) as written.
	Other   []Attr
	Samples []string

	infos   map[string]*Definition
	formats map[string]*Definition
	strings map[int]string
	contigs map[int]string
}

// Info returns the INFO definition for id.
func (h *Header) Info(id string) (*Definition, bool) {
	d, ok := h.infos[id]
	return d, ok
}

// Format returns the FORMAT definition for id.
func (h *Header) Format(id string) (*Definition, bool) {
	d, ok := h.formats[id]
	return d, ok
}

// StringDictionary returns the BCF string dictionary: FILTER, INFO and
// FORMAT ids by index, PASS first, explicit IDX attributes honoured.
func (h *Header) StringDictionary() map[int]string { return h.strings }

// ContigDictionary returns the BCF contig dictionary.
func (h *Header) ContigDictionary() map[int]string { return h.contigs }

// ParseHeader decodes header text: "##" meta lines followed by the "#CHROM"
// column line.
func ParseHeader(text []byte) (*Header, error) {
	h := &Header{
		infos:   make(map[string]*Definition),
		formats: make(map[string]*Definition),
		strings: map[int]string{0: "PASS"},
		contigs: make(map[int]string),
	}
	seen := map[string]bool{"PASS": true}
	nextString, nextContig := 1, 0
	sawColumns := false

	lines := bytes.Split(text, []byte{'\n'})
	for n, raw := range lines {
		line := strings.TrimRight(string(raw), "\r")
		if line == "" {
			continue
		}
		if n == 0 {
			if !strings.HasPrefix(line, "##fileformat=") {
				return nil, fmt.Errorf("vcf: header must start with ##fileformat")
			}
			h.FileFormat = strings.TrimPrefix(line, "##fileformat=")
			continue
		}
		if sawColumns {
			return nil, fmt.Errorf("vcf: header line %d follows the #CHROM line", n+1)
		}
		if strings.HasPrefix(line, "#CHROM") {
			if err := h.parseColumns(line); err != nil {
				return nil, err
			}
			sawColumns = true
			continue
		}
		if !strings.HasPrefix(line, "##") {
			return nil, fmt.Errorf("vcf: header line %d: expected '##'", n+1)
		}
		key, val, ok := strings.Cut(line[2:], "=")
		if !ok {
			return nil, fmt.Errorf("vcf: header line %d: missing '='", n+1)
		}

		if !strings.HasPrefix(val, "<") || !strings.HasSuffix(val, ">") {
			h.Other = append(h.Other, Attr{Key: key, Value: val})
			continue
		}
		attrs, err := parseStructured(val[1 : len(val)-1])
		if err != nil {
			return nil, fmt.Errorf("vcf: header line %d: %w", n+1, err)
		}
		id, idx, err := idAndIndex(attrs)
		if err != nil {
			return nil, fmt.Errorf("vcf: header line %d: %w", n+1, err)
		}

		switch key {
		case "INFO", "FORMAT", "FILTER", "ALT":
			def := newDefinition(id, attrs)
			switch key {
			case "INFO":
				h.Infos = append(h.Infos, def)
				h.infos[id] = def
			case "FORMAT":
				h.Formats = append(h.Formats, def)
				h.formats[id] = def
			case "FILTER":
				h.Filters = append(h.Filters, def)
			case "ALT":
				h.AltAlleles = append(h.AltAlleles, def)
				continue
			}
			switch {
			case idx >= 0:
				h.strings[idx] = id
				seen[id] = true
				if idx >= nextString {
					nextString = idx + 1
				}
			case !seen[id]:
				h.strings[nextString] = id
				seen[id] = true
				nextString++
			}
		case "contig":
			c, err := newContig(id, attrs)
			if err != nil {
				return nil, fmt.Errorf("vcf: header line %d: %w", n+1, err)
			}
			h.Contigs = append(h.Contigs, c)
			if idx < 0 {
				idx = nextContig
			}
			h.contigs[idx] = id
			nextContig = idx + 1
		default:
			h.Other = append(h.Other, Attr{Key: key, Value: val})
		}
	}
	if h.FileFormat == "" {
		return nil, fmt.Errorf("vcf: missing ##fileformat line")
	}
	if !sawColumns {
		return nil, fmt.Errorf("vcf: missing #CHROM header line")
	}
	return h, nil
}

var fixedColumns = []string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}

func (h *Header) parseColumns(line string) error {
	cols := strings.Split(line, "\t")
	if len(cols) < len(fixedColumns) {
		return fmt.Errorf("vcf: #CHROM line has %d columns, want at least %d", len(cols), len(fixedColumns))
	}
	for i, want := range fixedColumns {
		if cols[i] != want {
			return fmt.Errorf("vcf: #CHROM line column %d is %q, want %q", i+1, cols[i], want)
		}
	}
	if len(cols) > len(fixedColumns) {
		if cols[len(fixedColumns)] != "FORMAT" {
			return fmt.Errorf("vcf: #CHROM line column 9 is %q, want FORMAT", cols[len(fixedColumns)])
		}
		h.Samples = append([]string{}, cols[len(fixedColumns)+1:]...)
	}
	return nil
}

func idAndIndex(attrs []Attr) (string, int, error) {
	id, idx := "", -1
	for _, a := range attrs {
		switch a.Key {
		case "ID":
			id = a.Value
		case "IDX":
			n, err := strconv.Atoi(a.Value)
			if err != nil || n < 0 {
				return "", 0, fmt.Errorf("invalid IDX %q", a.Value)
			}
			idx = n
		}
	}
	if id == "" {
		return "", 0, fmt.Errorf("structured line without ID")
	}
	return id, idx, nil
}

func newDefinition(id string, attrs []Attr) *Definition {
	d := &Definition{ID: id}
	for _, a := range attrs {
		switch a.Key {
		case "ID", "IDX":
		case "Number":
			d.Number = a.Value
		case "Type":
			d.Type = a.Value
		case "Description":
			d.Description = a.Value
		default:
			d.Other = append(d.Other, a)
		}
	}
	return d
}

func newContig(id string, attrs []Attr) (*Contig, error) {
	c := &Contig{ID: id}
	for _, a := range attrs {
		switch a.Key {
		case "ID", "IDX":
		case "length":
			n, err := strconv.ParseInt(a.Value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid contig length %q", a.Value)
			}
			c.Length, c.HasLength = n, true
		default:
			c.Other = append(c.Other, a)
		}
	}
	return c, nil
}

// parseStructured splits the inside of <...> into key=value pairs. Values
// may be double quoted with backslash escapes.
func parseStructured(s string) ([]Attr, error) {
	var attrs []Attr
	for i := 0; i < len(s); {
		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			return nil, fmt.Errorf("malformed structured field %q", s[i:])
		}
		key := s[i : i+eq]
		i += eq + 1

		var val strings.Builder
		if i < len(s) && s[i] == '"' {
			i++
			closed := false
			for i < len(s) {
				c := s[i]
				i++
				if c == '\\' && i < len(s) {
					val.WriteByte(s[i])
					i++
					continue
				}
				if c == '"' {
					closed = true
					break
				}
				val.WriteByte(c)
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted value for %s", key)
			}
		} else {
			end := strings.IndexByte(s[i:], ',')
			if end < 0 {
				end = len(s) - i
			}
			val.WriteString(s[i : i+end])
			i += end
		}
		attrs = append(attrs, Attr{Key: key, Value: val.String()})

		if i < len(s) {
			if s[i] != ',' {
				return nil, fmt.Errorf("expected ',' after %s", key)
			}
			i++
		}
	}
	return attrs, nil
}

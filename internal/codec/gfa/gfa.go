// Package gfa parses GFA 1 assembly graph lines. Text fields are kept as
// raw bytes; UTF-8 validation is left to the caller.
package gfa

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/ajitpratap0/biostruct/internal/codec"
	"github.com/ajitpratap0/biostruct/pkg/tags"
)

// Kind is the record type letter of a line.
type Kind byte

const (
	KindHeader      Kind = 'H'
	KindSegment     Kind = 'S'
	KindLink        Kind = 'L'
	KindContainment Kind = 'C'
	KindPath        Kind = 'P'
)

// Header is an H line. Version is the VN tag value, if any; it is not
// repeated in Optional.
type Header struct {
	Version  []byte
	Optional []tags.Field
}

// Segment is an S line.
type Segment struct {
	Name     []byte
	Sequence []byte
	Optional []tags.Field
}

// Link is an L line.
type Link struct {
	FromSegment []byte
	FromOrient  byte
	ToSegment   []byte
	ToOrient    byte
	Overlap     []byte
	Optional    []tags.Field
}

// Containment is a C line.
type Containment struct {
	ContainerName   []byte
	ContainerOrient byte
	ContainedName   []byte
	ContainedOrient byte
	Position        int64
	Overlap         []byte
	Optional        []tags.Field
}

// Path is a P line. SegmentNames is the comma separated oriented segment
// list as written; Overlaps is empty when the overlap field is '*'.
type Path struct {
	Name         []byte
	SegmentNames []byte
	Overlaps     [][]byte
	Optional     []tags.Field
}

// Line is one parsed line; exactly one of the pointers matching Kind is set.
type Line struct {
	Kind        Kind
	Header      *Header
	Segment     *Segment
	Link        *Link
	Containment *Containment
	Path        *Path
}

// ParseLine parses a single non-empty GFA line.
func ParseLine(line []byte) (Line, error) {
	f := bytes.Split(line, []byte{'\t'})
	if len(f[0]) != 1 {
		return Line{}, fmt.Errorf("unknown record type %q", f[0])
	}
	kind := Kind(f[0][0])
	switch kind {
	case KindHeader:
		opt, err := optional(f[1:])
		if err != nil {
			return Line{}, err
		}
		h := &Header{}
		for _, o := range opt {
			if string(o.Tag) == "VN" && o.Kind == tags.KindString && h.Version == nil {
				h.Version = o.Text
				continue
			}
			h.Optional = append(h.Optional, o)
		}
		return Line{Kind: kind, Header: h}, nil

	case KindSegment:
		if err := need(f, 3, "segment"); err != nil {
			return Line{}, err
		}
		opt, err := optional(f[3:])
		if err != nil {
			return Line{}, err
		}
		return Line{Kind: kind, Segment: &Segment{
			Name: clone(f[1]), Sequence: clone(f[2]), Optional: opt,
		}}, nil

	case KindLink:
		if err := need(f, 6, "link"); err != nil {
			return Line{}, err
		}
		from, err := orientation(f[2])
		if err != nil {
			return Line{}, err
		}
		to, err := orientation(f[4])
		if err != nil {
			return Line{}, err
		}
		opt, err := optional(f[6:])
		if err != nil {
			return Line{}, err
		}
		return Line{Kind: kind, Link: &Link{
			FromSegment: clone(f[1]), FromOrient: from,
			ToSegment: clone(f[3]), ToOrient: to,
			Overlap: clone(f[5]), Optional: opt,
		}}, nil

	case KindContainment:
		if err := need(f, 7, "containment"); err != nil {
			return Line{}, err
		}
		container, err := orientation(f[2])
		if err != nil {
			return Line{}, err
		}
		contained, err := orientation(f[4])
		if err != nil {
			return Line{}, err
		}
		pos, err := strconv.ParseInt(string(f[5]), 10, 64)
		if err != nil || pos < 0 {
			return Line{}, fmt.Errorf("invalid containment position %q", f[5])
		}
		opt, err := optional(f[7:])
		if err != nil {
			return Line{}, err
		}
		return Line{Kind: kind, Containment: &Containment{
			ContainerName: clone(f[1]), ContainerOrient: container,
			ContainedName: clone(f[3]), ContainedOrient: contained,
			Position: pos, Overlap: clone(f[6]), Optional: opt,
		}}, nil

	case KindPath:
		if err := need(f, 4, "path"); err != nil {
			return Line{}, err
		}
		opt, err := optional(f[4:])
		if err != nil {
			return Line{}, err
		}
		p := &Path{Name: clone(f[1]), SegmentNames: clone(f[2]), Overlaps: [][]byte{}, Optional: opt}
		if !bytes.Equal(f[3], []byte{'*'}) {
			for _, o := range bytes.Split(f[3], []byte{','}) {
				p.Overlaps = append(p.Overlaps, clone(o))
			}
		}
		return Line{Kind: kind, Path: p}, nil
	}
	return Line{}, fmt.Errorf("unknown record type %q", f[0])
}

func need(f [][]byte, n int, what string) error {
	if len(f) < n {
		return fmt.Errorf("%s line has %d fields, want at least %d", what, len(f), n)
	}
	for i := 1; i < n; i++ {
		if len(f[i]) == 0 {
			return fmt.Errorf("%s line has an empty field %d", what, i+1)
		}
	}
	return nil
}

func orientation(b []byte) (byte, error) {
	if len(b) != 1 || (b[0] != '+' && b[0] != '-') {
		return 0, fmt.Errorf("invalid orientation %q", b)
	}
	return b[0], nil
}

func optional(fields [][]byte) ([]tags.Field, error) {
	out := make([]tags.Field, 0, len(fields))
	for _, f := range fields {
		if len(f) == 0 {
			continue
		}
		o, err := tags.Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func clone(b []byte) []byte { return append([]byte{}, b...) }

// Reader yields parsed lines, skipping blank and '#' comment lines.
type Reader struct {
	lr *codec.LineReader
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{lr: codec.NewLineReader(r)}
}

// Read returns the next line, or io.EOF.
func (r *Reader) Read() (Line, error) {
	for {
		raw, err := r.lr.Next()
		if err != nil {
			return Line{}, err
		}
		if len(bytes.TrimSpace(raw)) == 0 || raw[0] == '#' {
			continue
		}
		l, err := ParseLine(raw)
		if err != nil {
			return Line{}, fmt.Errorf("gfa: line %d: %w", r.lr.Line(), err)
		}
		return l, nil
	}
}

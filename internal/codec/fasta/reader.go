// Package fasta reads and writes FASTA records.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/ajitpratap0/biostruct/internal/codec"
)

// Record is one FASTA entry.
type Record struct {
	Name        []byte
	Description []byte
	Sequence    []byte
}

// Reader decodes FASTA records one at a time.
type Reader struct {
	lr      *codec.LineReader
	pending []byte
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{lr: codec.NewLineReader(r)}
}

// Read returns the next record, or io.EOF when there are no more.
func (r *Reader) Read() (*Record, error) {
	def := r.pending
	r.pending = nil
	if def == nil {
		for {
			line, err := r.lr.Next()
			if err != nil {
				return nil, err
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			if line[0] != '>' {
				return nil, fmt.Errorf("fasta: line %d: expected definition line starting with '>'", r.lr.Line())
			}
			def = append([]byte(nil), line...)
			break
		}
	}

	rec, err := parseDefinition(def[1:])
	if err != nil {
		return nil, fmt.Errorf("fasta: line %d: %w", r.lr.Line(), err)
	}

	for {
		line, err := r.lr.Next()
		if err == io.EOF {
			return rec, nil
		}
		if err != nil {
			return nil, fmt.Errorf("fasta: %w", err)
		}
		if len(line) > 0 && line[0] == '>' {
			r.pending = append([]byte(nil), line...)
			return rec, nil
		}
		rec.Sequence = append(rec.Sequence, bytes.TrimSpace(line)...)
	}
}

func parseDefinition(def []byte) (*Record, error) {
	def = bytes.TrimRight(def, " \t")
	name, desc := def, []byte(nil)
	if i := bytes.IndexAny(def, " \t"); i >= 0 {
		name, desc = def[:i], bytes.TrimSpace(def[i+1:])
	}
	if len(name) == 0 {
		return nil, fmt.Errorf("missing record name")
	}
	return &Record{
		Name:        append([]byte(nil), name...),
		Description: append([]byte(nil), desc...),
		Sequence:    []byte{},
	}, nil
}

// DefaultLineWidth is the number of bases written per sequence line.
const DefaultLineWidth = 80

// Writer encodes FASTA records.
type Writer struct {
	w         *bufio.Writer
	LineWidth int
}

// NewWriter returns a writer wrapping sequence lines at DefaultLineWidth.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), LineWidth: DefaultLineWidth}
}

// Write encodes rec. An empty description is omitted from the definition line.
func (w *Writer) Write(rec *Record) error {
	w.w.WriteByte('>')
	w.w.Write(rec.Name)
	if len(rec.Description) > 0 {
		w.w.WriteByte(' ')
		w.w.Write(rec.Description)
	}
	w.w.WriteByte('\n')

	width := w.LineWidth
	if width <= 0 {
		width = len(rec.Sequence)
	}
	for off := 0; off < len(rec.Sequence); off += width {
		end := off + width
		if end > len(rec.Sequence) {
			end = len(rec.Sequence)
		}
		w.w.Write(rec.Sequence[off:end])
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data.
func (w *Writer) Flush() error { return w.w.Flush() }

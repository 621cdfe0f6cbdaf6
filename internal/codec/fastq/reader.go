// Package fastq reads and writes four-line FASTQ records.
package fastq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/ajitpratap0/biostruct/internal/codec"
)

// Record is one FASTQ entry.
type Record struct {
	Name          []byte
	Description   []byte
	Sequence      []byte
	QualityScores []byte
}

// Reader decodes FASTQ records one at a time.
type Reader struct {
	lr *codec.LineReader
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{lr: codec.NewLineReader(r)}
}

// Read returns the next record, or io.EOF when there are no more.
func (r *Reader) Read() (*Record, error) {
	var def []byte
	for {
		line, err := r.lr.Next()
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(line)) > 0 {
			def = append([]byte(nil), line...)
			break
		}
	}
	if def[0] != '@' {
		return nil, r.errorf("expected name line starting with '@'")
	}
	rec := &Record{}
	def = bytes.TrimRight(def[1:], " \t")
	name := def
	if i := bytes.IndexAny(def, " \t"); i >= 0 {
		name = def[:i]
		rec.Description = append([]byte(nil), bytes.TrimSpace(def[i+1:])...)
	}
	if len(name) == 0 {
		return nil, r.errorf("missing record name")
	}
	rec.Name = append([]byte(nil), name...)

	seq, err := r.next("sequence")
	if err != nil {
		return nil, err
	}
	rec.Sequence = append([]byte{}, seq...)

	plus, err := r.next("plus")
	if err != nil {
		return nil, err
	}
	if len(plus) == 0 || plus[0] != '+' {
		return nil, r.errorf("expected plus line starting with '+'")
	}
	if len(plus) > 1 && !bytes.Equal(plus[1:], def) && !bytes.Equal(plus[1:], name) {
		return nil, r.errorf("plus line name does not match record name")
	}

	qual, err := r.next("quality")
	if err != nil {
		return nil, err
	}
	if len(qual) != len(rec.Sequence) {
		return nil, r.errorf("quality length %d does not match sequence length %d", len(qual), len(rec.Sequence))
	}
	rec.QualityScores = append([]byte{}, qual...)
	return rec, nil
}

func (r *Reader) next(what string) ([]byte, error) {
	line, err := r.lr.Next()
	if err == io.EOF {
		return nil, fmt.Errorf("fastq: unexpected end of input reading %s line", what)
	}
	if err != nil {
		return nil, fmt.Errorf("fastq: %w", err)
	}
	return line, nil
}

func (r *Reader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("fastq: line %d: %s", r.lr.Line(), fmt.Sprintf(format, args...))
}

// Writer encodes FASTQ records.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a FASTQ writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write encodes rec as four lines. The plus line carries no name.
func (w *Writer) Write(rec *Record) error {
	w.w.WriteByte('@')
	w.w.Write(rec.Name)
	if len(rec.Description) > 0 {
		w.w.WriteByte(' ')
		w.w.Write(rec.Description)
	}
	w.w.WriteByte('\n')
	w.w.Write(rec.Sequence)
	w.w.WriteString("\n+\n")
	w.w.Write(rec.QualityScores)
	return w.w.WriteByte('\n')
}

// Flush writes any buffered data.
func (w *Writer) Flush() error { return w.w.Flush() }

package vcf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ajitpratap0/biostruct/internal/codec"
)

// Reader decodes VCF text.
type Reader struct {
	lr     *codec.LineReader
	header *Header
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{lr: codec.NewLineReader(r)}
}

// ReadHeader decodes the meta lines and the #CHROM line. It must be called
// before Read.
func (r *Reader) ReadHeader() (*Header, error) {
	var buf bytes.Buffer
	for {
		line, err := r.lr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("vcf: unexpected end of input in header")
		}
		if err != nil {
			return nil, fmt.Errorf("vcf: %w", err)
		}
		if len(line) == 0 || line[0] != '#' {
			return nil, fmt.Errorf("vcf: line %d: expected header line", r.lr.Line())
		}
		buf.Write(line)
		buf.WriteByte('\n')
		if bytes.HasPrefix(line, []byte("#CHROM")) {
			break
		}
	}
	h, err := ParseHeader(buf.Bytes())
	if err != nil {
		return nil, err
	}
	r.header = h
	return h, nil
}

// Read returns the next record, or io.EOF.
func (r *Reader) Read() (*Record, error) {
	if r.header == nil {
		return nil, fmt.Errorf("vcf: Read called before ReadHeader")
	}
	for {
		line, err := r.lr.Next()
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		rec, err := ParseRecord(r.header, string(line))
		if err != nil {
			return nil, fmt.Errorf("vcf: line %d: %w", r.lr.Line(), err)
		}
		return rec, nil
	}
}

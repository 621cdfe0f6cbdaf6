// Package bcf decodes BCF2 binary variant files into the vcf record model.
package bcf

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ajitpratap0/biostruct/internal/codec/vcf"
	"github.com/ajitpratap0/biostruct/pkg/compression"
)

var magic = []byte("BCF\x02")

// Reader decodes BCF2. The stream may be BGZF compressed (the usual on-disk
// form) or plain; this is detected from the first bytes.
type Reader struct {
	src    io.Reader
	r      io.Reader
	inner  compression.Reader
	header *vcf.Header
	minor  byte
}

// NewReader returns a reader over r. Nothing is read until ReadHeader.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: r}
}

// ReadHeader reads the magic, the header text and builds the dictionaries.
func (r *Reader) ReadHeader() (*vcf.Header, error) {
	br := bufio.NewReader(r.src)
	r.r = br
	if compression.IsGzip(br) {
		r.inner = compression.NewBGZFReader(br)
		r.r = bufio.NewReader(r.inner)
	}

	var m [5]byte
	if _, err := io.ReadFull(r.r, m[:]); err != nil {
		return nil, fmt.Errorf("bcf: reading magic: %w", err)
	}
	if !bytes.Equal(m[:4], magic) {
		return nil, fmt.Errorf("bcf: invalid magic %q", m[:4])
	}
	if m[4] != 1 && m[4] != 2 {
		return nil, fmt.Errorf("bcf: unsupported version 2.%d", m[4])
	}
	r.minor = m[4]

	var n uint32
	if err := binary.Read(r.r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("bcf: reading header length: %w", err)
	}
	text, err := readN(r.r, n)
	if err != nil {
		return nil, fmt.Errorf("bcf: reading header text: %w", err)
	}
	h, err := vcf.ParseHeader(bytes.TrimRight(text, "\x00"))
	if err != nil {
		return nil, fmt.Errorf("bcf: %w", err)
	}
	r.header = h
	return h, nil
}

// Read returns the next record, or io.EOF.
func (r *Reader) Read() (*vcf.Record, error) {
	if r.header == nil {
		return nil, fmt.Errorf("bcf: Read called before ReadHeader")
	}
	var lens [8]byte
	if _, err := io.ReadFull(r.r, lens[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("bcf: reading record lengths: %w", err)
	}
	shared, err := readN(r.r, binary.LittleEndian.Uint32(lens[0:4]))
	if err != nil {
		return nil, fmt.Errorf("bcf: reading shared data: %w", err)
	}
	indiv, err := readN(r.r, binary.LittleEndian.Uint32(lens[4:8]))
	if err != nil {
		return nil, fmt.Errorf("bcf: reading individual data: %w", err)
	}

	rec, nSample, nFmt, err := r.decodeShared(shared)
	if err != nil {
		return nil, fmt.Errorf("bcf: %w", err)
	}
	if err := r.decodeIndividual(rec, indiv, nSample, nFmt); err != nil {
		return nil, fmt.Errorf("bcf: %s:%d: %w", rec.Chrom, rec.Pos, err)
	}
	return rec, nil
}

// readN reads a block of n bytes whose length came from the file. The buffer
// grows with the bytes actually read, so a corrupt length fails at the end of
// input rather than allocating n up front.
func readN(r io.Reader, n uint32) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close releases the inner BGZF reader, if any.
func (r *Reader) Close() error {
	if r.inner != nil {
		return r.inner.Close()
	}
	return nil
}

func (r *Reader) decodeShared(b []byte) (*vcf.Record, int, int, error) {
	c := &cursor{b: b}
	chrom := int(c.i32())
	pos := c.i32()
	rlen := c.i32()
	qual := c.u32()
	alleleInfo := c.u32()
	fmtSample := c.u32()
	if c.err != nil {
		return nil, 0, 0, c.err
	}

	name, ok := r.header.ContigDictionary()[chrom]
	if !ok {
		return nil, 0, 0, fmt.Errorf("contig index %d not in header", chrom)
	}
	rec := &vcf.Record{
		Chrom: name,
		Pos:   int64(pos) + 1,
		Rlen:  int64(rlen),
	}
	if qual != floatMissing {
		rec.Qual, rec.HasQual = float64(math.Float32frombits(qual)), true
	}

	nInfo := int(alleleInfo & 0xffff)
	nAllele := int(alleleInfo >> 16)
	nSample := int(fmtSample & 0xffffff)
	nFmt := int(fmtSample >> 24)

	rec.IDs = splitMissing(c.typedString(), ";")
	rec.Alt = []string{}
	for i := 0; i < nAllele; i++ {
		a := c.typedString()
		if i == 0 {
			rec.Ref = a
		} else {
			rec.Alt = append(rec.Alt, a)
		}
	}

	t, n := c.descriptor()
	rec.Filters = []string{}
	if t != typeMissing {
		for _, idx := range c.rawInts(t, n) {
			key, err := r.lookup(int(idx))
			if err != nil {
				return nil, 0, 0, fmt.Errorf("FILTER: %w", err)
			}
			rec.Filters = append(rec.Filters, key)
		}
	}

	for i := 0; i < nInfo; i++ {
		key, err := r.lookup(int(c.typedInt()))
		if c.err != nil {
			return nil, 0, 0, c.err
		}
		if err != nil {
			return nil, 0, 0, fmt.Errorf("INFO: %w", err)
		}
		def, _ := r.header.Info(key)
		t, n := c.descriptor()
		rec.Info = append(rec.Info, vcf.Field{Key: key, Value: shape(def, c.vector(t, n))})
	}
	if c.err != nil {
		return nil, 0, 0, c.err
	}
	return rec, nSample, nFmt, nil
}

func (r *Reader) decodeIndividual(rec *vcf.Record, b []byte, nSample, nFmt int) error {
	if nFmt == 0 {
		return nil
	}
	if nSample != len(r.header.Samples) {
		return fmt.Errorf("record has %d samples, header declares %d", nSample, len(r.header.Samples))
	}
	rec.Genotypes = make([]vcf.Genotype, nSample)
	for s := range rec.Genotypes {
		rec.Genotypes[s] = vcf.Genotype{Sample: r.header.Samples[s], Fields: make([]vcf.Field, 0, nFmt)}
	}

	c := &cursor{b: b}
	for i := 0; i < nFmt; i++ {
		key, err := r.lookup(int(c.typedInt()))
		if c.err != nil {
			return c.err
		}
		if err != nil {
			return fmt.Errorf("FORMAT: %w", err)
		}
		rec.Format = append(rec.Format, key)
		def, _ := r.header.Format(key)
		t, n := c.descriptor()
		for s := 0; s < nSample && c.err == nil; s++ {
			var v interface{}
			if key == "GT" && t != typeChar && t != typeFloat && t != typeMissing {
				v = genotype(c.rawInts(t, n), t)
			} else {
				v = shape(def, c.vector(t, n))
			}
			rec.Genotypes[s].Fields = append(rec.Genotypes[s].Fields, vcf.Field{Key: key, Value: v})
		}
		if c.err != nil {
			return c.err
		}
	}
	return nil
}

func (r *Reader) lookup(idx int) (string, error) {
	key, ok := r.header.StringDictionary()[idx]
	if !ok {
		return "", fmt.Errorf("string index %d not in header dictionary", idx)
	}
	return key, nil
}

// shape applies the header Number/Type to a decoded vector.
func shape(def *vcf.Definition, v interface{}) interface{} {
	if def != nil && def.Type == "Flag" {
		return true
	}
	vals, ok := v.([]interface{})
	if !ok {
		return v
	}
	if len(vals) == 0 {
		if def == nil {
			return true
		}
		return nil
	}
	if vcf.Scalar(def, len(vals)) {
		return vals[0]
	}
	return vals
}

// genotype renders a GT vector: each value is (allele+1)<<1 | phased.
func genotype(vals []int64, t byte) interface{} {
	missing, _ := intSentinels(t)
	if len(vals) == 0 {
		return nil
	}
	var sb strings.Builder
	for i, v := range vals {
		if i > 0 {
			if v != missing && v&1 == 1 {
				sb.WriteByte('|')
			} else {
				sb.WriteByte('/')
			}
		}
		allele := (v >> 1) - 1
		if v == missing || allele < 0 {
			sb.WriteByte('.')
		} else {
			sb.WriteString(strconv.FormatInt(allele, 10))
		}
	}
	return sb.String()
}

func splitMissing(s, sep string) []string {
	if s == "" || s == "." {
		return []string{}
	}
	return strings.Split(s, sep)
}

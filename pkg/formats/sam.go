package formats

import (
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// FromSAM decodes SAM text into {header, body}.
func FromSAM(in value.Value, opts Options) (value.Value, error) {
	r, err := open(in, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sr, err := sam.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeHeaderDecode, "Unable to parse SAM header")
	}
	return alignments(sr.Header(), sr.Read)
}

// FromBAM decodes a BAM file into {header, body}. BAM is BGZF framed by
// definition; BlockCompressed mode adds one more BGZF layer on top.
func FromBAM(in value.Value, opts Options) (value.Value, error) {
	r, err := open(in, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	br, err := bam.NewReader(r, 1)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeHeaderDecode, "Could not read header")
	}
	defer br.Close()
	return alignments(br.Header(), br.Read)
}

func alignments(h *sam.Header, next func() (*sam.Record, error)) (value.Value, error) {
	header := alignmentHeader(h)
	m := newAlignmentMapper()
	body, err := collect(FailFast, next, func(rec *sam.Record) (value.Value, error) {
		return m.Map(NewAlignmentRecord(rec)), nil
	})
	if err != nil {
		return nil, err
	}
	return headerBody(header, body), nil
}

// cause returns the error a structured error wraps, or err itself.
func cause(err error) error {
	var e *errors.Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Cause
	}
	return err
}

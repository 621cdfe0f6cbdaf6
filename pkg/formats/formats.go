// Package formats maps decoded bioinformatics records onto the structured
// value model and back.
//
// Every From* driver takes the caller's input value (Binary or String), a
// set of Options, and returns a FormatResult: a {header, body} record for
// the alignment, variant and graph formats, or a bare list for the sequence,
// annotation and interval formats. Each call is a pure function of its input.
//
// Decoder failures are handled by one generic collector under a per-format
// Policy: FailFast aborts the invocation, StopAtFault keeps the records
// decoded before the fault and reports it alongside them.
package formats

import (
	"io"

	"github.com/ajitpratap0/biostruct/pkg/compression"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// Options are the caller supplied switches of a From* driver.
type Options struct {
	// Compression selects raw or BGZF input. It is never sniffed.
	Compression compression.Mode
	// Description adds the description column to FASTA/FASTQ records.
	Description bool
	// QualityScores adds the quality_scores column to FASTQ records.
	QualityScores bool
}

// Policy decides what a decoder failure does to the invocation.
type Policy int

const (
	// FailFast turns the first decoder failure into the invocation's error.
	FailFast Policy = iota
	// StopAtFault ends iteration at the first decoder failure and keeps the
	// records decoded before it.
	StopAtFault
)

func (p Policy) String() string {
	if p == StopAtFault {
		return "stop_at_fault"
	}
	return "fail_fast"
}

// inputBytes extracts the payload of a Binary or String value.
func inputBytes(in value.Value) ([]byte, error) {
	switch v := in.(type) {
	case value.Binary:
		return v, nil
	case value.String:
		return []byte(v), nil
	}
	return nil, errors.Newf(errors.ErrorTypeInputType,
		"Input must be binary or string data, got %s", value.Describe(in))
}

// open extracts the input payload and wraps it for the requested mode.
func open(in value.Value, mode compression.Mode) (compression.Reader, error) {
	data, err := inputBytes(in)
	if err != nil {
		return nil, err
	}
	r, err := compression.NewReader(mode, data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid compression mode")
	}
	return r, nil
}

// collect drains next until io.EOF, mapping every element. Mapper errors are
// always fatal. A decoder error is wrapped as a record decode error; under
// FailFast the body is discarded, under StopAtFault the records mapped so far
// are returned together with the error.
func collect[T any](policy Policy, next func() (T, error), mapRecord func(T) (value.Value, error)) (value.List, error) {
	body := value.List{}
	for {
		rec, err := next()
		if err == io.EOF {
			return body, nil
		}
		if err != nil {
			err = errors.Wrap(err, errors.ErrorTypeRecordDecode, "Record reading failed")
			if policy == StopAtFault {
				return body, err
			}
			return nil, err
		}
		v, err := mapRecord(rec)
		if err != nil {
			return nil, err
		}
		body = append(body, v)
	}
}

// headerBody assembles the {header, body} result shape.
func headerBody(header value.Value, body value.List) *value.Record {
	return value.NewRecord(2).
		Set(schema.ColumnHeader, header).
		Set(schema.ColumnBody, body)
}

// Driver is the signature shared by the From* functions.
type Driver func(in value.Value, opts Options) (value.Value, error)

// DriverFor returns the From* driver of f.
func DriverFor(f schema.Format) (Driver, bool) {
	switch f {
	case schema.FASTA:
		return FromFASTA, true
	case schema.FASTQ:
		return FromFASTQ, true
	case schema.SAM:
		return FromSAM, true
	case schema.BAM:
		return FromBAM, true
	case schema.CRAM:
		return FromCRAM, true
	case schema.VCF:
		return FromVCF, true
	case schema.BCF:
		return FromBCF, true
	case schema.GFA:
		return FromGFA, true
	case schema.GFF:
		return FromGFF, true
	case schema.BED:
		return FromBED, true
	}
	return nil, false
}

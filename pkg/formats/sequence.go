package formats

import (
	"strings"

	"github.com/ajitpratap0/biostruct/internal/codec/fasta"
	"github.com/ajitpratap0/biostruct/internal/codec/fastq"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// FromFASTA decodes FASTA into a list of {id, [description], sequence}.
// The description column is present only with opts.Description; a record
// without a description then gets "".
func FromFASTA(in value.Value, opts Options) (value.Value, error) {
	r, err := open(in, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols := schema.SequenceColumns(opts.Description, false)
	return list(collect(FailFast, fasta.NewReader(r).Read, func(rec *fasta.Record) (value.Value, error) {
		vals := make([]value.Value, 0, len(cols))
		vals = append(vals, value.String(lossy(rec.Name)))
		if opts.Description {
			vals = append(vals, value.String(lossy(rec.Description)))
		}
		vals = append(vals, value.String(lossy(rec.Sequence)))
		return value.Zip(cols, vals), nil
	}))
}

// FromFASTQ decodes FASTQ into a list of {id, [description],
// [quality_scores], sequence}, the optional columns selected by opts.
func FromFASTQ(in value.Value, opts Options) (value.Value, error) {
	r, err := open(in, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols := schema.SequenceColumns(opts.Description, opts.QualityScores)
	return list(collect(FailFast, fastq.NewReader(r).Read, func(rec *fastq.Record) (value.Value, error) {
		vals := make([]value.Value, 0, len(cols))
		vals = append(vals, value.String(lossy(rec.Name)))
		if opts.Description {
			vals = append(vals, value.String(lossy(rec.Description)))
		}
		if opts.QualityScores {
			vals = append(vals, value.String(lossy(rec.QualityScores)))
		}
		vals = append(vals, value.String(lossy(rec.Sequence)))
		return value.Zip(cols, vals), nil
	}))
}

func lossy(b []byte) string { return strings.ToValidUTF8(string(b), "\uFFFD") }

// list returns a bare list result, keeping a nil interface on error.
func list(body value.List, err error) (value.Value, error) {
	if err != nil {
		return nil, err
	}
	return body, nil
}

package formats

import (
	"bytes"

	"github.com/ajitpratap0/biostruct/internal/codec/fasta"
	"github.com/ajitpratap0/biostruct/internal/codec/fastq"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// NoQualityScores is the message of the error ToFASTQ returns for records
// without a quality_scores column.
const NoQualityScores = "No quality scores: Consider using `to fasta` if you don't have any " +
	"quality scores, or pass the -q option on a fastq"

// shape is the column layout of a sequence list, read from its first record.
// The first column is the id and the last the sequence; description and
// quality_scores sit between them in that order when present.
type shape struct {
	description bool
	quality     bool
}

func (s shape) width() int {
	n := 2
	if s.description {
		n++
	}
	if s.quality {
		n++
	}
	return n
}

type sequenceRow struct {
	id, description, quality, sequence string
}

// sequenceRows validates the list and extracts the rows under the shape of
// its first record.
func sequenceRows(in value.Value) ([]sequenceRow, shape, error) {
	list, ok := value.AsList(in)
	if !ok {
		return nil, shape{}, errors.Newf(errors.ErrorTypeInputType,
			"Input must be a list of records, got %s", value.Describe(in))
	}
	if len(list) == 0 {
		return nil, shape{}, nil
	}

	first, ok := value.AsRecord(list[0])
	if !ok {
		return nil, shape{}, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"record 1 is %s, want a record", value.Describe(list[0]))
	}
	sh := shape{
		description: first.Has(schema.ColumnDescription),
		quality:     first.Has(schema.ColumnQualityScores),
	}

	rows := make([]sequenceRow, len(list))
	for i, el := range list {
		rec, ok := value.AsRecord(el)
		if !ok {
			return nil, sh, errors.Newf(errors.ErrorTypeSchemaMismatch,
				"record %d is %s, want a record", i+1, value.Describe(el))
		}
		if rec.Len() < sh.width() {
			return nil, sh, errors.Newf(errors.ErrorTypeSchemaMismatch,
				"record %d has %d columns, want %d", i+1, rec.Len(), sh.width())
		}
		vals := make([]string, rec.Len())
		for j := range vals {
			name, v := rec.At(j)
			s, ok := value.AsString(v)
			if !ok {
				return nil, sh, errors.Newf(errors.ErrorTypeSchemaMismatch,
					"column %q of record %d is %s, want a string", name, i+1, value.Describe(v))
			}
			vals[j] = s
		}

		row := sequenceRow{id: vals[0], sequence: vals[len(vals)-1]}
		col := 1
		if sh.description {
			row.description = vals[col]
			col++
		}
		if sh.quality {
			row.quality = vals[col]
		}
		rows[i] = row
	}
	return rows, sh, nil
}

// ToFASTA renders a list of sequence records as FASTA text, wrapping
// sequences at 80 columns. An empty list yields "".
func ToFASTA(in value.Value) (string, error) {
	rows, _, err := sequenceRows(in)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	w := fasta.NewWriter(&buf)
	for _, row := range rows {
		err := w.Write(&fasta.Record{
			Name:        []byte(row.id),
			Description: []byte(row.description),
			Sequence:    []byte(row.sequence),
		})
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrorTypeInternal, "Error in writing record (%s) to fasta", row.id)
		}
	}
	if err := w.Flush(); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeInternal, "flushing fasta output")
	}
	return buf.String(), nil
}

// ToFASTQ renders a list of sequence records as FASTQ text. The first
// record must carry quality_scores. An empty list yields "".
func ToFASTQ(in value.Value) (string, error) {
	rows, sh, err := sequenceRows(in)
	if err != nil {
		return "", err
	}
	if len(rows) > 0 && !sh.quality {
		return "", errors.New(errors.ErrorTypeSchemaMismatch, NoQualityScores)
	}
	var buf bytes.Buffer
	w := fastq.NewWriter(&buf)
	for _, row := range rows {
		err := w.Write(&fastq.Record{
			Name:          []byte(row.id),
			Description:   []byte(row.description),
			Sequence:      []byte(row.sequence),
			QualityScores: []byte(row.quality),
		})
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrorTypeInternal, "Error in writing record (%s) to fastq", row.id)
		}
	}
	if err := w.Flush(); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeInternal, "flushing fastq output")
	}
	return buf.String(), nil
}

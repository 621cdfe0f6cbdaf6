package formats

import (
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// FromGFF checks that the input is binary or text and returns an empty list.
// GFF records are not decoded yet: the result is always empty, never an
// error, whatever the content. The column set the records will carry is
// schema.Annotation.
func FromGFF(in value.Value, _ Options) (value.Value, error) {
	if _, err := inputBytes(in); err != nil {
		return nil, err
	}
	return value.List{}, nil
}

// FromBED checks that the input is binary or text and returns an empty list.
// Like FromGFF it is a placeholder: BED records (schema.Interval) are not
// decoded and the result is always empty.
func FromBED(in value.Value, _ Options) (value.Value, error) {
	if _, err := inputBytes(in); err != nil {
		return nil, err
	}
	return value.List{}, nil
}

// Stubbed reports whether the driver of f always returns an empty body.
func Stubbed(f schema.Format) bool {
	return f == schema.GFF || f == schema.BED
}

package output

import (
	"regexp"

	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

var columnName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// column is one column of a flat table. typ uses the Avro primitive names
// and is "null" when no row sets the column.
type column struct {
	name string
	typ  string
}

// flatTable checks that v is representable by a row oriented binary
// encoding: a list of records sharing the first record's columns, each
// column holding scalars of one kind or null. The header/body results of the
// alignment and variant formats do not qualify; their body list does.
func flatTable(enc Encoding, v value.Value) (value.List, []column, error) {
	list, ok := value.AsList(v)
	if !ok {
		return nil, nil, errors.Newf(errors.ErrorTypeUnsupported,
			"%s output needs a list of records, got %s", enc, value.Describe(v))
	}
	if len(list) == 0 {
		return list, nil, nil
	}
	first, ok := value.AsRecord(list[0])
	if !ok {
		return nil, nil, errors.Newf(errors.ErrorTypeUnsupported,
			"%s output needs records, element 1 is %s", enc, value.Describe(list[0]))
	}
	cols := make([]column, first.Len())
	for i, name := range first.Columns() {
		if !columnName.MatchString(name) {
			return nil, nil, errors.Newf(errors.ErrorTypeUnsupported, "column %q is not a valid %s field name", name, enc)
		}
		cols[i] = column{name: name, typ: "null"}
	}

	for n, item := range list {
		rec, ok := value.AsRecord(item)
		if !ok || rec.Len() != len(cols) {
			return nil, nil, errors.Newf(errors.ErrorTypeUnsupported,
				"%s output needs records shaped like the first, element %d is %s", enc, n+1, value.Describe(item))
		}
		for i := range cols {
			name, v := rec.At(i)
			if name != cols[i].name {
				return nil, nil, errors.Newf(errors.ErrorTypeUnsupported,
					"element %d has column %q where %q was expected", n+1, name, cols[i].name)
			}
			typ, err := scalarType(v)
			if err != nil {
				return nil, nil, errors.Wrapf(err, errors.ErrorTypeUnsupported, "element %d column %s", n+1, name)
			}
			switch {
			case typ == "null":
			case cols[i].typ == "null":
				cols[i].typ = typ
			case cols[i].typ != typ:
				return nil, nil, errors.Newf(errors.ErrorTypeUnsupported,
					"column %s mixes %s and %s values", name, cols[i].typ, typ)
			}
		}
	}
	return list, cols, nil
}

func scalarType(v value.Value) (string, error) {
	switch v.(type) {
	case nil, value.Null:
		return "null", nil
	case value.Bool:
		return "boolean", nil
	case value.Int:
		return "long", nil
	case value.Float:
		return "double", nil
	case value.String:
		return "string", nil
	case value.Binary:
		return "bytes", nil
	}
	return "", errors.Newf(errors.ErrorTypeUnsupported, "%s is not a scalar", value.Describe(v))
}

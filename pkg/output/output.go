// Package output renders a FormatResult for the command line and reads
// structured input back for the reverse commands.
package output

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// Encoding names an output encoding.
type Encoding string

const (
	JSON    Encoding = "json"
	YAML    Encoding = "yaml"
	Avro    Encoding = "avro"
	Parquet Encoding = "parquet"
	Arrow   Encoding = "arrow"
)

// Encodings lists every supported encoding.
var Encodings = []Encoding{JSON, YAML, Avro, Parquet, Arrow}

// ParseEncoding resolves an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	for _, e := range Encodings {
		if string(e) == s {
			return e, nil
		}
	}
	return "", errors.Newf(errors.ErrorTypeConfig, "unknown output encoding %q", s)
}

// Options control rendering.
type Options struct {
	Encoding Encoding `yaml:"encoding"`
	// Pretty indents JSON output.
	Pretty bool `yaml:"pretty"`
	// AvroCodec is the OCF block codec: null, deflate or snappy.
	AvroCodec string `yaml:"avro_codec"`
}

// DefaultOptions writes compact JSON.
func DefaultOptions() Options {
	return Options{Encoding: JSON, AvroCodec: "null"}
}

// Write renders v to w.
func Write(w io.Writer, v value.Value, opts Options) error {
	switch opts.Encoding {
	case JSON, "":
		return writeJSON(w, v, opts.Pretty)
	case YAML:
		return writeYAML(w, v)
	case Avro:
		return writeAvro(w, v, opts.AvroCodec)
	case Parquet:
		return writeParquet(w, v)
	case Arrow:
		return writeArrow(w, v)
	}
	return errors.Newf(errors.ErrorTypeConfig, "unknown output encoding %q", opts.Encoding)
}

func writeJSON(w io.Writer, v value.Value, pretty bool) error {
	data, err := value.AppendJSON(nil, v)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "encoding JSON")
	}
	if pretty {
		var buf bytes.Buffer
		if err := gojson.Indent(&buf, data, "", "  "); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "indenting JSON")
		}
		data = buf.Bytes()
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "writing output")
	}
	return nil
}

func writeYAML(w io.Writer, v value.Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value.ToYAMLNode(v)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "writing YAML output")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "writing YAML output")
	}
	return nil
}

// Read decodes a JSON or YAML document into a structured value. Mapping
// order is preserved, so records keep the column order they were written in.
func Read(data []byte) (value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInputType, "parsing structured input")
	}
	if doc.Kind == 0 {
		return value.List{}, nil
	}
	v, err := value.FromYAMLNode(&doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInputType, "parsing structured input")
	}
	return v, nil
}

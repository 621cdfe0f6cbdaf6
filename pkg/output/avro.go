package output

import (
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// AvroRecordName is the name of the record schema written to the OCF header.
const AvroRecordName = "biostruct_record"

// writeAvro writes v as an Avro object container file.
func writeAvro(w io.Writer, v value.Value, codecName string) error {
	list, fields, err := flatTable(Avro, v)
	if err != nil {
		return err
	}

	codec, err := goavro.NewCodec(avroSchema(fields))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create Avro codec")
	}
	if codecName == "" {
		codecName = goavro.CompressionNullLabel
	}
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: codecName,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to create Avro writer")
	}

	batch := make([]interface{}, 0, len(list))
	for _, item := range list {
		rec, _ := value.AsRecord(item)
		batch = append(batch, avroNative(rec, fields))
	}
	if len(batch) == 0 {
		return nil
	}
	if err := ocf.Append(batch); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Avro records")
	}
	return nil
}

// avroSchema renders the record schema. Every typed column is a
// ["null", type] union.
func avroSchema(fields []column) string {
	out := make([]map[string]interface{}, len(fields))
	for i, f := range fields {
		var typ interface{} = "null"
		if f.typ != "null" {
			typ = []interface{}{"null", f.typ}
		}
		out[i] = map[string]interface{}{"name": f.name, "type": typ}
	}
	schema, _ := gojson.Marshal(map[string]interface{}{
		"type":   "record",
		"name":   AvroRecordName,
		"fields": out,
	})
	return string(schema)
}

func avroNative(rec *value.Record, fields []column) map[string]interface{} {
	native := make(map[string]interface{}, len(fields))
	for i, f := range fields {
		_, v := rec.At(i)
		if f.typ == "null" {
			native[f.name] = nil
			continue
		}
		switch t := v.(type) {
		case value.Bool:
			native[f.name] = goavro.Union(f.typ, bool(t))
		case value.Int:
			native[f.name] = goavro.Union(f.typ, int64(t))
		case value.Float:
			native[f.name] = goavro.Union(f.typ, float64(t))
		case value.String:
			native[f.name] = goavro.Union(f.typ, string(t))
		case value.Binary:
			native[f.name] = goavro.Union(f.typ, []byte(t))
		default:
			native[f.name] = nil
		}
	}
	return native
}

package output

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// writeParquet writes v as a single row group Parquet file, snappy
// compressed.
func writeParquet(w io.Writer, v value.Value) error {
	rec, err := arrowRecord(Parquet, v)
	if err != nil {
		return err
	}
	defer rec.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(memory.DefaultAllocator),
	)
	fw, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create Parquet writer")
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Parquet records")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close Parquet writer")
	}
	return nil
}

// writeArrow writes v as an Arrow IPC file holding one record batch.
func writeArrow(w io.Writer, v value.Value) error {
	rec, err := arrowRecord(Arrow, v)
	if err != nil {
		return err
	}
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create Arrow writer")
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Arrow records")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close Arrow writer")
	}
	return nil
}

// arrowRecord builds one record batch from a flat table. Columns that are
// never set become nullable strings.
func arrowRecord(enc Encoding, v value.Value) (arrow.Record, error) {
	list, cols, err := flatTable(enc, v)
	if err != nil {
		return nil, err
	}
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.name, Type: arrowType(c.typ), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	for _, item := range list {
		rec, _ := value.AsRecord(item)
		for i := range cols {
			_, fv := rec.At(i)
			appendValue(b.Field(i), fv)
		}
	}
	return b.NewRecord(), nil
}

func arrowType(typ string) arrow.DataType {
	switch typ {
	case "boolean":
		return arrow.FixedWidthTypes.Boolean
	case "long":
		return arrow.PrimitiveTypes.Int64
	case "double":
		return arrow.PrimitiveTypes.Float64
	case "bytes":
		return arrow.BinaryTypes.Binary
	}
	return arrow.BinaryTypes.String
}

// appendValue adds one cell. flatTable has already checked that the value
// kind matches the builder.
func appendValue(builder array.Builder, v value.Value) {
	switch b := builder.(type) {
	case *array.BooleanBuilder:
		if t, ok := v.(value.Bool); ok {
			b.Append(bool(t))
			return
		}
	case *array.Int64Builder:
		if t, ok := v.(value.Int); ok {
			b.Append(int64(t))
			return
		}
	case *array.Float64Builder:
		if t, ok := v.(value.Float); ok {
			b.Append(float64(t))
			return
		}
	case *array.StringBuilder:
		if t, ok := v.(value.String); ok {
			b.Append(string(t))
			return
		}
	case *array.BinaryBuilder:
		if t, ok := v.(value.Binary); ok {
			b.Append([]byte(t))
			return
		}
	}
	builder.AppendNull()
}

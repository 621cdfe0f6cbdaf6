package output

import (
	"bytes"
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

func sampleRows() value.List {
	return value.List{
		value.NewRecord(3).
			Set("id", value.String("r1")).
			Set("score", value.Null{}).
			Set("sequence", value.String("ACGT")),
		value.NewRecord(3).
			Set("id", value.String("r2")).
			Set("score", value.Float(0.5)).
			Set("sequence", value.String("GG")),
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRows(), DefaultOptions()))
	assert.Equal(t,
		`[{"id":"r1","score":null,"sequence":"ACGT"},{"id":"r2","score":0.5,"sequence":"GG"}]`+"\n",
		buf.String())

	buf.Reset()
	rec := value.NewRecord(2).Set("b", value.Int(1)).Set("a", value.List{})
	require.NoError(t, Write(&buf, rec, Options{Encoding: JSON, Pretty: true}))
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": []\n}\n", buf.String())
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	rec := value.NewRecord(2).
		Set("zeta", value.String("x")).
		Set("alpha", value.List{value.Int(1), value.Int(2)})
	require.NoError(t, Write(&buf, rec, Options{Encoding: YAML}))
	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("zeta")), bytes.Index(buf.Bytes(), []byte("alpha")), out)

	back, err := Read(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}

func TestWriteAvro(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRows(), Options{Encoding: Avro, AvroCodec: "deflate"}))

	ocf, err := goavro.NewOCFReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	var got []map[string]interface{}
	for ocf.Scan() {
		datum, err := ocf.Read()
		require.NoError(t, err)
		got = append(got, datum.(map[string]interface{}))
	}
	require.NoError(t, ocf.Err())
	require.Len(t, got, 2)
	assert.Nil(t, got[0]["score"])
	assert.Equal(t, map[string]interface{}{"double": 0.5}, got[1]["score"])
	assert.Equal(t, map[string]interface{}{"string": "GG"}, got[1]["sequence"])
	assert.Contains(t, ocf.Codec().Schema(), AvroRecordName)
}

func TestFlatEncodingsUnsupported(t *testing.T) {
	tests := map[string]value.Value{
		"not a list":  value.NewRecord(1).Set("a", value.Int(1)),
		"nested":      value.List{value.NewRecord(1).Set("a", value.List{})},
		"bad name":    value.List{value.NewRecord(1).Set("chrom-start", value.Int(1))},
		"mixed kinds": value.List{value.NewRecord(1).Set("a", value.Int(1)), value.NewRecord(1).Set("a", value.String("x"))},
		"ragged":      value.List{value.NewRecord(1).Set("a", value.Int(1)), value.NewRecord(1).Set("b", value.Int(1))},
		"scalar item": value.List{value.Int(1)},
	}
	for _, enc := range []Encoding{Avro, Parquet, Arrow} {
		for name, in := range tests {
			t.Run(string(enc)+"/"+name, func(t *testing.T) {
				var buf bytes.Buffer
				err := Write(&buf, in, Options{Encoding: enc})
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))
			})
		}
	}
}

func TestParseEncoding(t *testing.T) {
	for _, e := range Encodings {
		got, err := ParseEncoding(string(e))
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	_, err := ParseEncoding("xml")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Error(t, Write(&bytes.Buffer{}, value.List{}, Options{Encoding: "xml"}))
}

func TestRead(t *testing.T) {
	t.Run("json keeps column order", func(t *testing.T) {
		v, err := Read([]byte(`[{"id":"r1","description":"d","sequence":"AC"}]`))
		require.NoError(t, err)
		l, ok := value.AsList(v)
		require.True(t, ok)
		r, ok := value.AsRecord(l[0])
		require.True(t, ok)
		assert.Equal(t, []string{"id", "description", "sequence"}, r.Columns())
	})

	t.Run("yaml", func(t *testing.T) {
		v, err := Read([]byte("- id: r1\n  sequence: AC\n"))
		require.NoError(t, err)
		assert.Equal(t, value.List{value.NewRecord(2).
			Set("id", value.String("r1")).
			Set("sequence", value.String("AC"))}, v)
	})

	t.Run("empty", func(t *testing.T) {
		v, err := Read(nil)
		require.NoError(t, err)
		assert.Equal(t, value.List{}, v)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Read([]byte("[{"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInputType))
	})
}

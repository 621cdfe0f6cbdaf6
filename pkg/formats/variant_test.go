package formats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/biostruct/pkg/compression"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/testutil"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

const vcfHeader = "##fileformat=VCFv4.2\n" +
	"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Total Depth\">\n" +
	"##INFO=<ID=AF,Number=A,Type=Float,Description=\"Allele Frequency\">\n" +
	"##INFO=<ID=DB,Number=0,Type=Flag,Description=\"dbSNP membership\">\n" +
	"##INFO=<ID=END,Number=1,Type=Integer,Description=\"End position\">\n" +
	"##FILTER=<ID=q10,Description=\"Quality below 10\">\n" +
	"##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n" +
	"##FORMAT=<ID=GQ,Number=1,Type=Integer,Description=\"Genotype Quality\">\n" +
	"##ALT=<ID=DEL,Description=\"Deletion\">\n" +
	"##contig=<ID=20,length=62435964,assembly=B36>\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA1\tNA2\n"

const vcfText = vcfHeader +
	"20\t14370\trs6054257\tG\tA\t29\tPASS\tDP=14;AF=0.5;DB\tGT:GQ\t0|0:48\t1|0:.\n" +
	"20\t17330\t.\tT\t<DEL>\t.\tq10\tDP=11;END=17340\tGT\t./.\t0/1\n"

func TestFromVCF(t *testing.T) {
	out, err := FromVCF(value.String(vcfText), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"header", "body"}, testutil.Record(t, out).Columns())

	body := testutil.List(t, testutil.Field(t, out, "body"))
	require.Len(t, body, 2)

	first := testutil.Record(t, body[0])
	assert.Equal(t, schema.Columns(schema.Variant), first.Columns())
	assert.Equal(t, []value.Value{
		value.String("20"),
		value.Int(14370),
		value.Int(1),
		value.Float(29),
		value.List{value.String("rs6054257")},
		value.String("G"),
		value.List{value.String("A")},
		value.List{value.String("PASS")},
		value.NewRecord(3).
			Set("DP", value.Int(14)).
			Set("AF", value.List{value.Float(0.5)}).
			Set("DB", value.Bool(true)),
		value.List{
			value.NewRecord(3).
				Set("sample", value.String("NA1")).
				Set("GT", value.String("0|0")).
				Set("GQ", value.Int(48)),
			value.NewRecord(3).
				Set("sample", value.String("NA2")).
				Set("GT", value.String("1|0")).
				Set("GQ", value.Null{}),
		},
	}, first.Values())

	second := body[1]
	assert.Equal(t, value.Int(11), testutil.Field(t, second, "rlen"))
	assert.Equal(t, value.Null{}, testutil.Field(t, second, "qual"))
	assert.Equal(t, value.List{}, testutil.Field(t, second, "id"))
	assert.Equal(t, value.List{value.String("<DEL>")}, testutil.Field(t, second, "alt"))
	assert.Equal(t, value.List{value.String("q10")}, testutil.Field(t, second, "filter"))
	assert.Equal(t, value.Int(17340), testutil.Field(t, second, "info", "END"))
	assert.Equal(t, "./.", testutil.Text(t, testutil.List(t, testutil.Field(t, second, "genotypes"))[0], "GT"))
}

func TestVariantHeader(t *testing.T) {
	out, err := FromVCF(value.String(vcfText), Options{})
	require.NoError(t, err)
	header := testutil.Field(t, out, "header")

	assert.Equal(t, schema.Columns(schema.VariantHeader), testutil.Record(t, header).Columns())
	assert.Equal(t, "VCFv4.2", testutil.Text(t, header, "file_format"))
	assert.Equal(t, []string{"DP", "AF", "DB", "END"}, testutil.Record(t, testutil.Field(t, header, "info")).Columns())
	assert.Equal(t, "A", testutil.Text(t, header, "info", "AF", "number"))
	assert.Equal(t, "Float", testutil.Text(t, header, "info", "AF", "type"))
	assert.Equal(t, "Allele Frequency", testutil.Text(t, header, "info", "AF", "description"))

	filter := testutil.Record(t, testutil.Field(t, header, "filter", "q10"))
	assert.Equal(t, []string{"description"}, filter.Columns())
	assert.Equal(t, "Deletion", testutil.Text(t, header, "alt_alleles", "DEL", "description"))
	assert.Equal(t, "Integer", testutil.Text(t, header, "format", "GQ", "type"))

	assert.Equal(t, value.Int(62435964), testutil.Field(t, header, "contig", "20", "length"))
	assert.Equal(t, "B36", testutil.Text(t, header, "contig", "20", "assembly"))
	assert.Equal(t, value.Strings([]string{"NA1", "NA2"}), testutil.Field(t, header, "samples"))
}

func TestFromVCFCompressed(t *testing.T) {
	data := testutil.BGZF(t, []byte(vcfText))
	out, err := FromVCF(value.Binary(data), Options{Compression: compression.BlockCompressed})
	require.NoError(t, err)
	assert.Len(t, testutil.List(t, testutil.Field(t, out, "body")), 2)
}

func TestFromVCFErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want errors.ErrorType
	}{
		{"missing fileformat", "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n", errors.ErrorTypeHeaderDecode},
		{"bad position", vcfHeader + "20\tabc\t.\tG\tA\t.\t.\t.\tGT\t0\t1\n", errors.ErrorTypeRecordDecode},
		{"bad integer", vcfHeader + "20\t1\t.\tG\tA\t.\t.\tDP=x\tGT\t0\t1\n", errors.ErrorTypeRecordDecode},
		{"column count", vcfHeader + "20\t1\t.\tG\tA\t.\t.\t.\tGT\t0\n", errors.ErrorTypeRecordDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := FromVCF(value.String(tt.in), Options{})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.want, errors.GetType(err))
		})
	}
}

// bcfHeaderOnly encodes a BCF 2.2 stream holding just the header text.
func bcfHeaderOnly(text string) []byte {
	var buf bytes.Buffer
	buf.WriteString("BCF\x02\x02")
	buf.Write(le32(uint32(len(text) + 1)))
	buf.WriteString(text)
	buf.WriteByte(0)
	return buf.Bytes()
}

func TestFromBCF(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		out, err := FromBCF(value.Binary(bcfHeaderOnly(vcfHeader)), Options{})
		require.NoError(t, err)
		assert.Equal(t, value.List{}, testutil.Field(t, out, "body"))
		assert.Equal(t, "VCFv4.2", testutil.Text(t, out, "header", "file_format"))
	})

	t.Run("bgzf stream", func(t *testing.T) {
		data := testutil.BGZF(t, bcfHeaderOnly(vcfHeader))
		out, err := FromBCF(value.Binary(data), Options{})
		require.NoError(t, err)
		assert.Equal(t, value.Strings([]string{"NA1", "NA2"}), testutil.Field(t, out, "header", "samples"))
	})

	t.Run("bad magic", func(t *testing.T) {
		_, err := FromBCF(value.String(vcfText), Options{})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeHeaderDecode))
		assert.Contains(t, err.Error(), "Could not read header")
	})

	t.Run("truncated record", func(t *testing.T) {
		data := append(bcfHeaderOnly(vcfHeader), 1, 2, 3)
		_, err := FromBCF(value.Binary(data), Options{})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeRecordDecode))
	})
}

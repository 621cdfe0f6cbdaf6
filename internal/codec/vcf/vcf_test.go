package vcf

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = `##fileformat=VCFv4.3
##FILTER=<ID=q10,Description="Quality below 10">
##INFO=<ID=DP,Number=1,Type=Integer,Description="Total Depth">
##INFO=<ID=AF,Number=A,Type=Float,Description="Allele \"Frequency\"">
##INFO=<ID=DB,Number=0,Type=Flag,Description="dbSNP membership">
##INFO=<ID=END,Number=1,Type=Integer,Description="End position">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype Quality">
##ALT=<ID=DEL,Description="Deletion">
##contig=<ID=20,length=62435964,assembly=B36>
##contig=<ID=21>
##reference=file:///seq/references/1000GenomesPilot-NCBI36.fasta
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NA00001	NA00002
`

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader([]byte(testHeader))
	require.NoError(t, err)

	assert.Equal(t, "VCFv4.3", h.FileFormat)
	require.Len(t, h.Infos, 4)
	assert.Equal(t, "AF", h.Infos[1].ID)
	assert.Equal(t, "A", h.Infos[1].Number)
	assert.Equal(t, `Allele "Frequency"`, h.Infos[1].Description)
	require.Len(t, h.Filters, 1)
	require.Len(t, h.AltAlleles, 1)
	require.Len(t, h.Contigs, 2)
	assert.Equal(t, int64(62435964), h.Contigs[0].Length)
	assert.Equal(t, []Attr{{Key: "assembly", Value: "B36"}}, h.Contigs[0].Other)
	assert.False(t, h.Contigs[1].HasLength)
	assert.Equal(t, []string{"NA00001", "NA00002"}, h.Samples)
	assert.Equal(t, []Attr{{Key: "reference", Value: "file:///seq/references/1000GenomesPilot-NCBI36.fasta"}}, h.Other)

	assert.Equal(t, map[int]string{
		0: "PASS", 1: "q10", 2: "DP", 3: "AF", 4: "DB", 5: "END", 6: "GT", 7: "GQ",
	}, h.StringDictionary())
	assert.Equal(t, map[int]string{0: "20", 1: "21"}, h.ContigDictionary())
}

func TestParseHeaderIDX(t *testing.T) {
	h, err := ParseHeader([]byte("##fileformat=VCFv4.2\n" +
		"##FILTER=<ID=PASS,Description=\"All filters passed\",IDX=0>\n" +
		"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Depth\",IDX=3>\n" +
		"##FORMAT=<ID=DP,Number=1,Type=Integer,Description=\"Depth\",IDX=3>\n" +
		"##contig=<ID=chr2,IDX=1>\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"))
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "PASS", 3: "DP"}, h.StringDictionary())
	assert.Equal(t, map[int]string{1: "chr2"}, h.ContigDictionary())
	assert.Empty(t, h.Samples)
}

func TestParseHeaderErrors(t *testing.T) {
	tests := map[string]string{
		"no fileformat": "##INFO=<ID=DP,Number=1>\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n",
		"no columns":    "##fileformat=VCFv4.3\n",
		"bad columns":   "##fileformat=VCFv4.3\n#CHROM\tPOS\n",
		"unterminated":  "##fileformat=VCFv4.3\n##INFO=<ID=DP,Description=\"x>\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n",
		"missing id":    "##fileformat=VCFv4.3\n##INFO=<Number=1>\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseHeader([]byte(text))
			assert.Error(t, err)
		})
	}
}

func TestReader(t *testing.T) {
	body := "20\t14370\trs6054257\tG\tA\t29\tPASS\tDP=14;AF=0.5;DB\tGT:GQ\t0|0:48\t1|0:.\n" +
		"\n" +
		"20\t1230237\t.\tT\t.\t.\tq10\tDP=13;END=1230240\tGT\t0/0\t./.\n"
	r := NewReader(strings.NewReader(testHeader + body))

	h, err := r.ReadHeader()
	require.NoError(t, err)
	require.Len(t, h.Samples, 2)

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "20", rec.Chrom)
	assert.Equal(t, int64(14370), rec.Pos)
	assert.Equal(t, int64(1), rec.Rlen)
	assert.Equal(t, []string{"rs6054257"}, rec.IDs)
	assert.Equal(t, []string{"A"}, rec.Alt)
	assert.True(t, rec.HasQual)
	assert.Equal(t, 29.0, rec.Qual)
	assert.Equal(t, []string{"PASS"}, rec.Filters)
	assert.Equal(t, []Field{
		{Key: "DP", Value: int64(14)},
		{Key: "AF", Value: []interface{}{0.5}},
		{Key: "DB", Value: true},
	}, rec.Info)
	require.Len(t, rec.Genotypes, 2)
	assert.Equal(t, Genotype{Sample: "NA00001", Fields: []Field{
		{Key: "GT", Value: "0|0"}, {Key: "GQ", Value: int64(48)},
	}}, rec.Genotypes[0])
	assert.Equal(t, []Field{{Key: "GT", Value: "1|0"}, {Key: "GQ", Value: nil}}, rec.Genotypes[1].Fields)

	rec, err = r.Read()
	require.NoError(t, err)
	assert.Empty(t, rec.IDs)
	assert.Empty(t, rec.Alt)
	assert.False(t, rec.HasQual)
	assert.Equal(t, []string{"q10"}, rec.Filters)
	assert.Equal(t, int64(4), rec.Rlen)
	assert.Equal(t, "./.", rec.Genotypes[1].Fields[0].Value)

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderRecordErrors(t *testing.T) {
	tests := map[string]string{
		"few columns":    "20\t1\t.\tA\n",
		"bad pos":        "20\tx\t.\tA\t.\t.\t.\t.\tGT\t0\t0\n",
		"bad integer":    "20\t1\t.\tA\t.\t.\t.\tDP=x\tGT\t0\t0\n",
		"missing sample": "20\t1\t.\tA\t.\t.\t.\t.\tGT\t0\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewReader(strings.NewReader(testHeader + body))
			_, err := r.ReadHeader()
			require.NoError(t, err)
			_, err = r.Read()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 14")
		})
	}
}

func TestReaderHeaderErrors(t *testing.T) {
	_, err := NewReader(strings.NewReader("")).ReadHeader()
	assert.Error(t, err)

	_, err = NewReader(strings.NewReader("##fileformat=VCFv4.3\n20\t1\n")).ReadHeader()
	assert.Error(t, err)
}

func TestTypeValue(t *testing.T) {
	one := &Definition{ID: "X", Number: "1", Type: "Float"}
	many := &Definition{ID: "Y", Number: ".", Type: "Integer"}

	v, err := TypeValue(one, "1.25")
	require.NoError(t, err)
	assert.Equal(t, 1.25, v)

	v, err = TypeValue(many, "1,.,3")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), nil, int64(3)}, v)

	v, err = TypeValue(nil, "a,b")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, v)

	v, err = TypeValue(nil, ".")
	require.NoError(t, err)
	assert.Nil(t, v)
}

package bcf

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"runtime"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/biostruct/internal/codec/vcf"
)

const headerText = "##fileformat=VCFv4.2\n" +
	"##FILTER=<ID=q10,Description=\"Quality below 10\">\n" +
	"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Total Depth\">\n" +
	"##INFO=<ID=AF,Number=A,Type=Float,Description=\"Allele Frequency\">\n" +
	"##INFO=<ID=DB,Number=0,Type=Flag,Description=\"dbSNP membership\">\n" +
	"##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n" +
	"##FORMAT=<ID=GQ,Number=1,Type=Integer,Description=\"Genotype Quality\">\n" +
	"##contig=<ID=20,length=62435964>\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA1\tNA2\n"

type enc struct{ bytes.Buffer }

func (e *enc) u32(v uint32) { binary.Write(&e.Buffer, binary.LittleEndian, v) }
func (e *enc) i32(v int32)  { binary.Write(&e.Buffer, binary.LittleEndian, v) }

func (e *enc) typedInt8(v int8) {
	e.WriteByte(1<<4 | typeInt8)
	e.WriteByte(byte(v))
}

func (e *enc) int8s(vs ...int8) {
	e.WriteByte(byte(len(vs))<<4 | typeInt8)
	for _, v := range vs {
		e.WriteByte(byte(v))
	}
}

func (e *enc) str(s string) {
	e.WriteByte(byte(len(s))<<4 | typeChar)
	e.WriteString(s)
}

func buildBCF(t *testing.T) []byte {
	t.Helper()
	var file enc
	file.WriteString("BCF\x02\x02")
	file.u32(uint32(len(headerText) + 1))
	file.WriteString(headerText)
	file.WriteByte(0)

	// 20:14370 rs6054257 G>A
	var shared, indiv enc
	shared.i32(0)
	shared.i32(14369)
	shared.i32(1)
	shared.u32(math.Float32bits(29))
	shared.u32(2<<16 | 3)
	shared.u32(2<<24 | 2)
	shared.str("rs6054257")
	shared.str("G")
	shared.str("A")
	shared.int8s(0)
	shared.typedInt8(2)
	shared.int8s(14)
	shared.typedInt8(3)
	shared.WriteByte(1<<4 | typeFloat)
	shared.u32(math.Float32bits(0.5))
	shared.typedInt8(4)
	shared.WriteByte(typeMissing)

	indiv.typedInt8(5)
	indiv.WriteByte(2<<4 | typeInt8)
	indiv.Write([]byte{2, 3, 4, 3})
	indiv.typedInt8(6)
	indiv.WriteByte(1<<4 | typeInt8)
	indiv.Write([]byte{48, 0x80})

	file.u32(uint32(shared.Len()))
	file.u32(uint32(indiv.Len()))
	file.Write(shared.Bytes())
	file.Write(indiv.Bytes())

	// 20:1230237 T, no qual, no id, no filter, no info, no format
	shared.Reset()
	shared.i32(0)
	shared.i32(1230236)
	shared.i32(4)
	shared.u32(floatMissing)
	shared.u32(1 << 16)
	shared.u32(2)
	shared.WriteByte(typeChar)
	shared.str("T")
	shared.WriteByte(typeMissing)

	file.u32(uint32(shared.Len()))
	file.u32(0)
	file.Write(shared.Bytes())

	return file.Bytes()
}

func readAll(t *testing.T, r *Reader) []*vcf.Record {
	t.Helper()
	_, err := r.ReadHeader()
	require.NoError(t, err)
	var recs []*vcf.Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return recs
		}
		require.NoError(t, err)
		recs = append(recs, rec)
	}
}

func checkRecords(t *testing.T, recs []*vcf.Record) {
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "20", first.Chrom)
	assert.Equal(t, int64(14370), first.Pos)
	assert.Equal(t, int64(1), first.Rlen)
	assert.True(t, first.HasQual)
	assert.Equal(t, 29.0, first.Qual)
	assert.Equal(t, []string{"rs6054257"}, first.IDs)
	assert.Equal(t, "G", first.Ref)
	assert.Equal(t, []string{"A"}, first.Alt)
	assert.Equal(t, []string{"PASS"}, first.Filters)
	assert.Equal(t, []vcf.Field{
		{Key: "DP", Value: int64(14)},
		{Key: "AF", Value: []interface{}{0.5}},
		{Key: "DB", Value: true},
	}, first.Info)
	assert.Equal(t, []string{"GT", "GQ"}, first.Format)
	assert.Equal(t, []vcf.Genotype{
		{Sample: "NA1", Fields: []vcf.Field{{Key: "GT", Value: "0|0"}, {Key: "GQ", Value: int64(48)}}},
		{Sample: "NA2", Fields: []vcf.Field{{Key: "GT", Value: "1|0"}, {Key: "GQ", Value: nil}}},
	}, first.Genotypes)

	second := recs[1]
	assert.Equal(t, int64(1230237), second.Pos)
	assert.Equal(t, int64(4), second.Rlen)
	assert.False(t, second.HasQual)
	assert.Empty(t, second.IDs)
	assert.Equal(t, "T", second.Ref)
	assert.Empty(t, second.Alt)
	assert.Empty(t, second.Filters)
	assert.Empty(t, second.Info)
	assert.Nil(t, second.Genotypes)
}

func TestReadPlain(t *testing.T) {
	r := NewReader(bytes.NewReader(buildBCF(t)))
	checkRecords(t, readAll(t, r))
	assert.NoError(t, r.Close())
}

func TestReadBGZF(t *testing.T) {
	var buf bytes.Buffer
	w := bgzf.NewWriter(&buf, 1)
	_, err := w.Write(buildBCF(t))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := NewReader(&buf)
	checkRecords(t, readAll(t, r))
	assert.NoError(t, r.Close())
}

func TestHeaderErrors(t *testing.T) {
	tests := map[string][]byte{
		"empty":     nil,
		"bad magic": []byte("BAM\x01\x02\x00\x00\x00\x00"),
		"version":   []byte("BCF\x02\x07\x00\x00\x00\x00"),
		"truncated": []byte("BCF\x02\x02\xff\x00\x00\x00##fileformat"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(data)).ReadHeader()
			assert.Error(t, err)
		})
	}
}

func TestRecordErrors(t *testing.T) {
	data := buildBCF(t)
	headerLen := 5 + 4 + len(headerText) + 1

	t.Run("truncated", func(t *testing.T) {
		r := NewReader(bytes.NewReader(data[:headerLen+12]))
		_, err := r.ReadHeader()
		require.NoError(t, err)
		_, err = r.Read()
		assert.Error(t, err)
	})

	t.Run("unknown contig", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		binary.LittleEndian.PutUint32(bad[headerLen+8:], 7)
		r := NewReader(bytes.NewReader(bad))
		_, err := r.ReadHeader()
		require.NoError(t, err)
		_, err = r.Read()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "contig index 7")
	})
}

func TestOversizedLengths(t *testing.T) {
	data := buildBCF(t)
	headerLen := 5 + 4 + len(headerText) + 1
	withLen := func(off int, n uint32) []byte {
		bad := append([]byte(nil), data...)
		binary.LittleEndian.PutUint32(bad[off:], n)
		return bad
	}

	tests := []struct {
		name     string
		data     []byte
		inHeader bool
	}{
		{"header length", withLen(5, 0xfffffff0), true},
		{"shared length", withLen(headerLen, 0xfffffff0), false},
		{"individual length", withLen(headerLen+4, 0xfffffff0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)

			r := NewReader(bytes.NewReader(tt.data))
			_, err := r.ReadHeader()
			if !tt.inHeader {
				require.NoError(t, err)
				_, err = r.Read()
			}
			runtime.ReadMemStats(&after)

			require.Error(t, err)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
		})
	}
}

func TestVectorCountOverrun(t *testing.T) {
	tests := []struct {
		name string
		typ  byte
	}{
		{"int8", typeInt8},
		{"int16", typeInt16},
		{"int32", typeInt32},
		{"float", typeFloat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &cursor{b: []byte{1, 2, 3, 4, 5}}
			assert.Nil(t, c.vector(tt.typ, math.MaxInt32))
			require.Error(t, c.err)
			assert.Contains(t, c.err.Error(), "2147483647 values")
		})
	}

	t.Run("raw ints", func(t *testing.T) {
		c := &cursor{b: []byte{1, 2, 3, 4}}
		assert.Nil(t, c.rawInts(typeInt16, 1<<30))
		assert.Error(t, c.err)
	})

	t.Run("overflow descriptor", func(t *testing.T) {
		var e enc
		e.WriteByte(15<<4 | typeInt32)
		e.WriteByte(1<<4 | typeInt32)
		e.i32(math.MaxInt32)
		e.i32(7)
		c := &cursor{b: e.Bytes()}
		typ, n := c.descriptor()
		require.NoError(t, c.err)
		assert.Equal(t, math.MaxInt32, n)
		assert.Nil(t, c.vector(typ, n))
		assert.Error(t, c.err)
	})

	t.Run("count that fits", func(t *testing.T) {
		c := &cursor{b: []byte{5, 0x81, 6}}
		assert.Equal(t, []interface{}{int64(5)}, c.vector(typeInt8, 3))
		assert.NoError(t, c.err)
	})
}

func TestGenotype(t *testing.T) {
	assert.Equal(t, "0/1", genotype([]int64{2, 4}, typeInt8))
	assert.Equal(t, "./.", genotype([]int64{0, 0}, typeInt8))
	assert.Equal(t, "1", genotype([]int64{4}, typeInt8))
	assert.Equal(t, ".|.", genotype([]int64{math.MinInt8, 1}, typeInt8))
	assert.Nil(t, genotype(nil, typeInt8))
}

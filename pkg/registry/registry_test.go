package registry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/biostruct/pkg/compression"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/formats"
	"github.com/ajitpratap0/biostruct/pkg/metrics"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/testutil"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		direction Direction
		name      string
		format    schema.Format
		mode      compression.Mode
	}{
		{From, "fasta", schema.FASTA, compression.Raw},
		{From, "fa", schema.FASTA, compression.Raw},
		{From, "fa.gz", schema.FASTA, compression.BlockCompressed},
		{From, "fastq.gz", schema.FASTQ, compression.BlockCompressed},
		{From, "fq", schema.FASTQ, compression.Raw},
		{From, "vcf.gz", schema.VCF, compression.BlockCompressed},
		{From, "bam", schema.BAM, compression.Raw},
		{From, "gfa.gz", schema.GFA, compression.BlockCompressed},
		{To, "fastq", schema.FASTQ, compression.Raw},
		{To, "fa", schema.FASTA, compression.Raw},
	}
	for _, tt := range tests {
		t.Run(string(tt.direction)+" "+tt.name, func(t *testing.T) {
			cmd, err := Lookup(tt.direction, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.format, cmd.Format)
			assert.Equal(t, tt.mode, cmd.Mode)
			assert.Equal(t, tt.direction, cmd.Direction)
		})
	}

	for _, bad := range []struct {
		direction Direction
		name      string
	}{{From, "xyz"}, {To, "sam"}, {To, "fasta.gz"}} {
		_, err := Lookup(bad.direction, bad.name)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	}
}

func TestTableCoversEveryFormat(t *testing.T) {
	seen := map[schema.Format]bool{}
	for _, c := range Commands() {
		if c.Direction == From {
			seen[c.Format] = true
		}
	}
	for _, f := range schema.Formats() {
		assert.True(t, seen[f], f)
	}

	// Commands hands out copies.
	cmds := Commands()
	cmds[0].Name = "changed"
	assert.Equal(t, "fasta", Commands()[0].Name)

	assert.Contains(t, Names(To), "fq")
	assert.NotContains(t, Names(To), "sam")
}

func newRegistry(t *testing.T) (*Registry, *observer.ObservedLogs, *metrics.Collector) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := metrics.NewCollector(prometheus.NewRegistry(), "")
	require.NoError(t, err)
	return New(zap.New(core), c), logs, c
}

func TestFrom(t *testing.T) {
	r, logs, c := newRegistry(t)
	ctx := context.Background()

	t.Run("gz alias reads bgzf", func(t *testing.T) {
		data := testutil.BGZF(t, []byte(">a\nAC\n>b\nGT\n"))
		out, err := r.From(ctx, "fa.gz", value.Binary(data), formats.Options{})
		require.NoError(t, err)
		assert.Len(t, testutil.List(t, out), 2)
		assert.Equal(t, int64(2), c.Records("fasta"))
	})

	t.Run("flags", func(t *testing.T) {
		out, err := r.From(ctx, "fastq", value.String("@r d\nAC\n+\nII\n"),
			formats.Options{Description: true, QualityScores: true})
		require.NoError(t, err)
		assert.Equal(t, "d", testutil.Text(t, testutil.List(t, out)[0], "description"))

		_, err = r.From(ctx, "sam", value.String(""), formats.Options{Description: true})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("stub warns", func(t *testing.T) {
		out, err := r.From(ctx, "bed", value.String("chr1\t1\t2\n"), formats.Options{})
		require.NoError(t, err)
		assert.Equal(t, value.List{}, out)
		assert.NotZero(t, logs.FilterMessage("format is not decoded yet, returning an empty list").Len())
	})

	t.Run("failure", func(t *testing.T) {
		_, err := r.From(ctx, "fasta", value.Int(3), formats.Options{})
		require.Error(t, err)
		failed := logs.FilterMessage("conversion failed").All()
		require.NotEmpty(t, failed)
		assert.Equal(t, "from fasta", failed[len(failed)-1].ContextMap()["command"])
	})

	finished := logs.FilterMessage("conversion finished").FilterField(zap.String("format", "fasta")).All()
	require.NotEmpty(t, finished)
	assert.Equal(t, int64(2), finished[0].ContextMap()["records"])
}

func TestTo(t *testing.T) {
	r, _, c := newRegistry(t)
	rows := value.List{
		value.NewRecord(2).Set("id", value.String("r1")).Set("sequence", value.String("ACGT")),
	}
	text, err := r.To(context.Background(), "fasta", rows)
	require.NoError(t, err)
	assert.Equal(t, ">r1\nACGT\n", text)
	assert.Equal(t, int64(1), c.Records("fasta"))

	_, err = r.To(context.Background(), "fq", rows)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchemaMismatch))
}

func TestCountRecords(t *testing.T) {
	graph := value.NewRecord(5).
		Set("header", value.String("No header")).
		Set("segments", value.List{value.Null{}, value.Null{}}).
		Set("links", value.List{value.Null{}}).
		Set("containments", value.List{}).
		Set("paths", value.List{value.Null{}})
	tests := []struct {
		name string
		in   value.Value
		want int
	}{
		{"list", value.List{value.Null{}, value.Null{}}, 2},
		{"header body", value.NewRecord(2).Set("header", value.Null{}).Set("body", value.List{value.Null{}}), 1},
		{"graph", graph, 4},
		{"scalar", value.String("x"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountRecords(tt.in))
		})
	}
}

func TestPartialNote(t *testing.T) {
	out := value.NewRecord(3).
		Set("header", value.Null{}).
		Set("body", value.List{}).
		Set("note", value.String("CRAM file may require a reference sequence for full parsing: x"))
	note, ok := partialNote(out)
	assert.True(t, ok)
	assert.Contains(t, note, "reference sequence")

	_, ok = partialNote(value.List{})
	assert.False(t, ok)
}

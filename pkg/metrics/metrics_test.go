package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/biostruct/pkg/errors"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg, "")
	require.NoError(t, err)

	c.ObserveInvocation("from fasta", StatusSuccess)
	c.ObserveInvocation("from fasta", StatusSuccess)
	c.ObserveInvocation("from cram", StatusPartial)
	c.ObserveDecode("fasta", 3, 2048, 5*time.Millisecond)
	c.ObserveDecode("fasta", 2, 512, time.Millisecond)

	assert.Equal(t, 2.0, promtest.ToFloat64(c.invocations.WithLabelValues("from fasta", StatusSuccess)))
	assert.Equal(t, 1.0, promtest.ToFloat64(c.invocations.WithLabelValues("from cram", StatusPartial)))
	assert.Equal(t, 5.0, promtest.ToFloat64(c.records.WithLabelValues("fasta")))
	assert.Equal(t, int64(5), c.Records("fasta"))
	assert.Zero(t, c.Records("vcf"))
	assert.Equal(t, 2, promtest.CollectAndCount(c.invocations))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"biostruct_invocations_total",
		"biostruct_records_total",
		"biostruct_invocation_duration_seconds",
		"biostruct_input_bytes",
	}, names)
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg, "dup")
	require.NoError(t, err)

	c, err := NewCollector(reg, "dup")
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = NewCollector(reg, "other")
	assert.NoError(t, err)
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg, "test")
	require.NoError(t, err)
	c.ObserveDecode("gfa", 7, 100, time.Millisecond)

	path := filepath.Join(t.TempDir(), "biostruct.prom")
	require.NoError(t, WriteTextfile(reg, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `test_records_total{format="gfa"} 7`)

	err = WriteTextfile(reg, filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestTimer(t *testing.T) {
	timer := NewTimer("op")
	assert.Equal(t, "op", timer.Name())
	first := timer.Stop()
	assert.GreaterOrEqual(t, timer.Stop(), first)
}

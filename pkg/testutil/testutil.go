// Package testutil holds helpers shared by package tests: fixture
// compression, structured value accessors and loggers.
package testutil

import (
	"bytes"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/biostruct/pkg/value"
)

// BGZF compresses data as a BGZF stream ending with the EOF block.
func BGZF(t testing.TB, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := bgzf.NewWriter(&buf, 1)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// Logger returns a debug logger writing to the test log.
func Logger(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t)
}

// Record requires v to be a record.
func Record(t testing.TB, v value.Value) *value.Record {
	t.Helper()

	r, ok := value.AsRecord(v)
	require.Truef(t, ok, "want a record, got %s", value.Describe(v))
	return r
}

// List requires v to be a list.
func List(t testing.TB, v value.Value) value.List {
	t.Helper()

	l, ok := value.AsList(v)
	require.Truef(t, ok, "want a list, got %s", value.Describe(v))
	return l
}

// Field walks nested records along path and returns the value found.
func Field(t testing.TB, v value.Value, path ...string) value.Value {
	t.Helper()

	for _, name := range path {
		r := Record(t, v)
		next, ok := r.Get(name)
		require.Truef(t, ok, "missing column %q in %v", name, r.Columns())
		v = next
	}
	return v
}

// Text returns the String at path.
func Text(t testing.TB, v value.Value, path ...string) string {
	t.Helper()

	s, ok := value.AsString(Field(t, v, path...))
	require.Truef(t, ok, "column %v is not a string", path)
	return s
}

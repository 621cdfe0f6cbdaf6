package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// TestEnvironment represents a test environment
type TestEnvironment struct {
	t       *testing.T
	ctx     context.Context
	tempDir string
}

// NewTestEnvironment creates a test environment with its own temp
// directory and a context cancelled when the test ends.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	return &TestEnvironment{
		t:       t,
		ctx:     ctx,
		tempDir: t.TempDir(),
	}
}

// Context returns the test context
func (e *TestEnvironment) Context() context.Context {
	return e.ctx
}

// TempDir returns the temporary directory
func (e *TestEnvironment) TempDir() string {
	return e.tempDir
}

// Path returns the absolute path of name inside the temp directory.
func (e *TestEnvironment) Path(name string) string {
	return filepath.Join(e.tempDir, name)
}

// CreateTempFile creates a temporary file with content
func (e *TestEnvironment) CreateTempFile(name string, content []byte) string {
	e.t.Helper()

	path := e.Path(name)
	require.NoError(e.t, os.WriteFile(path, content, 0o644))
	return path
}

// ReadFile returns the content of name inside the temp directory.
func (e *TestEnvironment) ReadFile(name string) []byte {
	e.t.Helper()

	data, err := os.ReadFile(e.Path(name))
	require.NoError(e.t, err)
	return data
}

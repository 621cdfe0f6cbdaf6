package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/biostruct/pkg/compression"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/output"
	"github.com/ajitpratap0/biostruct/pkg/testutil"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, output.JSON, cfg.Output.Encoding)
	assert.Equal(t, compression.None, cfg.Compression.Algorithm)
	assert.Equal(t, "biostruct", cfg.Metrics.Namespace)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	t.Setenv("BIOSTRUCT_TEST_LEVEL", "debug")
	t.Setenv("BIOSTRUCT_TEST_EMPTY", "")

	path := env.CreateTempFile("biostruct.yaml", []byte(`
log:
  level: ${BIOSTRUCT_TEST_LEVEL}
  encoding: ${BIOSTRUCT_TEST_EMPTY:-json}
output:
  encoding: yaml
compression:
  algorithm: zstd
  level: 7
metrics:
  textfile_path: ${BIOSTRUCT_TEST_UNSET:-/tmp/biostruct.prom}
`))

	cfg := Default()
	require.NoError(t, Load(path, cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Encoding)
	assert.Equal(t, output.YAML, cfg.Output.Encoding)
	assert.Equal(t, compression.Zstd, cfg.Compression.Algorithm)
	assert.Equal(t, compression.Better, cfg.Compression.Level)
	assert.Equal(t, "/tmp/biostruct.prom", cfg.Metrics.TextfilePath)
	// untouched by the file
	assert.Equal(t, "biostruct", cfg.Metrics.Namespace)
}

func TestLoadErrors(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	err := Load(filepath.Join(env.TempDir(), "missing.yaml"), Default())
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	path := env.CreateTempFile("bad.yaml", []byte("log: [unclosed\n"))
	err = Load(path, Default())
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	cfg := Default()
	cfg.Output.Encoding = output.Avro
	cfg.Output.AvroCodec = "deflate"
	cfg.Tracing.Enabled = true

	path := env.Path("out.yaml")
	require.NoError(t, Save(path, cfg))
	back := &Config{}
	require.NoError(t, Load(path, back))
	assert.Equal(t, cfg, back)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"output encoding", func(c *Config) { c.Output.Encoding = "xml" }},
		{"avro codec", func(c *Config) { c.Output.Encoding = output.Avro; c.Output.AvroCodec = "brotli" }},
		{"compression algorithm", func(c *Config) { c.Compression.Algorithm = "rar" }},
		{"compression level", func(c *Config) { c.Compression.Level = 12 }},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("BIOSTRUCT_A", "x")
	assert.Equal(t, "a=x b= c=d", substituteEnvVars("a=${BIOSTRUCT_A} b=${BIOSTRUCT_NOPE} c=${BIOSTRUCT_NOPE:-d}"))
	assert.Equal(t, "open ${BIOSTRUCT_A", substituteEnvVars("open ${BIOSTRUCT_A"))
}

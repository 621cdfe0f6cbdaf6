// Package config provides the configuration of the biostruct command line.
// A single Config structure groups the settings of every ambient concern;
// format drivers themselves take no configuration beyond their Options.
//
// The configuration is organized into logical sections:
//   - Log: level, encoding and development mode of the zap logger
//   - Output: encoding of "from" results (json, yaml, avro)
//   - Compression: algorithm and level applied to "to" output
//   - Metrics: Prometheus namespace and textfile destination
//   - Tracing: OpenTelemetry stdout exporter switches
//
// Example usage:
//
//	cfg := config.Default()
//	if err := config.Load("biostruct.yaml", cfg); err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"github.com/ajitpratap0/biostruct/pkg/compression"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/logger"
	"github.com/ajitpratap0/biostruct/pkg/metrics"
	"github.com/ajitpratap0/biostruct/pkg/output"
)

// Config is the complete command line configuration.
type Config struct {
	// Log configures the process logger
	Log logger.Config `yaml:"log"`

	// Output selects how "from" results are rendered
	Output output.Options `yaml:"output"`

	// Compression is applied to the text written by "to" commands
	Compression compression.Config `yaml:"compression"`

	// Metrics controls Prometheus collection
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing controls OpenTelemetry span export
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	// Namespace prefixes every metric name
	Namespace string `yaml:"namespace"`
	// TextfilePath receives the metrics in text exposition format on exit.
	// Empty disables the export.
	TextfilePath string `yaml:"textfile_path"`
}

// TracingConfig contains tracing settings.
type TracingConfig struct {
	// Enabled exports one span per command to stderr
	Enabled bool `yaml:"enabled"`
	// Pretty indents the exported spans
	Pretty bool `yaml:"pretty"`
	// SampleRate controls trace sampling (0.0-1.0)
	SampleRate float64 `yaml:"sample_rate"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:         logger.DefaultConfig(),
		Output:      output.DefaultOptions(),
		Compression: *compression.DefaultConfig(),
		Metrics: MetricsConfig{
			Namespace: metrics.DefaultNamespace,
		},
		Tracing: TracingConfig{
			SampleRate: 1.0,
		},
	}
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := logger.New(c.Log); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "log")
	}
	if _, err := output.ParseEncoding(string(c.Output.Encoding)); err != nil {
		return err
	}
	if c.Output.Encoding == output.Avro {
		switch c.Output.AvroCodec {
		case "", "null", "deflate", "snappy":
		default:
			return errors.Newf(errors.ErrorTypeConfig, "unknown avro codec %q", c.Output.AvroCodec)
		}
	}
	if _, err := compression.ParseAlgorithm(string(c.Compression.Algorithm)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "compression")
	}
	if c.Compression.Level < 0 || c.Compression.Level > compression.Best {
		return errors.Newf(errors.ErrorTypeConfig, "compression level must be between 0 and %d", compression.Best)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "tracing sample_rate must be between 0 and 1")
	}
	return nil
}

// Package compression covers both ends of a conversion: the Mode dispatch
// that presents plain or BGZF input to a decoder, and the Compressor used to
// compress text produced by the reverse mappers.
//
//	r, err := compression.NewReader(compression.BlockCompressed, data)
//	defer r.Close()
//
//	comp, err := compression.NewCompressor(&compression.Config{Algorithm: compression.Zstd})
//	err = comp.CompressStream(os.Stdout, strings.NewReader(fasta))
package compression

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// BGZF represents blocked gzip, readable by samtools and friends
	BGZF Algorithm = "bgzf"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// Deflate represents raw deflate compression
	Deflate Algorithm = "deflate"
)

// Algorithms lists every supported algorithm.
var Algorithms = []Algorithm{None, Gzip, BGZF, Snappy, LZ4, Zstd, S2, Deflate}

// ParseAlgorithm resolves a user supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(s))
	if a == "" {
		return None, nil
	}
	for _, known := range Algorithms {
		if a == known {
			return a, nil
		}
	}
	return None, fmt.Errorf("unsupported compression algorithm: %s", s)
}

// Level represents compression level.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

// Compressor compresses encoder output. Input decompression goes through
// NewReader instead.
type Compressor interface {
	// Compress compresses data and returns the compressed bytes.
	Compress(data []byte) ([]byte, error)

	// CompressStream compresses from reader to writer.
	CompressStream(dst io.Writer, src io.Reader) error

	// Algorithm returns the compression algorithm used.
	Algorithm() Algorithm

	// Level returns the compression level configured.
	Level() Level
}

// Config represents compressor configuration.
type Config struct {
	Algorithm Algorithm `yaml:"algorithm"`
	Level     Level     `yaml:"level"`
}

// DefaultConfig returns a pass-through configuration.
func DefaultConfig() *Config {
	return &Config{
		Algorithm: None,
		Level:     Default,
	}
}

// NewCompressor creates a new compressor based on the provided configuration.
// If config is nil, default configuration is used.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	level := config.Level
	if level == 0 {
		level = Default
	}

	sc := &streamCompressor{algorithm: config.Algorithm, level: level}
	switch config.Algorithm {
	case None, "":
		sc.algorithm = None
		sc.newWriter = func(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }
	case Gzip:
		sc.newWriter = func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, mapGzipLevel(level))
		}
	case BGZF:
		sc.newWriter = func(w io.Writer) (io.WriteCloser, error) {
			return bgzf.NewWriterLevel(w, mapGzipLevel(level), 1)
		}
	case Snappy:
		sc.newWriter = func(w io.Writer) (io.WriteCloser, error) { return snappy.NewBufferedWriter(w), nil }
	case S2:
		sc.newWriter = func(w io.Writer) (io.WriteCloser, error) { return s2.NewWriter(w), nil }
	case LZ4:
		sc.newWriter = func(w io.Writer) (io.WriteCloser, error) {
			zw := lz4.NewWriter(w)
			if err := zw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
				return nil, err
			}
			return zw, nil
		}
	case Zstd:
		sc.newWriter = func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
		}
	case Deflate:
		sc.newWriter = func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, mapDeflateLevel(level))
		}
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", config.Algorithm)
	}
	return sc, nil
}

// streamCompressor implements every algorithm through its stream writer
// constructor.
type streamCompressor struct {
	algorithm Algorithm
	level     Level
	newWriter func(io.Writer) (io.WriteCloser, error)
}

func (sc *streamCompressor) Algorithm() Algorithm { return sc.algorithm }

func (sc *streamCompressor) Level() Level { return sc.level }

func (sc *streamCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := sc.CompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (sc *streamCompressor) CompressStream(dst io.Writer, src io.Reader) error {
	w, err := sc.newWriter(dst)
	if err != nil {
		return fmt.Errorf("%s: %w", sc.algorithm, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return fmt.Errorf("%s: %w", sc.algorithm, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %w", sc.algorithm, err)
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapDeflateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}

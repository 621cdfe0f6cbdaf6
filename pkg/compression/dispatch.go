package compression

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// Mode selects how a format adapter reads its input buffer. It is chosen
// once per invocation by the caller and never sniffed from the data.
type Mode int

const (
	// Raw reads the buffer as is.
	Raw Mode = iota
	// BlockCompressed reads the buffer as a BGZF stream.
	BlockCompressed
)

func (m Mode) String() string {
	switch m {
	case Raw:
		return "raw"
	case BlockCompressed:
		return "bgzf"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "raw"/"none" or "bgzf"/"gz"/"gzip".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "raw", "none", "plain":
		return Raw, nil
	case "bgzf", "gz", "gzip", "block":
		return BlockCompressed, nil
	}
	return Raw, fmt.Errorf("unknown compression mode %q", s)
}

// Reader is the mode independent input stream handed to decoders.
type Reader interface {
	io.Reader
	io.Closer
}

// NewReader wraps data according to mode. A BlockCompressed reader does not
// touch the data until the first Read, so a corrupt BGZF header is reported
// by the decoder that reads it rather than here.
func NewReader(mode Mode, data []byte) (Reader, error) {
	switch mode {
	case Raw:
		return io.NopCloser(bytes.NewReader(data)), nil
	case BlockCompressed:
		return &lazyBGZF{src: bytes.NewReader(data)}, nil
	default:
		return nil, fmt.Errorf("unsupported compression mode: %s", mode)
	}
}

// NewBGZFReader wraps an arbitrary stream in a lazily opened BGZF reader.
func NewBGZFReader(r io.Reader) Reader {
	return &lazyBGZF{src: r}
}

type lazyBGZF struct {
	src io.Reader
	bg  *bgzf.Reader
	err error
}

func (l *lazyBGZF) Read(p []byte) (int, error) {
	if l.bg == nil && l.err == nil {
		l.bg, l.err = bgzf.NewReader(l.src, 1)
		if l.err != nil && l.err != io.EOF {
			l.err = fmt.Errorf("bgzf: %w", l.err)
		}
	}
	if l.err != nil {
		return 0, l.err
	}
	return l.bg.Read(p)
}

func (l *lazyBGZF) Close() error {
	if l.bg == nil {
		return nil
	}
	return l.bg.Close()
}

// gzipMagic is shared by gzip and BGZF members.
var gzipMagic = []byte{0x1f, 0x8b}

// IsGzip reports whether br starts with a gzip member header.
func IsGzip(br *bufio.Reader) bool {
	magic, err := br.Peek(len(gzipMagic))
	return err == nil && bytes.Equal(magic, gzipMagic)
}

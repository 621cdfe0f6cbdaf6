// Package codec holds the line reader shared by the text format decoders.
package codec

import (
	"bufio"
	"bytes"
	"io"
)

// LineReader reads newline terminated lines of any length, stripping the
// line terminator (LF or CRLF) and counting lines for error messages.
type LineReader struct {
	r    *bufio.Reader
	line int
}

// NewLineReader wraps r. An existing *bufio.Reader is reused.
func NewLineReader(r io.Reader) *LineReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 64*1024)
	}
	return &LineReader{r: br}
}

// Next returns the next line. The slice is only valid until the next call.
// It returns io.EOF once the input is exhausted.
func (lr *LineReader) Next() ([]byte, error) {
	line, err := lr.r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		long := append([]byte(nil), line...)
		for err == bufio.ErrBufferFull {
			line, err = lr.r.ReadSlice('\n')
			long = append(long, line...)
		}
		line = long
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(line) == 0 && err == io.EOF {
		return nil, io.EOF
	}
	lr.line++
	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return line, nil
}

// Line returns the number of the line most recently returned by Next.
func (lr *LineReader) Line() int { return lr.line }

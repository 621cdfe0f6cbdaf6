package formats

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/biogo/hts/cram"
	"github.com/biogo/hts/cram/encoding/itf8"
	"github.com/biogo/hts/cram/encoding/ltf8"
	"github.com/biogo/hts/sam"

	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// CRAMNote prefixes the note attached to a partial CRAM result.
const CRAMNote = "CRAM file may require a reference sequence for full parsing"

// Block content types.
const (
	cramFileHeader  = 0
	cramSliceHeader = 2
)

var errReferenceRequired = stderrors.New("decoding alignment slices requires reference sequences")

// FromCRAM decodes the header of a CRAM 3.x file and as many records as can
// be decoded without reference sequences. Iteration stops at the first fault;
// the result then carries a note naming it instead of failing.
func FromCRAM(in value.Value, opts Options) (value.Value, error) {
	r, err := open(in, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	s := &cramStream{}
	s.data, s.tail = io.ReadAll(r)
	if len(s.data) == 0 && s.tail != nil {
		return nil, errors.Wrap(s.tail, errors.ErrorTypeHeaderDecode, "Could not read CRAM file definition")
	}
	if s.r, err = cram.NewReader(s); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeHeaderDecode, "Could not read CRAM file definition")
	}
	h, err := s.header()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeHeaderDecode, "CRAM file header reading failed")
	}

	header := alignmentHeader(h)
	m := newAlignmentMapper()
	body, err := collect(StopAtFault, s.next, func(rec *sam.Record) (value.Value, error) {
		return m.Map(NewAlignmentRecord(rec)), nil
	})
	if err != nil && body == nil {
		return nil, err
	}

	res := headerBody(header, body)
	if err != nil {
		res.Set(schema.ColumnNote, value.String(CRAMNote+": "+cause(err).Error()))
	}
	return res, nil
}

// cramStream feeds a buffered CRAM file to a cram.Reader. Before the reader
// consumes a container or block header, the sizes it declares are checked
// against the bytes actually left so a corrupt length cannot drive a huge
// allocation inside the decoder.
type cramStream struct {
	r    *cram.Reader
	data []byte
	off  int
	// end of the current container's block data
	end        int
	containers int
	// read error that cut data short, reported in place of io.EOF
	tail error
}

func (s *cramStream) Read(p []byte) (int, error) {
	if s.off >= len(s.data) {
		if s.tail != nil {
			return 0, s.tail
		}
		return 0, io.EOF
	}
	n := copy(p, s.data[s.off:])
	s.off += n
	return n, nil
}

// header reads the SAM header from the first block of the first container.
func (s *cramStream) header() (h *sam.Header, err error) {
	defer recoverCRAM(&err)

	ok, err := s.nextContainer()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	c := s.r.Container()
	typ, more, err := s.checkBlock()
	if err != nil {
		return nil, err
	}
	if !more || !c.Next() {
		if err := c.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}
	if typ != cramFileHeader {
		return nil, fmt.Errorf("first block has content type %d, want file header", typ)
	}
	v, err := c.Block().Value()
	if err != nil {
		return nil, err
	}
	h, ok = v.(*sam.Header)
	if !ok {
		return nil, fmt.Errorf("first block decoded to %T, want file header", v)
	}
	return h, nil
}

// next walks the remaining containers. Alignment records live in slices,
// which cannot be decoded without the reference, so the first slice header
// ends iteration with errReferenceRequired.
func (s *cramStream) next() (rec *sam.Record, err error) {
	defer recoverCRAM(&err)

	for {
		ok, err := s.nextContainer()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, io.EOF
		}
		c := s.r.Container()
		for {
			typ, more, err := s.checkBlock()
			if err != nil {
				return nil, fmt.Errorf("container %d: %w", s.containers, err)
			}
			if !more || !c.Next() {
				break
			}
			if typ == cramSliceHeader {
				return nil, fmt.Errorf("container %d holds an alignment slice: %w", s.containers, errReferenceRequired)
			}
		}
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("container %d: %w", s.containers, err)
		}
	}
}

func (s *cramStream) nextContainer() (bool, error) {
	size, err := s.checkContainer()
	if err != nil {
		return false, fmt.Errorf("container %d: %w", s.containers+1, err)
	}
	if !s.r.Next() {
		return false, s.r.Err()
	}
	s.containers++
	s.end = s.off + size
	return true, nil
}

// checkContainer validates the container header the reader reads next and
// returns the length of its block data. A header cut short is left for the
// reader to report.
func (s *cramStream) checkContainer() (int, error) {
	// the reader discards what is left of the current container first
	p := s.off
	if s.end > p {
		p = s.end
	}
	if len(s.data)-p < 4 {
		return 0, nil
	}
	size := int32(binary.LittleEndian.Uint32(s.data[p:]))
	f := sizeFields{b: s.data[p+4:], ok: true}
	for i := 0; i < 4; i++ {
		f.itf8() // reference, start, span, records
	}
	f.ltf8() // record counter
	f.ltf8() // bases
	f.itf8() // blocks
	landmarks := f.itf8()
	if !f.ok {
		return 0, nil
	}
	if size < 0 || int(size) > len(f.b) {
		return 0, fmt.Errorf("container claims %d bytes of blocks, %d remain", size, len(f.b))
	}
	if landmarks < 0 || int(landmarks) > len(f.b) {
		return 0, fmt.Errorf("container claims %d landmarks, %d bytes remain", landmarks, len(f.b))
	}
	return int(size), nil
}

// checkBlock validates the block header the container reads next and
// returns its content type. more is false once the container's block data
// is used up.
func (s *cramStream) checkBlock() (typ byte, more bool, err error) {
	if s.off >= s.end {
		return 0, false, nil
	}
	b := s.data[s.off:s.end]
	if len(b) < 2 {
		return 0, true, nil
	}
	typ = b[1]
	f := sizeFields{b: b[2:], ok: true}
	f.itf8() // content id
	size := f.itf8()
	f.itf8() // raw size
	if !f.ok {
		return typ, true, nil
	}
	if size < 0 || int(size) > len(f.b) {
		return typ, true, fmt.Errorf("block claims %d bytes, %d remain in container", size, len(f.b))
	}
	return typ, true, nil
}

// sizeFields decodes consecutive ITF-8 and LTF-8 values, clearing ok at the
// first one that runs past b.
type sizeFields struct {
	b  []byte
	ok bool
}

func (f *sizeFields) itf8() int32 {
	if !f.ok {
		return 0
	}
	v, n, ok := itf8.Decode(f.b)
	if !ok {
		f.ok = false
		return 0
	}
	f.b = f.b[n:]
	return v
}

func (f *sizeFields) ltf8() int64 {
	if !f.ok {
		return 0
	}
	v, n, ok := ltf8.Decode(f.b)
	if !ok {
		f.ok = false
		return 0
	}
	f.b = f.b[n:]
	return v
}

// recoverCRAM turns a panic in the CRAM decoder into an error. The decoder
// panics on unknown block methods and on header blocks shorter than their
// declared text.
func recoverCRAM(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed CRAM data: %v", r)
	}
}

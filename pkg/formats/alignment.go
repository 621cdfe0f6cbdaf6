package formats

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"

	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/tags"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// Placeholders used when an alignment field is absent.
const (
	missingText     = "*"
	missingPosition = "0"
	unknownHeader   = "unknown"
)

// AlignmentRecord is the accessor view of one alignment that the mapper
// reads. Each optional accessor reports presence separately so that a
// missing field degrades to its placeholder without affecting the others.
type AlignmentRecord interface {
	ReadName() ([]byte, bool)
	Flags() uint16
	ReferenceID() (int, bool)
	// AlignmentStart is 1-based.
	AlignmentStart() (int, bool)
	MappingQuality() (uint8, bool)
	CigarOps() int
	SequenceLength() int
	QualityLength() int
	MateReferenceID() (int, bool)
	// MateAlignmentStart is 1-based.
	MateAlignmentStart() (int, bool)
	TemplateLength() int
	// Data returns the auxiliary fields in record order. Fields that cannot
	// be decoded are left out.
	Data() []tags.Field
}

// samRecord adapts a biogo record.
type samRecord struct {
	r *sam.Record
}

// NewAlignmentRecord wraps a decoded SAM/BAM record.
func NewAlignmentRecord(r *sam.Record) AlignmentRecord { return samRecord{r: r} }

func (s samRecord) ReadName() ([]byte, bool) {
	if s.r.Name == "" || s.r.Name == missingText {
		return nil, false
	}
	return []byte(s.r.Name), true
}

func (s samRecord) Flags() uint16 { return uint16(s.r.Flags) }

func (s samRecord) ReferenceID() (int, bool) { return refID(s.r.Ref) }

func (s samRecord) AlignmentStart() (int, bool) {
	if s.r.Pos < 0 {
		return 0, false
	}
	return s.r.Pos + 1, true
}

func (s samRecord) MappingQuality() (uint8, bool) {
	if s.r.MapQ == 0xff {
		return 0, false
	}
	return s.r.MapQ, true
}

func (s samRecord) CigarOps() int { return len(s.r.Cigar) }

func (s samRecord) SequenceLength() int { return s.r.Seq.Length }

func (s samRecord) QualityLength() int {
	for _, q := range s.r.Qual {
		if q != 0xff {
			return len(s.r.Qual)
		}
	}
	return 0
}

func (s samRecord) MateReferenceID() (int, bool) { return refID(s.r.MateRef) }

func (s samRecord) MateAlignmentStart() (int, bool) {
	if s.r.MatePos < 0 {
		return 0, false
	}
	return s.r.MatePos + 1, true
}

func (s samRecord) TemplateLength() int { return s.r.TempLen }

func (s samRecord) Data() []tags.Field {
	out := make([]tags.Field, 0, len(s.r.AuxFields))
	for _, a := range s.r.AuxFields {
		if f, ok := auxField(a); ok {
			out = append(out, f)
		}
	}
	return out
}

func refID(r *sam.Reference) (int, bool) {
	if r == nil || r.ID() < 0 {
		return 0, false
	}
	return r.ID(), true
}

// auxField decodes the BAM binary layout biogo keeps for every auxiliary
// field: two tag bytes, a type byte, then the little-endian value.
func auxField(a sam.Aux) (tags.Field, bool) {
	if len(a) < 4 {
		return tags.Field{}, false
	}
	tag := string(a[:2])
	v := []byte(a[3:])
	switch a[2] {
	case 'A':
		return tags.Char(tag, v[0]), true
	case 'c':
		return tags.Int(tag, int64(int8(v[0]))), true
	case 'C':
		return tags.Int(tag, int64(v[0])), true
	case 's':
		if len(v) < 2 {
			return tags.Field{}, false
		}
		return tags.Int(tag, int64(int16(binary.LittleEndian.Uint16(v)))), true
	case 'S':
		if len(v) < 2 {
			return tags.Field{}, false
		}
		return tags.Int(tag, int64(binary.LittleEndian.Uint16(v))), true
	case 'i':
		if len(v) < 4 {
			return tags.Field{}, false
		}
		return tags.Int(tag, int64(int32(binary.LittleEndian.Uint32(v)))), true
	case 'I':
		if len(v) < 4 {
			return tags.Field{}, false
		}
		return tags.Int(tag, int64(binary.LittleEndian.Uint32(v))), true
	case 'f':
		if len(v) < 4 {
			return tags.Field{}, false
		}
		return tags.Float(tag, math.Float32frombits(binary.LittleEndian.Uint32(v))), true
	case 'Z':
		return tags.String(tag, bytes.TrimRight(v, "\x00")), true
	case 'H':
		digits := bytes.TrimRight(v, "\x00")
		if len(digits)%2 != 0 || !isHexDigits(digits) {
			digits = []byte(strings.ToUpper(hex.EncodeToString(digits)))
		}
		return tags.Hex(tag, digits), true
	case 'B':
		return auxArray(tag, v)
	}
	return tags.Field{}, false
}

func auxArray(tag string, v []byte) (tags.Field, bool) {
	if len(v) < 5 {
		return tags.Field{}, false
	}
	sub, n := v[0], int(binary.LittleEndian.Uint32(v[1:5]))
	data := v[5:]
	size := map[byte]int{'c': 1, 'C': 1, 's': 2, 'S': 2, 'i': 4, 'I': 4, 'f': 4}[sub]
	if size == 0 || len(data) < n*size {
		return tags.Field{}, false
	}
	if sub == 'f' {
		fs := make([]float32, n)
		for i := range fs {
			fs[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return tags.FloatArray(tag, fs), true
	}
	ns := make([]int64, n)
	for i := range ns {
		e := data[i*size:]
		switch sub {
		case 'c':
			ns[i] = int64(int8(e[0]))
		case 'C':
			ns[i] = int64(e[0])
		case 's':
			ns[i] = int64(int16(binary.LittleEndian.Uint16(e)))
		case 'S':
			ns[i] = int64(binary.LittleEndian.Uint16(e))
		case 'i':
			ns[i] = int64(int32(binary.LittleEndian.Uint32(e)))
		case 'I':
			ns[i] = int64(binary.LittleEndian.Uint32(e))
		}
	}
	return tags.IntArray(tag, ns), true
}

func isHexDigits(b []byte) bool {
	for _, c := range b {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// alignmentMapper holds the column table shared by every row of one
// invocation.
type alignmentMapper struct {
	cols []string
}

func newAlignmentMapper() *alignmentMapper {
	return &alignmentMapper{cols: schema.Columns(schema.Alignment)}
}

// Map builds one alignment row. It never fails: every field has a
// placeholder.
func (m *alignmentMapper) Map(r AlignmentRecord) *value.Record {
	var vals [schema.AlignmentWidth]value.Value

	name := missingText
	if b, ok := r.ReadName(); ok {
		name, _ = tags.SAM.Text(b, "read name")
	}
	vals[0] = value.String(name)
	vals[1] = value.String(fmt.Sprintf("0x%04x", r.Flags()))
	vals[2] = value.String(optionalInt(r.ReferenceID, missingText))
	vals[3] = value.String(optionalInt(r.AlignmentStart, missingPosition))
	if mq, ok := r.MappingQuality(); ok {
		vals[4] = value.String(strconv.Itoa(int(mq)))
	} else {
		vals[4] = value.String(missingText)
	}
	vals[5] = value.String("cigar_ops:" + strconv.Itoa(r.CigarOps()))
	vals[6] = value.String(optionalInt(r.MateReferenceID, missingText))
	vals[7] = value.String(optionalInt(r.MateAlignmentStart, missingPosition))
	vals[8] = value.String(strconv.Itoa(r.TemplateLength()))
	if n := r.SequenceLength(); n > 0 {
		vals[9] = value.String("sequence_length:" + strconv.Itoa(n))
	} else {
		vals[9] = value.String(missingText)
	}
	vals[10] = value.String("quality_length:" + strconv.Itoa(r.QualityLength()))

	// The SAM codec substitutes invalid UTF-8 instead of failing.
	data, _ := tags.SAM.Join(r.Data())
	vals[11] = value.String(data)

	return value.Zip(m.cols, vals[:])
}

func optionalInt(get func() (int, bool), placeholder string) string {
	if n, ok := get(); ok {
		return strconv.Itoa(n)
	}
	return placeholder
}

// Tags read from header lines.
var (
	tagSubSort    = sam.NewTag("SS")
	tagAssemblyID = sam.NewTag("AS")
	tagMD5        = sam.NewTag("M5")
	tagSpecies    = sam.NewTag("SP")
	tagURI        = sam.NewTag("UR")

	readGroupTags = [...]struct {
		column string
		tag    sam.Tag
	}{
		{"barcode", sam.NewTag("BC")},
		{"sequencing_center", sam.NewTag("CN")},
		{"description", sam.NewTag("DS")},
		{"flow_order", sam.NewTag("FO")},
		{"key_sequence", sam.NewTag("KS")},
		{"library", sam.NewTag("LB")},
		{"program", sam.NewTag("PG")},
		{"platform", sam.NewTag("PL")},
	}
	tagInsertSize    = sam.NewTag("PI")
	tagPlatformModel = sam.NewTag("PM")
	tagPlatformUnit  = sam.NewTag("PU")
	tagSample        = sam.NewTag("SM")
)

// alignmentHeader flattens a SAM header into the five header columns.
// Absent sub-fields are filled with "unknown" so the shape never varies.
func alignmentHeader(h *sam.Header) *value.Record {
	var vals [schema.AlignmentHeaderWidth]value.Value

	vals[0] = value.NewRecord(4).
		Set("version", value.String(orUnknown(h.Version))).
		Set("sorting_order", value.String(sortOrder(h.SortOrder))).
		Set("grouping", value.String(groupOrder(h.GroupOrder))).
		Set("sub_sort_order", value.String(orUnknown(h.Get(tagSubSort))))

	refs := h.Refs()
	refRec := value.NewRecord(len(refs))
	for _, ref := range refs {
		refRec.Set(ref.Name(), value.NewRecord(6).
			Set("sequence_name", value.String(ref.Name())).
			Set("sequence_length", value.Int(ref.Len())).
			Set("assembly_id", value.String(orUnknown(ref.Get(tagAssemblyID)))).
			Set("md5", value.String(orUnknown(ref.Get(tagMD5)))).
			Set("species", value.String(orUnknown(ref.Get(tagSpecies)))).
			Set("uri", value.String(orUnknown(ref.Get(tagURI)))))
	}
	vals[1] = refRec

	rgs := h.RGs()
	rgRec := value.NewRecord(len(rgs))
	for _, rg := range rgs {
		r := value.NewRecord(13).Set("id", value.String(rg.Name()))
		for _, t := range readGroupTags {
			r.Set(t.column, value.String(orUnknown(rg.Get(t.tag))))
		}
		insert, err := strconv.ParseInt(rg.Get(tagInsertSize), 10, 64)
		if err != nil {
			insert = 0
		}
		r.Set("predicted_insert_size", value.Int(insert)).
			Set("platform_model", value.String(orUnknown(rg.Get(tagPlatformModel)))).
			Set("platform_unit", value.String(orUnknown(rg.Get(tagPlatformUnit)))).
			Set("sample", value.String(orUnknown(rg.Get(tagSample))))
		rgRec.Set(rg.Name(), r)
	}
	vals[2] = rgRec

	progs := h.Progs()
	progList := make(value.List, 0, len(progs))
	for _, p := range progs {
		progList = append(progList, value.NewRecord(5).
			Set("id", value.String(p.UID())).
			Set("name", value.String(orUnknown(p.Name()))).
			Set("command_line", value.String(orUnknown(p.Command()))).
			Set("previous_id", value.String(orUnknown(p.Previous()))).
			Set("version", value.String(orUnknown(p.Version()))))
	}
	vals[3] = progList

	vals[4] = value.Strings(h.Comments)

	return value.Zip(schema.Columns(schema.AlignmentHeader), vals[:])
}

func orUnknown(s string) string {
	if s == "" {
		return unknownHeader
	}
	return s
}

func sortOrder(o sam.SortOrder) string {
	if o == sam.UnknownOrder {
		return unknownHeader
	}
	return o.String()
}

func groupOrder(o sam.GroupOrder) string {
	if o == sam.GroupUnspecified {
		return unknownHeader
	}
	return o.String()
}

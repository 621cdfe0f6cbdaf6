// Package schema is the fixed column registry: for every format and header
// kind, the ordered list of column names its records carry. Tables are
// compile-time constants and lookups return copies.
package schema

import "fmt"

// Format identifies a supported file format.
type Format string

const (
	FASTA Format = "fasta"
	FASTQ Format = "fastq"
	SAM   Format = "sam"
	BAM   Format = "bam"
	CRAM  Format = "cram"
	VCF   Format = "vcf"
	BCF   Format = "bcf"
	GFA   Format = "gfa"
	GFF   Format = "gff"
	BED   Format = "bed"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FASTA, FASTQ, SAM, BAM, CRAM, VCF, BCF, GFA, GFF, BED}
}

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Table identifies one column table.
type Table string

const (
	Alignment        Table = "alignment"
	AlignmentHeader  Table = "alignment_header"
	Variant          Table = "variant"
	VariantHeader    Table = "variant_header"
	GraphHeader      Table = "graph_header"
	GraphSegment     Table = "graph_segment"
	GraphLink        Table = "graph_link"
	GraphContainment Table = "graph_containment"
	GraphPath        Table = "graph_path"
	GraphResult      Table = "graph"
	Sequence         Table = "sequence"
	Annotation       Table = "annotation"
	Interval         Table = "interval"
)

// Column counts. Mappers size their value arrays with these so a row can
// never disagree with its table.
const (
	AlignmentWidth        = 12
	AlignmentHeaderWidth  = 5
	VariantWidth          = 10
	VariantHeaderWidth    = 7
	GraphHeaderWidth      = 2
	GraphSegmentWidth     = 3
	GraphLinkWidth        = 6
	GraphContainmentWidth = 7
	GraphPathWidth        = 4
	GraphResultWidth      = 5
	AnnotationWidth       = 9
	IntervalWidth         = 3
)

var alignmentColumns = [...]string{
	"read_name",
	"flags",
	"reference_sequence_id",
	"alignment_start",
	"mapping_quality",
	"cigar",
	"mate_reference_sequence_id",
	"mate_alignment_start",
	"template_length",
	"sequence",
	"quality_scores",
	"data",
}

var alignmentHeaderColumns = [...]string{
	"metadata",
	"reference_sequences",
	"read_groups",
	"programs",
	"comments",
}

var variantColumns = [...]string{
	"chrom", "pos", "rlen", "qual", "id", "ref", "alt", "filter", "info", "genotypes",
}

var variantHeaderColumns = [...]string{
	"file_format", "info", "filter", "format", "alt_alleles", "contig", "samples",
}

var graphHeaderColumns = [...]string{"version", "optional_fields"}

var graphSegmentColumns = [...]string{"name", "sequence", "optional_fields"}

var graphLinkColumns = [...]string{
	"from_orient", "to_orient", "from_segment", "to_segment", "overlaps", "optional_fields",
}

var graphContainmentColumns = [...]string{
	"containment_name",
	"containment_orient",
	"container_name",
	"container_orient",
	"overlap",
	"position",
	"optional_fields",
}

var graphPathColumns = [...]string{"path_name", "segment_names", "overlaps", "optional_fields"}

var graphResultColumns = [...]string{"header", "segments", "links", "containments", "paths"}

var sequenceColumns = [...]string{"id", "description", "quality_scores", "sequence"}

var annotationColumns = [...]string{
	"ref_seq_name", "source", "ty", "start", "end", "score", "strand", "phase", "attributes",
}

var intervalColumns = [...]string{"chrom", "chromStart", "chromEnd"}

// Each pair fails to compile if a table and its width drift apart.
var (
	_ [len(alignmentColumns) - AlignmentWidth]struct{}
	_ [AlignmentWidth - len(alignmentColumns)]struct{}
	_ [len(alignmentHeaderColumns) - AlignmentHeaderWidth]struct{}
	_ [AlignmentHeaderWidth - len(alignmentHeaderColumns)]struct{}
	_ [len(variantColumns) - VariantWidth]struct{}
	_ [VariantWidth - len(variantColumns)]struct{}
	_ [len(variantHeaderColumns) - VariantHeaderWidth]struct{}
	_ [VariantHeaderWidth - len(variantHeaderColumns)]struct{}
	_ [len(graphHeaderColumns) - GraphHeaderWidth]struct{}
	_ [GraphHeaderWidth - len(graphHeaderColumns)]struct{}
	_ [len(graphSegmentColumns) - GraphSegmentWidth]struct{}
	_ [GraphSegmentWidth - len(graphSegmentColumns)]struct{}
	_ [len(graphLinkColumns) - GraphLinkWidth]struct{}
	_ [GraphLinkWidth - len(graphLinkColumns)]struct{}
	_ [len(graphContainmentColumns) - GraphContainmentWidth]struct{}
	_ [GraphContainmentWidth - len(graphContainmentColumns)]struct{}
	_ [len(graphPathColumns) - GraphPathWidth]struct{}
	_ [GraphPathWidth - len(graphPathColumns)]struct{}
	_ [len(graphResultColumns) - GraphResultWidth]struct{}
	_ [GraphResultWidth - len(graphResultColumns)]struct{}
	_ [len(annotationColumns) - AnnotationWidth]struct{}
	_ [AnnotationWidth - len(annotationColumns)]struct{}
	_ [len(intervalColumns) - IntervalWidth]struct{}
	_ [IntervalWidth - len(intervalColumns)]struct{}
)

// Columns returns a copy of the named table.
func Columns(t Table) []string {
	switch t {
	case Alignment:
		return clone(alignmentColumns[:])
	case AlignmentHeader:
		return clone(alignmentHeaderColumns[:])
	case Variant:
		return clone(variantColumns[:])
	case VariantHeader:
		return clone(variantHeaderColumns[:])
	case GraphHeader:
		return clone(graphHeaderColumns[:])
	case GraphSegment:
		return clone(graphSegmentColumns[:])
	case GraphLink:
		return clone(graphLinkColumns[:])
	case GraphContainment:
		return clone(graphContainmentColumns[:])
	case GraphPath:
		return clone(graphPathColumns[:])
	case GraphResult:
		return clone(graphResultColumns[:])
	case Sequence:
		return clone(sequenceColumns[:])
	case Annotation:
		return clone(annotationColumns[:])
	case Interval:
		return clone(intervalColumns[:])
	}
	return nil
}

// Body returns the record table used for the body of format f.
func Body(f Format) Table {
	switch f {
	case SAM, BAM, CRAM:
		return Alignment
	case VCF, BCF:
		return Variant
	case GFA:
		return GraphResult
	case FASTA, FASTQ:
		return Sequence
	case GFF:
		return Annotation
	case BED:
		return Interval
	}
	return ""
}

// Header returns the header table of format f, or "" when the format's
// result is a bare list.
func Header(f Format) Table {
	switch f {
	case SAM, BAM, CRAM:
		return AlignmentHeader
	case VCF, BCF:
		return VariantHeader
	case GFA:
		return GraphHeader
	}
	return ""
}

// Lookup returns the body columns of format f.
func Lookup(f Format) ([]string, bool) {
	t := Body(f)
	if t == "" {
		return nil, false
	}
	return Columns(t), true
}

// SequenceColumns returns the FASTA/FASTQ columns selected by the caller's
// flags: id, then description and quality_scores when requested, then
// sequence.
func SequenceColumns(description, quality bool) []string {
	cols := []string{sequenceColumns[0]}
	if description {
		cols = append(cols, sequenceColumns[1])
	}
	if quality {
		cols = append(cols, sequenceColumns[2])
	}
	return append(cols, sequenceColumns[3])
}

// Field names shared by mappers outside the positional tables.
const (
	ColumnID            = "id"
	ColumnDescription   = "description"
	ColumnQualityScores = "quality_scores"
	ColumnSequence      = "sequence"
	ColumnHeader        = "header"
	ColumnBody          = "body"
	ColumnNote          = "note"
)

func clone(s []string) []string { return append([]string(nil), s...) }

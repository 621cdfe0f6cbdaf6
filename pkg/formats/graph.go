package formats

import (
	"github.com/ajitpratap0/biostruct/internal/codec/gfa"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/tags"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// Sentinels of the graph result.
const (
	NoHeader  = "No header"
	NoVersion = "No version specified"
)

// FromGFA decodes a GFA 1 graph into {header, segments, links,
// containments, paths}. Only the first header line is kept; a graph without
// one gets the NoHeader sentinel. Any unparsable line or malformed UTF-8
// fails the invocation.
func FromGFA(in value.Value, opts Options) (value.Value, error) {
	r, err := open(in, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	g := newGraphMapper()
	if _, err := collect(FailFast, gfa.NewReader(r).Read, g.add); err != nil {
		return nil, err
	}
	return g.result(), nil
}

type graphMapper struct {
	header       value.Value
	segments     value.List
	links        value.List
	containments value.List
	paths        value.List

	segmentCols     []string
	linkCols        []string
	containmentCols []string
	pathCols        []string
}

func newGraphMapper() *graphMapper {
	return &graphMapper{
		segments:        value.List{},
		links:           value.List{},
		containments:    value.List{},
		paths:           value.List{},
		segmentCols:     schema.Columns(schema.GraphSegment),
		linkCols:        schema.Columns(schema.GraphLink),
		containmentCols: schema.Columns(schema.GraphContainment),
		pathCols:        schema.Columns(schema.GraphPath),
	}
}

// add files one parsed line under its kind. The returned value only feeds
// the collector's count.
func (g *graphMapper) add(l gfa.Line) (value.Value, error) {
	var (
		rec *value.Record
		err error
	)
	switch l.Kind {
	case gfa.KindHeader:
		if rec, err = graphHeader(l.Header); err == nil && g.header == nil {
			g.header = rec
		}
	case gfa.KindSegment:
		if rec, err = g.segment(l.Segment); err == nil {
			g.segments = append(g.segments, rec)
		}
	case gfa.KindLink:
		if rec, err = g.link(l.Link); err == nil {
			g.links = append(g.links, rec)
		}
	case gfa.KindContainment:
		if rec, err = g.containment(l.Containment); err == nil {
			g.containments = append(g.containments, rec)
		}
	case gfa.KindPath:
		if rec, err = g.path(l.Path); err == nil {
			g.paths = append(g.paths, rec)
		}
	default:
		err = errors.Newf(errors.ErrorTypeRecordDecode, "unknown GFA line kind %q", byte(l.Kind))
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (g *graphMapper) result() *value.Record {
	var vals [schema.GraphResultWidth]value.Value
	vals[0] = g.header
	if vals[0] == nil {
		vals[0] = value.String(NoHeader)
	}
	vals[1] = g.segments
	vals[2] = g.links
	vals[3] = g.containments
	vals[4] = g.paths
	return value.Zip(schema.Columns(schema.GraphResult), vals[:])
}

func graphHeader(h *gfa.Header) (*value.Record, error) {
	var vals [schema.GraphHeaderWidth]value.Value
	vals[0] = value.String(NoVersion)
	if h.Version != nil {
		v, err := text(h.Version, "header version")
		if err != nil {
			return nil, err
		}
		vals[0] = value.String(v)
	}
	opts, err := optionalFields(h.Optional)
	if err != nil {
		return nil, err
	}
	vals[1] = opts
	return value.Zip(schema.Columns(schema.GraphHeader), vals[:]), nil
}

func (g *graphMapper) segment(s *gfa.Segment) (*value.Record, error) {
	var vals [schema.GraphSegmentWidth]value.Value
	var err error
	if vals[0], err = textValue(s.Name, "segment name"); err != nil {
		return nil, err
	}
	if vals[1], err = textValue(s.Sequence, "segment sequence"); err != nil {
		return nil, err
	}
	if vals[2], err = optionalFields(s.Optional); err != nil {
		return nil, err
	}
	return value.Zip(g.segmentCols, vals[:]), nil
}

func (g *graphMapper) link(l *gfa.Link) (*value.Record, error) {
	var vals [schema.GraphLinkWidth]value.Value
	var err error
	vals[0] = value.String(string(l.FromOrient))
	vals[1] = value.String(string(l.ToOrient))
	if vals[2], err = textValue(l.FromSegment, "from segment"); err != nil {
		return nil, err
	}
	if vals[3], err = textValue(l.ToSegment, "to segment"); err != nil {
		return nil, err
	}
	if vals[4], err = textValue(l.Overlap, "link overlap"); err != nil {
		return nil, err
	}
	if vals[5], err = optionalFields(l.Optional); err != nil {
		return nil, err
	}
	return value.Zip(g.linkCols, vals[:]), nil
}

func (g *graphMapper) containment(c *gfa.Containment) (*value.Record, error) {
	var vals [schema.GraphContainmentWidth]value.Value
	var err error
	if vals[0], err = textValue(c.ContainedName, "contained name"); err != nil {
		return nil, err
	}
	vals[1] = value.String(string(c.ContainedOrient))
	if vals[2], err = textValue(c.ContainerName, "container name"); err != nil {
		return nil, err
	}
	vals[3] = value.String(string(c.ContainerOrient))
	if vals[4], err = textValue(c.Overlap, "containment overlap"); err != nil {
		return nil, err
	}
	vals[5] = value.Int(c.Position)
	if vals[6], err = optionalFields(c.Optional); err != nil {
		return nil, err
	}
	return value.Zip(g.containmentCols, vals[:]), nil
}

func (g *graphMapper) path(p *gfa.Path) (*value.Record, error) {
	var vals [schema.GraphPathWidth]value.Value
	var err error
	if vals[0], err = textValue(p.Name, "path name"); err != nil {
		return nil, err
	}
	if vals[1], err = textValue(p.SegmentNames, "path segment names"); err != nil {
		return nil, err
	}
	overlaps := make(value.List, len(p.Overlaps))
	for i, o := range p.Overlaps {
		if overlaps[i], err = textValue(o, "path overlap"); err != nil {
			return nil, err
		}
	}
	vals[2] = overlaps
	if vals[3], err = optionalFields(p.Optional); err != nil {
		return nil, err
	}
	return value.Zip(g.pathCols, vals[:]), nil
}

func optionalFields(fs []tags.Field) (value.Value, error) {
	enc, err := tags.GFA.EncodeAll(fs)
	if err != nil {
		return nil, err
	}
	return value.Strings(enc), nil
}

func text(b []byte, what string) (string, error) { return tags.GFA.Text(b, what+" malformed") }

func textValue(b []byte, what string) (value.Value, error) {
	s, err := text(b, what)
	if err != nil {
		return nil, err
	}
	return value.String(s), nil
}

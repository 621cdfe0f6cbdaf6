package formats

import (
	"github.com/ajitpratap0/biostruct/internal/codec/bcf"
	"github.com/ajitpratap0/biostruct/internal/codec/vcf"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// FromVCF decodes VCF text into {header, body}. One bad record fails the
// whole invocation.
func FromVCF(in value.Value, opts Options) (value.Value, error) {
	r, err := open(in, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	vr := vcf.NewReader(r)
	h, err := vr.ReadHeader()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeHeaderDecode, "Failed to read raw VCF header")
	}
	return variants(h, vr.Read)
}

// FromBCF decodes BCF2 into {header, body}. The BCF stream itself may be
// BGZF compressed or plain; BlockCompressed mode adds an outer BGZF layer.
func FromBCF(in value.Value, opts Options) (value.Value, error) {
	r, err := open(in, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	br := bcf.NewReader(r)
	defer br.Close()
	h, err := br.ReadHeader()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeHeaderDecode, "Could not read header")
	}
	return variants(h, br.Read)
}

func variants(h *vcf.Header, next func() (*vcf.Record, error)) (value.Value, error) {
	header := variantHeader(h)
	cols := schema.Columns(schema.Variant)
	body, err := collect(FailFast, next, func(rec *vcf.Record) (value.Value, error) {
		return variantRecord(cols, rec), nil
	})
	if err != nil {
		return nil, err
	}
	return headerBody(header, body), nil
}

// variantHeader flattens the header into its seven columns. META, SAMPLE,
// PEDIGREE and assembly lines are not carried.
func variantHeader(h *vcf.Header) *value.Record {
	var vals [schema.VariantHeaderWidth]value.Value
	vals[0] = value.String(h.FileFormat)
	vals[1] = definitions(h.Infos, true)
	vals[2] = definitions(h.Filters, false)
	vals[3] = definitions(h.Formats, true)
	vals[4] = definitions(h.AltAlleles, false)

	contigs := value.NewRecord(len(h.Contigs))
	for _, c := range h.Contigs {
		r := value.NewRecord(1 + len(c.Other)).Set("length", value.Int(c.Length))
		for _, a := range c.Other {
			r.Set(a.Key, value.String(a.Value))
		}
		contigs.Set(c.ID, r)
	}
	vals[5] = contigs
	vals[6] = value.Strings(h.Samples)

	return value.Zip(schema.Columns(schema.VariantHeader), vals[:])
}

// definitions maps id -> {number, type, description}, or id -> {description}
// for FILTER and ALT entries.
func definitions(defs []*vcf.Definition, typed bool) *value.Record {
	out := value.NewRecord(len(defs))
	for _, d := range defs {
		r := value.NewRecord(3)
		if typed {
			r.Set("number", value.String(d.Number)).
				Set("type", value.String(d.Type))
		}
		r.Set("description", value.String(d.Description))
		out.Set(d.ID, r)
	}
	return out
}

func variantRecord(cols []string, rec *vcf.Record) *value.Record {
	var vals [schema.VariantWidth]value.Value
	vals[0] = value.String(rec.Chrom)
	vals[1] = value.Int(rec.Pos)
	vals[2] = value.Int(rec.Rlen)
	if rec.HasQual {
		vals[3] = value.Float(rec.Qual)
	} else {
		vals[3] = value.Null{}
	}
	vals[4] = value.Strings(rec.IDs)
	vals[5] = value.String(rec.Ref)
	vals[6] = value.Strings(rec.Alt)
	vals[7] = value.Strings(rec.Filters)
	vals[8] = fields(rec.Info)

	genotypes := make(value.List, len(rec.Genotypes))
	for i, g := range rec.Genotypes {
		r := value.NewRecord(1 + len(g.Fields)).Set("sample", value.String(g.Sample))
		for _, f := range g.Fields {
			r.Set(f.Key, value.FromNative(f.Value))
		}
		genotypes[i] = r
	}
	vals[9] = genotypes

	return value.Zip(cols, vals[:])
}

func fields(fs []vcf.Field) *value.Record {
	r := value.NewRecord(len(fs))
	for _, f := range fs {
		r.Set(f.Key, value.FromNative(f.Value))
	}
	return r
}

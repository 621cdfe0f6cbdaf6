package registry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/biostruct/pkg/compression"
	"github.com/ajitpratap0/biostruct/pkg/formats"
	"github.com/ajitpratap0/biostruct/pkg/logger"
	"github.com/ajitpratap0/biostruct/pkg/metrics"
	"github.com/ajitpratap0/biostruct/pkg/observability"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

// From runs the "from" command name on in. A ".gz" alias forces
// BlockCompressed; otherwise opts.Compression is used as given.
func (r *Registry) From(ctx context.Context, name string, in value.Value, opts formats.Options) (value.Value, error) {
	cmd, err := Lookup(From, name)
	if err != nil {
		return nil, err
	}
	if err := checkFlags(cmd, opts); err != nil {
		return nil, err
	}
	if cmd.Mode == compression.BlockCompressed {
		opts.Compression = compression.BlockCompressed
	}
	drive, _ := formats.DriverFor(cmd.Format)

	ctx = withCommand(ctx, cmd)
	log := logger.FromContext(ctx, r.logger)
	ctx, span := observability.NewSpan(ctx, cmd.String())
	defer span.End()
	span.SetAttribute("format", string(cmd.Format))
	span.SetAttribute("mode", opts.Compression)

	log.Debug("dispatching",
		zap.Stringer("mode", opts.Compression),
		zap.Bool("description", opts.Description),
		zap.Bool("quality_scores", opts.QualityScores))
	if formats.Stubbed(cmd.Format) {
		log.Warn("format is not decoded yet, returning an empty list")
	}

	timer := metrics.NewTimer(cmd.String())
	out, err := drive(in, opts)
	elapsed := timer.Stop()
	if err != nil {
		log.Error("conversion failed", zap.Error(err), zap.Duration("duration", elapsed))
		span.Fail(err)
		r.observe(cmd, metrics.StatusFailure, 0, in, elapsed)
		return nil, err
	}

	n := CountRecords(out)
	status := metrics.StatusSuccess
	if note, ok := partialNote(out); ok {
		status = metrics.StatusPartial
		log.Warn("partial result", zap.String("note", note))
		span.SetAttribute("note", note)
	}
	span.SetAttribute("records", n)
	log.Info("conversion finished", zap.Int("records", n), zap.Duration("duration", elapsed))
	r.observe(cmd, status, n, in, elapsed)
	return out, nil
}

// To runs the "to" command name on a list of sequence records.
func (r *Registry) To(ctx context.Context, name string, in value.Value) (string, error) {
	cmd, err := Lookup(To, name)
	if err != nil {
		return "", err
	}

	ctx = withCommand(ctx, cmd)
	log := logger.FromContext(ctx, r.logger)
	_, span := observability.NewSpan(ctx, cmd.String())
	defer span.End()
	span.SetAttribute("format", string(cmd.Format))

	encode := formats.ToFASTA
	if cmd.Format == schema.FASTQ {
		encode = formats.ToFASTQ
	}

	n := 0
	if l, ok := value.AsList(in); ok {
		n = len(l)
	}
	log.Debug("dispatching", zap.Int("records", n))

	timer := metrics.NewTimer(cmd.String())
	text, err := encode(in)
	elapsed := timer.Stop()
	if err != nil {
		log.Error("conversion failed", zap.Error(err), zap.Duration("duration", elapsed))
		span.Fail(err)
		r.observe(cmd, metrics.StatusFailure, 0, nil, elapsed)
		return "", err
	}
	span.SetAttribute("records", n)
	log.Info("conversion finished", zap.Int("records", n), zap.Duration("duration", elapsed))
	r.observe(cmd, metrics.StatusSuccess, n, nil, elapsed)
	return text, nil
}

func (r *Registry) observe(cmd Command, status string, records int, in value.Value, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveInvocation(cmd.String(), status)
	if status == metrics.StatusFailure {
		return
	}
	size := 0
	switch v := in.(type) {
	case value.Binary:
		size = len(v)
	case value.String:
		size = len(v)
	}
	r.metrics.ObserveDecode(string(cmd.Format), records, size, elapsed)
}

// CountRecords returns the number of body records in a FormatResult: the
// list length, the body length of a {header, body} record, or the total of
// the graph's element lists.
func CountRecords(v value.Value) int {
	if l, ok := value.AsList(v); ok {
		return len(l)
	}
	rec, ok := value.AsRecord(v)
	if !ok {
		return 0
	}
	if body, ok := rec.Get(schema.ColumnBody); ok {
		l, _ := value.AsList(body)
		return len(l)
	}
	n := 0
	for _, col := range schema.Columns(schema.GraphResult)[1:] {
		if v, ok := rec.Get(col); ok {
			l, _ := value.AsList(v)
			n += len(l)
		}
	}
	return n
}

func partialNote(v value.Value) (string, bool) {
	rec, ok := value.AsRecord(v)
	if !ok {
		return "", false
	}
	note, ok := rec.Get(schema.ColumnNote)
	if !ok {
		return "", false
	}
	return value.AsString(note)
}

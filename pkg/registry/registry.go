// Package registry is the command table of biostruct: every "from" and "to"
// command name, its aliases, and the format driver it dispatches to. The
// table is built once from a literal and never mutated. Dispatch wraps the
// pure drivers with logging, metrics and tracing.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/biostruct/pkg/compression"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/formats"
	"github.com/ajitpratap0/biostruct/pkg/logger"
	"github.com/ajitpratap0/biostruct/pkg/metrics"
	"github.com/ajitpratap0/biostruct/pkg/schema"
)

// Direction tells whether a command decodes a file or encodes one.
type Direction string

const (
	From Direction = "from"
	To   Direction = "to"
)

// Flags a command may accept.
const (
	FlagDescription   = "description"
	FlagQualityScores = "quality_scores"
)

// Command is one entry of the table.
type Command struct {
	Direction Direction
	// Name is the canonical name, Aliases the other accepted spellings.
	Name    string
	Aliases []string
	Format  schema.Format
	// Mode is the compression mode the command implies. The ".gz" aliases
	// resolve to BlockCompressed through AliasMode.
	Mode  compression.Mode
	Flags []string
}

// String returns "<direction> <name>".
func (c Command) String() string { return string(c.Direction) + " " + c.Name }

// Accepts reports whether flag is valid for c.
func (c Command) Accepts(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

var commands = [...]Command{
	{Direction: From, Name: "fasta", Aliases: []string{"fa", "fasta.gz", "fa.gz"}, Format: schema.FASTA,
		Flags: []string{FlagDescription}},
	{Direction: From, Name: "fastq", Aliases: []string{"fq", "fastq.gz", "fq.gz"}, Format: schema.FASTQ,
		Flags: []string{FlagDescription, FlagQualityScores}},
	{Direction: From, Name: "sam", Format: schema.SAM},
	{Direction: From, Name: "bam", Format: schema.BAM},
	{Direction: From, Name: "cram", Format: schema.CRAM},
	{Direction: From, Name: "vcf", Aliases: []string{"vcf.gz"}, Format: schema.VCF},
	{Direction: From, Name: "bcf", Aliases: []string{"bcf.gz"}, Format: schema.BCF},
	{Direction: From, Name: "gfa", Aliases: []string{"gfa.gz"}, Format: schema.GFA},
	{Direction: From, Name: "gff", Format: schema.GFF},
	{Direction: From, Name: "bed", Format: schema.BED},
	{Direction: To, Name: "fasta", Aliases: []string{"fa"}, Format: schema.FASTA},
	{Direction: To, Name: "fastq", Aliases: []string{"fq"}, Format: schema.FASTQ},
}

// Commands returns a copy of the table in declaration order.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands[:])
	return out
}

// Names returns every accepted name for direction, aliases included, sorted.
func Names(d Direction) []string {
	var names []string
	for _, c := range commands {
		if c.Direction == d {
			names = append(names, c.Name)
			names = append(names, c.Aliases...)
		}
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a command name or alias. The returned command carries the
// mode the name implies.
func Lookup(d Direction, name string) (Command, error) {
	for _, c := range commands {
		if c.Direction != d {
			continue
		}
		if c.Name == name {
			return c, nil
		}
		for _, a := range c.Aliases {
			if a == name {
				c.Mode = AliasMode(a)
				return c, nil
			}
		}
	}
	return Command{}, errors.Newf(errors.ErrorTypeConfig, "unknown command %q, expected one of: %s",
		fmt.Sprintf("%s %s", d, name), strings.Join(Names(d), ", "))
}

// AliasMode returns BlockCompressed for ".gz" names and Raw otherwise.
func AliasMode(name string) compression.Mode {
	if strings.HasSuffix(name, ".gz") {
		return compression.BlockCompressed
	}
	return compression.Raw
}

// Registry dispatches commands with instrumentation.
type Registry struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

// New returns a registry logging to log and recording into collector. A nil
// logger falls back to the process logger; a nil collector disables metrics.
func New(log *zap.Logger, collector *metrics.Collector) *Registry {
	if log == nil {
		log = logger.Get()
	}
	return &Registry{
		logger:  log.With(zap.String("component", "command_registry")),
		metrics: collector,
	}
}

// checkFlags rejects switches the command does not take.
func checkFlags(cmd Command, opts formats.Options) error {
	if opts.Description && !cmd.Accepts(FlagDescription) {
		return errors.Newf(errors.ErrorTypeConfig, "%s does not accept --description", cmd)
	}
	if opts.QualityScores && !cmd.Accepts(FlagQualityScores) {
		return errors.Newf(errors.ErrorTypeConfig, "%s does not accept --quality-scores", cmd)
	}
	return nil
}

func withCommand(ctx context.Context, cmd Command) context.Context {
	ctx = context.WithValue(ctx, logger.CommandKey, cmd.String())
	return context.WithValue(ctx, logger.FormatKey, string(cmd.Format))
}

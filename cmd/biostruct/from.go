package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/biostruct/pkg/compression"
	"github.com/ajitpratap0/biostruct/pkg/formats"
	"github.com/ajitpratap0/biostruct/pkg/output"
	"github.com/ajitpratap0/biostruct/pkg/registry"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

func (a *app) fromCommand() *cobra.Command {
	var opts formats.Options
	var bgzf bool

	cmd := &cobra.Command{
		Use:   "from <format> [file]",
		Short: "Decode a bioinformatics file into structured records",
		Long: `Decode a file (or stdin) with the named format and print the result.

Formats: ` + strings.Join(registry.Names(registry.From), ", "),
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: registry.Names(registry.From),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, release, err := a.readInput(args[1:])
			if err != nil {
				return err
			}
			defer release()
			if bgzf {
				opts.Compression = compression.BlockCompressed
			}
			out, err := a.registry.From(cmd.Context(), args[0], value.Binary(data), opts)
			if err != nil {
				return err
			}
			return output.Write(a.stdout, out, a.cfg.Output)
		},
	}
	cmd.Flags().BoolVar(&bgzf, "bgzf", false, "Input is BGZF compressed")
	cmd.Flags().BoolVar(&opts.Description, "description", false, "Add the description column (fasta, fastq)")
	cmd.Flags().BoolVar(&opts.QualityScores, "quality-scores", false, "Add the quality_scores column (fastq)")
	return cmd
}

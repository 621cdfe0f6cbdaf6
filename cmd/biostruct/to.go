package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/biostruct/pkg/compression"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/output"
	"github.com/ajitpratap0/biostruct/pkg/registry"
)

func (a *app) toCommand() *cobra.Command {
	var algorithm string
	var level int

	cmd := &cobra.Command{
		Use:   "to <format> [file]",
		Short: "Encode structured sequence records as FASTA or FASTQ",
		Long: `Read a JSON or YAML list of records from a file (or stdin) and write
them in the named text format.

Formats: ` + strings.Join(registry.Names(registry.To), ", "),
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: registry.Names(registry.To),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, release, err := a.readInput(args[1:])
			if err != nil {
				return err
			}
			defer release()
			in, err := output.Read(data)
			if err != nil {
				return err
			}
			text, err := a.registry.To(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}

			cc := a.cfg.Compression
			if cmd.Flags().Changed("compression") {
				if cc.Algorithm, err = compression.ParseAlgorithm(algorithm); err != nil {
					return errors.Wrap(err, errors.ErrorTypeConfig, "compression")
				}
			}
			if cmd.Flags().Changed("level") {
				cc.Level = compression.Level(level)
			}
			comp, err := compression.NewCompressor(&cc)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, "compression")
			}
			if err := comp.CompressStream(a.stdout, strings.NewReader(text)); err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "writing output")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "compression", "", "Compress the output (none, gzip, bgzf, snappy, lz4, zstd, s2, deflate)")
	cmd.Flags().IntVar(&level, "level", int(compression.Default), "Compression level, 1 (fastest) to 9 (best)")
	return cmd
}

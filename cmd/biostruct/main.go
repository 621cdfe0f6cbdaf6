package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/biostruct/pkg/config"
	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/logger"
	"github.com/ajitpratap0/biostruct/pkg/metrics"
	"github.com/ajitpratap0/biostruct/pkg/mmap"
	"github.com/ajitpratap0/biostruct/pkg/observability"
	"github.com/ajitpratap0/biostruct/pkg/output"
	"github.com/ajitpratap0/biostruct/pkg/registry"
)

var version = "0.1.0"

// envPrefix is prepended to every flag name when looked up in the
// environment, e.g. BIOSTRUCT_OUTPUT=yaml.
const envPrefix = "BIOSTRUCT"

// app holds everything a subcommand needs once the persistent flags and the
// configuration file have been resolved.
type app struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg       *config.Config
	log       *zap.Logger
	gatherer  *prometheus.Registry
	collector *metrics.Collector
	tracing   *observability.Provider
	registry  *registry.Registry
}

func main() {
	root := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree reading from stdin and writing to
// stdout and stderr.
func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "biostruct",
		Short: "biostruct - bioinformatics files as structured values",
		Long: `biostruct decodes sequence, alignment, variant and graph files into
structured records and encodes sequence records back into FASTA or FASTQ.

Example:
  biostruct from fastq --quality-scores reads.fq
  biostruct from vcf.gz calls.vcf.gz --output yaml
  biostruct to fasta records.json --compression bgzf`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.BoolP("verbose", "v", false, "Log at debug level")
	flags.StringP("output", "o", "", "Output encoding of from commands (json, yaml, avro, parquet, arrow)")
	flags.Bool("pretty", false, "Indent JSON output")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
	flags.Bool("trace", false, "Export a trace span per command to stderr")
	_ = a.v.BindPFlags(flags)
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "biostruct v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available commands",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Available from commands:")
			for _, name := range registry.Names(registry.From) {
				fmt.Fprintf(w, "  - %s\n", name)
			}
			fmt.Fprintln(w, "\nAvailable to commands:")
			for _, name := range registry.Names(registry.To) {
				fmt.Fprintf(w, "  - %s\n", name)
			}
		},
	})

	root.AddCommand(a.fromCommand(), a.toCommand())
	return root
}

// loadConfig merges the configuration file, the environment and the
// persistent flags, in increasing precedence.
func (a *app) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if path := a.v.GetString("config"); path != "" {
		if err := config.Load(path, cfg); err != nil {
			return nil, err
		}
	}
	if a.v.GetBool("verbose") {
		cfg.Log.Level = "debug"
	}
	if enc := a.v.GetString("output"); enc != "" {
		cfg.Output.Encoding = output.Encoding(enc)
	}
	if a.v.GetBool("pretty") {
		cfg.Output.Pretty = true
	}
	if path := a.v.GetString("metrics-file"); path != "" {
		cfg.Metrics.TextfilePath = path
	}
	if a.v.GetBool("trace") {
		cfg.Tracing.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.Log); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "log")
	}
	a.log = logger.Get().With(zap.String("component", "biostruct-cli"))

	a.gatherer = prometheus.NewRegistry()
	a.collector, err = metrics.NewCollector(a.gatherer, cfg.Metrics.Namespace)
	if err != nil {
		return err
	}

	if cfg.Tracing.Enabled {
		tc := observability.DefaultConfig()
		tc.ServiceVersion = version
		tc.SamplingRate = cfg.Tracing.SampleRate
		tc.Pretty = cfg.Tracing.Pretty
		if a.tracing, err = observability.Setup(tc, a.stderr); err != nil {
			return err
		}
	}

	a.registry = registry.New(a.log, a.collector)
	a.log.Debug("configured",
		zap.String("command", cmd.CommandPath()),
		zap.String("output", string(cfg.Output.Encoding)),
		zap.Bool("tracing", cfg.Tracing.Enabled))
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	var firstErr error
	if a.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracing.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.cfg != nil && a.cfg.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(a.gatherer, a.cfg.Metrics.TextfilePath); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = logger.Sync()
	return firstErr
}

// readInput maps the named file, or reads stdin when args is empty or "-".
// The returned bytes are valid until release is called.
func (a *app) readInput(args []string) (data []byte, release func(), err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeFile, "reading stdin")
		}
		return data, func() {}, nil
	}
	f, err := mmap.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	a.log.Debug("input opened", zap.String("path", args[0]),
		zap.Int("bytes", len(f.Bytes())), zap.Bool("mapped", f.Mapped()))
	return f.Bytes(), func() {
		if err := f.Close(); err != nil {
			a.log.Warn("failed to close input", zap.String("path", args[0]), zap.Error(err))
		}
	}, nil
}

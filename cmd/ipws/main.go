package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ipws/internal/pipeline"
	"github.com/ajitpratap0/ipws/pkg/columnar"
	"github.com/ajitpratap0/ipws/pkg/compression"
	"github.com/ajitpratap0/ipws/pkg/config"
	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/logger"
	"github.com/ajitpratap0/ipws/pkg/observability"
	"github.com/ajitpratap0/ipws/pkg/storage"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runFunc runs one conversion on a configured pipeline
type runFunc func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Result, error)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:   "ipws",
		Short: "Convert interior-point weight system enumerations",
		Long: `ipws converts enumerations of weight systems between the compact binary
pair (weights file + polytope info file) and per-tier Parquet files.

With --ws-in and --polytope-info-in the binary pair is split into the
non-IP, non-reflexive and reflexive Parquet files. Otherwise the files given
with --parquet-in are merged back into one ascending binary pair.

Example:
  ipws --ws-in ws-6d-1-2.bin --polytope-info-in info-6d-1-2.bin \
    --parquet-reflexive-out reflexive.parquet -i`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, v, configFile, func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Result, error) {
				return p.RunIPWS(ctx)
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "json", "Log format (json, console)")
	pf.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
	pf.Bool("tracing", false, "Print pipeline spans to stderr")
	pf.String("upload-uri", "", "Upload Parquet outputs to s3://bucket/prefix")
	pf.String("region", "", "AWS region for uploads")
	pf.String("endpoint", "", "S3-compatible endpoint for uploads")
	pf.Int("row-group-size", columnar.DefaultRowGroupSize, "Rows per Parquet row group")
	pf.Int("compression-level", columnar.DefaultCompressionLevel, "ZSTD level of Parquet columns")

	f := root.Flags()
	f.String("ws-in", "", "Binary weights input file")
	f.String("polytope-info-in", "", "Binary polytope info input file")
	f.StringSlice("parquet-in", nil, "Parquet tier files to merge, in order")
	f.Bool("memory-map", false, "Memory-map uncompressed binary inputs")
	f.String("ws-out", "", "Binary weights output file")
	f.String("polytope-info-out", "", "Binary polytope info output file")
	f.String("parquet-non-ip-out", "", "Parquet output for weight systems without an interior point")
	f.String("parquet-non-reflexive-out", "", "Parquet output for non-reflexive polytopes")
	f.String("parquet-reflexive-out", "", "Parquet output for reflexive polytopes")
	f.BoolP("include-derived-quantities", "i", false, "Add h22 and the Euler characteristic to 6-dimensional reflexive output")
	f.Int("limit", 0, "Read at most this many records per input file (0 reads all)")
	f.Bool("strict-shards", false, "Reject Parquet inputs whose index differs")
	f.Int("binary-compression-level", int(compression.Default), "Compression level (1-9) for binary outputs with a compression extension")

	root.AddCommand(
		newPALPCmd(v, &configFile),
		newInspectCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func newPALPCmd(v *viper.Viper, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palp",
		Short: "Convert PALP vertex output to a Parquet vertex file",
		Long: `palp reads the text output of PALP's poly.x (one header line per polytope
followed by its vertex coordinates, column-wise) and writes a Parquet file
with a nested vertices column and the per-polytope counts and Hodge numbers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, v, *configFile, func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Result, error) {
				return p.RunPALP(ctx)
			})
		},
	}
	cmd.Flags().String("palp-in", "", "PALP text input, optionally compressed")
	cmd.Flags().String("parquet-out", "", "Parquet vertex output file")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Print the metadata, columns and row groups of Parquet files as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]*columnar.FileInfo, 0, len(args))
			for _, path := range args {
				info, err := columnar.Inspect(path)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}

			var (
				data []byte
				err  error
			)
			if compact {
				data, err = json.Marshal(infos)
			} else {
				data, err = json.MarshalIndent(infos, "", "  ")
			}
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeInternal, "encode file info")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "Print one line of JSON")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [FILE]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "ipws.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrorTypeFile, "config file exists, use --force to overwrite").WithDetail("path", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ipws v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// execute resolves the configuration, sets up logging, tracing and upload,
// and runs one conversion
func execute(cmd *cobra.Command, v *viper.Viper, configFile string, run runFunc) error {
	cfg, err := resolveConfig(v, cmd.Flags(), configFile)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogFormat,
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, logger.RunIDKey, uuid.NewString())
	ctx = context.WithValue(ctx, logger.CommandKey, cmd.Name())
	log := logger.WithContext(ctx)

	tracer, err := observability.NewTracer(observability.TracingConfig{
		Enabled:        cfg.Observability.Tracing,
		ServiceName:    "ipws",
		ServiceVersion: version,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	opts := []pipeline.Option{pipeline.WithLogger(log), pipeline.WithTracer(tracer)}
	if uri := cfg.Storage.UploadURI; uri != "" {
		uploadCfg := storage.DefaultUploadConfig()
		uploadCfg.Region = cfg.Storage.Region
		uploadCfg.Endpoint = cfg.Storage.Endpoint
		uploader, err := storage.NewS3Uploader(ctx, uri, uploadCfg, log)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithUploader(uploader))
	}

	res, err := run(ctx, pipeline.New(cfg, opts...))
	if err != nil {
		return err
	}
	if res.Mode == pipeline.ModeNothing {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do.")
	}
	return err
}

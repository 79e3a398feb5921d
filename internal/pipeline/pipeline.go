// Package pipeline runs ipws conversions end to end.
//
// A run reads one input representation into memory, writes the requested
// outputs and optionally publishes Parquet files to object storage. Each
// phase (read, check, write, upload) is logged, timed into the metrics
// collector and wrapped in a trace span.
//
// # Basic Usage
//
//	p := pipeline.New(cfg, pipeline.WithLogger(logger))
//	res, err := p.RunIPWS(ctx)
//	if err != nil {
//	    return err
//	}
//	if res.Mode == pipeline.ModeNothing {
//	    fmt.Println("Nothing to do.")
//	}
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/ipws/pkg/config"
	"github.com/ajitpratap0/ipws/pkg/logger"
	"github.com/ajitpratap0/ipws/pkg/metrics"
	"github.com/ajitpratap0/ipws/pkg/observability"
	"github.com/ajitpratap0/ipws/pkg/polytope"
)

// Mode identifies the conversion a run performed
type Mode string

const (
	// ModeNothing means no input was configured
	ModeNothing Mode = "nothing"
	// ModeBinaryToParquet converts a binary pair into tier shards
	ModeBinaryToParquet Mode = "binary_to_parquet"
	// ModeParquetToBinary converts tier shards into a binary pair
	ModeParquetToBinary Mode = "parquet_to_binary"
	// ModePALPToParquet converts PALP text into a vertex file
	ModePALPToParquet Mode = "palp_to_parquet"
)

// Uploader publishes local files and returns their remote URIs
type Uploader interface {
	UploadAll(ctx context.Context, files []string) ([]string, error)
}

// Result summarizes a run
type Result struct {
	Mode      Mode                    `json:"mode"`
	Dimension int                     `json:"dimension,omitempty"`
	Index     string                  `json:"index,omitempty"`
	Counts    [polytope.TierCount]int `json:"counts"`
	Records   int                     `json:"records"`
	Outputs   []string                `json:"outputs,omitempty"`
	Uploaded  []string                `json:"uploaded,omitempty"`
	Duration  time.Duration           `json:"duration"`
}

// Pipeline executes conversions for one configuration
type Pipeline struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Collector
	tracer   *observability.Tracer
	uploader Uploader
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics sets the metrics collector
func WithMetrics(m *metrics.Collector) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracer sets the tracer
func WithTracer(t *observability.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithUploader publishes Parquet outputs after they are written
func WithUploader(u Uploader) Option {
	return func(p *Pipeline) { p.uploader = u }
}

// New creates a pipeline. Missing collaborators fall back to the global
// logger, a fresh collector and a disabled tracer.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logger.Get()
	}
	if p.metrics == nil {
		p.metrics = metrics.NewCollector()
	}
	if p.tracer == nil {
		// A disabled tracer cannot fail to build.
		p.tracer, _ = observability.NewTracer(observability.TracingConfig{ServiceName: "ipws"})
	}
	return p
}

// phase runs fn inside a span, timing it and logging its outcome
func (p *Pipeline) phase(ctx context.Context, name string, fn func(ctx context.Context, span *observability.Span) error) error {
	timer := metrics.NewTimer(name)
	ctx, span := p.tracer.Start(ctx, name)
	p.logger.Debug("phase started", zap.String("phase", name))

	err := fn(ctx, span)
	span.End(err)
	d := timer.Stop()
	p.metrics.ObservePhase(timer.Name(), d)

	if err != nil {
		p.logger.Error("phase failed", append([]zap.Field{zap.String("phase", name), zap.Duration("duration", d)},
			logger.ErrorFields(err)...)...)
		return err
	}
	p.logger.Info("phase finished", zap.String("phase", name), zap.Duration("duration", d))
	return nil
}

// finish samples process statistics and writes the metrics file, keeping
// the run's error when both fail
func (p *Pipeline) finish(res *Result, start time.Time, runErr error) (*Result, error) {
	res.Duration = time.Since(start)

	if err := p.metrics.SampleProcess(); err != nil {
		p.logger.Warn("process sampling failed", zap.Error(err))
	}
	if path := p.cfg.Observability.MetricsFile; path != "" {
		if err := p.metrics.WriteTextfile(path); err != nil {
			if runErr == nil {
				return res, err
			}
			p.logger.Warn("metrics file not written", zap.Error(err))
		}
	}

	if runErr != nil {
		return res, runErr
	}
	p.logger.Info("run finished",
		zap.String("mode", string(res.Mode)),
		zap.Int("records", res.Records),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// upload publishes files when an uploader is configured
func (p *Pipeline) upload(ctx context.Context, res *Result, files []string) error {
	if p.uploader == nil || len(files) == 0 {
		return nil
	}
	return p.phase(ctx, "upload", func(ctx context.Context, span *observability.Span) error {
		uris, err := p.uploader.UploadAll(ctx, files)
		res.Uploaded = uris
		span.SetAttribute("files", len(uris))
		return err
	})
}

func tierFields(counts [polytope.TierCount]int) []zap.Field {
	fields := make([]zap.Field, 0, polytope.TierCount)
	for _, tier := range polytope.Tiers {
		fields = append(fields, zap.Int(tier.String(), counts[tier]))
	}
	return fields
}

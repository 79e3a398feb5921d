package pipeline

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ipws/pkg/columnar"
	"github.com/ajitpratap0/ipws/pkg/compression"
	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/merge"
	"github.com/ajitpratap0/ipws/pkg/observability"
	"github.com/ajitpratap0/ipws/pkg/palp"
	"github.com/ajitpratap0/ipws/pkg/polytope"
	"github.com/ajitpratap0/ipws/pkg/wsfile"
)

// Format labels used in metrics
const (
	formatBinary  = "binary"
	formatParquet = "parquet"
	formatPALP    = "palp"
)

// RunIPWS converts between the binary pair and the tier files. A complete
// binary pair takes precedence over Parquet input; with neither set the run
// does nothing and reports ModeNothing.
func (p *Pipeline) RunIPWS(ctx context.Context) (*Result, error) {
	start := time.Now()
	in := p.cfg.Input

	switch {
	case in.HasBinaryInput():
		res, err := p.binaryToParquet(ctx)
		return p.finish(res, start, err)
	case in.HasParquetInput():
		res, err := p.parquetToBinary(ctx)
		return p.finish(res, start, err)
	default:
		p.logger.Info("no input configured")
		return p.finish(&Result{Mode: ModeNothing}, start, nil)
	}
}

// RunPALP converts a PALP text file into a vertex file
func (p *Pipeline) RunPALP(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{Mode: ModePALPToParquet}

	in, out := p.cfg.Input.PALPIn, p.cfg.Output.ParquetOut
	if in == "" {
		return res, errors.New(errors.ErrorTypeValidation, "no PALP input").WithDetail("key", "input.palp_in")
	}
	if out == "" {
		return res, errors.New(errors.ErrorTypeValidation, "no vertex output").WithDetail("key", "output.parquet_out")
	}

	var table *columnar.VertexTable
	err := p.phase(ctx, "read", func(_ context.Context, span *observability.Span) error {
		var err error
		table, err = palp.ParseFile(in)
		if err != nil {
			return err
		}
		span.SetAttribute("records", table.Len())
		span.SetAttribute("dimension", table.Dimension)
		return nil
	})
	if err != nil {
		return p.finish(res, start, err)
	}
	res.Dimension = table.Dimension
	res.Records = table.Len()
	p.metrics.RecordsRead(formatPALP, "", table.Len())

	err = p.phase(ctx, "write", func(_ context.Context, span *observability.Span) error {
		if err := columnar.WriteVertexFile(out, table, p.writerConfig(span)); err != nil {
			return err
		}
		span.SetAttribute("path", out)
		return nil
	})
	if err != nil {
		return p.finish(res, start, err)
	}
	res.Outputs = []string{out}
	p.metrics.RecordsWritten(formatParquet, "", table.Len())
	p.metrics.BytesWritten(formatParquet, fileSize(out))

	return p.finish(res, start, p.upload(ctx, res, res.Outputs))
}

func (p *Pipeline) binaryToParquet(ctx context.Context) (*Result, error) {
	res := &Result{Mode: ModeBinaryToParquet}
	in := p.cfg.Input

	var ds *polytope.Dataset
	err := p.phase(ctx, "read", func(_ context.Context, span *observability.Span) error {
		var err error
		ds, err = wsfile.DecodeBinaryPair(in.WeightsIn, in.InfoIn, wsfile.ReadOptions{
			Limit:     p.cfg.Processing.Limit,
			Derived:   p.cfg.Processing.IncludeDerivedQuantities,
			MemoryMap: in.MemoryMap,
		})
		if err != nil {
			return err
		}
		span.SetAttribute("records", ds.TotalCount())
		return nil
	})
	if err != nil {
		return res, err
	}
	p.describe(res, ds, formatBinary)

	paths := p.tierPaths()
	err = p.phase(ctx, "write", func(_ context.Context, span *observability.Span) error {
		if err := columnar.WriteDataset(ds, paths, p.writerConfig(span)); err != nil {
			return err
		}
		span.SetAttribute("files", len(paths))
		return nil
	})
	if err != nil {
		return res, err
	}

	for _, tier := range polytope.Tiers {
		path, ok := paths[tier]
		if !ok {
			continue
		}
		res.Outputs = append(res.Outputs, path)
		p.metrics.RecordsWritten(formatParquet, tier.String(), ds.Tier(tier).Len())
		p.metrics.BytesWritten(formatParquet, fileSize(path))
	}

	return res, p.upload(ctx, res, res.Outputs)
}

func (p *Pipeline) parquetToBinary(ctx context.Context) (*Result, error) {
	res := &Result{Mode: ModeParquetToBinary}

	var ds *polytope.Dataset
	err := p.phase(ctx, "read", func(_ context.Context, span *observability.Span) error {
		var err error
		ds, err = columnar.ReadShards(p.cfg.Input.ParquetIn, columnar.ReadOptions{
			Limit:  p.cfg.Processing.Limit,
			Strict: p.cfg.Processing.StrictShards,
		})
		if err != nil {
			return err
		}
		span.SetAttribute("shards", len(p.cfg.Input.ParquetIn))
		span.SetAttribute("records", ds.TotalCount())
		return nil
	})
	if err != nil {
		return res, err
	}
	p.describe(res, ds, formatParquet)

	// Concatenated shards are only mergeable when each tier stays ascending.
	err = p.phase(ctx, "check", func(context.Context, *observability.Span) error {
		for i, src := range merge.Sources(ds) {
			if err := merge.CheckSorted(polytope.Tier(i), src); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	out := p.cfg.Output
	err = p.phase(ctx, "write", func(_ context.Context, span *observability.Span) error {
		level := compression.Level(p.cfg.Processing.BinaryCompressionLevel)
		n, err := wsfile.WriteBinaryPair(ds, out.WeightsOut, out.InfoOut, level)
		if err != nil {
			return err
		}
		span.SetAttribute("records", n)
		return nil
	})
	if err != nil {
		return res, err
	}

	for _, path := range []string{out.WeightsOut, out.InfoOut} {
		if path == "" {
			continue
		}
		res.Outputs = append(res.Outputs, path)
		p.metrics.BytesWritten(formatBinary, fileSize(path))
	}
	if len(res.Outputs) > 0 {
		for _, tier := range polytope.Tiers {
			p.metrics.RecordsWritten(formatBinary, tier.String(), ds.Tier(tier).Len())
		}
	}
	return res, nil
}

// describe copies dataset facts into res and counts the records read
func (p *Pipeline) describe(res *Result, ds *polytope.Dataset, format string) {
	res.Dimension = ds.Dimension
	res.Index = ds.Index.String()
	res.Counts = ds.Counts()
	res.Records = ds.TotalCount()

	for _, tier := range polytope.Tiers {
		p.metrics.RecordsRead(format, tier.String(), ds.Tier(tier).Len())
	}
	p.logger.Info("dataset loaded",
		append([]zap.Field{
			zap.String("format", format),
			zap.Int("dimension", ds.Dimension),
			zap.String("index", res.Index),
		}, tierFields(res.Counts)...)...)
}

func (p *Pipeline) tierPaths() columnar.TierPaths {
	out := p.cfg.Output
	paths := columnar.TierPaths{}
	for tier, path := range map[polytope.Tier]string{
		polytope.NotInteriorPoint: out.ParquetNonIPOut,
		polytope.NonReflexive:     out.ParquetNonReflexiveOut,
		polytope.Reflexive:        out.ParquetReflexiveOut,
	} {
		if path != "" {
			paths[tier] = path
		}
	}
	return paths
}

// writerConfig reports every written row group to metrics, the debug log
// and span as an event
func (p *Pipeline) writerConfig(span *observability.Span) *columnar.WriterConfig {
	cfg := columnar.DefaultWriterConfig()
	cfg.RowGroupSize = p.cfg.Processing.RowGroupSize
	cfg.CompressionLevel = p.cfg.Processing.CompressionLevel
	cfg.OnRowGroup = func(start, end int) {
		p.metrics.RowGroupWritten()
		span.AddEvent("row_group", attribute.Int("start", start), attribute.Int("end", end))
		p.logger.Debug("row group written", zap.Int("start", start), zap.Int("end", end))
	}
	return cfg
}

// fileSize returns the size of a written file, or zero when it cannot be
// determined
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

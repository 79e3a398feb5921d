package columnar

import (
	"os"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/metadata"
	"github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/polytope"
)

// DefaultRowGroupSize bounds the rows buffered per row group
const DefaultRowGroupSize = 5_000_000

// DefaultCompressionLevel is the ZSTD level used for integer columns
const DefaultCompressionLevel = 5

// WriterConfig configures Parquet output
type WriterConfig struct {
	RowGroupSize     int
	CompressionLevel int
	CreatedBy        string

	// OnRowGroup, when set, is called after every row group is written with
	// the half-open row range it covered.
	OnRowGroup func(start, end int)
}

// DefaultWriterConfig returns the default writer configuration
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		RowGroupSize:     DefaultRowGroupSize,
		CompressionLevel: DefaultCompressionLevel,
		CreatedBy:        "ipws",
	}
}

func (c *WriterConfig) rowGroupSize() int {
	if c == nil || c.RowGroupSize <= 0 {
		return DefaultRowGroupSize
	}
	return c.RowGroupSize
}

func (c *WriterConfig) properties() *parquet.WriterProperties {
	level := DefaultCompressionLevel
	createdBy := "ipws"
	if c != nil {
		if c.CompressionLevel > 0 {
			level = c.CompressionLevel
		}
		if c.CreatedBy != "" {
			createdBy = c.CreatedBy
		}
	}

	return parquet.NewWriterProperties(
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithDataPageVersion(parquet.DataPageV2),
		parquet.WithCompression(compress.Codecs.Zstd),
		parquet.WithCompressionLevel(level),
		parquet.WithDictionaryDefault(false),
		parquet.WithCreatedBy(createdBy),
	)
}

// TierPaths maps tiers to output files. A tier without a path is not
// written.
type TierPaths map[polytope.Tier]string

// WriteDataset writes every tier of ds that has a path
func WriteDataset(ds *polytope.Dataset, paths TierPaths, cfg *WriterConfig) error {
	for _, tier := range polytope.Tiers {
		path, ok := paths[tier]
		if !ok || path == "" {
			continue
		}
		meta := Metadata{Tier: tier, Dimension: ds.Dimension, Index: ds.Index}
		if err := WriteTier(path, meta, ds.Tier(tier), cfg); err != nil {
			return err
		}
	}
	return nil
}

// WriteTier writes one tier collection to a Parquet file
func WriteTier(path string, meta Metadata, td *polytope.TierData, cfg *WriterConfig) error {
	if err := td.Columns.CheckAligned(); err != nil {
		return err
	}

	root, err := intSchema(td.Columns.Names())
	if err != nil {
		return err
	}
	kv, err := meta.KeyValue()
	if err != nil {
		return err
	}

	err = writeFile(path, root, kv, cfg, td.Len(), func(rgw file.SerialRowGroupWriter, start, end int) error {
		for i, name := range td.Columns.Names() {
			if err := writeInt32Column(rgw, td.Columns.At(i)[start:end], nil, nil); err != nil {
				return errors.Wrap(err, errors.TypeOf(err), "write column").WithDetail("column", name)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.TypeOf(err), "write tier file").
			WithDetail("path", path).
			WithDetail("tier", meta.Tier.String())
	}
	return nil
}

// writeFile creates path and writes rows in row groups, calling writeGroup
// for each half-open row range
func writeFile(path string, root *schema.GroupNode, kv metadata.KeyValueMetadata, cfg *WriterConfig,
	rows int, writeGroup func(rgw file.SerialRowGroupWriter, start, end int) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "create parquet file")
	}

	// The writer closes f on Close.
	fw := file.NewParquetWriter(f, root,
		file.WithWriterProps(cfg.properties()),
		file.WithWriteMetadata(kv))

	size := cfg.rowGroupSize()
	for start := 0; start < rows; start += size {
		end := min(start+size, rows)

		rgw := fw.AppendRowGroup()
		if err := writeGroup(rgw, start, end); err != nil {
			_ = fw.Close()
			return err
		}
		if err := rgw.Close(); err != nil {
			_ = fw.Close()
			return errors.Wrap(err, errors.ErrorTypeFile, "close row group")
		}
		if cfg != nil && cfg.OnRowGroup != nil {
			cfg.OnRowGroup(start, end)
		}
	}

	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "close parquet file")
	}
	return nil
}

func writeInt32Column(rgw file.SerialRowGroupWriter, values []int32, def, rep []int16) error {
	cw, err := rgw.NextColumn()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "next column")
	}

	icw, ok := cw.(*file.Int32ColumnChunkWriter)
	if !ok {
		_ = cw.Close()
		return errors.Newf(errors.ErrorTypeInternal, "unexpected column writer %T", cw)
	}

	if _, err := icw.WriteBatch(values, def, rep); err != nil {
		_ = cw.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "write batch")
	}
	if err := cw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "close column")
	}
	return nil
}

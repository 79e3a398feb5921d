package columnar

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"

	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/polytope"
)

// batchSize is the number of values requested per ReadBatch call
const batchSize = 64 * 1024

// ReadOptions controls columnar input
type ReadOptions struct {
	// Limit caps the rows read from each file. Zero reads everything.
	Limit int
	// Strict rejects shards whose index differs from the first shard.
	Strict bool
}

// ReadFile reads a single tier file into a new dataset
func ReadFile(path string, opts ReadOptions) (*polytope.Dataset, error) {
	return ReadShards([]string{path}, opts)
}

// ReadShards reads tier files in order and appends them into one dataset.
// Every shard must share the dimension of the first one. Shards of the same
// tier are concatenated; callers are responsible for their ordering.
func ReadShards(paths []string, opts ReadOptions) (*polytope.Dataset, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "no columnar input")
	}

	var ds *polytope.Dataset
	for _, path := range paths {
		rdr, err := openFile(path)
		if err != nil {
			return nil, err
		}

		ds, err = readShard(rdr, ds, opts)
		_ = rdr.Close()
		if err != nil {
			return nil, errors.Wrap(err, errors.TypeOf(err), "read columnar file").WithDetail("path", path)
		}
	}
	return ds, nil
}

func openFile(path string) (*file.Reader, error) {
	props := parquet.NewReaderProperties(memory.DefaultAllocator)
	rdr, err := file.OpenParquetFile(path, false, file.WithReadProps(props))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "open parquet file").WithDetail("path", path)
	}
	return rdr, nil
}

// readShard appends the rows of one file to ds, creating ds when nil
func readShard(rdr *file.Reader, ds *polytope.Dataset, opts ReadOptions) (*polytope.Dataset, error) {
	meta, err := ParseMetadata(rdr.MetaData().KeyValueMetadata())
	if err != nil {
		return nil, err
	}

	switch {
	case ds == nil:
		ds = polytope.NewDataset(meta.Dimension, meta.Index, false)
	case ds.Dimension != meta.Dimension:
		return nil, errors.Newf(errors.ErrorTypeFormat, "dimension %d differs from %d of earlier shards", meta.Dimension, ds.Dimension)
	case ds.Index != meta.Index:
		if opts.Strict {
			return nil, errors.Newf(errors.ErrorTypeFormat, "index %s differs from %s of earlier shards", meta.Index, ds.Index)
		}
		ds.Index = meta.Index
	}

	td := ds.Tier(meta.Tier)
	names := td.Columns.Names()
	indices, err := columnIndices(rdr, meta, names)
	if err != nil {
		return nil, err
	}

	remaining := int64(-1)
	if opts.Limit > 0 {
		remaining = int64(opts.Limit)
	}

	var buf []int32
	for g := 0; g < rdr.NumRowGroups() && remaining != 0; g++ {
		rg := rdr.RowGroup(g)
		rows := rg.NumRows()
		if remaining > 0 && rows > remaining {
			rows = remaining
		}
		td.Columns.Grow(int(rows))

		for i, name := range names {
			buf, err = readInt32Column(rg, indices[i], rows, buf[:0])
			if err != nil {
				return nil, errors.Wrap(err, errors.TypeOf(err), "read column").
					WithDetail("column", name).
					WithDetail("row_group", g)
			}
			if err := td.Columns.AppendColumn(name, buf); err != nil {
				return nil, err
			}
		}

		if remaining > 0 {
			remaining -= rows
		}
	}

	if err := td.Columns.CheckAligned(); err != nil {
		return nil, err
	}
	return ds, nil
}

// columnIndices resolves the schema position of every expected column
func columnIndices(rdr *file.Reader, meta Metadata, names []string) ([]int, error) {
	sc := rdr.MetaData().Schema
	if sc.NumColumns() < polytope.ExpectedColumns(meta.Dimension, meta.Tier) {
		return nil, errors.New(errors.ErrorTypeFormat, "columns missing").
			WithDetail("columns", sc.NumColumns()).
			WithDetail("expected", polytope.ExpectedColumns(meta.Dimension, meta.Tier))
	}

	indices := make([]int, len(names))
	for i, name := range names {
		idx := sc.ColumnIndexByName(name)
		if idx < 0 {
			return nil, errors.New(errors.ErrorTypeFormat, "columns missing").WithDetail("column", name)
		}
		indices[i] = idx
	}
	return indices, nil
}

// readInt32Column reads exactly rows values of a required INT32 column
func readInt32Column(rg *file.RowGroupReader, idx int, rows int64, dst []int32) ([]int32, error) {
	values, _, err := readColumn(rg, idx, rows, false)
	if err != nil {
		return nil, err
	}
	if int64(len(values)) != rows {
		return nil, errors.Newf(errors.ErrorTypeInternal, "read %d rows, expected %d", len(values), rows)
	}
	return append(dst, values...), nil
}

// readRepeatedInt32Column reads every value of a nested INT32 column along
// with its repetition levels
func readRepeatedInt32Column(rg *file.RowGroupReader, idx int) ([]int32, []int16, error) {
	chunk, err := rg.MetaData().ColumnChunk(idx)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeFormat, "column chunk metadata")
	}
	values, rep, err := readColumn(rg, idx, chunk.NumValues(), true)
	if err != nil {
		return nil, nil, err
	}
	if int64(len(rep)) != chunk.NumValues() {
		return nil, nil, errors.Newf(errors.ErrorTypeInternal, "read %d levels, expected %d", len(rep), chunk.NumValues())
	}
	return values, rep, nil
}

func readColumn(rg *file.RowGroupReader, idx int, levels int64, repeated bool) ([]int32, []int16, error) {
	cr, err := rg.Column(idx)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeFormat, "open column")
	}
	icr, ok := cr.(*file.Int32ColumnChunkReader)
	if !ok {
		return nil, nil, errors.Newf(errors.ErrorTypeFormat, "column %d is %s, expected INT32", idx, cr.Descriptor().PhysicalType())
	}

	values := make([]int32, 0, levels)
	var rep []int16
	var def, repBuf []int16
	if repeated {
		rep = make([]int16, 0, levels)
		def = make([]int16, batchSize)
		repBuf = make([]int16, batchSize)
	}
	batch := make([]int32, batchSize)

	for read := int64(0); read < levels && icr.HasNext(); {
		want := min(int64(batchSize), levels-read)
		total, n, err := icr.ReadBatch(want, batch, def, repBuf)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeFile, "read batch")
		}
		if total == 0 {
			break
		}
		values = append(values, batch[:n]...)
		if repeated {
			rep = append(rep, repBuf[:total]...)
		}
		read += total
	}
	return values, rep, nil
}

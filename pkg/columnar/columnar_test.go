package columnar

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/polytope"
)

// fiveRowDataset builds a dataset with five ascending rows in every tier
func fiveRowDataset(t *testing.T, dim int, derived bool) *polytope.Dataset {
	t.Helper()
	ds := polytope.NewDataset(dim, polytope.NewIndex(3, 4), derived)
	for _, tier := range polytope.Tiers {
		td := ds.Tier(tier)
		for row := 0; row < 5; row++ {
			ws := make(polytope.WeightSystem, dim)
			for i := range ws {
				ws[i] = int32(row*10 + i + int(tier))
			}
			aux := make([]int32, len(td.AuxiliaryColumns()))
			for i := range aux {
				aux[i] = int32(100*row + i)
			}
			require.NoError(t, td.AppendRow(ws, aux))
		}
	}
	return ds
}

func tierPaths(dir string) TierPaths {
	return TierPaths{
		polytope.NotInteriorPoint: filepath.Join(dir, "non_ip.parquet"),
		polytope.NonReflexive:     filepath.Join(dir, "non_reflexive.parquet"),
		polytope.Reflexive:        filepath.Join(dir, "reflexive.parquet"),
	}
}

func (p TierPaths) list() []string {
	var out []string
	for _, tier := range polytope.Tiers {
		out = append(out, p[tier])
	}
	return out
}

func TestWriteReadAcrossRowGroups(t *testing.T) {
	for _, dim := range []int{4, 5, 6} {
		dim := dim
		t.Run(fmt.Sprintf("dim%d", dim), func(t *testing.T) {
			ds := fiveRowDataset(t, dim, false)
			paths := tierPaths(t.TempDir())

			var groups [][2]int
			cfg := DefaultWriterConfig()
			cfg.RowGroupSize = 2
			cfg.OnRowGroup = func(start, end int) { groups = append(groups, [2]int{start, end}) }

			require.NoError(t, WriteDataset(ds, paths, cfg))
			assert.Equal(t, [][2]int{{0, 2}, {2, 4}, {4, 5}, {0, 2}, {2, 4}, {4, 5}, {0, 2}, {2, 4}, {4, 5}}, groups)

			info, err := Inspect(paths[polytope.Reflexive])
			require.NoError(t, err)
			assert.Len(t, info.RowGroups, 3)
			assert.Equal(t, int64(5), info.Rows)

			got, err := ReadShards(paths.list(), ReadOptions{})
			require.NoError(t, err)
			assert.Equal(t, dim, got.Dimension)
			assert.Equal(t, "3/4", got.Index.String())
			for _, tier := range polytope.Tiers {
				w, g := ds.Tier(tier), got.Tier(tier)
				require.Equal(t, w.Columns.Names(), g.Columns.Names())
				for _, name := range w.Columns.Names() {
					assert.Equal(t, w.Columns.Column(name), g.Columns.Column(name), "tier %s column %s", tier, name)
				}
			}
		})
	}
}

func TestDerivedColumnsWrittenNotRead(t *testing.T) {
	ds := fiveRowDataset(t, 6, true)
	path := filepath.Join(t.TempDir(), "reflexive.parquet")
	require.NoError(t, WriteDataset(ds, TierPaths{polytope.Reflexive: path}, nil))

	info, err := Inspect(path)
	require.NoError(t, err)
	names := make([]string, 0, len(info.Columns))
	for _, c := range info.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, polytope.Fields(6, polytope.Reflexive, true), names)
	assert.Contains(t, info.ArrowSchema, "euler_characteristic")

	got, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	td := got.Tier(polytope.Reflexive)
	assert.False(t, td.Columns.Has(polytope.H22))
	assert.Equal(t, ds.Tier(polytope.Reflexive).Columns.Column("h13"), td.Columns.Column("h13"))
}

func TestMetadataRoundTrip(t *testing.T) {
	for _, tier := range polytope.Tiers {
		meta := Metadata{Tier: tier, Dimension: 5, Index: polytope.NewIndex(7, 1)}
		kv, err := meta.KeyValue()
		require.NoError(t, err)
		assert.Equal(t, "7", *kv.FindValue(KeyIndex))

		parsed, err := ParseMetadata(kv)
		require.NoError(t, err)
		assert.Equal(t, meta, parsed)
	}
}

func TestParseMetadataErrors(t *testing.T) {
	build := func(pairs ...string) metadata.KeyValueMetadata {
		kv := metadata.NewKeyValueMetadata()
		for i := 0; i < len(pairs); i += 2 {
			require.NoError(t, kv.Append(pairs[i], pairs[i+1]))
		}
		return kv
	}

	tests := []struct {
		name string
		kv   metadata.KeyValueMetadata
		msg  string
	}{
		{"missing", build("ip", "true", "reflexive", "true", "dimension", "6"), "missing file metadata"},
		{"bad bool", build("ip", "yes", "reflexive", "true", "dimension", "6", "index", "1"), "invalid file metadata"},
		{"bad dimension", build("ip", "true", "reflexive", "true", "dimension", "six", "index", "1"), "invalid file metadata"},
		{"small dimension", build("ip", "true", "reflexive", "true", "dimension", "3", "index", "1"), "below minimum"},
		{"huge dimension", build("ip", "true", "reflexive", "true", "dimension", "4294967280", "index", "1"), "above maximum"},
		{"bad index", build("ip", "true", "reflexive", "true", "dimension", "6", "index", "a/b"), ""},
		{"reflexive without ip", build("ip", "false", "reflexive", "true", "dimension", "6", "index", "1"), "invalid metadata"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata(tt.kv)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeFormat), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReadMissingMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.parquet")
	root, err := intSchema(polytope.Fields(4, polytope.NotInteriorPoint, false))
	require.NoError(t, err)
	require.NoError(t, writeFile(path, root, metadata.NewKeyValueMetadata(), nil, 0,
		func(file.SerialRowGroupWriter, int, int) error { return nil }))

	_, err = ReadFile(path, ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))
	assert.Contains(t, err.Error(), "missing file metadata")
}

func TestReadColumnsMissing(t *testing.T) {
	ds := fiveRowDataset(t, 4, false)
	path := filepath.Join(t.TempDir(), "mislabelled.parquet")
	meta := Metadata{Tier: polytope.Reflexive, Dimension: 4, Index: ds.Index}
	require.NoError(t, WriteTier(path, meta, ds.Tier(polytope.NonReflexive), nil))

	_, err := ReadFile(path, ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))
	assert.Contains(t, err.Error(), "columns missing")
}

func TestReadLimit(t *testing.T) {
	ds := fiveRowDataset(t, 4, false)
	paths := tierPaths(t.TempDir())
	cfg := DefaultWriterConfig()
	cfg.RowGroupSize = 2
	require.NoError(t, WriteDataset(ds, paths, cfg))

	got, err := ReadShards(paths.list(), ReadOptions{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, [polytope.TierCount]int{3, 3, 3}, got.Counts())
	assert.Equal(t, ds.Tier(polytope.NonReflexive).Columns.Column("weight0")[:3],
		got.Tier(polytope.NonReflexive).Columns.Column("weight0"))
}

func TestReadShardsAppend(t *testing.T) {
	dir := t.TempDir()
	ds := fiveRowDataset(t, 5, false)
	first := filepath.Join(dir, "a.parquet")
	second := filepath.Join(dir, "b.parquet")
	require.NoError(t, WriteDataset(ds, TierPaths{polytope.NonReflexive: first}, nil))
	require.NoError(t, WriteDataset(ds, TierPaths{polytope.NonReflexive: second}, nil))

	got, err := ReadShards([]string{first, second}, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, [polytope.TierCount]int{0, 10, 0}, got.Counts())
}

func TestReadShardsMismatch(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.parquet")
	require.NoError(t, WriteDataset(fiveRowDataset(t, 4, false), TierPaths{polytope.Reflexive: base}, nil))

	otherIndex := fiveRowDataset(t, 4, false)
	otherIndex.Index = polytope.NewIndex(1, 2)
	indexPath := filepath.Join(dir, "index.parquet")
	require.NoError(t, WriteDataset(otherIndex, TierPaths{polytope.Reflexive: indexPath}, nil))

	dimPath := filepath.Join(dir, "dim.parquet")
	require.NoError(t, WriteDataset(fiveRowDataset(t, 5, false), TierPaths{polytope.Reflexive: dimPath}, nil))

	_, err := ReadShards([]string{base, dimPath}, ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))

	got, err := ReadShards([]string{base, indexPath}, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1/2", got.Index.String())

	_, err = ReadShards([]string{base, indexPath}, ReadOptions{Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index")
}

func TestEmptyTierFile(t *testing.T) {
	ds := polytope.NewDataset(4, polytope.NewIndex(2, 1), false)
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteDataset(ds, TierPaths{polytope.NotInteriorPoint: path}, nil))

	got, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalCount())
	assert.Equal(t, "2", got.Index.String())
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.parquet"), ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestLevels(t *testing.T) {
	def, rep, err := EncodeLevels([]int32{3}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int16{0, 2, 1, 2, 1, 2}, rep)
	assert.Equal(t, []int16{2, 2, 2, 2, 2, 2}, def)

	records, err := DecodeLevels([]int32{1, 2, 3, 4, 5, 6}, rep, 2)
	require.NoError(t, err)
	assert.Equal(t, [][][]int32{{{1, 2}, {3, 4}, {5, 6}}}, records)

	_, rep, err = EncodeLevels([]int32{1, 2}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int16{0, 2, 2, 0, 2, 2, 1, 2, 2}, rep)
}

func TestLevelErrors(t *testing.T) {
	_, _, err := EncodeLevels([]int32{2, 0}, 2)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	tests := []struct {
		name   string
		values []int32
		rep    []int16
	}{
		{"length mismatch", []int32{1, 2}, []int16{0}},
		{"starts mid record", []int32{1, 2}, []int16{1, 2}},
		{"starts mid vertex", []int32{1, 2}, []int16{2, 2}},
		{"short vertex", []int32{1, 2, 3}, []int16{0, 2, 1}},
		{"invalid level", []int32{1, 2}, []int16{0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLevels(tt.values, tt.rep, 2)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))
		})
	}
}

func TestVertexMajor(t *testing.T) {
	vertices, err := VertexMajor([][]int32{{1, 0, -1}, {0, 1, -1}})
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{1, 0}, {0, 1}, {-1, -1}}, vertices)

	_, err = VertexMajor([][]int32{{1, 0}, {0}})
	require.Error(t, err)
}

func TestVertexFileRoundTrip(t *testing.T) {
	table := NewVertexTable(4)
	square := [][]int32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {-1, -1, -1, 0}}
	require.NoError(t, table.Append(square, []int32{4, 6, 5, 1, 2, -6}))
	require.NoError(t, table.Append(square[:2], []int32{2, 3, 3, 0, 1, 4}))
	require.NoError(t, table.Append(square[1:], []int32{5, 9, 7, 3, 3, 8}))

	path := filepath.Join(t.TempDir(), "palp.parquet")
	cfg := DefaultWriterConfig()
	cfg.RowGroupSize = 2
	require.NoError(t, WriteVertexFile(path, table, cfg))

	got, err := ReadVertexFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, 4, got.Dimension)
	for i := 0; i < table.Len(); i++ {
		assert.Equal(t, table.Vertices(i), got.Vertices(i), "record %d", i)
	}
	for _, name := range table.Columns.Names() {
		assert.Equal(t, table.Columns.Column(name), got.Columns.Column(name), name)
	}

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "vertices.list.element.list.element", info.Columns[0].Path)
	assert.Equal(t, int16(2), info.Columns[0].MaxRepetition)
	assert.Equal(t, int16(2), info.Columns[0].MaxDefinition)
}

func TestVertexTableValidation(t *testing.T) {
	table := NewVertexTable(4)
	assert.Equal(t, []string{"vertex_count", "facet_count", "point_count", "dual_point_count", "h11", "h12", "euler_characteristic"},
		table.Columns.Names())

	assert.Error(t, table.Append(nil, []int32{1, 2, 3, 4, 5, 6}))
	assert.Error(t, table.Append([][]int32{{1, 2}}, []int32{1, 2, 3, 4, 5, 6}))
	assert.Error(t, table.Append([][]int32{{1, 2, 3, 4}}, []int32{1}))
	assert.Equal(t, 0, table.Len())
}

func TestReadVertexFileDimensionBound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vertices.parquet")
	root, err := intSchema(VertexFields(4))
	require.NoError(t, err)
	kv := metadata.NewKeyValueMetadata()
	require.NoError(t, kv.Append(KeyDimension, "4294967280"))
	require.NoError(t, writeFile(path, root, kv, nil, 0,
		func(file.SerialRowGroupWriter, int, int) error { return nil }))

	_, err = ReadVertexFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))
	assert.Contains(t, err.Error(), "invalid file metadata")
}

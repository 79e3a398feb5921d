package columnar

import (
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/metadata"
	"github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/polytope"
)

// VerticesColumn is the list<list<int32>> column of a vertex file
const VerticesColumn = "vertices"

// VertexFields returns the scalar columns that follow the vertex list in a
// vertex file: counts, dimension-2 Hodge numbers and the Euler
// characteristic
func VertexFields(dimension int) []string {
	fields := []string{polytope.VertexCount, polytope.FacetCount, polytope.PointCount, polytope.DualPointCount}
	for i := 0; i < dimension-2; i++ {
		fields = append(fields, polytope.HodgeColumn(i))
	}
	return append(fields, polytope.EulerCharacteristic)
}

// VertexTable holds polytopes with their vertex coordinates. Coordinates are
// stored flat and vertex-major, record after record.
type VertexTable struct {
	Dimension   int
	Coordinates []int32
	Columns     *polytope.Columns

	offsets []int
}

// NewVertexTable creates an empty table
func NewVertexTable(dimension int) *VertexTable {
	return &VertexTable{
		Dimension: dimension,
		Columns:   polytope.NewColumns(VertexFields(dimension)),
		offsets:   []int{0},
	}
}

// Len returns the number of polytopes
func (t *VertexTable) Len() int {
	return t.Columns.Len()
}

// Append adds one polytope. vertices holds one coordinate list per vertex;
// aux holds every VertexFields value except vertex_count, which is taken
// from len(vertices).
func (t *VertexTable) Append(vertices [][]int32, aux []int32) error {
	if len(aux) != t.Columns.Width()-1 {
		return errors.Newf(errors.ErrorTypeValidation, "%d auxiliary values, expected %d", len(aux), t.Columns.Width()-1)
	}
	if len(vertices) == 0 {
		return errors.New(errors.ErrorTypeValidation, "polytope without vertices")
	}
	for _, v := range vertices {
		if len(v) != t.Dimension {
			return errors.Newf(errors.ErrorTypeValidation, "vertex with %d coordinates, expected %d", len(v), t.Dimension)
		}
	}

	for _, v := range vertices {
		t.Coordinates = append(t.Coordinates, v...)
	}
	t.offsets = append(t.offsets, len(t.Coordinates))

	fields := t.Columns.Names()
	t.Columns.AppendValue(polytope.VertexCount, int32(len(vertices)))
	for i, v := range aux {
		t.Columns.AppendValue(fields[i+1], v)
	}
	return nil
}

// Vertices returns the vertex lists of the i-th polytope
func (t *VertexTable) Vertices(i int) [][]int32 {
	flat := t.Coordinates[t.offsets[i]:t.offsets[i+1]]
	out := make([][]int32, 0, len(flat)/t.Dimension)
	for start := 0; start < len(flat); start += t.Dimension {
		out = append(out, flat[start:start+t.Dimension])
	}
	return out
}

// VertexSchema builds the Parquet schema of a vertex file
func VertexSchema(dimension int) (*schema.GroupNode, error) {
	vertices, err := listOfLists(VerticesColumn)
	if err != nil {
		return nil, err
	}

	fields := schema.FieldList{vertices}
	for _, name := range VertexFields(dimension) {
		fields = append(fields, schema.NewInt32Node(name, parquet.Repetitions.Required, -1))
	}

	root, err := schema.NewGroupNode(rootName, parquet.Repetitions.Required, fields, -1)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "build parquet schema")
	}
	return root, nil
}

// WriteVertexFile writes a vertex table in row groups
func WriteVertexFile(path string, t *VertexTable, cfg *WriterConfig) error {
	if err := t.Columns.CheckAligned(); err != nil {
		return err
	}

	root, err := VertexSchema(t.Dimension)
	if err != nil {
		return err
	}

	kv := metadata.NewKeyValueMetadata()
	if err := kv.Append(KeyDimension, strconv.Itoa(t.Dimension)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "build file metadata")
	}

	counts := t.Columns.Column(polytope.VertexCount)
	err = writeFile(path, root, kv, cfg, t.Len(), func(rgw file.SerialRowGroupWriter, start, end int) error {
		def, rep, err := EncodeLevels(counts[start:end], t.Dimension)
		if err != nil {
			return err
		}
		coords := t.Coordinates[t.offsets[start]:t.offsets[end]]
		if err := writeInt32Column(rgw, coords, def, rep); err != nil {
			return errors.Wrap(err, errors.TypeOf(err), "write column").WithDetail("column", VerticesColumn)
		}

		for i, name := range t.Columns.Names() {
			if err := writeInt32Column(rgw, t.Columns.At(i)[start:end], nil, nil); err != nil {
				return errors.Wrap(err, errors.TypeOf(err), "write column").WithDetail("column", name)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.TypeOf(err), "write vertex file").WithDetail("path", path)
	}
	return nil
}

// ReadVertexFile reads a vertex file back into a table
func ReadVertexFile(path string) (*VertexTable, error) {
	rdr, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	dimension, err := vertexDimension(rdr)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "read vertex file").WithDetail("path", path)
	}

	t := NewVertexTable(dimension)
	sc := rdr.MetaData().Schema
	var buf []int32
	for g := 0; g < rdr.NumRowGroups(); g++ {
		rg := rdr.RowGroup(g)
		rows := rg.NumRows()

		coords, rep, err := readRepeatedInt32Column(rg, 0)
		if err != nil {
			return nil, errors.Wrap(err, errors.TypeOf(err), "read vertices").WithDetail("path", path).WithDetail("row_group", g)
		}
		records, err := DecodeLevels(coords, rep, dimension)
		if err != nil {
			return nil, errors.Wrap(err, errors.TypeOf(err), "decode vertices").WithDetail("path", path).WithDetail("row_group", g)
		}
		if int64(len(records)) != rows {
			return nil, errors.Newf(errors.ErrorTypeInternal, "decoded %d vertex lists, row group has %d rows", len(records), rows).
				WithDetail("path", path)
		}

		for _, name := range t.Columns.Names() {
			idx := sc.ColumnIndexByName(name)
			if idx < 0 {
				return nil, errors.New(errors.ErrorTypeFormat, "columns missing").WithDetail("column", name).WithDetail("path", path)
			}
			buf, err = readInt32Column(rg, idx, rows, buf[:0])
			if err != nil {
				return nil, errors.Wrap(err, errors.TypeOf(err), "read column").WithDetail("column", name).WithDetail("path", path)
			}
			if err := t.Columns.AppendColumn(name, buf); err != nil {
				return nil, err
			}
		}

		for _, vertices := range records {
			for _, v := range vertices {
				t.Coordinates = append(t.Coordinates, v...)
			}
			t.offsets = append(t.offsets, len(t.Coordinates))
		}
	}

	if err := t.Columns.CheckAligned(); err != nil {
		return nil, err
	}
	counts := t.Columns.Column(polytope.VertexCount)
	for i, n := range counts {
		if int(n) != (t.offsets[i+1]-t.offsets[i])/dimension {
			return nil, errors.Newf(errors.ErrorTypeFormat, "vertex_count %d does not match %d stored vertices", n,
				(t.offsets[i+1]-t.offsets[i])/dimension).WithDetail("row", i).WithDetail("path", path)
		}
	}
	return t, nil
}

// vertexDimension returns the dimension recorded in metadata, or infers it
// from the number of Hodge number columns
func vertexDimension(rdr *file.Reader) (int, error) {
	if v := rdr.MetaData().KeyValueMetadata().FindValue(KeyDimension); v != nil {
		dim, err := strconv.Atoi(*v)
		if err != nil || dim <= 0 || dim > polytope.MaxDimension {
			return 0, errors.Newf(errors.ErrorTypeFormat, "invalid file metadata %q", KeyDimension).WithDetail("value", *v)
		}
		return dim, nil
	}

	sc := rdr.MetaData().Schema
	hodge := 0
	for i := 0; i < sc.NumColumns(); i++ {
		name := sc.Column(i).Name()
		if strings.HasPrefix(name, "h1") {
			hodge++
		}
	}
	if hodge == 0 {
		return 0, errors.New(errors.ErrorTypeFormat, "missing file metadata").WithDetail("key", KeyDimension)
	}
	return hodge + 2, nil
}

package columnar

import (
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

// ColumnInfo describes a leaf column
type ColumnInfo struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	PhysicalType  string `json:"physical_type"`
	MaxDefinition int16  `json:"max_definition_level"`
	MaxRepetition int16  `json:"max_repetition_level"`
}

// RowGroupInfo describes one row group
type RowGroupInfo struct {
	Rows     int64 `json:"rows"`
	ByteSize int64 `json:"byte_size"`
	FirstRow int64 `json:"first_row"`
}

// FileInfo summarizes a columnar file for display
type FileInfo struct {
	Path        string            `json:"path"`
	CreatedBy   string            `json:"created_by"`
	Rows        int64             `json:"rows"`
	Metadata    map[string]string `json:"metadata"`
	Columns     []ColumnInfo      `json:"columns"`
	RowGroups   []RowGroupInfo    `json:"row_groups"`
	ArrowSchema string            `json:"arrow_schema"`
}

// Inspect reads the footer of a tier or vertex file
func Inspect(path string) (*FileInfo, error) {
	rdr, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	md := rdr.MetaData()
	info := &FileInfo{
		Path:      path,
		CreatedBy: md.GetCreatedBy(),
		Rows:      rdr.NumRows(),
		Metadata:  make(map[string]string),
	}

	kv := md.KeyValueMetadata()
	values := kv.Values()
	for i, key := range kv.Keys() {
		info.Metadata[key] = values[i]
	}

	sc := md.Schema
	for i := 0; i < sc.NumColumns(); i++ {
		col := sc.Column(i)
		info.Columns = append(info.Columns, ColumnInfo{
			Name:          col.Name(),
			Path:          col.Path(),
			PhysicalType:  col.PhysicalType().String(),
			MaxDefinition: col.MaxDefinitionLevel(),
			MaxRepetition: col.MaxRepetitionLevel(),
		})
	}

	var first int64
	for g := 0; g < rdr.NumRowGroups(); g++ {
		rg := rdr.RowGroup(g)
		info.RowGroups = append(info.RowGroups, RowGroupInfo{
			Rows:     rg.NumRows(),
			ByteSize: rg.ByteSize(),
			FirstRow: first,
		})
		first += rg.NumRows()
	}

	arrowSchema, err := pqarrow.FromParquet(sc, &pqarrow.ArrowReadProperties{}, kv)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "convert schema").WithDetail("path", path)
	}
	info.ArrowSchema = arrowSchema.String()
	return info, nil
}

package columnar

import (
	"github.com/ajitpratap0/ipws/pkg/errors"
)

// Levels of the list<list<int32>> vertex column
const (
	// LevelRecord starts a new record (outer list)
	LevelRecord int16 = 0
	// LevelVertex starts a new vertex (inner list) within the current record
	LevelVertex int16 = 1
	// LevelCoordinate continues the current vertex
	LevelCoordinate int16 = 2

	// maxDefinitionLevel marks a fully defined coordinate; neither list nor
	// element is nullable
	maxDefinitionLevel int16 = 2
)

// EncodeLevels returns the definition and repetition levels of the flattened,
// vertex-major coordinates of records with the given vertex counts. Every
// record must have at least one vertex.
func EncodeLevels(vertexCounts []int32, dimension int) (def, rep []int16, err error) {
	if dimension <= 0 {
		return nil, nil, errors.Newf(errors.ErrorTypeValidation, "invalid dimension %d", dimension)
	}

	total := 0
	for i, n := range vertexCounts {
		if n <= 0 {
			return nil, nil, errors.Newf(errors.ErrorTypeValidation, "record %d has %d vertices", i, n).
				WithDetail("record", i)
		}
		total += int(n) * dimension
	}

	def = make([]int16, total)
	rep = make([]int16, 0, total)
	for i := range def {
		def[i] = maxDefinitionLevel
	}

	for _, n := range vertexCounts {
		for v := 0; v < int(n); v++ {
			for c := 0; c < dimension; c++ {
				switch {
				case v == 0 && c == 0:
					rep = append(rep, LevelRecord)
				case c == 0:
					rep = append(rep, LevelVertex)
				default:
					rep = append(rep, LevelCoordinate)
				}
			}
		}
	}
	return def, rep, nil
}

// DecodeLevels rebuilds per-record vertex matrices (vertex_count x dimension)
// from flattened coordinates and their repetition levels.
func DecodeLevels(values []int32, rep []int16, dimension int) ([][][]int32, error) {
	if len(values) != len(rep) {
		return nil, errors.Newf(errors.ErrorTypeFormat, "%d values but %d repetition levels", len(values), len(rep))
	}

	var (
		records [][][]int32
		vertex  []int32
	)
	closeVertex := func(pos int) error {
		if vertex == nil {
			return nil
		}
		if len(vertex) != dimension {
			return errors.Newf(errors.ErrorTypeFormat, "vertex with %d coordinates, expected %d", len(vertex), dimension).
				WithDetail("position", pos)
		}
		last := len(records) - 1
		records[last] = append(records[last], vertex)
		vertex = nil
		return nil
	}

	for i, level := range rep {
		switch level {
		case LevelRecord:
			if err := closeVertex(i); err != nil {
				return nil, err
			}
			records = append(records, nil)
			vertex = make([]int32, 0, dimension)
		case LevelVertex:
			if len(records) == 0 {
				return nil, errors.New(errors.ErrorTypeFormat, "level stream does not start a record").WithDetail("position", i)
			}
			if err := closeVertex(i); err != nil {
				return nil, err
			}
			vertex = make([]int32, 0, dimension)
		case LevelCoordinate:
			if vertex == nil {
				return nil, errors.New(errors.ErrorTypeFormat, "level stream does not start a record").WithDetail("position", i)
			}
		default:
			return nil, errors.Newf(errors.ErrorTypeFormat, "invalid repetition level %d", level).WithDetail("position", i)
		}
		vertex = append(vertex, values[i])
	}

	if err := closeVertex(len(rep)); err != nil {
		return nil, err
	}
	return records, nil
}

// VertexMajor transposes a coordinate-major matrix (one row per coordinate
// axis, one column per vertex) into one coordinate list per vertex.
func VertexMajor(coordinates [][]int32) ([][]int32, error) {
	if len(coordinates) == 0 {
		return nil, nil
	}

	vertexCount := len(coordinates[0])
	for axis, row := range coordinates {
		if len(row) != vertexCount {
			return nil, errors.Newf(errors.ErrorTypeFormat, "coordinate row %d has %d entries, expected %d", axis, len(row), vertexCount)
		}
	}

	vertices := make([][]int32, vertexCount)
	for v := range vertices {
		vertices[v] = make([]int32, len(coordinates))
		for axis, row := range coordinates {
			vertices[v][axis] = row[v]
		}
	}
	return vertices, nil
}

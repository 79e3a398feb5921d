// Package palp parses the text output of the PALP polytope tools (poly.x
// with vertex and Hodge number output) into a vertex table.
//
// Every polytope starts with a header line
//
//	4 5  M:37 5 N:11 5 H:1,149 [-296]
//
// giving the coordinate matrix shape, point and vertex counts, dual point and
// facet counts, Hodge numbers and the Euler characteristic, followed by one
// line per matrix row. Lines that do not start with a digit are ignored.
package palp

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ajitpratap0/ipws/pkg/columnar"
	"github.com/ajitpratap0/ipws/pkg/compression"
	"github.com/ajitpratap0/ipws/pkg/errors"
)

var headerPattern = regexp.MustCompile(
	`^\s*([0-9]+)\s+([0-9]+)\s+M:([0-9]+)\s+([0-9]+)\s+N:([0-9]+)\s+([0-9]+)\s+H:([0-9]+(?:,[0-9]+)*)\s+\[(-?[0-9]+)\]`)

// maxLineSize bounds a single input line
const maxLineSize = 1 << 20

// Header is a parsed polytope header line
type Header struct {
	Rows           int
	Columns        int
	PointCount     int32
	VertexCount    int32
	DualPointCount int32
	FacetCount     int32
	HodgeNumbers   []int32
	Euler          int32
}

// Dimension is the lattice dimension of the polytope
func (h Header) Dimension() int {
	return min(h.Rows, h.Columns)
}

// Vertices is the number of vertices described by the coordinate matrix
func (h Header) Vertices() int {
	return max(h.Rows, h.Columns)
}

// ParseHeader parses a header line
func ParseHeader(line string) (Header, error) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Header{}, errors.New(errors.ErrorTypeFormat, "invalid header").WithDetail("line", line)
	}

	var h Header
	var err error
	if h.Rows, err = strconv.Atoi(m[1]); err != nil {
		return Header{}, invalidNumber(line, err)
	}
	if h.Columns, err = strconv.Atoi(m[2]); err != nil {
		return Header{}, invalidNumber(line, err)
	}

	ints := []*int32{&h.PointCount, &h.VertexCount, &h.DualPointCount, &h.FacetCount}
	for i, dst := range ints {
		if *dst, err = parseInt32(m[3+i]); err != nil {
			return Header{}, invalidNumber(line, err)
		}
	}
	if h.Euler, err = parseInt32(m[8]); err != nil {
		return Header{}, invalidNumber(line, err)
	}

	for _, s := range strings.Split(m[7], ",") {
		v, err := parseInt32(s)
		if err != nil {
			return Header{}, invalidNumber(line, err)
		}
		h.HodgeNumbers = append(h.HodgeNumbers, v)
	}
	return h, nil
}

// Parse reads every polytope of a PALP stream. All polytopes must share one
// dimension and at least one polytope must be present.
func Parse(r io.Reader) (*columnar.VertexTable, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	p := &parser{scanner: sc}
	var table *columnar.VertexTable
	for {
		line, ok := p.next()
		if !ok {
			break
		}
		if !startsWithDigit(line) {
			continue
		}

		header, err := ParseHeader(line)
		if err != nil {
			return nil, p.annotate(err)
		}
		if table == nil {
			table = columnar.NewVertexTable(header.Dimension())
		} else if table.Dimension != header.Dimension() {
			return nil, p.annotate(errors.Newf(errors.ErrorTypeFormat, "varying dimension: %d after %d",
				header.Dimension(), table.Dimension))
		}

		if err := p.polytope(table, header); err != nil {
			return nil, p.annotate(err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "read palp input").WithDetail("line", p.line)
	}

	if table == nil {
		return nil, errors.New(errors.ErrorTypeFormat, "no polytopes read")
	}
	return table, nil
}

// ParseFile parses a PALP file, decompressing it according to its extension
func ParseFile(path string) (*columnar.VertexTable, error) {
	rc, err := compression.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	table, err := Parse(rc)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "parse palp file").WithDetail("path", path)
	}
	return table, nil
}

type parser struct {
	scanner *bufio.Scanner
	line    int
}

func (p *parser) next() (string, bool) {
	if !p.scanner.Scan() {
		return "", false
	}
	p.line++
	return p.scanner.Text(), true
}

func (p *parser) annotate(err error) error {
	return errors.Wrap(err, errors.TypeOf(err), "parse polytope").WithDetail("line", p.line)
}

// polytope reads the coordinate rows following header and appends the
// polytope to table
func (p *parser) polytope(table *columnar.VertexTable, header Header) error {
	dimension := header.Dimension()
	if header.Rows >= header.Columns {
		return errors.Newf(errors.ErrorTypeFormat, "coordinates given row-wise (%dx%d), expected one column per vertex",
			header.Rows, header.Columns)
	}
	if len(header.HodgeNumbers) != dimension-2 {
		return errors.Newf(errors.ErrorTypeFormat, "%d Hodge numbers, expected %d", len(header.HodgeNumbers), dimension-2)
	}
	if int(header.VertexCount) != header.Vertices() {
		return errors.Newf(errors.ErrorTypeFormat, "invalid vertex count %d, matrix has %d vertices",
			header.VertexCount, header.Vertices())
	}

	coordinates := make([][]int32, 0, header.Rows)
	for row := 0; row < header.Rows; row++ {
		line, ok := p.next()
		if !ok {
			return errors.New(errors.ErrorTypeFormat, "incomplete input")
		}
		values, err := parseRow(line)
		if err != nil {
			return err
		}
		if len(values) != header.Columns {
			return errors.Newf(errors.ErrorTypeFormat, "invalid coordinate count %d, expected %d", len(values), header.Columns)
		}
		coordinates = append(coordinates, values)
	}

	vertices, err := columnar.VertexMajor(coordinates)
	if err != nil {
		return err
	}

	aux := []int32{header.FacetCount, header.PointCount, header.DualPointCount}
	aux = append(aux, header.HodgeNumbers...)
	aux = append(aux, header.Euler)
	return table.Append(vertices, aux)
}

func parseRow(line string) ([]int32, error) {
	fields := strings.Fields(line)
	values := make([]int32, 0, len(fields))
	for _, f := range fields {
		v, err := parseInt32(f)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFormat, "invalid coordinate").WithDetail("value", f)
		}
		values = append(values, v)
	}
	return values, nil
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

func invalidNumber(line string, cause error) error {
	return errors.Wrap(cause, errors.ErrorTypeFormat, "invalid header").WithDetail("line", line)
}

func startsWithDigit(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	return trimmed != "" && trimmed[0] >= '0' && trimmed[0] <= '9'
}

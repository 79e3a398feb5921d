package polytope

import (
	"github.com/ajitpratap0/ipws/pkg/errors"
)

// Columns is an ordered collection of equally long int32 columns addressed by
// name. The order is the schema order; lookups never depend on position.
type Columns struct {
	names []string
	index map[string]int
	data  [][]int32
}

// NewColumns creates empty columns for the given ordered field names
func NewColumns(fields []string) *Columns {
	c := &Columns{
		names: append([]string(nil), fields...),
		index: make(map[string]int, len(fields)),
		data:  make([][]int32, len(fields)),
	}
	for i, name := range c.names {
		c.index[name] = i
	}
	return c
}

// Names returns the field names in schema order
func (c *Columns) Names() []string {
	return c.names
}

// Width returns the number of columns
func (c *Columns) Width() int {
	return len(c.names)
}

// Len returns the shared row count
func (c *Columns) Len() int {
	if len(c.data) == 0 {
		return 0
	}
	return len(c.data[0])
}

// Has reports whether a column exists
func (c *Columns) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Column returns the values of a named column, or nil if it does not exist
func (c *Columns) Column(name string) []int32 {
	i, ok := c.index[name]
	if !ok {
		return nil
	}
	return c.data[i]
}

// At returns the values of the i-th column in schema order
func (c *Columns) At(i int) []int32 {
	return c.data[i]
}

// Get returns a single value. It panics when the column does not exist.
func (c *Columns) Get(name string, row int) int32 {
	return c.data[c.mustIndex(name)][row]
}

// Grow reserves capacity for n additional rows in every column
func (c *Columns) Grow(n int) {
	for i, col := range c.data {
		if cap(col)-len(col) < n {
			grown := make([]int32, len(col), len(col)+n)
			copy(grown, col)
			c.data[i] = grown
		}
	}
}

// AppendColumn appends values to a single named column. Callers appending
// column by column must keep every column at the same length before the
// collection is read.
func (c *Columns) AppendColumn(name string, values []int32) error {
	i, ok := c.index[name]
	if !ok {
		return errors.Newf(errors.ErrorTypeInternal, "unknown column %q", name)
	}
	c.data[i] = append(c.data[i], values...)
	return nil
}

// AppendValue appends one value to a named column. It panics when the
// column does not exist.
func (c *Columns) AppendValue(name string, v int32) {
	i := c.mustIndex(name)
	c.data[i] = append(c.data[i], v)
}

func (c *Columns) mustIndex(name string) int {
	i, ok := c.index[name]
	if !ok {
		panic(errors.Newf(errors.ErrorTypeInternal, "unknown column %q", name).WithDetail("column", name))
	}
	return i
}

// CheckAligned verifies that every column has the same length
func (c *Columns) CheckAligned() error {
	n := c.Len()
	for i, col := range c.data {
		if len(col) != n {
			return errors.Newf(errors.ErrorTypeInternal, "column %q has %d rows, expected %d", c.names[i], len(col), n)
		}
	}
	return nil
}

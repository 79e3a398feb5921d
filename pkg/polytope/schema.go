package polytope

import (
	"fmt"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

// Column names shared by every representation
const (
	VertexCount         = "vertex_count"
	FacetCount          = "facet_count"
	PointCount          = "point_count"
	DualPointCount      = "dual_point_count"
	EulerCharacteristic = "euler_characteristic"
	H22                 = "h22"
)

// MinDimension is the smallest supported weight-system length
const MinDimension = 4

// MaxDimension bounds the weight-system length accepted from file headers
// and metadata. Enumerations stop well below it.
const MaxDimension = 64

// DerivedDimension is the only dimension for which h22 and the Euler
// characteristic are derived from the stored Hodge numbers.
const DerivedDimension = 6

// WeightColumn returns the name of the i-th weight column
func WeightColumn(i int) string {
	return fmt.Sprintf("weight%d", i)
}

// HodgeColumn returns the name of the i-th stored Hodge number (h11, h12, ...)
func HodgeColumn(i int) string {
	return fmt.Sprintf("h1%d", i+1)
}

// HodgeCount returns how many Hodge numbers a reflexive record stores
func HodgeCount(dimension int) int {
	return dimension - 3
}

// HasDerived reports whether derived quantities apply to a dimension
func HasDerived(dimension int, derived bool) bool {
	return derived && dimension == DerivedDimension
}

// AuxiliaryFields returns the per-tier fields that follow the weights in the
// binary info file, in file order. Derived quantities are never stored there.
func AuxiliaryFields(dimension int, tier Tier) []string {
	switch tier {
	case NonReflexive:
		return []string{VertexCount, FacetCount, PointCount}
	case Reflexive:
		fields := []string{VertexCount, FacetCount, PointCount, DualPointCount}
		for i := 0; i < HodgeCount(dimension); i++ {
			fields = append(fields, HodgeColumn(i))
		}
		return fields
	default:
		return nil
	}
}

// Fields returns the ordered column list of a tier. It is the single source
// of truth for the binary reader, the columnar writer and the columnar reader.
func Fields(dimension int, tier Tier, derived bool) []string {
	fields := make([]string, 0, 2*dimension+3)
	for i := 0; i < dimension; i++ {
		fields = append(fields, WeightColumn(i))
	}
	fields = append(fields, AuxiliaryFields(dimension, tier)...)

	if tier == Reflexive && HasDerived(dimension, derived) {
		fields = append(fields, H22, EulerCharacteristic)
	}
	return fields
}

// ExpectedColumns returns the number of leading columns a stored tier file
// must provide. Derived columns may follow but are not read back.
func ExpectedColumns(dimension int, tier Tier) int {
	switch tier {
	case NotInteriorPoint:
		return dimension
	case NonReflexive:
		return dimension + 3
	default:
		return 2*dimension + 1
	}
}

// ValidateDimension rejects dimensions the schemas cannot describe
func ValidateDimension(dimension int) error {
	if dimension < MinDimension {
		return errors.Newf(errors.ErrorTypeFormat, "dimension %d below minimum %d", dimension, MinDimension).
			WithDetail("dimension", dimension)
	}
	if dimension > MaxDimension {
		return errors.Newf(errors.ErrorTypeFormat, "malformed header: dimension %d above maximum %d", dimension, MaxDimension).
			WithDetail("dimension", dimension)
	}
	return nil
}

package polytope

import (
	"github.com/ajitpratap0/ipws/pkg/errors"
)

// WeightSystem is an ordered sequence of weights
type WeightSystem []int32

// Compare orders weight systems lexicographically. It returns -1, 0 or +1.
func (w WeightSystem) Compare(other WeightSystem) int {
	n := len(w)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		switch {
		case w[i] < other[i]:
			return -1
		case w[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(w) < len(other):
		return -1
	case len(w) > len(other):
		return 1
	}
	return 0
}

// DeriveEuler returns the Euler characteristic 48 + 6*(h11 - h12 + h13) of a
// dimension 6 reflexive record
func DeriveEuler(h11, h12, h13 int32) int32 {
	return 48 + 6*(h11-h12+h13)
}

// DeriveH22 returns h22 = 44 + 4*h11 + 4*h13 - 2*h12
func DeriveH22(h11, h12, h13 int32) int32 {
	return 44 + 4*h11 + 4*h13 - 2*h12
}

// TierData holds one tier's records as schema-ordered columns
type TierData struct {
	Tier      Tier
	Dimension int
	Derived   bool
	Columns   *Columns

	weights []string
	aux     []string
}

// NewTierData creates an empty tier collection. derived only has an effect
// for reflexive tiers of dimension 6.
func NewTierData(dimension int, tier Tier, derived bool) *TierData {
	derived = tier == Reflexive && HasDerived(dimension, derived)
	fields := Fields(dimension, tier, derived)
	return &TierData{
		Tier:      tier,
		Dimension: dimension,
		Derived:   derived,
		Columns:   NewColumns(fields),
		weights:   fields[:dimension],
		aux:       AuxiliaryFields(dimension, tier),
	}
}

// Len returns the number of records
func (t *TierData) Len() int {
	return t.Columns.Len()
}

// WeightColumns returns the weight column names
func (t *TierData) WeightColumns() []string {
	return t.weights
}

// AuxiliaryColumns returns the stored per-record auxiliary fields in binary
// info file order
func (t *TierData) AuxiliaryColumns() []string {
	return t.aux
}

// Weights gathers the weight system of a row into dst and returns it
func (t *TierData) Weights(row int, dst WeightSystem) WeightSystem {
	dst = dst[:0]
	for i := 0; i < t.Dimension; i++ {
		dst = append(dst, t.Columns.At(i)[row])
	}
	return dst
}

// AppendRow appends one record. aux holds the auxiliary fields in
// AuxiliaryColumns order; derived quantities are computed here when enabled.
func (t *TierData) AppendRow(weights WeightSystem, aux []int32) error {
	if len(weights) != t.Dimension {
		return errors.Newf(errors.ErrorTypeFormat, "weight system has %d weights, expected %d", len(weights), t.Dimension)
	}
	if len(aux) != len(t.aux) {
		return errors.Newf(errors.ErrorTypeInternal, "%s record has %d auxiliary values, expected %d", t.Tier, len(aux), len(t.aux))
	}

	for i, w := range weights {
		t.Columns.AppendValue(t.weights[i], w)
	}
	for i, v := range aux {
		t.Columns.AppendValue(t.aux[i], v)
	}

	if t.Derived {
		h11 := t.Columns.Get(HodgeColumn(0), t.Len()-1)
		h12 := t.Columns.Get(HodgeColumn(1), t.Len()-1)
		h13 := t.Columns.Get(HodgeColumn(2), t.Len()-1)
		t.Columns.AppendValue(H22, DeriveH22(h11, h12, h13))
		t.Columns.AppendValue(EulerCharacteristic, DeriveEuler(h11, h12, h13))
	}
	return nil
}

// Dataset is a complete decoded enumeration: global dimension and index
// plus the three tier collections.
type Dataset struct {
	Dimension int
	Index     Index
	Derived   bool

	tiers [TierCount]*TierData
}

// NewDataset creates an empty dataset
func NewDataset(dimension int, index Index, derived bool) *Dataset {
	ds := &Dataset{
		Dimension: dimension,
		Index:     index,
		Derived:   derived,
	}
	for _, t := range Tiers {
		ds.tiers[t] = NewTierData(dimension, t, derived)
	}
	return ds
}

// Tier returns the collection of a tier
func (d *Dataset) Tier(t Tier) *TierData {
	return d.tiers[t]
}

// TotalCount returns the number of records across all tiers
func (d *Dataset) TotalCount() int {
	n := 0
	for _, td := range d.tiers {
		n += td.Len()
	}
	return n
}

// Counts returns the per-tier record counts in tier order
func (d *Dataset) Counts() [TierCount]int {
	var counts [TierCount]int
	for i, td := range d.tiers {
		counts[i] = td.Len()
	}
	return counts
}

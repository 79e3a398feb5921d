package polytope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

func TestIndexString(t *testing.T) {
	tests := []struct {
		index Index
		want  string
	}{
		{NewIndex(7, 1), "7"},
		{NewIndex(3, 4), "3/4"},
		{NewIndex(0, 1), "0"},
		{NewIndex(12, 5), "12/5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.index.String())

			parsed, err := ParseIndex(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.index, parsed)
		})
	}
}

func TestParseIndexInvalid(t *testing.T) {
	for _, s := range []string{"", "a/b", "3/", "-1", "1/2/3", "99999999999"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseIndex(s)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))
		})
	}
}

func TestTierFromFlags(t *testing.T) {
	tier, err := TierFromFlags(false, false)
	require.NoError(t, err)
	assert.Equal(t, NotInteriorPoint, tier)

	tier, err = TierFromFlags(true, false)
	require.NoError(t, err)
	assert.Equal(t, NonReflexive, tier)

	tier, err = TierFromFlags(true, true)
	require.NoError(t, err)
	assert.Equal(t, Reflexive, tier)

	_, err = TierFromFlags(false, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid metadata")
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "non_ip", NotInteriorPoint.String())
	assert.Equal(t, "non_reflexive", NonReflexive.String())
	assert.Equal(t, "reflexive", Reflexive.String())
	assert.Equal(t, "tier(7)", Tier(7).String())
	assert.False(t, Tier(3).Valid())
}

func TestFields(t *testing.T) {
	assert.Equal(t,
		[]string{"weight0", "weight1", "weight2", "weight3"},
		Fields(4, NotInteriorPoint, true))

	assert.Equal(t,
		[]string{"weight0", "weight1", "weight2", "weight3", "weight4",
			"vertex_count", "facet_count", "point_count"},
		Fields(5, NonReflexive, true))

	assert.Equal(t,
		[]string{"weight0", "weight1", "weight2", "weight3", "weight4",
			"vertex_count", "facet_count", "point_count", "dual_point_count", "h11", "h12"},
		Fields(5, Reflexive, true))

	six := Fields(6, Reflexive, true)
	assert.Equal(t,
		[]string{"weight0", "weight1", "weight2", "weight3", "weight4", "weight5",
			"vertex_count", "facet_count", "point_count", "dual_point_count", "h11", "h12", "h13",
			"h22", "euler_characteristic"},
		six)
	assert.Len(t, Fields(6, Reflexive, false), 13)
}

func TestExpectedColumnsMatchesFields(t *testing.T) {
	for dim := 4; dim <= 7; dim++ {
		for _, tier := range Tiers {
			assert.Equal(t, ExpectedColumns(dim, tier), len(Fields(dim, tier, false)),
				"dimension %d tier %s", dim, tier)
		}
	}
}

func TestValidateDimension(t *testing.T) {
	require.NoError(t, ValidateDimension(4))
	require.NoError(t, ValidateDimension(MaxDimension))
	err := ValidateDimension(3)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))

	err = ValidateDimension(0xFFFFFFF0)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))
	assert.Contains(t, err.Error(), "malformed header")
}

func TestDerivedQuantities(t *testing.T) {
	// quintic-like values: h11=1, h12=0, h13=149
	assert.Equal(t, int32(48+6*(1-0+149)), DeriveEuler(1, 0, 149))
	assert.Equal(t, int32(948), DeriveEuler(1, 0, 149))
	assert.Equal(t, int32(44+4+596), DeriveH22(1, 0, 149))

	assert.Equal(t, int32(48+6*(2-86+0)), DeriveEuler(2, 86, 0))
	assert.Equal(t, int32(-456), DeriveEuler(2, 86, 0))
	assert.Equal(t, int32(44+8-172), DeriveH22(2, 86, 0))
}

func TestWeightSystemCompare(t *testing.T) {
	assert.Equal(t, 0, WeightSystem{1, 2}.Compare(WeightSystem{1, 2}))
	assert.Equal(t, -1, WeightSystem{1, 2}.Compare(WeightSystem{1, 3}))
	assert.Equal(t, 1, WeightSystem{2, 1}.Compare(WeightSystem{1, 9}))
	assert.Equal(t, -1, WeightSystem{1}.Compare(WeightSystem{1, 0}))
}

func TestTierDataAppendRow(t *testing.T) {
	td := NewTierData(6, Reflexive, true)
	require.True(t, td.Derived)

	err := td.AppendRow(WeightSystem{1, 1, 1, 1, 1, 1}, []int32{7, 8, 9, 10, 2, 86, 0})
	require.NoError(t, err)
	require.NoError(t, td.Columns.CheckAligned())

	assert.Equal(t, 1, td.Len())
	assert.Equal(t, WeightSystem{1, 1, 1, 1, 1, 1}, td.Weights(0, nil))
	assert.Equal(t, int32(10), td.Columns.Get(DualPointCount, 0))
	assert.Equal(t, DeriveH22(2, 86, 0), td.Columns.Get(H22, 0))
	assert.Equal(t, DeriveEuler(2, 86, 0), td.Columns.Get(EulerCharacteristic, 0))

	err = td.AppendRow(WeightSystem{1, 2}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))
}

func TestTierDataNoDerivedOutsideReflexive(t *testing.T) {
	assert.False(t, NewTierData(6, NonReflexive, true).Derived)
	assert.False(t, NewTierData(5, Reflexive, true).Derived)
	assert.False(t, NewTierData(6, Reflexive, false).Derived)
}

func TestDatasetCounts(t *testing.T) {
	ds := NewDataset(4, NewIndex(3, 4), false)
	require.NoError(t, ds.Tier(NotInteriorPoint).AppendRow(WeightSystem{1, 1, 1, 1}, nil))
	require.NoError(t, ds.Tier(NonReflexive).AppendRow(WeightSystem{1, 1, 1, 2}, []int32{4, 4, 5}))
	require.NoError(t, ds.Tier(NonReflexive).AppendRow(WeightSystem{1, 1, 1, 3}, []int32{4, 4, 6}))

	assert.Equal(t, 3, ds.TotalCount())
	assert.Equal(t, [TierCount]int{1, 2, 0}, ds.Counts())
	assert.Equal(t, "3/4", ds.Index.String())
}

func TestColumnsAppendColumn(t *testing.T) {
	c := NewColumns([]string{"a", "b"})
	require.NoError(t, c.AppendColumn("a", []int32{1, 2}))
	require.Error(t, c.CheckAligned())
	require.NoError(t, c.AppendColumn("b", []int32{3, 4}))
	require.NoError(t, c.CheckAligned())

	assert.Equal(t, []int32{3, 4}, c.Column("b"))
	assert.Nil(t, c.Column("missing"))
	assert.True(t, c.Has("a"))

	err := c.AppendColumn("c", []int32{1})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
}

func TestColumnsUnknownName(t *testing.T) {
	c := NewColumns([]string{"a", "b"})
	c.AppendValue("a", 1)
	c.AppendValue("b", 2)

	assert.Panics(t, func() { c.AppendValue("weight0", 3) })
	assert.Panics(t, func() { c.Get("missing", 0) })
	assert.Equal(t, []int32{1}, c.Column("a"))
	assert.Equal(t, int32(2), c.Get("b", 0))

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))
		assert.Contains(t, err.Error(), `unknown column "c"`)
	}()
	c.AppendValue("c", 3)
}

func TestColumnsGrow(t *testing.T) {
	c := NewColumns([]string{"a", "b"})
	require.NoError(t, c.AppendColumn("a", []int32{1}))
	require.NoError(t, c.AppendColumn("b", []int32{2}))
	c.Grow(10)

	assert.GreaterOrEqual(t, cap(c.Column("a")), 11)
	assert.GreaterOrEqual(t, cap(c.Column("b")), 11)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Width())
}

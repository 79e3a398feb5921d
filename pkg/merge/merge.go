// Package merge interleaves the three per-tier weight-system collections of a
// dataset into one globally ascending sequence.
//
// Each tier must already be sorted ascending. Merge does not sort; it keeps
// one cursor per tier and repeatedly emits the smallest front, so the cost is
// linear in the total number of records and nothing is materialized.
package merge

import (
	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/polytope"
)

// Source is one tier's sorted collection
type Source interface {
	Len() int
	Weights(row int, dst polytope.WeightSystem) polytope.WeightSystem
}

// Sink receives records in merged order
type Sink func(tier polytope.Tier, row int) error

// front is the next unconsumed weight system of a tier. An absent front
// (exhausted tier) orders after every present one.
type front struct {
	weights polytope.WeightSystem
	present bool
}

func (f front) less(other front) bool {
	if !f.present {
		return false
	}
	if !other.present {
		return true
	}
	return f.weights.Compare(other.weights) < 0
}

type cursor struct {
	src   Source
	row   int
	front front
}

func (c *cursor) load() {
	if c.src == nil || c.row >= c.src.Len() {
		c.front.present = false
		return
	}
	c.front.weights = c.src.Weights(c.row, c.front.weights)
	c.front.present = true
}

// Merge emits every record of the given tiers in ascending weight order and
// returns the number of records emitted. A nil source is treated as empty.
// When two fronts compare equal the tier with the lower tag is emitted first.
func Merge(tiers [polytope.TierCount]Source, sink Sink) (int, error) {
	var cursors [polytope.TierCount]cursor
	for i := range cursors {
		cursors[i].src = tiers[i]
		cursors[i].load()
	}

	emitted := 0
	for {
		best := -1
		for i := range cursors {
			if !cursors[i].front.present {
				continue
			}
			if best < 0 || cursors[i].front.less(cursors[best].front) {
				best = i
			}
		}
		if best < 0 {
			return emitted, nil
		}

		c := &cursors[best]
		if err := sink(polytope.Tiers[best], c.row); err != nil {
			return emitted, err
		}
		emitted++
		c.row++
		c.load()
	}
}

// Total returns the combined length of the tiers, the header count of the
// merged output
func Total(tiers [polytope.TierCount]Source) uint64 {
	var n uint64
	for _, src := range tiers {
		if src != nil {
			n += uint64(src.Len())
		}
	}
	return n
}

// Sources returns the tier collections of a dataset in tag order
func Sources(ds *polytope.Dataset) [polytope.TierCount]Source {
	var out [polytope.TierCount]Source
	for i, t := range polytope.Tiers {
		out[i] = ds.Tier(t)
	}
	return out
}

// CheckSorted verifies that a source is ascending, the precondition of Merge
func CheckSorted(tier polytope.Tier, src Source) error {
	var prev, cur polytope.WeightSystem
	for row := 0; row < src.Len(); row++ {
		cur = src.Weights(row, cur)
		if row > 0 && prev.Compare(cur) > 0 {
			return errors.Newf(errors.ErrorTypeValidation, "%s tier not sorted at row %d", tier, row).
				WithDetail("tier", tier.String()).
				WithDetail("row", row)
		}
		prev, cur = cur, prev
	}
	return nil
}

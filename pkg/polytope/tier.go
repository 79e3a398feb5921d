// Package polytope defines the in-memory model shared by every codec in ipws:
// weight systems, classification tiers, the rational index of a weighted
// space, schema-driven column collections and the datasets built from them.
package polytope

import (
	"fmt"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

// Tier is the classification of a weight system's polytope. Its numeric
// value is the tag byte stored in the binary polytope info file.
type Tier uint8

const (
	// NotInteriorPoint marks polytopes without an interior lattice point
	NotInteriorPoint Tier = 0
	// NonReflexive marks IP polytopes that are not reflexive
	NonReflexive Tier = 1
	// Reflexive marks reflexive polytopes, which carry Hodge numbers
	Reflexive Tier = 2
)

// Tiers lists every tier in tag order
var Tiers = [...]Tier{NotInteriorPoint, NonReflexive, Reflexive}

// TierCount is the number of classification tiers
const TierCount = len(Tiers)

// String returns the tier name used in logs and metric labels
func (t Tier) String() string {
	switch t {
	case NotInteriorPoint:
		return "non_ip"
	case NonReflexive:
		return "non_reflexive"
	case Reflexive:
		return "reflexive"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the three known tiers
func (t Tier) Valid() bool {
	return t <= Reflexive
}

// IsInteriorPoint reports whether polytopes of this tier have the IP property
func (t Tier) IsInteriorPoint() bool {
	return t != NotInteriorPoint
}

// IsReflexive reports whether polytopes of this tier are reflexive
func (t Tier) IsReflexive() bool {
	return t == Reflexive
}

// TierFromFlags maps the (ip, reflexive) flag pair stored in columnar file
// metadata back to a tier. A reflexive polytope is always IP, so (false,
// true) is rejected.
func TierFromFlags(ip, reflexive bool) (Tier, error) {
	switch {
	case !ip && !reflexive:
		return NotInteriorPoint, nil
	case ip && !reflexive:
		return NonReflexive, nil
	case ip && reflexive:
		return Reflexive, nil
	default:
		return 0, errors.New(errors.ErrorTypeFormat, "invalid metadata").
			WithDetail("ip", ip).
			WithDetail("reflexive", reflexive)
	}
}

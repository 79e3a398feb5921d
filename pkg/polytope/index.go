package polytope

import (
	"regexp"
	"strconv"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

var rationalIndex = regexp.MustCompile(`^([0-9]+)/([0-9]+)$`)

// Index is the rational index identifying a weighted space
type Index struct {
	Numerator   uint32
	Denominator uint32
}

// NewIndex returns numerator/denominator
func NewIndex(numerator, denominator uint32) Index {
	return Index{Numerator: numerator, Denominator: denominator}
}

// String renders the index as "n" when the denominator is 1 and as "n/d"
// otherwise.
func (i Index) String() string {
	if i.Denominator == 1 {
		return strconv.FormatUint(uint64(i.Numerator), 10)
	}
	return strconv.FormatUint(uint64(i.Numerator), 10) + "/" + strconv.FormatUint(uint64(i.Denominator), 10)
}

// ParseIndex parses "n/d" or a bare integer "n" (denominator 1)
func ParseIndex(s string) (Index, error) {
	if m := rationalIndex.FindStringSubmatch(s); m != nil {
		num, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			return Index{}, errors.Wrap(err, errors.ErrorTypeFormat, "parse index").WithDetail("index", s)
		}
		den, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			return Index{}, errors.Wrap(err, errors.ErrorTypeFormat, "parse index").WithDetail("index", s)
		}
		return Index{Numerator: uint32(num), Denominator: uint32(den)}, nil
	}

	num, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return Index{}, errors.Wrap(err, errors.ErrorTypeFormat, "parse index").WithDetail("index", s)
	}
	return Index{Numerator: uint32(num), Denominator: 1}, nil
}

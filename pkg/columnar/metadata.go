package columnar

import (
	"strconv"

	"github.com/apache/arrow-go/v18/parquet/metadata"

	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/polytope"
)

// Metadata keys of a tier file
const (
	KeyInteriorPoint = "ip"
	KeyReflexive     = "reflexive"
	KeyDimension     = "dimension"
	KeyIndex         = "index"
)

// Metadata is the self-description of a tier file
type Metadata struct {
	Tier      polytope.Tier
	Dimension int
	Index     polytope.Index
}

// KeyValue renders the metadata as Parquet key-value metadata
func (m Metadata) KeyValue() (metadata.KeyValueMetadata, error) {
	kv := metadata.NewKeyValueMetadata()
	pairs := [][2]string{
		{KeyInteriorPoint, strconv.FormatBool(m.Tier.IsInteriorPoint())},
		{KeyReflexive, strconv.FormatBool(m.Tier.IsReflexive())},
		{KeyDimension, strconv.Itoa(m.Dimension)},
		{KeyIndex, m.Index.String()},
	}
	for _, p := range pairs {
		if err := kv.Append(p[0], p[1]); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "build file metadata")
		}
	}
	return kv, nil
}

// ParseMetadata extracts tier, dimension and index from key-value metadata.
// Every key must be present and parseable.
func ParseMetadata(kv metadata.KeyValueMetadata) (Metadata, error) {
	values := make(map[string]string, 4)
	for _, key := range []string{KeyInteriorPoint, KeyReflexive, KeyDimension, KeyIndex} {
		v := kv.FindValue(key)
		if v == nil {
			return Metadata{}, errors.New(errors.ErrorTypeFormat, "missing file metadata").WithDetail("key", key)
		}
		values[key] = *v
	}

	ip, err := strconv.ParseBool(values[KeyInteriorPoint])
	if err != nil {
		return Metadata{}, invalidValue(KeyInteriorPoint, values, err)
	}
	reflexive, err := strconv.ParseBool(values[KeyReflexive])
	if err != nil {
		return Metadata{}, invalidValue(KeyReflexive, values, err)
	}
	dimension, err := strconv.Atoi(values[KeyDimension])
	if err != nil {
		return Metadata{}, invalidValue(KeyDimension, values, err)
	}
	if err := polytope.ValidateDimension(dimension); err != nil {
		return Metadata{}, err
	}
	index, err := polytope.ParseIndex(values[KeyIndex])
	if err != nil {
		return Metadata{}, err
	}

	tier, err := polytope.TierFromFlags(ip, reflexive)
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{Tier: tier, Dimension: dimension, Index: index}, nil
}

func invalidValue(key string, values map[string]string, cause error) error {
	return errors.Wrapf(cause, errors.ErrorTypeFormat, "invalid file metadata %q", key).
		WithDetail("key", key).
		WithDetail("value", values[key])
}

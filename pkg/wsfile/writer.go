package wsfile

import (
	"bufio"
	"bytes"
	"io"

	"github.com/ajitpratap0/ipws/pkg/compression"
	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/merge"
	"github.com/ajitpratap0/ipws/pkg/polytope"
	"github.com/ajitpratap0/ipws/pkg/varint"
)

// Encode merges the tiers of ds into one ascending sequence and writes the
// weights stream and the aligned polytope info stream in lock-step. Every
// tier of ds must be sorted. It returns the number of records written.
func Encode(ds *polytope.Dataset, weights, info io.Writer) (uint64, error) {
	if err := polytope.ValidateDimension(ds.Dimension); err != nil {
		return 0, err
	}

	sources := merge.Sources(ds)
	header := Header{
		Dimension: uint32(ds.Dimension),
		Index:     ds.Index,
		Count:     merge.Total(sources),
	}

	ww := bufio.NewWriter(weights)
	iw := bufio.NewWriter(info)
	if _, err := ww.Write(header.AppendBinary(nil)); err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeFile, "write header")
	}

	var (
		ws  polytope.WeightSystem
		buf []byte
	)
	n, err := merge.Merge(sources, func(tier polytope.Tier, row int) error {
		td := ds.Tier(tier)

		ws = td.Weights(row, ws)
		buf = buf[:0]
		for _, w := range ws {
			if w < 0 {
				return negativeValue(tier, row, "weight", w)
			}
			buf = varint.Append(buf, uint32(w))
		}
		if _, err := ww.Write(buf); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "write weights")
		}

		buf = append(buf[:0], byte(tier))
		for _, name := range td.AuxiliaryColumns() {
			v := td.Columns.Get(name, row)
			if v < 0 {
				return negativeValue(tier, row, name, v)
			}
			buf = varint.Append(buf, uint32(v))
		}
		if _, err := iw.Write(buf); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "write polytope info")
		}
		return nil
	})
	if err != nil {
		return uint64(n), err
	}

	if err := ww.Flush(); err != nil {
		return uint64(n), errors.Wrap(err, errors.ErrorTypeFile, "write weights")
	}
	if err := iw.Flush(); err != nil {
		return uint64(n), errors.Wrap(err, errors.ErrorTypeFile, "write polytope info")
	}
	return uint64(n), nil
}

// EncodeBinaryPair encodes ds into in-memory weights and polytope info
// files
func EncodeBinaryPair(ds *polytope.Dataset) ([]byte, []byte, error) {
	var weights, info bytes.Buffer
	if _, err := Encode(ds, &weights, &info); err != nil {
		return nil, nil, err
	}
	return weights.Bytes(), info.Bytes(), nil
}

// WriteBinaryPair writes ds to a weights file and a polytope info file.
// Either path may be empty to skip that file. Compression is selected by
// extension.
func WriteBinaryPair(ds *polytope.Dataset, weightsPath, infoPath string, level compression.Level) (uint64, error) {
	weights, err := createOutput(weightsPath, level)
	if err != nil {
		return 0, err
	}
	info, err := createOutput(infoPath, level)
	if err != nil {
		_ = weights.Close()
		return 0, err
	}

	n, err := Encode(ds, weights, info)
	if cerr := weights.Close(); err == nil {
		err = cerr
	}
	if cerr := info.Close(); err == nil {
		err = cerr
	}
	return n, err
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
func (discard) Close() error                { return nil }

func createOutput(path string, level compression.Level) (io.WriteCloser, error) {
	if path == "" {
		return discard{}, nil
	}
	return compression.CreateFile(path, level)
}

func negativeValue(tier polytope.Tier, row int, field string, v int32) error {
	return errors.Newf(errors.ErrorTypeOverflow, "negative %s %d cannot be varint encoded", field, v).
		WithDetail("tier", tier.String()).
		WithDetail("row", row)
}

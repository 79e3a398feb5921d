package wsfile

import (
	"bufio"
	"bytes"
	"io"
	"math"

	"github.com/ajitpratap0/ipws/pkg/compression"
	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/mmap"
	"github.com/ajitpratap0/ipws/pkg/polytope"
	"github.com/ajitpratap0/ipws/pkg/varint"
)

// maxPrealloc caps the capacity reserved up front from an untrusted header
const maxPrealloc = 1 << 24

// ReadOptions controls how a binary pair is read
type ReadOptions struct {
	// Limit caps the number of weight systems read; 0 reads all of them.
	Limit int
	// Derived adds h22 and the Euler characteristic to dimension 6
	// reflexive records.
	Derived bool
	// MemoryMap maps uncompressed inputs instead of streaming them.
	MemoryMap bool
}

// Weights is the decoded content of a weights file: the header values and
// the weight systems as one flat array of Count()*Dimension values.
type Weights struct {
	Dimension int
	Index     polytope.Index
	Values    []int32
}

// Count returns the number of weight systems
func (w *Weights) Count() int {
	if w.Dimension == 0 {
		return 0
	}
	return len(w.Values) / w.Dimension
}

// At returns the i-th weight system, sharing storage with Values
func (w *Weights) At(i int) polytope.WeightSystem {
	return w.Values[i*w.Dimension : (i+1)*w.Dimension]
}

// DecodeWeights decodes a weights stream, reading at most limit weight
// systems when limit is positive.
func DecodeWeights(r io.Reader, limit int) (*Weights, error) {
	br := byteReader(r)

	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	count := h.Count
	if limit > 0 && uint64(limit) < count {
		count = uint64(limit)
	}

	dim := int(h.Dimension)
	if count > math.MaxInt/uint64(dim) {
		return nil, errors.Newf(errors.ErrorTypeFormat, "malformed header: count %d too large", h.Count)
	}
	total := int(count) * dim

	values := make([]int32, 0, min(total, maxPrealloc))
	for i := 0; i < total; i++ {
		v, err := decodeInt32(br)
		if err != nil {
			return nil, errors.Wrapf(err, errors.TypeOf(err), "decode weight system %d", i/dim).
				WithDetail("weight_system", i/dim)
		}
		values = append(values, v)
	}

	return &Weights{Dimension: dim, Index: h.Index, Values: values}, nil
}

// DecodePolytopeInfo walks an info stream alongside decoded weights and
// distributes every weight system into its tier.
func DecodePolytopeInfo(r io.Reader, weights *Weights, derived bool) (*polytope.Dataset, error) {
	if err := polytope.ValidateDimension(weights.Dimension); err != nil {
		return nil, err
	}
	br := byteReader(r)
	ds := polytope.NewDataset(weights.Dimension, weights.Index, derived)

	aux := make([]int32, 0, 4+polytope.HodgeCount(weights.Dimension))
	for i := 0; i < weights.Count(); i++ {
		tag, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil, errors.Newf(errors.ErrorTypeFormat, "polytope info truncated at weight system %d", i).
					WithDetail("weight_system", i)
			}
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "read polytope info")
		}

		tier := polytope.Tier(tag)
		if !tier.Valid() {
			return nil, errors.New(errors.ErrorTypeFormat, "invalid classification tag").
				WithDetail("tag", tag).
				WithDetail("weight_system", i)
		}

		td := ds.Tier(tier)
		aux = aux[:0]
		for range td.AuxiliaryColumns() {
			v, err := decodeInt32(br)
			if err != nil {
				return nil, errors.Wrapf(err, errors.TypeOf(err), "decode %s record %d", tier, i).
					WithDetail("weight_system", i)
			}
			aux = append(aux, v)
		}

		if err := td.AppendRow(weights.At(i), aux); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// ReadWeights reads a weights file. Compressed files are detected by
// extension.
func ReadWeights(path string, opts ReadOptions) (*Weights, error) {
	var w *Weights
	err := withInput(path, opts.MemoryMap, func(r io.Reader) error {
		var err error
		w, err = DecodeWeights(r, opts.Limit)
		return err
	})
	return w, err
}

// ReadPolytopeInfo reads a polytope info file for already decoded weights
func ReadPolytopeInfo(path string, weights *Weights, opts ReadOptions) (*polytope.Dataset, error) {
	var ds *polytope.Dataset
	err := withInput(path, opts.MemoryMap, func(r io.Reader) error {
		var err error
		ds, err = DecodePolytopeInfo(r, weights, opts.Derived)
		return err
	})
	return ds, err
}

// DecodeBinaryPair reads a weights file and its polytope info file into a
// dataset
func DecodeBinaryPair(weightsPath, infoPath string, opts ReadOptions) (*polytope.Dataset, error) {
	weights, err := ReadWeights(weightsPath, opts)
	if err != nil {
		return nil, err
	}
	return ReadPolytopeInfo(infoPath, weights, opts)
}

func withInput(path string, memoryMap bool, fn func(io.Reader) error) error {
	var err error
	if memoryMap && compression.Detect(path) == compression.None {
		var m *mmap.Reader
		if m, err = mmap.Open(path); err != nil {
			return err
		}
		defer m.Close()
		err = fn(bytes.NewReader(m.Bytes()))
	} else {
		var rc io.ReadCloser
		if rc, err = compression.OpenFile(path); err != nil {
			return err
		}
		defer rc.Close()
		err = fn(rc)
	}

	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return e.WithDetail("path", path)
		}
		return err
	}
	return nil
}

type byteStream interface {
	io.Reader
	io.ByteReader
}

func byteReader(r io.Reader) byteStream {
	if br, ok := r.(byteStream); ok {
		return br
	}
	return bufio.NewReader(r)
}

func decodeInt32(r io.ByteReader) (int32, error) {
	v, err := varint.Decode(r)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, errors.Newf(errors.ErrorTypeOverflow, "value %d exceeds int32", v)
	}
	return int32(v), nil
}

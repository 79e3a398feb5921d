// Package wsfile reads and writes the paired binary weights and polytope info
// files.
//
// The weights file starts with a fixed 20-byte big-endian header
//
//	[u32 dimension][u32 index numerator][u32 index denominator][u64 count]
//
// followed by count*dimension varint weights in ascending weight-system
// order. The polytope info file carries, for every weight system in the same
// order, one tag byte (the polytope.Tier) and the tier's auxiliary values as
// varints. It has no header; its record count is implied by the weights file.
package wsfile

import (
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/ipws/pkg/errors"
	"github.com/ajitpratap0/ipws/pkg/polytope"
)

// HeaderSize is the encoded size of Header
const HeaderSize = 20

// Header is the fixed prefix of a weights file
type Header struct {
	Dimension uint32
	Index     polytope.Index
	Count     uint64
}

// AppendBinary appends the encoded header to dst
func (h Header) AppendBinary(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, h.Dimension)
	dst = binary.BigEndian.AppendUint32(dst, h.Index.Numerator)
	dst = binary.BigEndian.AppendUint32(dst, h.Index.Denominator)
	return binary.BigEndian.AppendUint64(dst, h.Count)
}

// ParseHeader decodes a header from the first HeaderSize bytes of data
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errors.Newf(errors.ErrorTypeFormat, "malformed header: %d bytes, expected %d", len(data), HeaderSize)
	}

	h := Header{
		Dimension: binary.BigEndian.Uint32(data[0:4]),
		Index: polytope.Index{
			Numerator:   binary.BigEndian.Uint32(data[4:8]),
			Denominator: binary.BigEndian.Uint32(data[8:12]),
		},
		Count: binary.BigEndian.Uint64(data[12:20]),
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// ReadHeader reads and decodes a header from r
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Header{}, errors.Wrap(err, errors.ErrorTypeFormat, "malformed header")
		}
		return Header{}, errors.Wrap(err, errors.ErrorTypeFile, "read header")
	}
	return ParseHeader(buf[:])
}

// Validate rejects headers no dataset could have produced
func (h Header) Validate() error {
	if err := polytope.ValidateDimension(int(h.Dimension)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "malformed header")
	}
	return nil
}

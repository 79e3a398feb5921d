// Package varint implements the unsigned 32-bit variable-length integer
// encoding used by the binary weight and polytope info files.
//
// Values are written as successive 7-bit groups, least significant group
// first; every byte except the last has its high bit set. This is the same
// layout as encoding/binary's Uvarint restricted to 32 bits, with the
// difference that decoding refuses values that do not fit in a uint32
// instead of silently truncating them.
package varint

import (
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

// MaxLen is the maximum encoded length of a 32-bit value
const MaxLen = 5

// Append appends the encoding of v to dst and returns the extended slice
func Append(dst []byte, v uint32) []byte {
	return binary.AppendUvarint(dst, uint64(v))
}

// Encode returns the encoding of v
func Encode(v uint32) []byte {
	return Append(make([]byte, 0, MaxLen), v)
}

// Decode reads one value from r.
//
// A stream that ends in the middle of a value yields a format error wrapping
// io.ErrUnexpectedEOF; a stream that is already exhausted yields io.EOF
// wrapped the same way so callers reading a fixed number of values can treat
// both as truncation.
func Decode(r io.ByteReader) (uint32, error) {
	var ret uint64
	var shift uint

	for i := 0; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, errors.Wrap(err, errors.ErrorTypeFormat, "truncated varint")
		}

		w := uint64(b & 0x7f)
		if shift > 28 || (w<<shift)>>32 != 0 {
			return 0, errors.New(errors.ErrorTypeOverflow, "varint exceeds 32 bits").
				WithDetail("byte_index", i)
		}
		ret |= w << shift

		if b&0x80 == 0 {
			return uint32(ret), nil
		}
		shift += 7
	}
}

// DecodeBytes decodes one value from the start of data and returns it with
// the number of bytes consumed.
func DecodeBytes(data []byte) (uint32, int, error) {
	r := byteSliceReader{data: data}
	v, err := Decode(&r)
	if err != nil {
		return 0, 0, err
	}
	return v, r.pos, nil
}

type byteSliceReader struct {
	data []byte
	pos  int
}

func (r *byteSliceReader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

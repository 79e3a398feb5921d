package varint

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ipws/pkg/errors"
)

func TestRoundTrip(t *testing.T) {
	lengths := map[uint32]int{0: 1, 1: 1, 127: 1, 128: 2, 16383: 2, 16384: 3, 1 << 31: 5, math.MaxUint32: MaxLen}

	for v, n := range lengths {
		enc := Encode(v)
		assert.Len(t, enc, n, "encoded length of %d", v)

		got, err := Decode(bytes.NewReader(enc))
		require.NoError(t, err)
		assert.Equal(t, v, got)

		got, n, err := DecodeBytes(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), n)
	}
}

func TestEncodeLayout(t *testing.T) {
	tests := []struct {
		value    uint32
		expected []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16383, []byte{0xff, 0x7f}},
		{math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Encode(tt.value), "value %d", tt.value)
	}
}

func TestAppendSequence(t *testing.T) {
	var buf []byte
	for _, v := range []uint32{5, 500, 50000} {
		buf = Append(buf, v)
	}

	r := bytes.NewReader(buf)
	for _, want := range []uint32{5, 500, 50000} {
		got, err := Decode(r)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Decode(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeTruncated(t *testing.T) {
	enc := Encode(1 << 31)

	_, err := Decode(bytes.NewReader(enc[:len(enc)-1]))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFormat))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, _, err = DecodeBytes(nil)
	require.Error(t, err)
}

func TestDecodeOverflow(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"fifth byte too large", []byte{0xff, 0xff, 0xff, 0xff, 0x10}},
		{"sixth byte", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}},
		{"uint64 value", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeOverflow))
		})
	}
}

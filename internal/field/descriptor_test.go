package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptor_Slice_fixed(t *testing.T) {
	d := Descriptor{Length: 3}
	raw, consumed, err := d.Slice([]byte{0x01, 0x02, 0x03, 0x04}, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, raw)
	assert.Equal(t, 3, consumed)
}

func TestDescriptor_Slice_terminated(t *testing.T) {
	d := Descriptor{UseTerminator: true, Terminator: 0x00}
	raw, consumed, err := d.Slice([]byte{'h', 'i', 0x00, 'x'}, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 'i'}, raw)
	assert.Equal(t, 3, consumed, "terminator counted in consumed but excluded from value")
}

func TestDescriptor_Slice_useOffset(t *testing.T) {
	d := Descriptor{Length: 2, UseOffset: true, Offset: 2}
	raw, consumed, err := d.Slice([]byte{0xAA, 0xBB, 0x01, 0x02, 0xCC}, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, raw)
	assert.Equal(t, 4, consumed)
}

func TestDescriptor_Slice_implicitOffsetChainsAfterPriorField(t *testing.T) {
	d := Descriptor{Length: 2}
	raw, consumed, err := d.Slice([]byte{0xAA, 0xBB, 0x01, 0x02, 0xCC}, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, raw)
	assert.Equal(t, 4, consumed)
}

func TestDescriptor_Slice_short(t *testing.T) {
	d := Descriptor{Length: 5}
	_, _, err := d.Slice([]byte{0x01, 0x02}, 0)
	assert.Error(t, err)
}

func TestDecodeSignedBE(t *testing.T) {
	v, ok := DecodeSignedBE([]byte{0x2A})
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	v, ok = DecodeSignedBE([]byte{0xFF})
	assert.True(t, ok)
	assert.Equal(t, int64(-1), v)

	v, ok = DecodeSignedBE([]byte{0xFF, 0x00})
	assert.True(t, ok)
	assert.Equal(t, int64(-256), v)
}

func TestDecodeSignedBE_wideFallsBack(t *testing.T) {
	_, ok := DecodeSignedBE(make([]byte, 9))
	assert.False(t, ok)
}

func TestDecodeUnsignedLE(t *testing.T) {
	v, ok := DecodeUnsignedLE([]byte{0x2A, 0x00})
	assert.True(t, ok)
	assert.Equal(t, uint64(0x2A), v)
}

func TestApplyMaskShift(t *testing.T) {
	d := Descriptor{Mask: 0x0F, Shift: 4}
	assert.Equal(t, uint64(0xA0), d.ApplyMaskShift(0xFA))

	d = Descriptor{Mask: 0xFF, Shift: -4}
	assert.Equal(t, uint64(0x0F), d.ApplyMaskShift(0xFA))
}

func TestASCIIHex(t *testing.T) {
	out, ok := ASCIIHex([]byte("2a05"))
	assert.True(t, ok)
	assert.Equal(t, []byte{0x2a, 0x05}, out)

	_, ok = ASCIIHex([]byte("2a0"))
	assert.False(t, ok)

	_, ok = ASCIIHex([]byte("zz"))
	assert.False(t, ok)
}

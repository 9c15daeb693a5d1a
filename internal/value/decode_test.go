package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_intBE(t *testing.T) {
	got, err := Decode([]byte{0x2A}, TypeIntBE, Options{})
	require.NoError(t, err)
	assert.Equal(t, "42", got)
}

func TestDecode_uintBE_wideFallsBackToHex(t *testing.T) {
	got, err := Decode(make([]byte, 9), TypeUintBE, Options{})
	require.NoError(t, err)
	assert.Len(t, got, 18)
}

func TestDecode_hexAndHexSwapped(t *testing.T) {
	got, err := Decode([]byte{0x1A, 0x2B}, TypeHex, Options{})
	require.NoError(t, err)
	assert.Equal(t, "1a2b", got)

	got, err = Decode([]byte{0x1A, 0x2B}, TypeHexSwapped, Options{})
	require.NoError(t, err)
	assert.Equal(t, "a1b2", got)
}

func TestDecode_hexCaps(t *testing.T) {
	got, err := Decode([]byte{0xAB}, TypeHex, Options{HexCaps: true})
	require.NoError(t, err)
	assert.Equal(t, "AB", got)
}

func TestDecode_dec(t *testing.T) {
	got, err := Decode([]byte{1, 2, 255}, TypeDec, Options{})
	require.NoError(t, err)
	assert.Equal(t, "1 2 255", got)
}

func TestDecode_escaped(t *testing.T) {
	got, err := Decode([]byte{'h', 'i', 0x01}, TypeEscaped, Options{})
	require.NoError(t, err)
	assert.Equal(t, `hi\x01`, got)
}

func TestDecode_bcdTerminatesOnF(t *testing.T) {
	got, err := Decode([]byte{0x12, 0x3f}, TypeBCD, Options{})
	require.NoError(t, err)
	assert.Equal(t, "123", got)
}

func TestDecode_bcdSwapped(t *testing.T) {
	got, err := Decode([]byte{0x21}, TypeBCDSwapped, Options{})
	require.NoError(t, err)
	assert.Equal(t, "12", got)
}

func TestDecode_hexLengthLaw(t *testing.T) {
	// For all primitive values of type hex/hexs, len(decoded) == 2*len(input).
	for n := 0; n < 16; n++ {
		raw := make([]byte, n)
		got, err := Decode(raw, TypeHex, Options{})
		require.NoError(t, err)
		assert.Len(t, got, 2*n)
	}
}

func TestEpochFormat(t *testing.T) {
	layout, local, ok := epochFormat("++%Y-%m-%d")
	assert.True(t, ok)
	assert.False(t, local)
	assert.Equal(t, "%Y-%m-%d", layout)

	layout, local, ok = epochFormat("+%Y")
	assert.True(t, ok)
	assert.True(t, local)
	assert.Equal(t, "%Y", layout)

	_, _, ok = epochFormat("%Y")
	assert.False(t, ok)
}

func TestDecode_uintEpochUTC(t *testing.T) {
	got, err := Decode([]byte{0x00, 0x00, 0x00, 0x00}, TypeUintBE, Options{Format: "++%Y-%m-%d"})
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01", got)
}

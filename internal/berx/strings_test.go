package berx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBitString(t *testing.T) {
	// unused-bits prefix 0, two data bytes: "10100000" "11000000" but last
	// byte truncated to used bits only (0 unused -> full 8 bits rendered).
	got := FormatBitString([]byte{0x00, 0xA0, 0xC0})
	assert.Equal(t, "10100000 11000000", got)
}

func TestFormatBitString_truncatesLastByte(t *testing.T) {
	// 6 unused bits in the last byte -> only the top 2 bits rendered.
	got := FormatBitString([]byte{0x06, 0xA0, 0xC0})
	assert.Equal(t, "10100000 11", got)
}

func TestFormatBitString_tooShort(t *testing.T) {
	assert.Equal(t, "", FormatBitString([]byte{0x00}))
	assert.Equal(t, "", FormatBitString(nil))
}

func TestFormatOID(t *testing.T) {
	// 1.2.840.113549 (rsadsi), classic example.
	got := FormatOID([]byte{0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d})
	assert.Equal(t, "1 2 840 113549", got)
}

func TestFormatOID_firstArcBoundaries(t *testing.T) {
	assert.Equal(t, "0 39", FormatOID([]byte{39}))
	assert.Equal(t, "1 0", FormatOID([]byte{40}))
	assert.Equal(t, "2 0", FormatOID([]byte{80}))
}

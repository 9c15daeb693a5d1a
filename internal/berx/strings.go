package berx

import (
	"strconv"
	"strings"
)

// FormatBitString renders a BER BIT STRING value, per §4.3: the first byte
// gives the count of unused trailing bits in the last data byte, render is
// space-separated bit characters per byte, with the last byte truncated to
// its meaningful bits.
func FormatBitString(source []byte) string {
	if len(source) <= 1 {
		return ""
	}
	unused := int(source[0])
	var b strings.Builder
	last := len(source) - 1
	for i := 1; i < last; i++ {
		writeBits(&b, source[i], 8)
		b.WriteByte(' ')
	}
	if unused >= 1 && unused <= 8 {
		writeBits(&b, source[last], 8-unused)
	} else if unused == 0 {
		writeBits(&b, source[last], 8)
	}
	return b.String()
}

// writeBits writes the top n bits (MSB first) of c as '0'/'1' characters.
func writeBits(b *strings.Builder, c byte, n int) {
	mask := byte(0x80)
	for i := 0; i < n; i++ {
		if c&mask != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
		mask >>= 1
	}
}

// FormatBitStringGeneric renders an arbitrary (non-BER-sourced) bit string as
// MSB-first 8-char groups, space separated per byte, used by the value
// decoder for the bitstring value-type when the source TL is not BER.
func FormatBitStringGeneric(source []byte) string {
	var b strings.Builder
	for i, c := range source {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeBits(&b, c, 8)
	}
	return b.String()
}

// FormatOID renders a BER OBJECT IDENTIFIER value as space-separated decimal
// arc numbers: the first octet packs (x*40+y), subsequent arcs are base-128
// continuation values (high bit set except on the last byte of an arc).
func FormatOID(source []byte) string {
	if len(source) == 0 {
		return ""
	}
	var x, y uint64
	first := uint64(source[0])
	switch {
	case first < 40:
		x, y = 0, first
	case first < 80:
		x, y = 1, first-40
	default:
		x, y = 2, first-80
	}

	var b strings.Builder
	b.WriteString(strconv.FormatUint(x, 10))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(y, 10))

	var value uint64
	for i := 1; i < len(source); i++ {
		value = value<<7 | uint64(source[i]&0x7f)
		if source[i]&0x80 == 0 {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatUint(value, 10))
			value = 0
		}
	}
	return b.String()
}

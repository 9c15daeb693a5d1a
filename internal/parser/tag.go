package parser

import (
	"strconv"
	"strings"

	"github.com/tsavi/tlve/internal/field"
)

const hexDigitsLower = "0123456789abcdef"
const hexDigitsUpper = "0123456789ABCDEF"

// formatField renders a decoded tag or type field as display text, matching
// read_tag/read_type: integer encodings render as decimal, ascii-string
// renders verbatim, ascii-hex renders a hex dump. numeric/num are only
// meaningful for integer encodings and drive the registry's numeric tag
// comparison.
func formatField(raw []byte, enc field.Encoding, hexCaps bool) (text string, numeric bool, num uint64) {
	switch enc {
	case field.EncSignedBE:
		if v, ok := field.DecodeSignedBE(raw); ok {
			return strconv.FormatInt(v, 10), true, uint64(v)
		}
	case field.EncUnsignedBE:
		if v, ok := field.DecodeUnsignedBE(raw); ok {
			return strconv.FormatUint(v, 10), true, v
		}
	case field.EncSignedLE:
		if v, ok := field.DecodeSignedLE(raw); ok {
			return strconv.FormatInt(v, 10), true, uint64(v)
		}
	case field.EncUnsignedLE:
		if v, ok := field.DecodeUnsignedLE(raw); ok {
			return strconv.FormatUint(v, 10), true, v
		}
	case field.EncASCIIString:
		return string(raw), false, 0
	case field.EncASCIIHex:
		return hexText(raw, hexCaps), false, 0
	}
	return hexText(raw, hexCaps), false, 0
}

func hexText(raw []byte, caps bool) string {
	digits := hexDigitsLower
	if caps {
		digits = hexDigitsUpper
	}
	var b strings.Builder
	b.Grow(len(raw) * 2)
	for _, c := range raw {
		b.WriteByte(digits[c>>4])
		b.WriteByte(digits[c&0x0f])
	}
	return b.String()
}

// decodeLength interprets a length field's raw bytes, per read_length: binary
// encodings are always read unsigned (even when the descriptor's encoding is
// one of the signed variants) and mask/shift still apply; ascii-string and
// ascii-hex length fields are both parsed as plain ASCII decimal digits, not
// as hex text, matching the original's literal atoll-on-raw-bytes behavior
// for both cases.
func decodeLength(raw []byte, d field.Descriptor) int64 {
	switch d.Encoding {
	case field.EncSignedBE, field.EncUnsignedBE:
		v, _ := field.DecodeUnsignedBE(raw)
		return int64(d.ApplyMaskShift(v))
	case field.EncSignedLE, field.EncUnsignedLE:
		v, _ := field.DecodeUnsignedLE(raw)
		return int64(d.ApplyMaskShift(v))
	default:
		return parseASCIIDecimal(raw)
	}
}

// parseASCIIDecimal parses a leading optional sign and run of digits,
// stopping at the first non-digit and ignoring any trailing bytes, matching
// C's atoll semantics on untrusted ascii_len text.
func parseASCIIDecimal(raw []byte) int64 {
	i := 0
	neg := false
	if i < len(raw) && (raw[i] == '-' || raw[i] == '+') {
		neg = raw[i] == '-'
		i++
	}
	var n int64
	for ; i < len(raw); i++ {
		c := raw[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}

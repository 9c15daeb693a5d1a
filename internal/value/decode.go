// Package value implements the Value Decoder component (§4.4): converting
// raw value bytes into the printable string shown in rendered output,
// according to a declared value-type, optional printf-style format, and
// optional length adjustment.
package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/tsavi/tlve/internal/berx"
	"github.com/tsavi/tlve/internal/field"
)

// Type enumerates the value-types a TLV Rule can declare for a primitive
// item's converted value.
type Type int

const (
	TypeIntBE Type = iota
	TypeIntLE
	TypeUintBE
	TypeUintLE
	TypeString
	TypeHex
	TypeHexSwapped
	TypeDec
	TypeEscaped
	TypeBCD
	TypeBCDSwapped
	TypeBitstring
	TypeOID
	TypeUnknown
)

// Recoder converts bytes between named character sets. It is the narrow
// boundary behind which internal/iconv's implementation lives; the value
// decoder never imports internal/iconv directly so that it stays testable
// without a real charset table.
type Recoder interface {
	Convert(data []byte, from, to string) ([]byte, error)
}

// Options configures a single Decode call.
type Options struct {
	Format         string // optional printf-style format, or epoch "+"/"++" prefix
	LengthAdjust   int    // signed length adjustment, applied by the caller before slicing
	HexCaps        bool
	BERSource      bool // whether the owning TL schema used BER encoding
	SourceEncoding string
	TargetEncoding string
	Recode         Recoder
}

var hexDigitsLower = "0123456789abcdef"
var hexDigitsUpper = "0123456789ABCDEF"

// Decode converts raw into its printable rendering according to vt and opts.
func Decode(raw []byte, vt Type, opts Options) (string, error) {
	switch vt {
	case TypeIntBE, TypeIntLE:
		return decodeInt(raw, vt, opts)
	case TypeUintBE, TypeUintLE:
		return decodeUint(raw, vt, opts)
	case TypeString:
		return string(raw), nil
	case TypeHex:
		return hexString(raw, opts.HexCaps, false), nil
	case TypeHexSwapped:
		return hexString(raw, opts.HexCaps, true), nil
	case TypeDec:
		return decString(raw), nil
	case TypeEscaped, TypeUnknown:
		return escapedString(raw, opts.HexCaps), nil
	case TypeBCD:
		return bcdString(raw, opts.HexCaps, false), nil
	case TypeBCDSwapped:
		return bcdString(raw, opts.HexCaps, true), nil
	case TypeBitstring:
		if opts.BERSource {
			return berx.FormatBitString(raw), nil
		}
		return berx.FormatBitStringGeneric(raw), nil
	case TypeOID:
		return berx.FormatOID(raw), nil
	default:
		return escapedString(raw, opts.HexCaps), nil
	}
}

func decodeInt(raw []byte, vt Type, opts Options) (string, error) {
	var v int64
	var ok bool
	if vt == TypeIntBE {
		v, ok = field.DecodeSignedBE(raw)
	} else {
		v, ok = field.DecodeSignedLE(raw)
	}
	if !ok {
		return hexString(raw, opts.HexCaps, false), nil
	}
	if opts.Format != "" {
		return fmt.Sprintf(opts.Format, v), nil
	}
	return strconv.FormatInt(v, 10), nil
}

func decodeUint(raw []byte, vt Type, opts Options) (string, error) {
	var v uint64
	var ok bool
	if vt == TypeUintBE {
		v, ok = field.DecodeUnsignedBE(raw)
	} else {
		v, ok = field.DecodeUnsignedLE(raw)
	}
	if !ok {
		return hexString(raw, opts.HexCaps, false), nil
	}
	if epoch, local, isEpoch := epochFormat(opts.Format); isEpoch {
		return formatEpoch(int64(v), epoch, local)
	}
	if opts.Format != "" {
		return fmt.Sprintf(opts.Format, v), nil
	}
	return strconv.FormatUint(v, 10), nil
}

// epochFormat detects the "+"/"++" epoch-rendering prefix from §4.4: a
// format beginning with "++" renders in UTC, a single "+" renders in local
// time; the remainder is a strftime-style format string.
func epochFormat(format string) (strftimeFormat string, local bool, ok bool) {
	switch {
	case strings.HasPrefix(format, "++"):
		return format[2:], false, true
	case strings.HasPrefix(format, "+"):
		return format[1:], true, true
	default:
		return "", false, false
	}
}

func formatEpoch(epochSeconds int64, layout string, local bool) (string, error) {
	t := time.Unix(epochSeconds, 0)
	if local {
		t = t.Local()
	} else {
		t = t.UTC()
	}
	f, err := strftime.New(layout)
	if err != nil {
		return "", fmt.Errorf("value: invalid epoch format %q: %w", layout, err)
	}
	return f.FormatString(t), nil
}

func hexString(raw []byte, caps, swapped bool) string {
	digits := hexDigitsLower
	if caps {
		digits = hexDigitsUpper
	}
	var b strings.Builder
	b.Grow(len(raw) * 2)
	for _, c := range raw {
		hi, lo := c>>4, c&0x0f
		if swapped {
			b.WriteByte(digits[lo])
			b.WriteByte(digits[hi])
		} else {
			b.WriteByte(digits[hi])
			b.WriteByte(digits[lo])
		}
	}
	return b.String()
}

func decString(raw []byte) string {
	var b strings.Builder
	for i, c := range raw {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(int(c)))
	}
	return b.String()
}

func escapedString(raw []byte, caps bool) string {
	digits := hexDigitsLower
	if caps {
		digits = hexDigitsUpper
	}
	var b strings.Builder
	for _, c := range raw {
		if c >= 0x20 && c < 0x7f {
			b.WriteByte(c)
			continue
		}
		b.WriteString(`\x`)
		b.WriteByte(digits[c>>4])
		b.WriteByte(digits[c&0x0f])
	}
	return b.String()
}

// bcdString decodes a BCD (binary-coded decimal) byte string, two digits per
// byte, terminating at the first 'f' nibble (§4.4).
func bcdString(raw []byte, caps, swapped bool) string {
	digits := hexDigitsLower
	if caps {
		digits = hexDigitsUpper
	}
	var b strings.Builder
	for _, c := range raw {
		hi, lo := c>>4, c&0x0f
		if swapped {
			hi, lo = lo, hi
		}
		if hi == 0xf {
			return b.String()
		}
		b.WriteByte(digits[hi])
		if lo == 0xf {
			return b.String()
		}
		b.WriteByte(digits[lo])
	}
	return b.String()
}

// Package field implements the Field Codec component (§4.2): decoding a
// single binary field — tag, type or length — out of the bytes of a TLV
// triplet, according to a declarative Descriptor.
package field

// Encoding identifies how a field's raw bytes are interpreted.
type Encoding int

const (
	EncSignedBE Encoding = iota
	EncUnsignedBE
	EncSignedLE
	EncUnsignedLE
	EncASCIIString
	EncASCIIHex
	EncBER
)

// Descriptor is a Field Descriptor (§3): it describes where a field sits
// within a triplet and how to decode it.
type Descriptor struct {
	Encoding Encoding

	// Size policy: either Length is used (fixed width), or UseTerminator is
	// set and Terminator delimits the field.
	Length        int
	UseTerminator bool
	Terminator    byte

	Mask  uint64 // applied after integer decode, if nonzero
	Shift int    // positive = left, negative = right

	Offset    int // absolute offset within the triplet, when UseOffset
	UseOffset bool
}

// ErrShort is returned when the supplied window ends before the field could
// be fully read.
type ErrShort struct{}

func (ErrShort) Error() string { return "field: not enough bytes in window" }

// Slice extracts the raw byte slice for d out of window, where
// implicitOffset is the offset to use when d does not specify UseOffset (the
// byte immediately following whatever was already consumed in this triplet).
// It returns the raw bytes (excluding any terminator), the total count of
// bytes consumed from the start of the triplet (i.e. offset + data +
// terminator), and an error if the window does not contain enough data.
func (d Descriptor) Slice(window []byte, implicitOffset int) (raw []byte, consumed int, err error) {
	start := implicitOffset
	if d.UseOffset {
		start = d.Offset
	}
	if d.UseTerminator {
		idx := -1
		for i := start; i < len(window); i++ {
			if window[i] == d.Terminator {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, 0, ErrShort{}
		}
		return window[start:idx], idx + 1, nil
	}
	end := start + d.Length
	if end > len(window) {
		return nil, 0, ErrShort{}
	}
	return window[start:end], end, nil
}

// DecodeSignedBE decodes raw as a two's-complement big-endian signed integer.
// ok is false if raw is wider than 8 bytes (the caller must fall back to hex
// rendering in that case, per §4.2/§4.4).
func DecodeSignedBE(raw []byte) (value int64, ok bool) {
	if len(raw) == 0 || len(raw) > 8 {
		return 0, len(raw) == 0
	}
	negative := raw[0]&0x80 != 0
	var acc uint64
	for _, c := range raw {
		if negative {
			c = ^c
		}
		acc = acc<<8 | uint64(c)
	}
	if negative {
		return -int64(acc) - 1, true
	}
	return int64(acc), true
}

// DecodeUnsignedBE decodes raw as a big-endian unsigned integer.
func DecodeUnsignedBE(raw []byte) (value uint64, ok bool) {
	if len(raw) == 0 || len(raw) > 8 {
		return 0, len(raw) == 0
	}
	var acc uint64
	for _, c := range raw {
		acc = acc<<8 | uint64(c)
	}
	return acc, true
}

// DecodeSignedLE decodes raw as a two's-complement little-endian signed
// integer.
func DecodeSignedLE(raw []byte) (value int64, ok bool) {
	if len(raw) == 0 || len(raw) > 8 {
		return 0, len(raw) == 0
	}
	negative := raw[len(raw)-1]&0x80 != 0
	var acc uint64
	for i := len(raw) - 1; i >= 0; i-- {
		c := raw[i]
		if negative {
			c = ^c
		}
		acc = acc<<8 | uint64(c)
	}
	if negative {
		return -int64(acc) - 1, true
	}
	return int64(acc), true
}

// DecodeUnsignedLE decodes raw as a little-endian unsigned integer.
func DecodeUnsignedLE(raw []byte) (value uint64, ok bool) {
	if len(raw) == 0 || len(raw) > 8 {
		return 0, len(raw) == 0
	}
	var acc uint64
	for i := len(raw) - 1; i >= 0; i-- {
		acc = acc<<8 | uint64(raw[i])
	}
	return acc, true
}

// ApplyMaskShift applies d's mask (if nonzero) and then its shift (positive
// left, negative right) to an unsigned accumulator, per §4.2.
func (d Descriptor) ApplyMaskShift(v uint64) uint64 {
	if d.Mask != 0 {
		v &= d.Mask
	}
	if d.Shift > 0 {
		v <<= uint(d.Shift)
	} else if d.Shift < 0 {
		v >>= uint(-d.Shift)
	}
	return v
}

// ApplyMaskShiftSigned is the signed-integer counterpart of ApplyMaskShift.
func (d Descriptor) ApplyMaskShiftSigned(v int64) int64 {
	if d.Mask != 0 {
		v &= int64(d.Mask)
	}
	if d.Shift > 0 {
		v <<= uint(d.Shift)
	} else if d.Shift < 0 {
		v >>= uint(-d.Shift)
	}
	return v
}

// ASCIIHex decodes raw (two hex chars per input byte semantics are inverted
// here: this decodes an ascii-hex *encoded* field, i.e. the field's bytes
// ARE the two hex characters per output byte) into the bytes they represent.
// This mirrors an ascii-hex Field Descriptor encoding used for tag/type/length
// fields transmitted as hex text rather than binary.
func ASCIIHex(raw []byte) ([]byte, bool) {
	if len(raw)%2 != 0 {
		return nil, false
	}
	out := make([]byte, len(raw)/2)
	for i := range out {
		hi, ok1 := hexNibble(raw[2*i])
		lo, ok2 := hexNibble(raw[2*i+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		out[i] = hi<<4 | lo
	}
	return out, true
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

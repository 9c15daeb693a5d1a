// Package berx implements the tag/length/value-rendering specifics of ASN.1
// Basic Encoding Rules needed by the engine: class-qualified tag decoding,
// long- and short-form length, and the BIT STRING / OBJECT IDENTIFIER value
// renderings. It deliberately does not implement general ASN.1 struct
// marshaling; that is out of scope for a TLV renderer.
package berx

import "strconv"

// Class is the two-bit class component of a BER identifier octet.
type Class int

// The four BER tag classes, in identifier-octet bit order.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// prefix returns the single-letter class prefix used when rendering a tag,
// per the "<class>-<number>" scheme.
func (c Class) prefix() string {
	switch c {
	case ClassUniversal:
		return "U-"
	case ClassApplication:
		return "A-"
	case ClassContextSpecific:
		return "C-"
	case ClassPrivate:
		return "P-"
	default:
		return "?-"
	}
}

// Tag is a decoded BER tag: a class and a tag number. Long-form tag numbers
// are held in full; the original tool's 64-bit limit is mirrored here via
// uint64.
type Tag struct {
	Class  Class
	Number uint64
}

// String renders t as "<class>-<decimal number>", e.g. "U-2", "A-15".
func (t Tag) String() string {
	return t.Class.prefix() + strconv.FormatUint(t.Number, 10)
}

// TagUniversalBitString is the well-known tag rendering used by the
// constructor-inference heuristic for BER BIT STRING (§4.3); the trigger is
// an exact string match against this value, not a numeric comparison, to
// match the original tool's literal strcmp behavior for long-form encodings
// of the same number.
const TagUniversalBitString = "U-3"

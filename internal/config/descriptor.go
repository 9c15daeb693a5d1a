package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsavi/tlve/internal/field"
	"github.com/tsavi/tlve/internal/registry"
	"github.com/tsavi/tlve/internal/value"
)

// token is the shared vocabulary behind the bo-type, value-type, tlv "type"
// and "form" parameter domains, mirroring the original tool's single
// reused types[] table.
type token int

const (
	tokUnknown token = iota
	tokIntBE
	tokIntLE
	tokString
	tokConstructed
	tokPrimitive
	tokEndOfContent
	tokBER
	tokInt // alias -> tokIntBE
	tokHex
	tokBCD
	tokBCDS
	tokUintBE
	tokUintLE
	tokUint // alias -> tokUintBE
	tokDefinite
	tokIndefinite
	tokOID
	tokBitString
	tokEscaped
	tokDec
	tokHexS
	tokASCIIHex // extension: not in the original vocabulary, see DESIGN.md
)

var tokenNames = map[string]token{
	"int-be":         tokIntBE,
	"int-le":         tokIntLE,
	"string":         tokString,
	"constructed":    tokConstructed,
	"primitive":      tokPrimitive,
	"end-of-content": tokEndOfContent,
	"ber":            tokBER,
	"int":            tokInt,
	"hex":            tokHex,
	"bcd":            tokBCD,
	"bcds":           tokBCDS,
	"uint-be":        tokUintBE,
	"uint-le":        tokUintLE,
	"uint":           tokUint,
	"definite":       tokDefinite,
	"indefinite":     tokIndefinite,
	"oid":            tokOID,
	"bit-string":     tokBitString,
	"escaped":        tokEscaped,
	"dec":            tokDec,
	"hexs":           tokHexS,
	"ascii-hex":      tokASCIIHex,
}

func lookupToken(s string) (token, bool) {
	t, ok := tokenNames[strings.ToLower(s)]
	if !ok {
		return tokUnknown, false
	}
	switch t {
	case tokInt:
		return tokIntBE, true
	case tokUint:
		return tokUintBE, true
	default:
		return t, true
	}
}

// descriptorEncoding resolves a bo-string "type" token to a field.Encoding,
// the set valid for a tag/type/length field descriptor (parse_bo's closing
// switch). ascii-hex extends the original's int-be/int-le/uint-be/uint-le/
// string/ber set, consistent with internal/field already carrying
// EncASCIIHex and internal/parser/tag.go's decodeLength already decoding it
// for length fields (see DESIGN.md).
func descriptorEncoding(s string) (field.Encoding, error) {
	t, ok := lookupToken(s)
	if !ok {
		return 0, fmt.Errorf("invalid tag/length definition, unknown type %q", s)
	}
	switch t {
	case tokIntBE:
		return field.EncSignedBE, nil
	case tokIntLE:
		return field.EncSignedLE, nil
	case tokUintBE:
		return field.EncUnsignedBE, nil
	case tokUintLE:
		return field.EncUnsignedLE, nil
	case tokString:
		return field.EncASCIIString, nil
	case tokBER:
		return field.EncBER, nil
	case tokASCIIHex:
		return field.EncASCIIHex, nil
	default:
		return 0, fmt.Errorf("unknown type for tag or length %q", s)
	}
}

// splitField returns s up to the next comma and the remainder after it, or
// (s, "", false) when no comma follows.
func splitField(s string) (head, rest string, hasMore bool) {
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		return s[:idx], s[idx+1:], true
	}
	return s, "", false
}

// parseDescriptor parses a Field Descriptor string of the form
// "type,length,mask,shift,offset" (parse_bo). type is required; length is
// required unless type is "ber", and may instead be a single-character
// terminator written "/c/". mask, shift and offset are all optional and may
// be omitted by simply ending the string early.
func parseDescriptor(raw string) (field.Descriptor, error) {
	var d field.Descriptor

	typeTok, rest, more := splitField(raw)
	enc, err := descriptorEncoding(typeTok)
	if err != nil {
		return d, fmt.Errorf("invalid tag/length definition %q: %w", raw, err)
	}
	d.Encoding = enc
	if !more {
		if enc != field.EncBER {
			return d, fmt.Errorf("invalid tag/length definition, unknown length or terminator: %q", raw)
		}
		return d, nil
	}

	if len(rest) >= 3 && rest[0] == '/' && rest[2] == '/' {
		d.UseTerminator = true
		d.Terminator = rest[1]
		rest = rest[3:]
		if rest == "" {
			return d, nil
		}
		if rest[0] != ',' {
			return d, fmt.Errorf("invalid tag/length definition %q", raw)
		}
		rest = rest[1:]
	} else {
		var lenTok string
		lenTok, rest, more = splitField(rest)
		n, convErr := strconv.Atoi(lenTok)
		if convErr != nil || n == 0 {
			return d, fmt.Errorf("invalid tag/length definition, unknown length or terminator: %q", raw)
		}
		d.Length = n
		if !more {
			return d, nil
		}
	}

	var maskTok string
	maskTok, rest, more = splitField(rest)
	if maskTok != "" {
		mask, convErr := strconv.ParseUint(maskTok, 0, 64)
		if convErr != nil {
			return d, fmt.Errorf("invalid mask in tag/length definition %q", raw)
		}
		d.Mask = mask
	}
	if !more {
		return d, nil
	}

	var shiftTok string
	shiftTok, rest, more = splitField(rest)
	if shiftTok != "" {
		shift, convErr := strconv.Atoi(shiftTok)
		if convErr != nil {
			return d, fmt.Errorf("invalid shift in tag/length definition %q", raw)
		}
		d.Shift = shift
	}
	if !more {
		return d, nil
	}

	offsetTok, _, _ := splitField(rest)
	if offsetTok != "" {
		offset, convErr := strconv.ParseUint(offsetTok, 10, 64)
		if convErr != nil {
			return d, fmt.Errorf("invalid offset in tag/length definition %q", raw)
		}
		d.Offset = int(offset)
		d.UseOffset = true
	}
	return d, nil
}

// valueTypeToken resolves a "value-type"/"map" parameter's token to a
// value.Type.
func valueTypeToken(s string) (value.Type, error) {
	t, ok := lookupToken(s)
	if !ok {
		return value.TypeUnknown, fmt.Errorf("unknown value-type %q", s)
	}
	switch t {
	case tokIntBE:
		return value.TypeIntBE, nil
	case tokIntLE:
		return value.TypeIntLE, nil
	case tokUintBE:
		return value.TypeUintBE, nil
	case tokUintLE:
		return value.TypeUintLE, nil
	case tokString:
		return value.TypeString, nil
	case tokHex:
		return value.TypeHex, nil
	case tokHexS:
		return value.TypeHexSwapped, nil
	case tokOID:
		return value.TypeOID, nil
	case tokBitString:
		return value.TypeBitstring, nil
	case tokEscaped:
		return value.TypeEscaped, nil
	case tokDec:
		return value.TypeDec, nil
	case tokBCD:
		return value.TypeBCD, nil
	case tokBCDS:
		return value.TypeBCDSwapped, nil
	default:
		return value.TypeUnknown, fmt.Errorf("%q is not a valid value-type", s)
	}
}

// kindToken resolves a tlv "type" parameter's token to a registry.Kind.
func kindToken(s string) (registry.Kind, error) {
	t, ok := lookupToken(s)
	if !ok {
		return registry.KindUnset, fmt.Errorf("unknown type %q", s)
	}
	switch t {
	case tokConstructed:
		return registry.KindConstructed, nil
	case tokPrimitive:
		return registry.KindPrimitive, nil
	case tokEndOfContent:
		return registry.KindEndOfContents, nil
	default:
		return registry.KindUnset, fmt.Errorf("unknown type %q", s)
	}
}

// formToken resolves a tlv "form" parameter's token to a
// registry.FormOverride.
func formToken(s string) (registry.FormOverride, error) {
	t, ok := lookupToken(s)
	if !ok {
		return registry.FormUnset, fmt.Errorf("unknown form %q", s)
	}
	switch t {
	case tokDefinite:
		return registry.FormDefinite, nil
	case tokIndefinite:
		return registry.FormIndefinite, nil
	default:
		return registry.FormUnset, fmt.Errorf("unknown form %q", s)
	}
}

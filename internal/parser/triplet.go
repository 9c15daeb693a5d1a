package parser

import (
	"errors"

	"github.com/tsavi/tlve/internal/berx"
	"github.com/tsavi/tlve/internal/field"
	"github.com/tsavi/tlve/internal/level"
	"github.com/tsavi/tlve/internal/output"
	"github.com/tsavi/tlve/internal/registry"
	"github.com/tsavi/tlve/internal/streambuf"
)

// triplet is the parser's working state for one tag/length read, the Go
// analogue of the original tool's reused "new" tlvitem.
type triplet struct {
	tag        string
	tagNumeric bool
	tagNum     uint64
	typeStr    string

	rawTL       []byte
	rawTLLength int

	length int64 // declared length (tl-included already subtracted); 0 when the TL has no length field

	kind      output.Kind
	kindKnown bool // true once a codec or rule has pinned the kind
	form      level.Form
}

func mapBerxKind(k berx.Kind) output.Kind {
	switch k {
	case berx.KindConstructed:
		return output.KindConstructed
	case berx.KindEndOfContents:
		return output.KindEndOfContents
	default:
		return output.KindPrimitive
	}
}

func mapRegistryKind(k registry.Kind) output.Kind {
	switch k {
	case registry.KindConstructed:
		return output.KindConstructed
	case registry.KindEndOfContents:
		return output.KindEndOfContents
	default:
		return output.KindPrimitive
	}
}

var errShortTL = errors.New("parser: not a valid tag/length")

// readTL reads a full tag/[type]/[length] header out of buf's current unread
// window according to tl, matching read_tl/read_tag/read_type/read_length.
// It never advances buf's cursor; callers decide separately when to commit
// the header (and, for maybeConstructed's probe, whether to commit at all).
func readTL(buf *streambuf.Buffer, tl *registry.TLSchema, hexCaps bool) (*triplet, error) {
	t := &triplet{form: tl.Form}

	if tl.Tag.Encoding == field.EncBER {
		tag, kind, n, err := decodeBERTag(buf)
		if err != nil {
			return nil, errShortTL
		}
		form, length, lenN, err := decodeBERLength(buf, n)
		if err != nil {
			return nil, errShortTL
		}
		rawTLLen := n + lenN
		window := ensure(buf, rawTLLen)
		if len(window) < rawTLLen {
			return nil, errShortTL
		}
		t.tag = tag.String()
		t.rawTL = append([]byte(nil), window[:rawTLLen]...)
		t.rawTLLength = rawTLLen
		t.kind = mapBerxKind(kind)
		t.kindKnown = true
		if form == berx.FormIndefinite {
			t.form = level.FormIndefinite
		} else {
			t.form = level.FormDefinite
			t.length = length
		}
		return t, nil
	}

	tagRaw, tagConsumed, err := sliceField(buf, tl.Tag, 0)
	if err != nil {
		return nil, errShortTL
	}
	t.tag, t.tagNumeric, t.tagNum = formatField(tagRaw, tl.Tag.Encoding, hexCaps)
	consumedNow := tagConsumed

	if tl.HasType {
		typeRaw, typeConsumed, err := sliceField(buf, tl.Type, tagConsumed)
		if err != nil {
			return nil, errShortTL
		}
		t.typeStr, _, _ = formatField(typeRaw, tl.Type.Encoding, hexCaps)
		if typeConsumed > consumedNow {
			consumedNow = typeConsumed
		}
	}

	lenConsumed := 0
	if tl.HasLength {
		lenRaw, lc, err := sliceField(buf, tl.Length, consumedNow)
		if err != nil {
			return nil, errShortTL
		}
		t.length = decodeLength(lenRaw, tl.Length)
		lenConsumed = lc
	}

	rawTLLen := consumedNow
	if lenConsumed > rawTLLen {
		rawTLLen = lenConsumed
	}
	if tl.TLIncluded {
		t.length -= int64(rawTLLen)
	}

	window := ensure(buf, rawTLLen)
	if len(window) < rawTLLen {
		return nil, errShortTL
	}
	t.rawTL = append([]byte(nil), window[:rawTLLen]...)
	t.rawTLLength = rawTLLen
	return t, nil
}

// maybeConstructed probes whether t's already-committed value actually holds
// a nested tag/length pair accounting for the whole declared length, per
// maybe_constructed. Content is read using tl (the same schema that produced
// t), matching current_tl() being reused for the probe.
//
// Precondition: buf's cursor already sits at the start of t's value (the
// outer header has been committed by the caller).
func maybeConstructed(buf *streambuf.Buffer, stack *level.Stack, tl *registry.TLSchema, t *triplet, hexCaps bool) bool {
	if t.length == 0 {
		return false
	}

	// A hack for the BER BIT STRING tag (U-3): its first value byte is an
	// unused-bits count, not part of any nested structure, so the probe
	// must look one byte further in. Kept permanently once confirmed.
	if tl.Tag.Encoding == field.EncBER && t.tag == berx.TagUniversalBitString {
		if !buf.Needed(1) {
			return false
		}
		buf.Read(1)
		dummy, err := readTL(buf, tl, hexCaps)
		if err == nil && int64(dummy.rawTLLength)+dummy.length+1 == t.length {
			stack.Commit(1)
			t.length--
			return true
		}
		buf.Back()
		return false
	}

	dummy, err := readTL(buf, tl, hexCaps)
	if err != nil {
		return false
	}
	return int64(dummy.rawTLLength)+dummy.length == t.length
}

// Package parser implements the TLV Parser component (§4.6): the per-triplet
// read loop that drives the Field Codec, BER codec and Value Decoder off a
// Byte Buffer, maintains the Level Stack, resolves a TLV Rule through the
// Definition Registry and hands finished items to the Output Engine.
package parser

import (
	"bytes"

	"github.com/tsavi/tlve/internal/berx"
	"github.com/tsavi/tlve/internal/field"
	"github.com/tsavi/tlve/internal/streambuf"
)

// growChunk is how many additional bytes are requested when a field or
// pattern search needs more than is currently buffered.
const growChunk = 4096

// ensure tops the buffer up to at least n bytes (best effort) and returns the
// current unread window.
func ensure(buf *streambuf.Buffer, n int) []byte {
	buf.Desired(n)
	return buf.Data()
}

// sliceField reads d out of buf starting at implicitOffset, growing the
// buffered window as needed for terminator-delimited fields whose length
// isn't known up front.
func sliceField(buf *streambuf.Buffer, d field.Descriptor, implicitOffset int) (raw []byte, consumed int, err error) {
	need := implicitOffset + 1
	if !d.UseTerminator {
		need = implicitOffset + d.Length
		if d.UseOffset {
			need = d.Offset + d.Length
		}
	} else if d.UseOffset {
		need = d.Offset + 1
	}

	for {
		window := ensure(buf, need)
		raw, consumed, err = d.Slice(window, implicitOffset)
		if err == nil {
			return raw, consumed, nil
		}
		if !d.UseTerminator {
			return nil, 0, err
		}
		before := len(window)
		need = before + growChunk
		buf.Desired(need)
		if len(buf.Data()) == before {
			return nil, 0, err
		}
	}
}

// decodeBERTag reads a BER identifier octet out of buf, growing the window
// as needed.
func decodeBERTag(buf *streambuf.Buffer) (berx.Tag, berx.Kind, int, error) {
	need := 2
	for {
		window := ensure(buf, need)
		tag, kind, n, err := berx.DecodeTag(window)
		if err == nil {
			return tag, kind, n, nil
		}
		before := len(window)
		need = before + growChunk
		buf.Desired(need)
		if len(buf.Data()) == before {
			return tag, kind, n, err
		}
	}
}

// decodeBERLength reads a BER length field starting at offset tagConsumed.
func decodeBERLength(buf *streambuf.Buffer, tagConsumed int) (berx.Form, int64, int, error) {
	need := tagConsumed + 1
	for {
		window := ensure(buf, need)
		if len(window) <= tagConsumed {
			return 0, 0, 0, berx.ErrShortBuffer()
		}
		form, length, n, err := berx.DecodeLength(window[tagConsumed:])
		if err == nil {
			return form, length, n, nil
		}
		before := len(window)
		need = before + growChunk
		buf.Desired(need)
		if len(buf.Data()) == before {
			return 0, 0, 0, err
		}
	}
}

// searchFrom finds the next occurrence of pattern at or after start within
// buf, growing the window as needed. It returns the offset relative to the
// buffer's read cursor, or -1 if pattern never appears before the input ends.
func searchFrom(buf *streambuf.Buffer, start int, pattern []byte) int {
	for {
		data := buf.Data()
		if len(data) >= start {
			if idx := bytes.Index(data[start:], pattern); idx >= 0 {
				return start + idx
			}
		}
		before := len(data)
		buf.Desired(before + growChunk)
		if len(buf.Data()) == before {
			return -1
		}
	}
}

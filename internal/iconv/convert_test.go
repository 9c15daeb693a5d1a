package iconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_SameEncodingIsNoOp(t *testing.T) {
	c := New()
	out, err := c.Convert([]byte("hello"), "UTF-8", "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestConverter_Latin1ToUTF8(t *testing.T) {
	c := New()
	// 0xe9 in ISO-8859-1 is U+00E9 (é), which UTF-8 encodes as 0xc3 0xa9.
	out, err := c.Convert([]byte{0xe9}, "ISO-8859-1", "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc3, 0xa9}, out)
}

func TestConverter_CachesResolvedPair(t *testing.T) {
	c := New()
	_, err := c.Convert([]byte("a"), "ISO-8859-1", "UTF-8")
	require.NoError(t, err)

	from, to := c.prevFrom, c.prevTo
	_, err = c.Convert([]byte("b"), "ISO-8859-1", "UTF-8")
	require.NoError(t, err)

	assert.Equal(t, from, c.prevFrom)
	assert.Equal(t, to, c.prevTo)
}

func TestConverter_UnknownCharsetErrors(t *testing.T) {
	c := New()
	_, err := c.Convert([]byte("x"), "NOT-A-REAL-CHARSET", "UTF-8")
	require.Error(t, err)
}

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsavi/tlve/internal/field"
	"github.com/tsavi/tlve/internal/registry"
	"github.com/tsavi/tlve/internal/value"
)

const sampleRC = `
# sample configuration
tl name=ber tag=ber

print name=default value=%n=%v\n constructor=%n{\n constructor-end=}\n

structure name=default content-tl=ber print=default
    tlv name=version tag=U-2 value-type=int-be print=default
    tlv name=payload tag=U-4 value-type=string hold=yes
structure-end
`

func TestLoad_EndToEnd(t *testing.T) {
	res, err := Load(strings.NewReader(sampleRC), "default", "")
	require.NoError(t, err)

	require.NotNil(t, res.Structure)
	assert.Equal(t, "default", res.Structure.Name)
	assert.NotEqual(t, registry.NoHandle, res.Structure.ContentTL)
	assert.NotEqual(t, registry.NoHandle, res.Structure.PrintTemplate)

	require.Len(t, res.Structure.Rules, 2)

	version := res.Structure.Rules[0]
	assert.Equal(t, "U-2", version.StartTag)
	assert.Equal(t, "U-2", version.EndTag)
	assert.Equal(t, value.TypeIntBE, version.ValueType)
	assert.NotEqual(t, registry.NoHandle, version.PrintTemplate)

	payload := res.Structure.Rules[1]
	assert.Equal(t, "payload", payload.HoldName)

	require.Len(t, res.Templates, 1)
	assert.Equal(t, "%n=%v\n", res.Templates[0].Content)
	assert.Equal(t, "%n{\n", res.Templates[0].LevelHead)
	assert.Equal(t, "}\n", res.Templates[0].LevelTrailer)
}

func TestLoad_PrintUnnamedContentDistinctFromContent(t *testing.T) {
	rc := `
tl name=ber tag=ber
print name=default value=%n=%v\n uvalue=[%t]=%v\n
structure name=default content-tl=ber print=default
structure-end
`
	res, err := Load(strings.NewReader(rc), "default", "")
	require.NoError(t, err)

	require.Len(t, res.Templates, 1)
	assert.Equal(t, "%n=%v\n", res.Templates[0].Content)
	assert.Equal(t, "[%t]=%v\n", res.Templates[0].UnnamedContent)
}

func TestLoad_PrintUnnamedContentEmptyWhenUvalueUnset(t *testing.T) {
	res, err := Load(strings.NewReader(sampleRC), "default", "")
	require.NoError(t, err)

	require.Len(t, res.Templates, 1)
	assert.Equal(t, "", res.Templates[0].UnnamedContent)
}

func TestLoad_DefaultsToDefaultStructure(t *testing.T) {
	res, err := Load(strings.NewReader(sampleRC), "", "")
	require.NoError(t, err)
	assert.Equal(t, "default", res.Structure.Name)
}

func TestLoad_UnknownStructureErrors(t *testing.T) {
	_, err := Load(strings.NewReader(sampleRC), "nope", "")
	require.Error(t, err)
}

func TestLoad_UnterminatedStructureErrors(t *testing.T) {
	rc := `
tl name=ber tag=ber
print name=default value=%v
structure name=default content-tl=ber print=default
tlv name=x tag=U-2 value-type=int-be
`
	_, err := Load(strings.NewReader(rc), "default", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no end keyword")
}

func TestLoad_PrintOverride(t *testing.T) {
	rc := sampleRC + "\nprint name=alt value=%v\n"
	res, err := Load(strings.NewReader(rc), "default", "alt")
	require.NoError(t, err)

	var alt int = -1
	for i, tpl := range res.Templates {
		if tpl.Name == "alt" {
			alt = i
		}
	}
	require.NotEqual(t, -1, alt)
	assert.Equal(t, alt, res.Structure.PrintTemplate)
	for _, rule := range res.Structure.Rules {
		assert.Equal(t, alt, rule.PrintTemplate)
	}
}

func TestParseDescriptor_BER(t *testing.T) {
	d, err := parseDescriptor("ber")
	require.NoError(t, err)
	assert.Equal(t, field.EncBER, d.Encoding)
}

func TestParseDescriptor_FixedLengthWithMaskShiftOffset(t *testing.T) {
	d, err := parseDescriptor("int-be,2,0xff00,-8,4")
	require.NoError(t, err)
	assert.Equal(t, field.EncSignedBE, d.Encoding)
	assert.Equal(t, 2, d.Length)
	assert.Equal(t, uint64(0xff00), d.Mask)
	assert.Equal(t, -8, d.Shift)
	assert.True(t, d.UseOffset)
	assert.Equal(t, 4, d.Offset)
}

func TestParseDescriptor_Terminator(t *testing.T) {
	d, err := parseDescriptor("string,/,/")
	require.NoError(t, err)
	assert.True(t, d.UseTerminator)
	assert.Equal(t, byte(','), d.Terminator)
}

func TestParseDescriptor_ASCIIHexExtension(t *testing.T) {
	d, err := parseDescriptor("ascii-hex,4")
	require.NoError(t, err)
	assert.Equal(t, field.EncASCIIHex, d.Encoding)
	assert.Equal(t, 4, d.Length)
}

func TestParseDescriptor_UnknownTypeErrors(t *testing.T) {
	_, err := parseDescriptor("not-a-type,2")
	require.Error(t, err)
}

func TestLexer_BackslashContinuationAndComment(t *testing.T) {
	lx := newLexer(strings.NewReader("tlv name=x \\\n  tag=U-2 # trailing comment\nprint name=y value=%v\n"))

	line, ok := lx.readLogicalLine()
	require.True(t, ok)
	assert.Equal(t, "tlv name=x    tag=U-2 ", line)

	line, ok = lx.readLogicalLine()
	require.True(t, ok)
	assert.Equal(t, "print name=y value=%v", line)

	_, ok = lx.readLogicalLine()
	assert.False(t, ok)
}

func TestParseStatement_EscapesAndQuoting(t *testing.T) {
	st, err := parseStatement(`tl name=weird filler=\x00\x01 tag="a b"`, 1)
	require.NoError(t, err)
	assert.Equal(t, "tl", st.keyword)

	filler, ok := st.raw("filler")
	require.True(t, ok)
	assert.Equal(t, []byte{0x00, 0x01}, filler)

	tag, ok := st.str("tag")
	require.True(t, ok)
	assert.Equal(t, "a b", tag)
}

func TestParseStatement_UnknownKeywordErrors(t *testing.T) {
	_, err := parseStatement("bogus name=x", 1)
	require.Error(t, err)
}

func TestParseStatement_MalformedHexEscapeErrors(t *testing.T) {
	_, err := parseStatement(`tl name=weird filler=\xZZ`, 1)
	require.Error(t, err)

	_, err = parseStatement(`tl name=weird filler=\x0`, 1)
	require.Error(t, err)
}

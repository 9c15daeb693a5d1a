package engine

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsavi/tlve/internal/field"
	"github.com/tsavi/tlve/internal/output"
	"github.com/tsavi/tlve/internal/registry"
	"github.com/tsavi/tlve/internal/value"
)

func berStructure() (*registry.Registry, *registry.Structure) {
	reg := &registry.Registry{}
	tlIdx := reg.AddTLSchema(&registry.TLSchema{
		Name:          "ber",
		Tag:           field.Descriptor{Encoding: field.EncBER},
		PrintTemplate: registry.NoHandle,
		TypeMapHandle: registry.NoHandle,
	})

	rule := &registry.TLVRule{
		StartTag: "U-2", EndTag: "U-2", Name: "version",
		ValueType: value.TypeIntBE, ContentTL: registry.NoHandle, PrintTemplate: registry.NoHandle,
	}
	st := &registry.Structure{Name: "root", ContentTL: tlIdx, Rules: []*registry.TLVRule{rule}, PrintTemplate: 0}
	return reg, st
}

func TestEngine_NewFileResetsBufferAndStackPerFile(t *testing.T) {
	reg, st := berStructure()
	tpl := &output.Template{Content: "%n=%v\n"}

	var out bytes.Buffer
	e := New(reg, st, []*output.Template{tpl}, &out)

	// U-2 (INTEGER), length 1, value 3, twice over, as two separate files.
	data := []byte{0x02, 0x01, 0x03}

	for i := 0; i < 2; i++ {
		p := e.NewFile([]io.Reader{bytes.NewReader(data)})
		require.NoError(t, p.Run())
		require.NoError(t, p.CheckPrematureEOF())
		assert.Equal(t, 1, e.Stack.Depth())
	}

	assert.Equal(t, "version=3\nversion=3\n", out.String())
}

func TestEngine_DefaultTemplateHandlesOutOfRangeIndex(t *testing.T) {
	reg, st := berStructure()
	st.PrintTemplate = registry.NoHandle

	e := New(reg, st, nil, &bytes.Buffer{})
	assert.Nil(t, e.DefaultTemplate())
}

func TestEngine_DefaultTemplateResolvesStructureTemplate(t *testing.T) {
	reg, st := berStructure()
	tpl := &output.Template{Content: "%n\n"}
	st.PrintTemplate = 0

	e := New(reg, st, []*output.Template{tpl}, &bytes.Buffer{})
	require.NotNil(t, e.DefaultTemplate())
	assert.True(t, strings.Contains(e.DefaultTemplate().Content, "%n"))
}

package nodegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingKeepsSourceOrder(t *testing.T) {
	var m Mapping
	m.add("ty", Target{Name: "a"})
	m.add("tx", Target{Name: "b"})
	m.add("ty", Target{Name: "c", Invert: true})

	assert.Equal(t, []string{"ty", "tx"}, m.Sources())
	assert.Equal(t, []Target{{Name: "a"}, {Name: "c", Invert: true}}, m.Targets("ty"))

	require.True(t, m.remove("tx", "b"))
	assert.Equal(t, []string{"ty"}, m.Sources())
	assert.False(t, m.remove("tx", "b"))
	assert.False(t, m.Contains("tx", "b"))
}

func TestMappingAccessorsCopy(t *testing.T) {
	var m Mapping
	m.add("tx", Target{Name: "tx"})

	targets := m.Targets("tx")
	targets[0].Invert = true
	invert, ok := m.Invert("tx", "tx")
	assert.True(t, ok)
	assert.False(t, invert)

	_, ok = m.Invert("tx", "missing")
	assert.False(t, ok)
}

func TestTemplate(t *testing.T) {
	tmpl := NewTemplate()
	assert.True(t, tmpl.Add("tx", "rx", false))
	assert.False(t, tmpl.Add("tx", "rx", true))

	assert.True(t, tmpl.ToggleInvert("tx", "rx"))
	assert.False(t, tmpl.SetInvert("tx", "rx", true))
	assert.True(t, tmpl.SetInvert("tx", "rx", false))
	assert.False(t, tmpl.ToggleInvert("ty", "rx"))

	m := tmpl.Mapping()
	assert.Equal(t, map[string][]Target{"tx": {{Name: "rx"}}}, m.Entries())

	assert.True(t, tmpl.Remove("tx", "rx"))
	assert.Zero(t, tmpl.Mapping().Len())
	assert.Equal(t, 1, m.Len())
}

func TestAttributeShortNames(t *testing.T) {
	tr := AttributeShortNames()
	assert.Equal(t, "tx", tr("Translate X"))
	assert.Equal(t, "rz", tr("Rotate Z"))
	assert.Equal(t, "v", tr("Visibility"))
	assert.Equal(t, "blendShape1", tr("blendShape1"))
	assert.Equal(t, "", tr(""))
}

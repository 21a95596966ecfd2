package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"nodegraph/internal/nodegraph"
)

func TestMappingYAMLKeepsSourceOrder(t *testing.T) {
	s, _ := twoNodeScene(t)
	text, err := mappingYAML(s.Connections())
	require.NoError(t, err)
	assert.Less(t, strings.Index(text, "source: tx"), strings.Index(text, "source: ty"))

	var entries []mappingEntry
	require.NoError(t, yaml.Unmarshal([]byte(text), &entries))
	assert.Equal(t, []mappingEntry{
		{Source: "tx", Targets: []nodegraph.Target{{Name: "tx"}}},
		{Source: "ty", Targets: []nodegraph.Target{{Name: "ty", Invert: true}}},
	}, entries)
}

func TestMappingYAMLEmpty(t *testing.T) {
	text, err := mappingYAML(nodegraph.Mapping{})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", text)
}

func TestCleanClipboardText(t *testing.T) {
	assert.Equal(t, "a\nb\nc", cleanClipboardText("\ufeffa\r\nb\rc"))
	assert.Equal(t, "plain", cleanClipboardText("plain"))
}

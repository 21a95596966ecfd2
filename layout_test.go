package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegraph/internal/nodegraph"
)

// chainScene wires a -> b -> c and leaves d unconnected below a.
func chainScene(t *testing.T) (*nodegraph.Scene, map[string]*nodegraph.Node) {
	t.Helper()
	s := emptyScene()
	nodes := make(map[string]*nodegraph.Node)
	for i, name := range []string{"a", "b", "c", "d"} {
		n, err := s.CreateNode(name, []string{"in"}, []string{"out"}, nodegraph.DefaultGeometry())
		require.NoError(t, err)
		require.NoError(t, s.SetNodePos(n.ID(), nodegraph.Point{X: float64(i * 37), Y: float64(i * 500)}))
		nodes[name] = n
	}
	link := func(from, to string) {
		_, ok := s.CreateEdge(
			nodegraph.SlotHandle{Node: nodes[from].ID(), Family: nodegraph.Output},
			nodegraph.SlotHandle{Node: nodes[to].ID(), Family: nodegraph.Input})
		require.True(t, ok)
	}
	link("a", "b")
	link("b", "c")
	return s, nodes
}

func TestNodeDepths(t *testing.T) {
	s, nodes := chainScene(t)
	depth := nodeDepths(s)
	assert.Equal(t, 0, depth[nodes["a"].ID()])
	assert.Equal(t, 1, depth[nodes["b"].ID()])
	assert.Equal(t, 2, depth[nodes["c"].ID()])
	assert.Equal(t, 0, depth[nodes["d"].ID()])
}

func TestNodeDepthsTakesLongestPath(t *testing.T) {
	s, nodes := chainScene(t)
	_, ok := s.CreateEdge(
		nodegraph.SlotHandle{Node: nodes["d"].ID(), Family: nodegraph.Output},
		nodegraph.SlotHandle{Node: nodes["a"].ID(), Family: nodegraph.Input})
	require.True(t, ok)

	depth := nodeDepths(s)
	assert.Equal(t, 3, depth[nodes["c"].ID()])
}

func TestArrangeColumns(t *testing.T) {
	s, nodes := chainScene(t)
	assert.Equal(t, 4, arrangeColumns(s))

	// Column 0 holds a above d: 130 + 30 + 130 centered on y = 0.
	assert.Equal(t, nodegraph.Point{X: 0, Y: -145}, nodes["a"].Pos())
	assert.Equal(t, nodegraph.Point{X: 0, Y: 15}, nodes["d"].Pos())
	assert.Equal(t, nodegraph.Point{X: 280, Y: -65}, nodes["b"].Pos())
	assert.Equal(t, nodegraph.Point{X: 560, Y: -65}, nodes["c"].Pos())
}

func TestArrangeColumnsSkipsPinned(t *testing.T) {
	s, nodes := chainScene(t)
	nodes["b"].SetMovable(false)
	before := nodes["b"].Pos()

	assert.Equal(t, 3, arrangeColumns(s))
	assert.Equal(t, before, nodes["b"].Pos())
	assert.Equal(t, nodegraph.Point{X: 560, Y: -65}, nodes["c"].Pos())
}

func TestArrangeColumnsEmptyScene(t *testing.T) {
	assert.Zero(t, arrangeColumns(emptyScene()))
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nodegraph/internal/nodegraph"
)

// twoNodeScene builds Source(tx, ty) -> Target(tx, ty) with both pairs wired
// and the second edge inverted.
func twoNodeScene(t *testing.T) (*nodegraph.Scene, *Canvas) {
	t.Helper()
	canvas := NewCanvas(defaultCellWidth, defaultCellHeight)
	s := newScene(defaultConfig(), canvas, zap.NewNop())

	src, err := s.CreateNode("Source", nil, []string{"tx", "ty"}, nodegraph.DefaultGeometry())
	require.NoError(t, err)
	require.NoError(t, s.SetNodePos(src.ID(), nodegraph.Point{X: -300}))
	dst, err := s.CreateNode("Target", []string{"tx", "ty"}, nil, nodegraph.DefaultGeometry())
	require.NoError(t, err)
	require.NoError(t, s.SetNodePos(dst.ID(), nodegraph.Point{X: 100}))

	for i := 0; i < 2; i++ {
		_, ok := s.CreateEdge(
			nodegraph.SlotHandle{Node: src.ID(), Family: nodegraph.Output, Index: i},
			nodegraph.SlotHandle{Node: dst.ID(), Family: nodegraph.Input, Index: i})
		require.True(t, ok)
	}
	e := s.Edges()[1]
	require.True(t, s.ToggleInvert(e.ID()))
	return s, canvas
}

func emptyScene() *nodegraph.Scene {
	return newScene(defaultConfig(), NewCanvas(defaultCellWidth, defaultCellHeight), zap.NewNop())
}

func TestDocumentRoundTripThroughFile(t *testing.T) {
	s, _ := twoNodeScene(t)
	d := snapshot(s)
	require.Len(t, d.Nodes, 2)
	require.Len(t, d.Edges, 2)
	require.NotNil(t, d.Target)
	assert.Equal(t, 1, *d.Target)
	assert.False(t, d.Pinned)

	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, saveDocument(path, d))
	loaded, err := loadDocument(path)
	require.NoError(t, err)

	restored := emptyScene()
	require.NoError(t, loaded.restore(restored))
	assert.Equal(t, d, snapshot(restored))

	edges := restored.Edges()
	assert.False(t, edges[0].Invert())
	assert.True(t, edges[1].Invert())
	assert.Equal(t, "Target", restored.TargetNode().Name())
	assert.False(t, restored.TargetPinned())
}

func TestDocumentKeepsPinnedTarget(t *testing.T) {
	s, _ := twoNodeScene(t)
	require.NoError(t, s.SetTargetNode(s.NodeByName("Source").ID()))

	d := snapshot(s)
	require.NotNil(t, d.Target)
	assert.Equal(t, 0, *d.Target)
	assert.True(t, d.Pinned)

	restored := emptyScene()
	require.NoError(t, d.restore(restored))
	assert.True(t, restored.TargetPinned())
	assert.Equal(t, "Source", restored.TargetNode().Name())
}

func TestDocumentRestoreKeepsFollowedTarget(t *testing.T) {
	s := emptyScene()
	a, err := s.CreateNode("A", nil, []string{"tx"}, nodegraph.DefaultGeometry())
	require.NoError(t, err)
	t1, err := s.CreateNode("T1", []string{"tx"}, nil, nodegraph.DefaultGeometry())
	require.NoError(t, err)
	t2, err := s.CreateNode("T2", []string{"tx"}, nil, nodegraph.DefaultGeometry())
	require.NoError(t, err)

	out := nodegraph.SlotHandle{Node: a.ID(), Family: nodegraph.Output}
	_, ok := s.CreateEdge(out, nodegraph.SlotHandle{Node: t1.ID(), Family: nodegraph.Input})
	require.True(t, ok)
	e, ok := s.CreateEdge(out, nodegraph.SlotHandle{Node: t2.ID(), Family: nodegraph.Input})
	require.True(t, ok)
	s.DeleteEdges([]nodegraph.EdgeID{e.ID()})
	require.Equal(t, "T2", s.TargetNode().Name())

	restored := emptyScene()
	require.NoError(t, snapshot(s).restore(restored))
	assert.Equal(t, "T2", restored.TargetNode().Name(), "the last edge does not pick the target")
	assert.False(t, restored.TargetPinned())

	require.NoError(t, s.DeleteNode(t2.ID()))
	d := snapshot(s)
	assert.Nil(t, d.Target)
	require.NoError(t, d.restore(restored))
	assert.Nil(t, restored.TargetNode(), "a scene without a target restores without one")
}

func TestDocumentRestoreReplacesScene(t *testing.T) {
	s, _ := twoNodeScene(t)
	d := snapshot(s)

	other := emptyScene()
	_, err := other.CreateNode("Stale", []string{"a"}, nil, nodegraph.DefaultGeometry())
	require.NoError(t, err)

	require.NoError(t, d.restore(other))
	assert.Nil(t, other.NodeByName("Stale"))
	assert.Len(t, other.Nodes(), 2)
	assert.Equal(t, 2, other.EdgeCount())
}

func TestDocumentMergeShiftsNodes(t *testing.T) {
	s, _ := twoNodeScene(t)
	d := snapshot(s)

	target := emptyScene()
	require.NoError(t, d.merge(target, nodegraph.Point{X: 10, Y: 20}))
	assert.Equal(t, nodegraph.Point{X: -290, Y: 20}, target.NodeByName("Source").Pos())
	assert.Equal(t, nodegraph.Point{X: 110, Y: 20}, target.NodeByName("Target").Pos())
	assert.Equal(t, 2, target.EdgeCount())
}

func TestDocumentReportsBrokenEdges(t *testing.T) {
	s, _ := twoNodeScene(t)
	d := snapshot(s)
	d.Edges = append(d.Edges, edgeDoc{Source: 7, Target: 1})

	restored := emptyScene()
	err := d.restore(restored)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 edges")
	assert.Len(t, restored.Nodes(), 2)
	assert.Equal(t, 2, restored.EdgeCount())
}

func TestDocumentCamera(t *testing.T) {
	s, _ := twoNodeScene(t)
	v := nodegraph.NewView(s, 800, 600, nodegraph.ViewOptions{Zoom: true, Movable: true})
	v.ScaleView(0.5, false)
	v.CenterOn(nodegraph.Point{X: 50, Y: 60})

	d := snapshotWithCamera(s, v)
	require.NotNil(t, d.Camera)

	other := nodegraph.NewView(emptyScene(), 800, 600, nodegraph.ViewOptions{})
	d.applyCamera(other)
	assert.InDelta(t, 0.5, other.Scale(), 1e-9)
	center := other.VisibleRect().Center()
	assert.InDelta(t, 50, center.X, 1e-9)
	assert.InDelta(t, 60, center.Y, 1e-9)
}

func TestLoadDocumentRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes: [unterminated"), 0o644))
	_, err := loadDocument(path)
	assert.Error(t, err)
}

func TestDocumentCenter(t *testing.T) {
	d := document{Nodes: []nodeDoc{
		{X: 0, Y: 0, Width: 160, Height: 130},
		{X: 200, Y: 0, Width: 160, Height: 130},
	}}
	assert.Equal(t, nodegraph.Point{X: 180, Y: 65}, d.center())
}

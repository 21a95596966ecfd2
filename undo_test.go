package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nodegraph/internal/nodegraph"
)

func TestUndoRedoRestoresGraph(t *testing.T) {
	m := initialModel(defaultConfig(), zap.NewNop())
	s := m.buffer.scene
	src, dst := addPair(t, s)

	m.beginChange()
	_, ok := s.CreateEdge(
		nodegraph.SlotHandle{Node: src.ID(), Family: nodegraph.Output},
		nodegraph.SlotHandle{Node: dst.ID(), Family: nodegraph.Input})
	require.True(t, ok)
	m.commitChange(ActionConnect)
	require.Len(t, m.buffer.undoStack, 1)

	m.undo()
	assert.Zero(t, m.buffer.scene.EdgeCount())
	assert.Len(t, m.buffer.scene.Nodes(), 2)
	assert.Equal(t, "Undid connect", m.successMessage)

	m.redo()
	assert.Equal(t, 1, m.buffer.scene.EdgeCount())
	assert.Empty(t, m.buffer.redoStack)
}

func TestUndoMoveKeepsTarget(t *testing.T) {
	m := initialModel(defaultConfig(), zap.NewNop())
	s := m.buffer.scene
	src, dst := addPair(t, s)
	other, err := s.CreateNode("Other", []string{"tx"}, nil, nodegraph.DefaultGeometry())
	require.NoError(t, err)

	out := nodegraph.SlotHandle{Node: src.ID(), Family: nodegraph.Output}
	_, ok := s.CreateEdge(out, nodegraph.SlotHandle{Node: other.ID(), Family: nodegraph.Input})
	require.True(t, ok)
	e, ok := s.CreateEdge(out, nodegraph.SlotHandle{Node: dst.ID(), Family: nodegraph.Input})
	require.True(t, ok)
	s.DeleteEdges([]nodegraph.EdgeID{e.ID()})
	require.Equal(t, "Target", s.TargetNode().Name())

	m.beginChange()
	require.NoError(t, s.SetNodePos(src.ID(), nodegraph.Point{X: -200}))
	m.commitChange(ActionMove)

	m.undo()
	require.NotNil(t, m.buffer.scene.TargetNode())
	assert.Equal(t, "Target", m.buffer.scene.TargetNode().Name())
	assert.False(t, m.buffer.scene.TargetPinned())
}

func TestCommitWithoutChangeRecordsNothing(t *testing.T) {
	m := initialModel(defaultConfig(), zap.NewNop())
	addPair(t, m.buffer.scene)

	m.beginChange()
	m.commitChange(ActionMove)
	assert.Empty(t, m.buffer.undoStack)
	assert.False(t, m.buffer.modified)
	assert.Nil(t, m.pending)
}

func TestBeginChangeKeepsFirstSnapshot(t *testing.T) {
	m := initialModel(defaultConfig(), zap.NewNop())
	s := m.buffer.scene

	m.beginChange()
	_, err := s.CreateNode("a", nil, nil, nodegraph.DefaultGeometry())
	require.NoError(t, err)
	m.beginChange()
	m.commitGesture()

	require.Len(t, m.buffer.undoStack, 1)
	assert.Empty(t, m.buffer.undoStack[0].Inverse.Nodes)
}

func TestNewChangeClearsRedo(t *testing.T) {
	m := initialModel(defaultConfig(), zap.NewNop())
	s := m.buffer.scene

	for _, name := range []string{"a", "b"} {
		m.beginChange()
		_, err := s.CreateNode(name, nil, nil, nodegraph.DefaultGeometry())
		require.NoError(t, err)
		m.commitChange(ActionAddNode)
	}
	m.undo()
	require.Len(t, m.buffer.redoStack, 1)

	m.beginChange()
	_, err := m.buffer.scene.CreateNode("c", nil, nil, nodegraph.DefaultGeometry())
	require.NoError(t, err)
	m.commitChange(ActionAddNode)
	assert.Empty(t, m.buffer.redoStack)
	assert.Len(t, m.buffer.undoStack, 2)
}

func TestUndoStackIsCapped(t *testing.T) {
	m := initialModel(defaultConfig(), zap.NewNop())
	n, err := m.buffer.scene.CreateNode("a", nil, nil, nodegraph.DefaultGeometry())
	require.NoError(t, err)

	for i := 1; i <= maxUndo+5; i++ {
		m.beginChange()
		require.NoError(t, m.buffer.scene.SetNodePos(n.ID(), nodegraph.Point{X: float64(i)}))
		m.commitChange(ActionMove)
	}
	require.Len(t, m.buffer.undoStack, maxUndo)
	assert.Equal(t, 6.0, m.buffer.undoStack[0].Data.Nodes[0].X, "the oldest edits fall off")
}

func TestUndoOnEmptyStack(t *testing.T) {
	m := initialModel(defaultConfig(), zap.NewNop())
	m.undo()
	assert.Equal(t, "Nothing to undo", m.errorMessage)
	m.redo()
	assert.Equal(t, "Nothing to redo", m.errorMessage)
}

func TestClassifyChange(t *testing.T) {
	node := func(name string, x, h float64) nodeDoc {
		return nodeDoc{Name: name, X: x, Width: 160, Height: h}
	}
	base := document{
		Nodes: []nodeDoc{node("a", 0, 130), node("b", 300, 130)},
		Edges: []edgeDoc{{Source: 0, Target: 1}},
	}
	with := func(edit func(d *document)) document {
		d := document{
			Nodes: append([]nodeDoc(nil), base.Nodes...),
			Edges: append([]edgeDoc(nil), base.Edges...),
		}
		edit(&d)
		return d
	}

	tests := []struct {
		name  string
		after document
		want  ActionType
	}{
		{"node added", with(func(d *document) { d.Nodes = append(d.Nodes, node("c", 0, 130)) }), ActionAddNode},
		{"node removed", with(func(d *document) { d.Nodes = d.Nodes[:1]; d.Edges = nil }), ActionDeleteSelection},
		{"edge removed", with(func(d *document) { d.Edges = nil }), ActionConnect},
		{"edge rewired", with(func(d *document) { d.Edges[0].Input = 1 }), ActionConnect},
		{"edge inverted", with(func(d *document) { d.Edges[0].Invert = true }), ActionInvert},
		{"renamed", with(func(d *document) { d.Nodes[1].Name = "z" }), ActionRename},
		{"taller", with(func(d *document) { d.Nodes[0].Height = 140 }), ActionResize},
		{"moved", with(func(d *document) { d.Nodes[0].X = 20 }), ActionMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyChange(base, tt.after))
		})
	}
}

package main

import (
	"reflect"

	"go.uber.org/zap"
)

// beginChange remembers the graph before an edit. A second call before
// commitChange keeps the first snapshot.
func (m *model) beginChange() {
	if m.pending != nil {
		return
	}
	d := snapshot(m.buffer.scene)
	m.pending = &d
}

// commitChange records the edit started by beginChange if the graph actually
// changed.
func (m *model) commitChange(actionType ActionType) {
	m.commit(func(document, document) ActionType { return actionType })
}

// commitGesture is commitChange for pointer gestures, where the kind of edit
// is only known from the result.
func (m *model) commitGesture() {
	m.commit(classifyChange)
}

func (m *model) commit(name func(before, after document) ActionType) {
	if m.pending == nil {
		return
	}
	before := *m.pending
	m.pending = nil

	after := snapshot(m.buffer.scene)
	if reflect.DeepEqual(before, after) {
		return
	}
	m.recordAction(name(before, after), after, before)
}

func (m *model) recordAction(actionType ActionType, data, inverse document) {
	buf := &m.buffer
	buf.undoStack = append(buf.undoStack, Action{
		Type:    actionType,
		Data:    data,
		Inverse: inverse,
	})
	if len(buf.undoStack) > maxUndo {
		buf.undoStack = buf.undoStack[len(buf.undoStack)-maxUndo:]
	}
	buf.redoStack = buf.redoStack[:0]
	buf.modified = true
	m.log.Debug("action recorded", zap.Stringer("action", actionType), zap.Int("depth", len(buf.undoStack)))
}

func (m *model) undo() {
	buf := &m.buffer
	if len(buf.undoStack) == 0 {
		m.errorMessage = "Nothing to undo"
		return
	}

	lastIndex := len(buf.undoStack) - 1
	action := buf.undoStack[lastIndex]
	buf.undoStack = buf.undoStack[:lastIndex]

	if err := action.Inverse.restore(buf.scene); err != nil {
		m.errorMessage = err.Error()
	}
	buf.redoStack = append(buf.redoStack, action)
	buf.modified = true
	m.successMessage = "Undid " + action.Type.String()
}

func (m *model) redo() {
	buf := &m.buffer
	if len(buf.redoStack) == 0 {
		m.errorMessage = "Nothing to redo"
		return
	}

	lastIndex := len(buf.redoStack) - 1
	action := buf.redoStack[lastIndex]
	buf.redoStack = buf.redoStack[:lastIndex]

	if err := action.Data.restore(buf.scene); err != nil {
		m.errorMessage = err.Error()
	}
	buf.undoStack = append(buf.undoStack, action)
	buf.modified = true
	m.successMessage = "Redid " + action.Type.String()
}

// classifyChange names an edit for the status line from what differs between
// the two graphs.
func classifyChange(before, after document) ActionType {
	switch {
	case len(after.Nodes) > len(before.Nodes):
		return ActionAddNode
	case len(after.Nodes) < len(before.Nodes):
		return ActionDeleteSelection
	case len(after.Edges) != len(before.Edges):
		return ActionConnect
	}
	for i := range after.Edges {
		a, b := before.Edges[i], after.Edges[i]
		if a.Invert != b.Invert {
			a.Invert = b.Invert
			if a == b {
				return ActionInvert
			}
		}
		if a != b {
			return ActionConnect
		}
	}
	for i := range after.Nodes {
		a, b := before.Nodes[i], after.Nodes[i]
		switch {
		case a.Name != b.Name:
			return ActionRename
		case a.Height != b.Height || a.Width != b.Width:
			return ActionResize
		}
	}
	return ActionMove
}

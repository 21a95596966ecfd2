package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"nodegraph/internal/nodegraph"
)

func (m *model) handleNavigation(msg tea.KeyMsg) {
	dx, dy := m.direction(msg)
	speed := m.getMoveSpeed(msg.String())
	if m.panMode {
		m.handlePan(dx*speed, dy*speed)
		return
	}
	m.handleCursorMove(dx*speed, dy*speed)
}

func (m *model) direction(msg tea.KeyMsg) (int, int) {
	switch {
	case key.Matches(msg, m.keys.Left):
		return -1, 0
	case key.Matches(msg, m.keys.Right):
		return 1, 0
	case key.Matches(msg, m.keys.Up):
		return 0, -1
	case key.Matches(msg, m.keys.Down):
		return 0, 1
	}
	return 0, 0
}

// handlePan scrolls the view by whole pan steps of cells. The scene moves
// opposite to the key so the camera appears to travel in its direction.
func (m *model) handlePan(dx, dy int) {
	buf := &m.buffer
	cw, ch := m.config.CellWidth, m.config.CellHeight
	scale := buf.view.Scale()
	buf.view.TranslateView(nodegraph.Point{
		X: float64(dx*panStep) * cw / scale,
		Y: float64(dy*panStep) * ch / scale,
	})
	buf.canvas.RequestRedraw()
	m.pointerMoved()
}

func (m *model) handleCursorMove(dx, dy int) {
	m.cursorX += dx
	m.cursorY += dy
	m.ensureCursorInBounds()
	m.pointerMoved()
}

func (m *model) ensureCursorInBounds() {
	maxX, maxY := m.width-1, m.canvasRows()-1
	if m.cursorX > maxX {
		m.cursorX = maxX
	}
	if m.cursorY > maxY {
		m.cursorY = maxY
	}
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
}

// pointerMoved reports the keyboard cursor to the view as hover motion so
// slot highlighting and node creation follow it.
func (m *model) pointerMoved() {
	buf := &m.buffer
	buf.view.Move(nodegraph.PointerEvent{Pos: buf.canvas.CellToView(m.cursorX, m.cursorY)})
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

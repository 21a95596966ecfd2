package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegraph/internal/nodegraph"
)

func testView(s *nodegraph.Scene) *nodegraph.View {
	return nodegraph.NewView(s, 80*defaultCellWidth, 24*defaultCellHeight, nodegraph.ViewOptions{Zoom: true, Movable: true})
}

func TestCanvasRendersNodesAndEdges(t *testing.T) {
	s, canvas := twoNodeScene(t)
	rows := canvas.Render(testView(s), 80, 24, false)
	require.Len(t, rows, 24)
	for i, row := range rows {
		assert.Equal(t, 80, utf8.RuneCountInString(row), "row %d", i)
	}

	text := strings.Join(rows, "\n")
	assert.Contains(t, text, "Source")
	assert.Contains(t, text, "Target")
	assert.Equal(t, 4, strings.Count(text, "●"), "every wired slot is drawn active")
	assert.Contains(t, text, "·")
}

func TestCanvasMarksSelectedNode(t *testing.T) {
	s, canvas := twoNodeScene(t)
	s.SetSelected(s.NodeByName("Source"), true)
	text := strings.Join(canvas.Render(testView(s), 80, 24, false), "\n")
	assert.Contains(t, text, "####")
}

func TestCanvasShowsIdleSlots(t *testing.T) {
	canvas := NewCanvas(defaultCellWidth, defaultCellHeight)
	s := newScene(defaultConfig(), canvas, nil)
	_, err := s.CreateNode("Lonely", []string{"in"}, []string{"out"}, nodegraph.DefaultGeometry())
	require.NoError(t, err)

	// The node spans cells 40..60 and both slots sit on row 17, on the frame.
	rows := canvas.Render(testView(s), 80, 24, false)
	row := []rune(rows[17])
	assert.Equal(t, "o", string(row[40]))
	assert.Equal(t, "o", string(row[60]))
	assert.NotContains(t, strings.Join(rows, "\n"), "●")
}

func TestCanvasCachesUntilChanged(t *testing.T) {
	s, canvas := twoNodeScene(t)
	v := testView(s)

	first := canvas.Render(v, 80, 24, false)
	assert.False(t, canvas.dirty)
	second := canvas.Render(v, 80, 24, false)
	assert.Same(t, &first[0], &second[0], "unchanged scene reuses the cached rows")

	require.NoError(t, s.SetNodePos(s.NodeByName("Source").ID(), nodegraph.Point{X: -250}))
	assert.True(t, canvas.dirty)
	third := canvas.Render(v, 80, 24, false)
	assert.NotEqual(t, first, third)

	v.TranslateView(nodegraph.Point{X: 40})
	fourth := canvas.Render(v, 80, 24, false)
	assert.NotEqual(t, third, fourth, "a moved camera renders again")
}

func TestCanvasCountsItems(t *testing.T) {
	s, canvas := twoNodeScene(t)
	assert.Equal(t, 4, canvas.Items())

	require.NoError(t, s.DeleteNode(s.NodeByName("Source").ID()))
	assert.Equal(t, 1, canvas.Items())
}

func TestCellToView(t *testing.T) {
	canvas := NewCanvas(8, 16)
	assert.Equal(t, nodegraph.Point{X: 4, Y: 8}, canvas.CellToView(0, 0))
	x, y := canvas.viewToCell(canvas.CellToView(7, 3))
	assert.Equal(t, 7, x)
	assert.Equal(t, 3, y)
	x, y = canvas.viewToCell(nodegraph.Point{X: -1, Y: -1})
	assert.Equal(t, -1, x)
	assert.Equal(t, -1, y)
}

func TestArrowGlyph(t *testing.T) {
	tests := []struct {
		d    nodegraph.Point
		want rune
	}{
		{nodegraph.Point{X: 5, Y: 1}, '>'},
		{nodegraph.Point{X: -5, Y: 1}, '<'},
		{nodegraph.Point{X: 1, Y: 5}, 'v'},
		{nodegraph.Point{X: 1, Y: -5}, '^'},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(arrowGlyph(tt.d)), "%v", tt.d)
	}
}

func TestGridLine(t *testing.T) {
	g := newGrid(6, 4)
	g.line(0, 0, 5, 3, '*', styleEdge)
	rows := g.rows(false)
	assert.Equal(t, '*', []rune(rows[0])[0])
	assert.Equal(t, '*', []rune(rows[3])[5])

	count := strings.Count(strings.Join(rows, ""), "*")
	assert.Equal(t, 6, count, "one cell per column for a shallow line")
}

func TestGridClipsOutOfRange(t *testing.T) {
	g := newGrid(3, 2)
	g.line(-10, -10, 10, 10, '*', styleEdge)
	g.text(1, 1, "long label", 3, styleLabel)
	rows := g.rows(false)
	assert.Len(t, rows, 2)
	assert.Equal(t, 3, utf8.RuneCountInString(rows[0]))
	assert.Equal(t, "lo", string([]rune(rows[1])[1:]))
}

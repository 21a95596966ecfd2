package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nodegraph/internal/nodegraph"
)

type cellStyle int

const (
	styleNone cellStyle = iota
	styleEdge
	styleEdgeInverted
	styleEdgeSelected
	styleInteractive
	styleNode
	styleNodeSelected
	styleTarget
	styleLabel
	styleSlot
	styleSlotActive
	styleSlotHover
	styleBand
)

var cellStyles = map[cellStyle]lipgloss.Style{
	styleEdge:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	styleEdgeInverted: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	styleEdgeSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
	styleInteractive:  lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
	styleNode:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	styleNodeSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
	styleTarget:       lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	styleLabel:        lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	styleSlot:         lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
	styleSlotActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	styleSlotHover:    lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("51")),
	styleBand:         lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
}

// Canvas is the terminal surface of the editor. The scene reports item
// changes and redraw requests to it and Render rasterizes the visible part of
// the scene into rows of cells.
type Canvas struct {
	cellW float64
	cellH float64
	items int
	dirty bool

	cache    []string
	cacheKey renderKey
}

type renderKey struct {
	width, height int
	styled        bool
	visible       nodegraph.Rect
}

func NewCanvas(cellW, cellH float64) *Canvas {
	return &Canvas{cellW: cellW, cellH: cellH, dirty: true}
}

func (c *Canvas) ItemAdded(nodegraph.Item) {
	c.items++
	c.dirty = true
}

func (c *Canvas) ItemRemoved(nodegraph.Item) {
	c.items--
	c.dirty = true
}

func (c *Canvas) RequestRedraw() { c.dirty = true }

// Items is the number of nodes and edges currently in the scene.
func (c *Canvas) Items() int { return c.items }

// CellToView converts a terminal cell to viewport units, aiming at the
// middle of the cell.
func (c *Canvas) CellToView(x, y int) nodegraph.Point {
	return nodegraph.Point{X: (float64(x) + 0.5) * c.cellW, Y: (float64(y) + 0.5) * c.cellH}
}

func (c *Canvas) viewToCell(p nodegraph.Point) (int, int) {
	return int(math.Floor(p.X / c.cellW)), int(math.Floor(p.Y / c.cellH))
}

// Render draws the scene seen through v into width x height cells. With
// styled unset the rows are plain text.
func (c *Canvas) Render(v *nodegraph.View, width, height int, styled bool) []string {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	key := renderKey{width, height, styled, v.VisibleRect()}
	if !c.dirty && c.cache != nil && key == c.cacheKey {
		return c.cache
	}

	g := newGrid(width, height)
	toCell := func(p nodegraph.Point) (int, int) {
		return c.viewToCell(v.MapFromScene(p))
	}
	s := v.Scene()

	for _, e := range s.Edges() {
		st := styleEdge
		switch {
		case e.IsSelected():
			st = styleEdgeSelected
		case e.Invert():
			st = styleEdgeInverted
		}
		c.drawPath(g, e.Path(), toCell, st)
	}
	if ie := s.InteractiveEdge(); ie != nil {
		c.drawPath(g, ie.Path(), toCell, styleInteractive)
	}

	target := s.TargetNode()
	for _, n := range s.Nodes() {
		c.drawNode(g, n, n == target, toCell)
	}

	if rb := s.RubberBand(); rb != nil {
		r := rb.Rect()
		x0, y0 := toCell(nodegraph.Point{X: r.Left(), Y: r.Top()})
		x1, y1 := toCell(nodegraph.Point{X: r.Right(), Y: r.Bottom()})
		g.frame(x0, y0, x1, y1, '.', '.', '.', styleBand)
	}

	c.cache = g.rows(styled)
	c.cacheKey = key
	c.dirty = false
	return c.cache
}

func (c *Canvas) drawPath(g *grid, p nodegraph.Path, toCell func(nodegraph.Point) (int, int), st cellStyle) {
	for i := 0; i+1 < len(p.Samples); i++ {
		x0, y0 := toCell(p.Samples[i])
		x1, y1 := toCell(p.Samples[i+1])
		g.line(x0, y0, x1, y1, '·', st)
	}
	tip := p.Arrow[0]
	base := nodegraph.Point{X: (p.Arrow[1].X + p.Arrow[2].X) / 2, Y: (p.Arrow[1].Y + p.Arrow[2].Y) / 2}
	x, y := toCell(tip)
	g.set(x, y, arrowGlyph(tip.Sub(base)), st)
}

func arrowGlyph(d nodegraph.Point) rune {
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X < 0 {
			return '<'
		}
		return '>'
	}
	if d.Y < 0 {
		return '^'
	}
	return 'v'
}

func (c *Canvas) drawNode(g *grid, n *nodegraph.Node, target bool, toCell func(nodegraph.Point) (int, int)) {
	pos := n.Pos()
	x0, y0 := toCell(pos)
	x1, y1 := toCell(nodegraph.Point{X: pos.X + n.Width(), Y: pos.Y + n.Height()})

	corner, horizontal, vertical := '+', '-', '|'
	st := styleNode
	switch {
	case n.IsSelected():
		corner, horizontal, vertical = '#', '#', '#'
		st = styleNodeSelected
	case target:
		st = styleTarget
	}
	g.fill(x0, y0, x1, y1)
	g.frame(x0, y0, x1, y1, corner, horizontal, vertical, st)

	labelY := y0 + 1
	if labelY >= y1 {
		labelY = y0
	}
	g.text(x0+2, labelY, n.Name(), x1-1, styleLabel)

	hovered, hovering := n.HoveredSlot()
	for _, list := range [][]*nodegraph.Slot{n.Inputs(), n.Outputs()} {
		for _, slot := range list {
			if slot.IsSpacer() {
				continue
			}
			cx, cy := toCell(n.SlotCenter(slot.Ref()))
			glyph, sst := 'o', styleSlot
			if slot.Active() {
				glyph, sst = '●', styleSlotActive
			}
			if hovering && hovered == slot.Ref() {
				sst = styleSlotHover
			}
			g.set(cx, cy, glyph, sst)

			name := slot.Name()
			if slot.Family() == nodegraph.Input {
				g.text(cx+2, cy, name, x1-1, styleNode)
			} else {
				runes := []rune(name)
				start := cx - 1 - len(runes)
				if skip := x0 + 1 - start; skip > 0 {
					if skip >= len(runes) {
						continue
					}
					name = string(runes[skip:])
					start = x0 + 1
				}
				g.text(start, cy, name, cx-1, styleNode)
			}
		}
	}
}

type grid struct {
	w, h  int
	runes [][]rune
	style [][]cellStyle
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h}
	g.runes = make([][]rune, h)
	g.style = make([][]cellStyle, h)
	for y := range g.runes {
		g.runes[y] = []rune(strings.Repeat(" ", w))
		g.style[y] = make([]cellStyle, w)
	}
	return g
}

func (g *grid) set(x, y int, r rune, st cellStyle) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.runes[y][x] = r
	g.style[y][x] = st
}

// text writes s from x, stopping before maxX.
func (g *grid) text(x, y int, s string, maxX int, st cellStyle) {
	for _, r := range s {
		if x >= maxX {
			return
		}
		g.set(x, y, r, st)
		x++
	}
}

func (g *grid) fill(x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			g.set(x, y, ' ', styleNone)
		}
	}
}

func (g *grid) frame(x0, y0, x1, y1 int, corner, horizontal, vertical rune, st cellStyle) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for x := x0; x <= x1; x++ {
		g.set(x, y0, horizontal, st)
		g.set(x, y1, horizontal, st)
	}
	for y := y0; y <= y1; y++ {
		g.set(x0, y, vertical, st)
		g.set(x1, y, vertical, st)
	}
	g.set(x0, y0, corner, st)
	g.set(x1, y0, corner, st)
	g.set(x0, y1, corner, st)
	g.set(x1, y1, corner, st)
}

// line rasterizes a segment with Bresenham's algorithm.
func (g *grid) line(x0, y0, x1, y1 int, r rune, st cellStyle) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for steps := 0; steps <= g.w+g.h+dx-dy; steps++ {
		g.set(x0, y0, r, st)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// rows joins each row, switching styles only where they change.
func (g *grid) rows(styled bool) []string {
	out := make([]string, g.h)
	for y := range g.runes {
		if !styled {
			out[y] = string(g.runes[y])
			continue
		}
		var b strings.Builder
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.style[y][x] == g.style[y][start] {
				continue
			}
			run := string(g.runes[y][start:x])
			if st, ok := cellStyles[g.style[y][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = x
		}
		out[y] = b.String()
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package nodegraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeDefaultLayout(t *testing.T) {
	n, err := newNode("node", []string{"in"}, []string{"out"}, DefaultGeometry())
	require.NoError(t, err)

	assert.Equal(t, 130.0, n.Height())
	assert.Equal(t, Rect{150, 72, 20, 20}, n.Outputs()[0].Rect())
	assert.Equal(t, Rect{-10, 72, 20, 20}, n.Inputs()[0].Rect())
	assert.Equal(t, Rect{-13, -3, 186, 136}, n.BoundingRect())
	assert.Equal(t, Point{160, 82}, n.SlotCenter(SlotRef{Output, 0}))
}

func TestNodeRelayoutIsIdempotent(t *testing.T) {
	n, err := newNode("node", []string{"a", "", "b"}, []string{"x", "y"}, DefaultGeometry())
	require.NoError(t, err)

	before := snapshotLayout(n)
	n.Relayout()
	n.Relayout()
	assert.Equal(t, before, snapshotLayout(n))
}

func snapshotLayout(n *Node) []Rect {
	rects := []Rect{n.BoundingRect()}
	for _, s := range n.Inputs() {
		rects = append(rects, s.Rect(), s.HitRect())
	}
	for _, s := range n.Outputs() {
		rects = append(rects, s.Rect(), s.HitRect())
	}
	return rects
}

func TestNodeSpacerContractsCursor(t *testing.T) {
	n, err := newNode("node", nil, []string{"tx", "", "ty"}, DefaultGeometry())
	require.NoError(t, err)

	out := n.Outputs()
	assert.Equal(t, 52.5, out[0].Rect().Y)
	assert.True(t, out[1].Rect().IsEmpty())
	assert.Equal(t, 78.5, out[1].Rect().Y)
	assert.Equal(t, 91.5, out[2].Rect().Y)
}

func TestNodeSpacerNeverHit(t *testing.T) {
	n, err := newNode("node", []string{"", "in"}, []string{"tx", "", "ty"}, DefaultGeometry())
	require.NoError(t, err)

	bbox := n.BoundingRect()
	for x := bbox.Left(); x <= bbox.Right(); x += 0.5 {
		for y := bbox.Top(); y <= bbox.Bottom(); y += 0.5 {
			ref, ok := n.SlotAt(Point{x, y})
			if !ok {
				continue
			}
			require.False(t, n.Slot(ref).IsSpacer(), "spacer hit at %v,%v", x, y)
		}
	}
}

func TestNodeSlotHitIncludesLabel(t *testing.T) {
	n, err := newNode("node", []string{"in"}, []string{"out"}, DefaultGeometry())
	require.NoError(t, err)

	ref, ok := n.SlotAt(Point{100, 82})
	require.True(t, ok)
	assert.Equal(t, SlotRef{Output, 0}, ref)

	ref, ok = n.SlotAt(Point{50, 82})
	require.True(t, ok)
	assert.Equal(t, SlotRef{Input, 0}, ref)

	_, ok = n.SlotAt(Point{80, 20})
	assert.False(t, ok)
}

func TestNodeHeightGrowsWithSlots(t *testing.T) {
	inputs := make([]string, 10)
	for i := range inputs {
		inputs[i] = string(rune('a' + i))
	}
	n, err := newNode("tall", inputs, nil, DefaultGeometry())
	require.NoError(t, err)

	assert.Equal(t, 312.0, n.Height())
	first := n.Inputs()[0].Rect()
	last := n.Inputs()[9].Rect()
	assert.GreaterOrEqual(t, first.Y, n.Geometry().LabelHeight)
	assert.LessOrEqual(t, last.Bottom(), n.Height())
}

func TestNodeEmptySides(t *testing.T) {
	n, err := newNode("bare", nil, nil, DefaultGeometry())
	require.NoError(t, err)

	assert.Empty(t, n.Inputs())
	assert.Empty(t, n.Outputs())
	assert.Equal(t, 130.0, n.Height())
	_, ok := n.SlotAt(Point{80, 80})
	assert.False(t, ok)
}

func TestNodeRejectsDegenerateGeometry(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Geometry)
	}{
		{"zero width", func(g *Geometry) { g.Width = 0 }},
		{"negative width", func(g *Geometry) { g.Width = -5 }},
		{"zero radius", func(g *Geometry) { g.SlotRadius = 0 }},
		{"negative outline", func(g *Geometry) { g.Outline = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGeometry()
			tt.edit(&g)
			_, err := newNode("bad", nil, nil, g)
			assert.True(t, errors.Is(err, ErrInvalidGeometry))
		})
	}
}

func TestNodeHover(t *testing.T) {
	n, err := newNode("node", []string{"in"}, []string{"out"}, DefaultGeometry())
	require.NoError(t, err)

	assert.True(t, n.setHover(SlotRef{Output, 0}, true))
	assert.False(t, n.setHover(SlotRef{Output, 0}, true))
	ref, ok := n.HoveredSlot()
	assert.True(t, ok)
	assert.Equal(t, SlotRef{Output, 0}, ref)
	assert.True(t, n.setHover(SlotRef{}, false))
	assert.False(t, n.setHover(SlotRef{Input, 0}, false))
}

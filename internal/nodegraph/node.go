package nodegraph

import (
	"errors"
	"fmt"
	"math"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrInvalidGeometry = errors.New("invalid node geometry")

var validate = validator.New()

// spacerFraction is the share of a slot pitch a spacer slot occupies.
const spacerFraction = 0.5

// Geometry holds the layout parameters of a node. Height is the declared
// minimum height; the laid out height grows to fit the slots.
type Geometry struct {
	Width       float64 `validate:"gt=0"`
	Height      float64 `validate:"gte=0"`
	Outline     float64 `validate:"gte=0"`
	SlotRadius  float64 `validate:"gt=0"`
	LabelHeight float64 `validate:"gte=0"`
}

func DefaultGeometry() Geometry {
	return Geometry{
		Width:       160,
		Height:      130,
		Outline:     6,
		SlotRadius:  10,
		LabelHeight: 34,
	}
}

func (g Geometry) Validate() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	return nil
}

// Node is a box with ordered input slots on its left side and ordered output
// slots on its right side. Local coordinates have their origin at the top-left
// corner of the body.
type Node struct {
	id         NodeID
	name       string
	inputs     []*Slot
	outputs    []*Slot
	geom       Geometry
	height     float64
	pos        Point
	bbox       Rect
	hover      SlotRef
	hovered    bool
	selected   bool
	selectable bool
	movable    bool
}

func newNode(name string, inputs, outputs []string, geom Geometry) (*Node, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	n := &Node{
		id:         uuid.New(),
		name:       name,
		geom:       geom,
		selectable: true,
		movable:    true,
	}
	n.setSlots(inputs, outputs)
	return n, nil
}

func (n *Node) setSlots(inputs, outputs []string) {
	n.inputs = make([]*Slot, len(inputs))
	for i, name := range inputs {
		n.inputs[i] = newSlot(n.id, name, Input, i)
	}
	n.outputs = make([]*Slot, len(outputs))
	for i, name := range outputs {
		n.outputs[i] = newSlot(n.id, name, Output, i)
	}
	n.hovered = false
	n.Relayout()
}

func (n *Node) ID() NodeID           { return n.id }
func (n *Node) Name() string         { return n.name }
func (n *Node) Inputs() []*Slot      { return n.inputs }
func (n *Node) Outputs() []*Slot     { return n.outputs }
func (n *Node) Geometry() Geometry   { return n.geom }
func (n *Node) Width() float64       { return n.geom.Width }
func (n *Node) Height() float64      { return n.height }
func (n *Node) Pos() Point           { return n.pos }
func (n *Node) IsSelected() bool     { return n.selected }
func (n *Node) IsSelectable() bool   { return n.selectable }
func (n *Node) IsMovable() bool      { return n.movable }
func (n *Node) SetMovable(v bool)    { n.movable = v }
func (n *Node) SetSelectable(v bool) { n.selectable = v }

// BoundingRect is the node extent in local coordinates, slots included.
func (n *Node) BoundingRect() Rect { return n.bbox }

func (n *Node) SceneRect() Rect {
	return n.bbox.Translated(n.pos.X, n.pos.Y)
}

// LabelRect is the title band in local coordinates.
func (n *Node) LabelRect() Rect {
	o := n.geom.Outline
	return Rect{o / 2, o / 2, n.geom.Width - o, n.geom.LabelHeight - o/2}
}

func (n *Node) slots(f Family) []*Slot {
	if f == Output {
		return n.outputs
	}
	return n.inputs
}

// Slot returns nil when ref is out of range.
func (n *Node) Slot(ref SlotRef) *Slot {
	list := n.slots(ref.Family)
	if ref.Index < 0 || ref.Index >= len(list) {
		return nil
	}
	return list[ref.Index]
}

func (n *Node) SlotByName(f Family, name string) *Slot {
	if name == "" {
		return nil
	}
	for _, s := range n.slots(f) {
		if s.name == name {
			return s
		}
	}
	return nil
}

// SlotCenter returns the center of a slot in scene coordinates.
func (n *Node) SlotCenter(ref SlotRef) Point {
	s := n.Slot(ref)
	if s == nil {
		return n.pos
	}
	return s.rect.Center().Add(n.pos)
}

// Relayout recomputes every slot rectangle, the node height and the bounding
// box from the current slot lists and geometry. It is idempotent.
func (n *Node) Relayout() {
	g := n.geom
	d := g.SlotRadius * 2
	pitch := d + g.Outline

	inExtent := sideExtent(n.inputs, pitch)
	outExtent := sideExtent(n.outputs, pitch)
	content := math.Max(inExtent, outExtent) + g.LabelHeight + 3*g.Outline
	n.height = math.Max(g.Height, content)

	base := n.height/2 + g.LabelHeight/2 + g.Outline/2
	labelWidth := math.Max(0, g.Width/2-g.SlotRadius-g.Outline)

	layoutSide(n.outputs, g.Width-g.SlotRadius, base-outExtent/2, d, pitch, func(r Rect) Rect {
		return Rect{r.X - labelWidth, r.Y, r.W + labelWidth, r.H}
	})
	layoutSide(n.inputs, -g.SlotRadius, base-inExtent/2, d, pitch, func(r Rect) Rect {
		return Rect{r.X, r.Y, r.W + labelWidth, r.H}
	})

	n.bbox = Rect{
		X: -g.Outline/2 - g.SlotRadius,
		Y: -g.Outline / 2,
		W: g.Width + g.Outline + g.SlotRadius*2,
		H: n.height + g.Outline,
	}
}

func sideExtent(slots []*Slot, pitch float64) float64 {
	extent := 0.0
	for _, s := range slots {
		if s.IsSpacer() {
			extent += pitch * spacerFraction
		} else {
			extent += pitch
		}
	}
	return extent
}

func layoutSide(slots []*Slot, x, cursor, d, pitch float64, widen func(Rect) Rect) {
	for _, s := range slots {
		if s.IsSpacer() {
			s.rect = Rect{X: x + d/2, Y: cursor}
			s.hit = Rect{}
			cursor += pitch * spacerFraction
			continue
		}
		s.rect = Rect{x, cursor, d, d}
		s.hit = widen(s.rect)
		cursor += pitch
	}
}

// SlotAt returns the slot under a point in local coordinates. Outputs win over
// inputs, spacers never match.
func (n *Node) SlotAt(local Point) (SlotRef, bool) {
	for _, list := range [][]*Slot{n.outputs, n.inputs} {
		for _, s := range list {
			if s.IsSpacer() {
				continue
			}
			if s.hit.Contains(local) {
				return s.Ref(), true
			}
		}
	}
	return SlotRef{}, false
}

// HoveredSlot returns the last hover hit, if any.
func (n *Node) HoveredSlot() (SlotRef, bool) {
	return n.hover, n.hovered
}

// setHover reports whether the hovered slot changed.
func (n *Node) setHover(ref SlotRef, ok bool) bool {
	if ok == n.hovered && (!ok || ref == n.hover) {
		return false
	}
	n.hover = ref
	n.hovered = ok
	return true
}

func (n *Node) rename(name string) {
	n.name = name
}

func (n *Node) setWidth(w float64) error {
	g := n.geom
	g.Width = w
	if err := g.Validate(); err != nil {
		return err
	}
	n.geom = g
	n.Relayout()
	return nil
}

func (n *Node) setHeight(h float64) error {
	g := n.geom
	g.Height = h
	if err := g.Validate(); err != nil {
		return err
	}
	n.geom = g
	n.Relayout()
	return nil
}

// Edges returns the keys of every edge attached to any slot of the node.
func (n *Node) Edges() []EdgeID {
	return n.edgeSet().ToSlice()
}

func (n *Node) edgeSet() mapset.Set[EdgeID] {
	set := mapset.NewThreadUnsafeSet[EdgeID]()
	for _, s := range n.inputs {
		set = set.Union(s.edges)
	}
	for _, s := range n.outputs {
		set = set.Union(s.edges)
	}
	return set
}

// ActiveInputs lists the names of inputs with at least one edge.
func (n *Node) ActiveInputs() []string {
	var names []string
	for _, s := range n.inputs {
		if s.Active() {
			names = append(names, s.name)
		}
	}
	return names
}

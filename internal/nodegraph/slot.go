package nodegraph

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

type Family int

const (
	Input Family = iota
	Output
)

func (f Family) String() string {
	if f == Output {
		return "out"
	}
	return "in"
}

func (f Family) Opposite() Family {
	if f == Output {
		return Input
	}
	return Output
}

type NodeID = uuid.UUID

// SlotHandle addresses a slot by its owning node, family and position. It
// stays valid as long as the node keeps its slot lists.
type SlotHandle struct {
	Node   NodeID
	Family Family
	Index  int
}

func (h SlotHandle) String() string {
	return fmt.Sprintf("%s/%s/%d", h.Node, h.Family, h.Index)
}

// SlotRef addresses a slot inside a single node.
type SlotRef struct {
	Family Family
	Index  int
}

// Slot is a named connection point on a node. An empty name marks a spacer:
// it takes vertical room but is never hit and never connected.
type Slot struct {
	name   string
	family Family
	node   NodeID
	index  int
	rect   Rect
	hit    Rect
	edges  mapset.Set[EdgeID]
}

func newSlot(node NodeID, name string, family Family, index int) *Slot {
	return &Slot{
		name:   name,
		family: family,
		node:   node,
		index:  index,
		edges:  mapset.NewThreadUnsafeSet[EdgeID](),
	}
}

func (s *Slot) Name() string       { return s.name }
func (s *Slot) Family() Family     { return s.family }
func (s *Slot) Node() NodeID       { return s.node }
func (s *Slot) Index() int         { return s.index }
func (s *Slot) IsSpacer() bool     { return s.name == "" }
func (s *Slot) Rect() Rect         { return s.rect }
func (s *Slot) HitRect() Rect      { return s.hit }
func (s *Slot) Ref() SlotRef       { return SlotRef{s.family, s.index} }
func (s *Slot) Handle() SlotHandle { return SlotHandle{s.node, s.family, s.index} }

// Active reports whether at least one edge is attached.
func (s *Slot) Active() bool {
	return s.edges.Cardinality() > 0
}

func (s *Slot) EdgeCount() int {
	return s.edges.Cardinality()
}

// Edges returns the attached edge keys in no particular order.
func (s *Slot) Edges() []EdgeID {
	return s.edges.ToSlice()
}

func (s *Slot) HasEdge(id EdgeID) bool {
	return s.edges.Contains(id)
}

func (s *Slot) addEdge(id EdgeID) {
	s.edges.Add(id)
}

func (s *Slot) removeEdge(id EdgeID) {
	s.edges.Remove(id)
}

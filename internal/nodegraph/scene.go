package nodegraph

import (
	"errors"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnknownNode = errors.New("unknown node")
	ErrUnknownSlot = errors.New("unknown slot")
	ErrSpacerSlot  = errors.New("spacer slots cannot be connected")
)

type EdgeState int

const (
	EdgeIdle EdgeState = iota
	EdgeDragging
)

type Options struct {
	// MultipleInputAllowed lets several outputs feed the same input.
	MultipleInputAllowed bool
	Translator           Translator
	Template             OutputTemplate
	Canvas               Canvas
	Logger               *zap.Logger
}

type refreshCache struct {
	move    []EdgeID
	refresh []EdgeID
}

type dragState struct {
	active bool
	last   Point
}

type namePair struct {
	source, target string
}

// Scene owns the nodes, the edge registry and the transient interactive
// edge and rubber band. All methods run on the host's event loop.
type Scene struct {
	opts      Options
	log       *zap.Logger
	canvas    Canvas
	translate Translator

	nodes     []*Node
	nodeIndex map[NodeID]*Node
	edges     map[EdgeID]*Edge
	seq       uint64
	exclusive map[namePair]bool

	target       NodeID
	targetPinned bool
	mapping      Mapping
	// templated holds the pairs the scene added to the output template.
	templated mapset.Set[namePair]

	interactive *InteractiveEdge
	rubberBand  *RubberBand
	drag        dragState
	refresh     *refreshCache
}

func NewScene(opts Options) *Scene {
	s := &Scene{
		opts:      opts,
		log:       opts.Logger,
		canvas:    opts.Canvas,
		translate: opts.Translator,
		nodeIndex: make(map[NodeID]*Node),
		edges:     make(map[EdgeID]*Edge),
		exclusive: make(map[namePair]bool),
		templated: mapset.NewThreadUnsafeSet[namePair](),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.canvas == nil {
		s.canvas = nopCanvas{}
	}
	if s.translate == nil {
		s.translate = identity
	}
	return s
}

func (s *Scene) MultipleInputAllowed() bool { return s.opts.MultipleInputAllowed }

func (s *Scene) SetMultipleInputAllowed(v bool) { s.opts.MultipleInputAllowed = v }

// AddExclusivePair makes an edge between slots named source and target evict
// any other edge on either endpoint.
func (s *Scene) AddExclusivePair(source, target string) {
	s.exclusive[namePair{source, target}] = true
}

// Nodes returns the nodes back to front.
func (s *Scene) Nodes() []*Node {
	return append([]*Node(nil), s.nodes...)
}

func (s *Scene) Node(id NodeID) *Node {
	return s.nodeIndex[id]
}

func (s *Scene) NodeByName(name string) *Node {
	for _, n := range s.nodes {
		if n.name == name {
			return n
		}
	}
	return nil
}

func (s *Scene) Edge(id EdgeID) *Edge {
	return s.edges[id]
}

// Edges returns the registry in creation order.
func (s *Scene) Edges() []*Edge {
	out := make([]*Edge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	sortEdges(out)
	return out
}

func sortEdges(edges []*Edge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].seq < edges[j].seq })
}

func (s *Scene) EdgeCount() int { return len(s.edges) }

func (s *Scene) Slot(h SlotHandle) *Slot {
	n := s.nodeIndex[h.Node]
	if n == nil {
		return nil
	}
	return n.Slot(SlotRef{h.Family, h.Index})
}

// CreateNode builds a node from slot name lists. Empty names become spacers.
func (s *Scene) CreateNode(name string, inputs, outputs []string, geom Geometry) (*Node, error) {
	n, err := newNode(name, inputs, outputs, geom)
	if err != nil {
		return nil, fmt.Errorf("create node %q: %w", name, err)
	}
	s.nodes = append(s.nodes, n)
	s.nodeIndex[n.id] = n
	s.canvas.ItemAdded(n)
	s.log.Debug("node created",
		zap.String("node", name),
		zap.Int("inputs", len(inputs)),
		zap.Int("outputs", len(outputs)))
	return n, nil
}

// DeleteNode removes a node and every edge touching it.
func (s *Scene) DeleteNode(id NodeID) error {
	if err := s.deleteNode(id); err != nil {
		return err
	}
	s.refreshMapping()
	s.canvas.RequestRedraw()
	return nil
}

func (s *Scene) deleteNode(id NodeID) error {
	n := s.nodeIndex[id]
	if n == nil {
		return ErrUnknownNode
	}
	for _, eid := range n.Edges() {
		s.deleteEdge(eid)
	}
	for i, other := range s.nodes {
		if other == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			break
		}
	}
	delete(s.nodeIndex, id)
	if s.target == id {
		s.target = uuid.Nil
		s.targetPinned = false
	}
	s.refresh = nil
	s.canvas.ItemRemoved(n)
	s.log.Debug("node deleted", zap.String("node", n.name))
	return nil
}

func (s *Scene) SetNodePos(id NodeID, p Point) error {
	n := s.nodeIndex[id]
	if n == nil {
		return ErrUnknownNode
	}
	n.pos = p
	s.refreshNodeEdges(n)
	s.canvas.RequestRedraw()
	return nil
}

func (s *Scene) RenameNode(id NodeID, name string) error {
	n := s.nodeIndex[id]
	if n == nil {
		return ErrUnknownNode
	}
	n.rename(name)
	n.Relayout()
	s.refreshNodeEdges(n)
	s.canvas.RequestRedraw()
	return nil
}

func (s *Scene) SetNodeHeight(id NodeID, h float64) error {
	n := s.nodeIndex[id]
	if n == nil {
		return ErrUnknownNode
	}
	if err := n.setHeight(h); err != nil {
		return err
	}
	s.refreshNodeEdges(n)
	s.canvas.RequestRedraw()
	return nil
}

func (s *Scene) SetNodeWidth(id NodeID, w float64) error {
	n := s.nodeIndex[id]
	if n == nil {
		return ErrUnknownNode
	}
	if err := n.setWidth(w); err != nil {
		return err
	}
	s.refreshNodeEdges(n)
	s.canvas.RequestRedraw()
	return nil
}

// refreshNodeEdges recomputes every edge touching n. Keys missing from the
// registry are skipped.
func (s *Scene) refreshNodeEdges(n *Node) {
	for _, eid := range n.Edges() {
		if e, ok := s.edges[eid]; ok {
			s.refreshEdge(e)
		}
	}
}

func (s *Scene) refreshEdge(e *Edge) {
	src := s.nodeIndex[e.source.Node]
	dst := s.nodeIndex[e.target.Node]
	if src == nil || dst == nil {
		return
	}
	e.Refresh(
		src.SlotCenter(SlotRef{e.source.Family, e.source.Index}),
		dst.SlotCenter(SlotRef{e.target.Family, e.target.Index}),
	)
}

// CreateEdge connects two slots in either order. A rejected connection is not
// an error: it returns false and leaves the scene untouched.
func (s *Scene) CreateEdge(a, b SlotHandle) (*Edge, bool) {
	e, ok := s.connect(a, b)
	if ok {
		s.refreshMapping()
		s.canvas.RequestRedraw()
	}
	return e, ok
}

func (s *Scene) reject(a, b SlotHandle, reason string) (*Edge, bool) {
	s.log.Debug("edge rejected",
		zap.Stringer("a", a),
		zap.Stringer("b", b),
		zap.String("reason", reason))
	return nil, false
}

func (s *Scene) connect(a, b SlotHandle) (*Edge, bool) {
	sa, sb := s.Slot(a), s.Slot(b)
	if sa == nil || sb == nil {
		return s.reject(a, b, "unknown slot")
	}
	if sa.IsSpacer() || sb.IsSpacer() {
		return s.reject(a, b, "spacer slot")
	}
	if sa.family == sb.family {
		return s.reject(a, b, "same family")
	}
	if sa.family == Input {
		sa, sb = sb, sa
	}
	if sa.node == sb.node {
		return s.reject(a, b, "same node")
	}

	source, target := sa.Handle(), sb.Handle()
	id := EdgeKey(source, target)
	if e, ok := s.edges[id]; ok {
		return e, true
	}

	exclusive := s.exclusive[namePair{sa.name, sb.name}]
	if !exclusive && sb.EdgeCount() > 0 && !s.opts.MultipleInputAllowed {
		return s.reject(source, target, "input already connected")
	}
	if s.reaches(sb.node, sa.node) {
		return s.reject(source, target, "cycle")
	}

	if exclusive {
		conflicts := sa.edges.Union(sb.edges)
		for _, eid := range conflicts.ToSlice() {
			s.deleteEdge(eid)
		}
	}

	s.seq++
	e := &Edge{
		id:     id,
		source: source,
		target: target,
		seq:    s.seq,
	}
	s.refreshEdge(e)
	s.edges[id] = e
	sa.addEdge(id)
	sb.addEdge(id)
	s.refresh = nil
	if !s.targetPinned {
		s.target = sb.node
	}
	s.canvas.ItemAdded(e)
	s.log.Debug("edge created",
		zap.Stringer("source", source),
		zap.Stringer("target", target),
		zap.Stringer("edge", id))
	return e, true
}

// reaches reports whether to is downstream of from.
func (s *Scene) reaches(from, to NodeID) bool {
	visited := mapset.NewThreadUnsafeSet[NodeID]()
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if !visited.Add(id) {
			continue
		}
		n := s.nodeIndex[id]
		if n == nil {
			continue
		}
		for _, out := range n.outputs {
			for _, eid := range out.Edges() {
				if e, ok := s.edges[eid]; ok {
					stack = append(stack, e.target.Node)
				}
			}
		}
	}
	return false
}

// pairNames returns the translated slot names of an edge.
func (s *Scene) pairNames(e *Edge) (string, string, bool) {
	src, dst := s.Slot(e.source), s.Slot(e.target)
	if src == nil || dst == nil {
		return "", "", false
	}
	return s.translate(src.name), s.translate(dst.name), true
}

// DeleteEdges removes edges by key; unknown keys are ignored.
func (s *Scene) DeleteEdges(ids []EdgeID) int {
	removed := 0
	for _, id := range ids {
		if s.deleteEdge(id) {
			removed++
		}
	}
	s.refreshMapping()
	s.canvas.RequestRedraw()
	return removed
}

func (s *Scene) deleteEdge(id EdgeID) bool {
	e, ok := s.edges[id]
	if !ok {
		return false
	}
	if slot := s.Slot(e.source); slot != nil {
		slot.removeEdge(id)
	}
	if slot := s.Slot(e.target); slot != nil {
		slot.removeEdge(id)
	}
	delete(s.edges, id)
	s.refresh = nil
	s.canvas.ItemRemoved(e)
	s.log.Debug("edge deleted", zap.Stringer("edge", id))
	return true
}

// ToggleInvert flips the invert flag of one edge.
func (s *Scene) ToggleInvert(id EdgeID) bool {
	e, ok := s.edges[id]
	if !ok {
		return false
	}
	e.setInvert(!e.invert)
	s.refreshMapping()
	s.canvas.RequestRedraw()
	return true
}

// ToggleInvertAllEdges sets the invert flag of every edge entering target.
func (s *Scene) ToggleInvertAllEdges(target NodeID, invert bool) error {
	n := s.nodeIndex[target]
	if n == nil {
		return ErrUnknownNode
	}
	for _, e := range s.inputEdges(n) {
		e.setInvert(invert)
	}
	s.refreshMapping()
	s.canvas.RequestRedraw()
	return nil
}

// ConnectAllSlots wires source outputs to target inputs index by index when
// the counts match, otherwise pairs the non-spacer slots in order. With create
// false the same pairs are disconnected instead. It returns how many pairs
// changed.
func (s *Scene) ConnectAllSlots(source, target NodeID, create bool) (int, error) {
	src, dst := s.nodeIndex[source], s.nodeIndex[target]
	if src == nil || dst == nil {
		return 0, ErrUnknownNode
	}

	var pairs [][2]*Slot
	if len(src.outputs) == len(dst.inputs) {
		for i, out := range src.outputs {
			if out.IsSpacer() || dst.inputs[i].IsSpacer() {
				continue
			}
			pairs = append(pairs, [2]*Slot{out, dst.inputs[i]})
		}
	} else {
		j := 0
		for _, out := range src.outputs {
			if out.IsSpacer() {
				continue
			}
			for j < len(dst.inputs) && dst.inputs[j].IsSpacer() {
				j++
			}
			if j >= len(dst.inputs) {
				break
			}
			pairs = append(pairs, [2]*Slot{out, dst.inputs[j]})
			j++
		}
	}

	changed := 0
	for _, p := range pairs {
		a, b := p[0].Handle(), p[1].Handle()
		if create {
			if _, exists := s.edges[EdgeKey(a, b)]; exists {
				continue
			}
			if _, ok := s.connect(a, b); ok {
				changed++
			}
		} else if s.deleteEdge(EdgeKey(a, b)) {
			changed++
		}
	}
	s.refreshMapping()
	s.canvas.RequestRedraw()
	return changed, nil
}

// inputEdges lists the live edges entering n, input order then creation order.
func (s *Scene) inputEdges(n *Node) []*Edge {
	var out []*Edge
	for _, in := range n.inputs {
		var slotEdges []*Edge
		for _, eid := range in.Edges() {
			if e, ok := s.edges[eid]; ok {
				slotEdges = append(slotEdges, e)
			}
		}
		sortEdges(slotEdges)
		out = append(out, slotEdges...)
	}
	return out
}

// GetConnections derives the mapping for the inputs of target. With an output
// template configured the template's mapping is returned instead.
func (s *Scene) GetConnections(target NodeID) Mapping {
	if s.opts.Template != nil {
		return s.opts.Template.Mapping()
	}
	var m Mapping
	n := s.nodeIndex[target]
	if n == nil {
		return m
	}
	for _, e := range s.inputEdges(n) {
		src, dst, ok := s.pairNames(e)
		if !ok {
			continue
		}
		m.add(src, Target{Name: dst, Invert: e.invert})
	}
	return m
}

// SetTargetNode pins the node whose inputs drive Connections.
func (s *Scene) SetTargetNode(id NodeID) error {
	return s.SetTarget(id, true)
}

// SetTarget makes id the target node. An unpinned target is replaced by the
// input node of the next committed edge.
func (s *Scene) SetTarget(id NodeID, pinned bool) error {
	if s.nodeIndex[id] == nil {
		return ErrUnknownNode
	}
	s.target = id
	s.targetPinned = pinned
	s.refreshMapping()
	return nil
}

// ClearTarget leaves the scene without a target node.
func (s *Scene) ClearTarget() {
	s.target = uuid.Nil
	s.targetPinned = false
	s.refreshMapping()
}

func (s *Scene) TargetNode() *Node {
	return s.nodeIndex[s.target]
}

// TargetPinned reports whether the target was set by SetTargetNode rather
// than following the last connected node.
func (s *Scene) TargetPinned() bool { return s.targetPinned }

// Connections is the mapping of the current target node.
func (s *Scene) Connections() Mapping {
	return s.mapping
}

func (s *Scene) refreshMapping() {
	s.syncTemplate()
	s.mapping = s.GetConnections(s.target)
}

// syncTemplate makes the output template hold exactly the name pairs of the
// live edges entering the target node. Several edges may share a pair; the
// first in input order decides its invert flag. Entries the template held
// before the scene touched it are updated but never removed.
func (s *Scene) syncTemplate() {
	tmpl := s.opts.Template
	if tmpl == nil {
		return
	}
	want := make(map[namePair]bool)
	var order []namePair
	if n := s.nodeIndex[s.target]; n != nil {
		for _, e := range s.inputEdges(n) {
			src, dst, ok := s.pairNames(e)
			if !ok {
				continue
			}
			p := namePair{src, dst}
			if _, seen := want[p]; seen {
				continue
			}
			want[p] = e.invert
			order = append(order, p)
		}
	}
	for _, p := range s.templated.ToSlice() {
		if _, ok := want[p]; !ok {
			tmpl.Remove(p.source, p.target)
			s.templated.Remove(p)
		}
	}
	for _, p := range order {
		if tmpl.Add(p.source, p.target, want[p]) {
			s.templated.Add(p)
			continue
		}
		tmpl.SetInvert(p.source, p.target, want[p])
	}
}

// NodesBoundingRect covers every node; the zero Rect when there are none.
func (s *Scene) NodesBoundingRect() Rect {
	var r Rect
	for _, n := range s.nodes {
		r = r.United(n.SceneRect())
	}
	return r
}

func (s *Scene) ItemsBoundingRect() Rect {
	r := s.NodesBoundingRect()
	for _, e := range s.edges {
		r = r.United(e.path.Bounds)
	}
	return r
}

func (s *Scene) SelectionBoundingRect() (Rect, bool) {
	var r Rect
	found := false
	for _, n := range s.nodes {
		if n.selected {
			r = r.United(n.SceneRect())
			found = true
		}
	}
	return r, found
}

// HitTest resolves a scene position to the front-most slot, node body or edge.
func (s *Scene) HitTest(p Point) HitResult {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		n := s.nodes[i]
		if !n.SceneRect().Contains(p) {
			continue
		}
		if ref, ok := n.SlotAt(p.Sub(n.pos)); ok {
			return HitResult{Kind: HitSlot, Node: n.id, Slot: SlotHandle{n.id, ref.Family, ref.Index}}
		}
		return HitResult{Kind: HitNodeBody, Node: n.id}
	}
	if e := s.edgeAt(p); e != nil {
		return HitResult{Kind: HitEdge, Edge: e.id}
	}
	return HitResult{}
}

func (s *Scene) edgeAt(p Point) *Edge {
	edges := s.Edges()
	for i := len(edges) - 1; i >= 0; i-- {
		if edges[i].path.near(p, edgeHitTolerance) {
			return edges[i]
		}
	}
	return nil
}

// ItemsAt lists every node and edge under p, front to back.
func (s *Scene) ItemsAt(p Point) []Item {
	var items []Item
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].SceneRect().Contains(p) {
			items = append(items, s.nodes[i])
		}
	}
	edges := s.Edges()
	for i := len(edges) - 1; i >= 0; i-- {
		if edges[i].path.near(p, edgeHitTolerance) {
			items = append(items, edges[i])
		}
	}
	return items
}

// ItemsIn lists nodes and edges inside r: fully contained when contained is
// set, otherwise any overlap.
func (s *Scene) ItemsIn(r Rect, contained bool) []Item {
	var items []Item
	for _, n := range s.nodes {
		nr := n.SceneRect()
		if (contained && r.ContainsRect(nr)) || (!contained && r.Intersects(nr)) {
			items = append(items, n)
		}
	}
	for _, e := range s.Edges() {
		if (contained && e.path.containedIn(r)) || (!contained && e.path.intersects(r)) {
			items = append(items, e)
		}
	}
	return items
}

package nodegraph

import (
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

// Selection

func (s *Scene) SelectedNodes() []*Node {
	var out []*Node
	for _, n := range s.nodes {
		if n.selected {
			out = append(out, n)
		}
	}
	return out
}

func (s *Scene) SelectedEdges() []*Edge {
	var out []*Edge
	for _, e := range s.Edges() {
		if e.selected {
			out = append(out, e)
		}
	}
	return out
}

func (s *Scene) SelectedItems() []Item {
	var items []Item
	for _, n := range s.SelectedNodes() {
		items = append(items, n)
	}
	for _, e := range s.SelectedEdges() {
		items = append(items, e)
	}
	return items
}

// SetSelected changes the selection flag of a node or edge and reports
// whether it changed.
func (s *Scene) SetSelected(item Item, selected bool) bool {
	changed := false
	switch it := item.(type) {
	case *Node:
		if it.selectable && it.selected != selected {
			it.selected = selected
			changed = true
		}
	case *Edge:
		if it.selected != selected {
			it.selected = selected
			changed = true
		}
	}
	if changed {
		s.selectionChanged()
	}
	return changed
}

func (s *Scene) ClearSelection() {
	changed := false
	for _, n := range s.nodes {
		if n.selected {
			n.selected = false
			changed = true
		}
	}
	for _, e := range s.edges {
		if e.selected {
			e.selected = false
			changed = true
		}
	}
	if changed {
		s.selectionChanged()
	}
}

// selectionChanged drops the edge refresh cache; it is rebuilt on the next
// drag move.
func (s *Scene) selectionChanged() {
	s.refresh = nil
	s.canvas.RequestRedraw()
}

// DeleteSelected removes every selected node, with its edges, and every
// selected edge.
func (s *Scene) DeleteSelected() {
	nodes := s.SelectedNodes()
	edges := s.SelectedEdges()
	for _, n := range nodes {
		_ = s.deleteNode(n.id)
	}
	for _, e := range edges {
		s.deleteEdge(e.id)
	}
	s.log.Debug("selection deleted",
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)))
	s.refreshMapping()
	s.canvas.RequestRedraw()
}

// Interactive edge

func (s *Scene) EdgeState() EdgeState {
	if s.interactive != nil {
		return EdgeDragging
	}
	return EdgeIdle
}

func (s *Scene) IsInteractiveEdge() bool { return s.interactive != nil }

func (s *Scene) InteractiveEdge() *InteractiveEdge { return s.interactive }

// StartInteractiveEdge begins dragging a connection out of slot h. When a
// drag is already in progress it is re-anchored on h.
func (s *Scene) StartInteractiveEdge(h SlotHandle, pointer Point) error {
	slot := s.Slot(h)
	if slot == nil {
		return ErrUnknownSlot
	}
	if slot.IsSpacer() {
		return ErrSpacerSlot
	}
	if s.interactive == nil {
		s.interactive = &InteractiveEdge{}
	}
	s.interactive.source = h
	s.interactive.refresh(s.slotCenter(h), pointer)
	s.canvas.RequestRedraw()
	return nil
}

func (s *Scene) slotCenter(h SlotHandle) Point {
	n := s.nodeIndex[h.Node]
	if n == nil {
		return Point{}
	}
	return n.SlotCenter(SlotRef{h.Family, h.Index})
}

func (s *Scene) RefreshInteractiveEdge(pointer Point) {
	if s.interactive == nil {
		return
	}
	s.interactive.refresh(s.slotCenter(s.interactive.source), pointer)
	s.canvas.RequestRedraw()
}

// StopInteractiveEdge commits the dragged connection against the release-time
// hit. The interactive edge is discarded on every path.
func (s *Scene) StopInteractiveEdge(hit HitResult) (*Edge, bool) {
	ie := s.interactive
	if ie == nil {
		return nil, false
	}
	defer func() {
		s.interactive = nil
		s.canvas.RequestRedraw()
	}()

	candidate, ok := s.resolveCandidate(ie.source, hit)
	if !ok {
		s.log.Debug("interactive edge discarded", zap.Stringer("source", ie.source))
		return nil, false
	}
	e, ok := s.connect(ie.source, candidate)
	if ok {
		s.refreshMapping()
	}
	return e, ok
}

// resolveCandidate picks the slot a release connects to. A drop on a node
// body picks the first free input for an output source, falling back to the
// first input, or the first output for an input source.
func (s *Scene) resolveCandidate(source SlotHandle, hit HitResult) (SlotHandle, bool) {
	switch hit.Kind {
	case HitSlot:
		return hit.Slot, true
	case HitNodeBody:
		n := s.nodeIndex[hit.Node]
		if n == nil {
			return SlotHandle{}, false
		}
		if source.Family == Output {
			var first *Slot
			for _, in := range n.inputs {
				if in.IsSpacer() {
					continue
				}
				if first == nil {
					first = in
				}
				if in.EdgeCount() == 0 {
					return in.Handle(), true
				}
			}
			if first != nil {
				return first.Handle(), true
			}
			return SlotHandle{}, false
		}
		for _, out := range n.outputs {
			if !out.IsSpacer() {
				return out.Handle(), true
			}
		}
	}
	return SlotHandle{}, false
}

// Rubber band

func (s *Scene) IsRubberBand() bool { return s.rubberBand != nil }

func (s *Scene) RubberBand() *RubberBand { return s.rubberBand }

func (s *Scene) StartRubberBand(origin Point) {
	if s.rubberBand == nil {
		s.rubberBand = &RubberBand{}
	}
	s.rubberBand.reset(origin)
	s.canvas.RequestRedraw()
}

func (s *Scene) RefreshRubberBand(pointer Point) {
	if s.rubberBand == nil {
		return
	}
	s.rubberBand.refresh(pointer)
	s.canvas.RequestRedraw()
}

// StopRubberBand applies the band to the selection using the mode implied by
// mods and discards it.
func (s *Scene) StopRubberBand(mods InputModifiers) {
	rb := s.rubberBand
	if rb == nil {
		return
	}
	s.rubberBand = nil
	s.ApplySelection(SelectionModeFor(mods), rb.Rect())
}

// ApplySelection combines the items under r with the current selection.
func (s *Scene) ApplySelection(mode SelectionMode, r Rect) {
	switch mode {
	case AddSelection:
		for _, item := range s.ItemsIn(r, false) {
			s.SetSelected(item, true)
		}
	case SubtractSelection:
		for _, item := range s.ItemsIn(r, false) {
			s.SetSelected(item, false)
		}
	case ToggleSelection:
		s.ClearSelection()
		var doomed []EdgeID
		for _, item := range s.ItemsIn(r, false) {
			if e, ok := item.(*Edge); ok {
				doomed = append(doomed, e.id)
			}
		}
		s.DeleteEdges(doomed)
	default:
		s.ClearSelection()
		for _, item := range s.ItemsIn(r, true) {
			s.SetSelected(item, true)
		}
	}
	s.log.Debug("rubber band applied",
		zap.Stringer("mode", mode),
		zap.Int("selected", len(s.SelectedItems())))
	s.canvas.RequestRedraw()
}

// Pointer routing

// Press routes a button press in scene coordinates.
func (s *Scene) Press(ev PointerEvent) {
	if ev.Button != ButtonLeft {
		return
	}
	hit := s.HitTest(ev.Pos)

	if s.interactive != nil {
		if hit.Kind == HitSlot {
			_ = s.StartInteractiveEdge(hit.Slot, ev.Pos)
		}
		return
	}

	if hit.Kind == HitNothing {
		s.StartRubberBand(ev.Pos)
		return
	}

	if ev.Mods.Shift || ev.Mods.Ctrl {
		for _, item := range s.ItemsAt(ev.Pos) {
			switch {
			case ev.Mods.Shift && ev.Mods.Ctrl:
				s.SetSelected(item, !item.IsSelected())
			case ev.Mods.Shift:
				s.SetSelected(item, true)
			default:
				s.SetSelected(item, false)
			}
		}
		return
	}

	switch hit.Kind {
	case HitSlot:
		_ = s.StartInteractiveEdge(hit.Slot, ev.Pos)
	case HitNodeBody:
		n := s.nodeIndex[hit.Node]
		if !n.selected {
			s.ClearSelection()
			s.SetSelected(n, true)
		}
		s.drag = dragState{active: true, last: ev.Pos}
	case HitEdge:
		e := s.edges[hit.Edge]
		if !e.selected {
			s.ClearSelection()
			s.SetSelected(e, true)
		}
	}
}

// Move routes pointer motion to whichever modal operation is active.
func (s *Scene) Move(ev PointerEvent) {
	switch {
	case s.interactive != nil:
		s.RefreshInteractiveEdge(ev.Pos)
		s.updateHover(ev.Pos)
	case s.rubberBand != nil:
		s.RefreshRubberBand(ev.Pos)
	case s.drag.active && ev.Button == ButtonLeft:
		delta := ev.Pos.Sub(s.drag.last)
		s.drag.last = ev.Pos
		s.moveSelection(delta.X, delta.Y)
	default:
		s.updateHover(ev.Pos)
	}
}

// Release finalizes the active modal operation.
func (s *Scene) Release(ev PointerEvent) {
	if s.interactive != nil {
		s.StopInteractiveEdge(s.HitTest(ev.Pos))
	}
	if s.drag.active {
		s.drag = dragState{}
		s.refresh = nil
	}
	if s.rubberBand != nil {
		s.StopRubberBand(ev.Mods)
	}
}

// DoubleClick toggles the invert flag of the edge under the pointer.
func (s *Scene) DoubleClick(ev PointerEvent) {
	hit := s.HitTest(ev.Pos)
	if hit.Kind == HitEdge {
		s.ToggleInvert(hit.Edge)
	}
}

func (s *Scene) updateHover(p Point) {
	var over *Node
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].SceneRect().Contains(p) {
			over = s.nodes[i]
			break
		}
	}
	redraw := false
	for _, n := range s.nodes {
		ref, ok := SlotRef{}, false
		if n == over {
			ref, ok = n.SlotAt(p.Sub(n.pos))
		}
		if n.setHover(ref, ok) {
			redraw = true
		}
	}
	if redraw {
		s.canvas.RequestRedraw()
	}
}

// moveSelection drags the selected movable nodes. Edges with both ends
// selected are translated, the others are recomputed.
func (s *Scene) moveSelection(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	for _, n := range s.nodes {
		if n.selected && n.movable {
			n.pos = n.pos.Add(Point{dx, dy})
		}
	}
	if s.refresh == nil {
		s.refresh = s.buildRefreshCache()
	}
	for _, id := range s.refresh.move {
		if e, ok := s.edges[id]; ok {
			e.path.translate(dx, dy)
		}
	}
	for _, id := range s.refresh.refresh {
		if e, ok := s.edges[id]; ok {
			s.refreshEdge(e)
		}
	}
	s.canvas.RequestRedraw()
}

func (s *Scene) buildRefreshCache() *refreshCache {
	moving := make(map[NodeID]bool)
	touched := mapset.NewThreadUnsafeSet[EdgeID]()
	for _, n := range s.nodes {
		if n.selected && n.movable {
			moving[n.id] = true
			touched = touched.Union(n.edgeSet())
		}
	}
	cache := &refreshCache{}
	for _, id := range touched.ToSlice() {
		e, ok := s.edges[id]
		if !ok {
			continue
		}
		if e.connectedTo(moving) {
			cache.move = append(cache.move, id)
		} else {
			cache.refresh = append(cache.refresh, id)
		}
	}
	return cache
}

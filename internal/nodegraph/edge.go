package nodegraph

import (
	"math"

	"github.com/google/uuid"
)

type EdgeID = uuid.UUID

// edgeNamespace seeds name-based edge keys.
var edgeNamespace = uuid.MustParse("6f1c2a8e-4b0d-5e57-9a53-2d1f0c7b9e41")

const (
	edgeSamples      = 16
	edgeMinCurve     = 40.0
	edgeHitTolerance = 4.0
	arrowLength      = 12.0
	arrowHalfWidth   = 6.0
)

// EdgeKey derives the registry key of the edge joining source to target. The
// key depends on node identity and slot position, never on slot names.
func EdgeKey(source, target SlotHandle) EdgeID {
	return uuid.NewSHA1(edgeNamespace, []byte(source.String()+"->"+target.String()))
}

// Path is the cached drawable shape of an edge: a horizontal cubic bezier
// with an arrow head at its midpoint.
type Path struct {
	Start, C1, C2, End Point
	Arrow              [3]Point
	Samples            []Point
	Bounds             Rect
}

func newPath(start, end Point) Path {
	var p Path
	p.set(start, end)
	return p
}

func (p *Path) set(start, end Point) {
	curve := math.Max(math.Abs(end.X-start.X)/2, edgeMinCurve)
	p.Start = start
	p.End = end
	p.C1 = Point{start.X + curve, start.Y}
	p.C2 = Point{end.X - curve, end.Y}

	if cap(p.Samples) < edgeSamples+1 {
		p.Samples = make([]Point, edgeSamples+1)
	}
	p.Samples = p.Samples[:edgeSamples+1]
	for i := 0; i <= edgeSamples; i++ {
		p.Samples[i] = p.pointAt(float64(i) / edgeSamples)
	}

	mid := p.pointAt(0.5)
	tan := p.tangentAt(0.5)
	length := math.Hypot(tan.X, tan.Y)
	if length < 1e-9 {
		tan, length = Point{1, 0}, 1
	}
	ux, uy := tan.X/length, tan.Y/length
	tip := Point{mid.X + ux*arrowLength/2, mid.Y + uy*arrowLength/2}
	back := Point{mid.X - ux*arrowLength/2, mid.Y - uy*arrowLength/2}
	p.Arrow = [3]Point{
		tip,
		{back.X - uy*arrowHalfWidth, back.Y + ux*arrowHalfWidth},
		{back.X + uy*arrowHalfWidth, back.Y - ux*arrowHalfWidth},
	}
	p.updateBounds()
}

func (p *Path) updateBounds() {
	b := Quad{p.Samples[0], p.Samples[0], p.Samples[0], p.Samples[0]}.BoundingRect()
	for _, s := range p.Samples[1:] {
		b = extend(b, s)
	}
	for _, a := range p.Arrow {
		b = extend(b, a)
	}
	p.Bounds = b
}

func extend(r Rect, p Point) Rect {
	left := math.Min(r.X, p.X)
	top := math.Min(r.Y, p.Y)
	right := math.Max(r.Right(), p.X)
	bottom := math.Max(r.Bottom(), p.Y)
	return Rect{left, top, right - left, bottom - top}
}

func (p *Path) pointAt(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		a*p.Start.X + b*p.C1.X + c*p.C2.X + d*p.End.X,
		a*p.Start.Y + b*p.C1.Y + c*p.C2.Y + d*p.End.Y,
	}
}

func (p *Path) tangentAt(t float64) Point {
	u := 1 - t
	return Point{
		3*u*u*(p.C1.X-p.Start.X) + 6*u*t*(p.C2.X-p.C1.X) + 3*t*t*(p.End.X-p.C2.X),
		3*u*u*(p.C1.Y-p.Start.Y) + 6*u*t*(p.C2.Y-p.C1.Y) + 3*t*t*(p.End.Y-p.C2.Y),
	}
}

// translate shifts the whole path; used when both ends move together.
func (p *Path) translate(dx, dy float64) {
	move := func(q *Point) { q.X += dx; q.Y += dy }
	move(&p.Start)
	move(&p.C1)
	move(&p.C2)
	move(&p.End)
	for i := range p.Arrow {
		move(&p.Arrow[i])
	}
	for i := range p.Samples {
		move(&p.Samples[i])
	}
	p.Bounds = p.Bounds.Translated(dx, dy)
}

func (p *Path) intersects(r Rect) bool {
	if !p.Bounds.Intersects(r) {
		return false
	}
	for i := 0; i+1 < len(p.Samples); i++ {
		if segmentIntersectsRect(p.Samples[i], p.Samples[i+1], r) {
			return true
		}
	}
	for _, a := range p.Arrow {
		if r.Contains(a) {
			return true
		}
	}
	return false
}

func (p *Path) containedIn(r Rect) bool {
	return r.ContainsRect(p.Bounds)
}

func (p *Path) near(q Point, tolerance float64) bool {
	if !p.Bounds.Adjusted(-tolerance, -tolerance, tolerance, tolerance).Contains(q) {
		return false
	}
	for i := 0; i+1 < len(p.Samples); i++ {
		if distanceToSegment(q, p.Samples[i], p.Samples[i+1]) <= tolerance {
			return true
		}
	}
	return false
}

func distanceToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// Edge is a committed link from an output slot to an input slot. It is owned
// by the scene registry; slots only keep its key.
type Edge struct {
	id       EdgeID
	source   SlotHandle
	target   SlotHandle
	invert   bool
	selected bool
	seq      uint64
	path     Path
}

func (e *Edge) ID() EdgeID           { return e.id }
func (e *Edge) Source() SlotHandle   { return e.source }
func (e *Edge) Target() SlotHandle   { return e.target }
func (e *Edge) Invert() bool         { return e.invert }
func (e *Edge) IsSelected() bool     { return e.selected }
func (e *Edge) Path() Path           { return e.path }
func (e *Edge) SceneRect() Rect      { return e.path.Bounds }
func (e *Edge) setInvert(value bool) { e.invert = value }

// Refresh recomputes the path from the current slot centers.
func (e *Edge) Refresh(start, end Point) {
	e.path.set(start, end)
}

// connectedTo reports whether both endpoint nodes are in nodes.
func (e *Edge) connectedTo(nodes map[NodeID]bool) bool {
	return nodes[e.source.Node] && nodes[e.target.Node]
}

// InteractiveEdge follows the pointer from a fixed slot while a connection is
// being dragged. It is never registered.
type InteractiveEdge struct {
	source  SlotHandle
	pointer Point
	path    Path
}

func (ie *InteractiveEdge) Source() SlotHandle { return ie.source }
func (ie *InteractiveEdge) Pointer() Point     { return ie.pointer }
func (ie *InteractiveEdge) Path() Path         { return ie.path }

func (ie *InteractiveEdge) refresh(anchor, pointer Point) {
	ie.pointer = pointer
	if ie.source.Family == Input {
		ie.path.set(pointer, anchor)
		return
	}
	ie.path.set(anchor, pointer)
}

package nodegraph

type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// InputModifiers is the keyboard modifier state at the time of an event. It is
// passed with every event instead of being latched on the scene.
type InputModifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

type PointerEvent struct {
	Pos    Point
	Button Button
	Mods   InputModifiers
}

type HitKind int

const (
	HitNothing HitKind = iota
	HitSlot
	HitNodeBody
	HitEdge
)

// HitResult is what lies under a scene position, front-most first.
type HitResult struct {
	Kind HitKind
	Node NodeID
	Slot SlotHandle
	Edge EdgeID
}

// Item is anything the scene draws and selects.
type Item interface {
	SceneRect() Rect
	IsSelected() bool
}

// Canvas is the host surface the scene reports to.
type Canvas interface {
	ItemAdded(Item)
	ItemRemoved(Item)
	RequestRedraw()
}

type nopCanvas struct{}

func (nopCanvas) ItemAdded(Item)   {}
func (nopCanvas) ItemRemoved(Item) {}
func (nopCanvas) RequestRedraw()   {}

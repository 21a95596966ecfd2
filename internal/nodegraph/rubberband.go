package nodegraph

type SelectionMode int

const (
	ReplaceSelection SelectionMode = 1 << iota
	AddSelection
	SubtractSelection
	// ToggleSelection clears the selection and deletes every edge under the
	// band.
	ToggleSelection
)

func (m SelectionMode) String() string {
	switch m {
	case AddSelection:
		return "add"
	case SubtractSelection:
		return "subtract"
	case ToggleSelection:
		return "toggle"
	default:
		return "replace"
	}
}

func SelectionModeFor(mods InputModifiers) SelectionMode {
	switch {
	case mods.Shift && mods.Ctrl:
		return ToggleSelection
	case mods.Shift:
		return AddSelection
	case mods.Ctrl:
		return SubtractSelection
	default:
		return ReplaceSelection
	}
}

// RubberBand is the marquee dragged from an origin to the pointer.
type RubberBand struct {
	origin  Point
	pointer Point
}

func (rb *RubberBand) Origin() Point  { return rb.origin }
func (rb *RubberBand) Pointer() Point { return rb.pointer }

// Polygon walks origin, the pointer's horizontal projection, the pointer and
// the pointer's vertical projection, so any drag direction yields a valid
// outline.
func (rb *RubberBand) Polygon() Quad {
	return Quad{
		rb.origin,
		{rb.pointer.X, rb.origin.Y},
		rb.pointer,
		{rb.origin.X, rb.pointer.Y},
	}
}

func (rb *RubberBand) Rect() Rect {
	return rb.Polygon().BoundingRect()
}

func (rb *RubberBand) refresh(pointer Point) {
	rb.pointer = pointer
}

func (rb *RubberBand) reset(origin Point) {
	rb.origin = origin
	rb.pointer = origin
}

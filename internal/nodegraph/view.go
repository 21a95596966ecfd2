package nodegraph

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/fogleman/gg"
)

const (
	MinScale       = 0.1
	MaxScale       = 1.0
	DefaultPadding = 50.0
	wheelStep      = 240.0
	wheelBase      = 1.25
)

type ViewOptions struct {
	// Zoom enables wheel zoom.
	Zoom bool
	// Movable enables panning.
	Movable bool
}

// View is the camera over a scene: a uniform scale and the scene point shown
// at the viewport's top-left corner.
type View struct {
	scene   *Scene
	opts    ViewOptions
	width   float64
	height  float64
	scale   float64
	origin  Point
	pan     bool
	pointer Point
}

func NewView(scene *Scene, width, height float64, opts ViewOptions) *View {
	v := &View{
		scene:  scene,
		opts:   opts,
		width:  width,
		height: height,
		scale:  1,
	}
	v.CenterOn(Point{})
	return v
}

func (v *View) Scene() *Scene        { return v.scene }
func (v *View) Scale() float64       { return v.scale }
func (v *View) IsPanning() bool      { return v.pan }
func (v *View) Size() (w, h float64) { return v.width, v.height }

// Resize keeps the scene point under the viewport center in place.
func (v *View) Resize(width, height float64) {
	center := v.MapToScene(Point{v.width / 2, v.height / 2})
	v.width, v.height = width, height
	v.CenterOn(center)
}

func (v *View) MapToScene(p Point) Point {
	x, y := gg.Scale(1/v.scale, 1/v.scale).TransformPoint(p.X, p.Y)
	x, y = gg.Translate(v.origin.X, v.origin.Y).TransformPoint(x, y)
	return Point{x, y}
}

func (v *View) MapFromScene(p Point) Point {
	x, y := gg.Translate(-v.origin.X, -v.origin.Y).TransformPoint(p.X, p.Y)
	x, y = gg.Scale(v.scale, v.scale).TransformPoint(x, y)
	return Point{x, y}
}

// VisibleRect is the part of the scene inside the viewport.
func (v *View) VisibleRect() Rect {
	return Rect{v.origin.X, v.origin.Y, v.width / v.scale, v.height / v.scale}
}

func (v *View) CenterOn(p Point) {
	v.origin = Point{p.X - v.width/2/v.scale, p.Y - v.height/2/v.scale}
}

// TranslateView shifts the camera by offset scene units.
func (v *View) TranslateView(offset Point) {
	v.origin = v.origin.Add(offset)
}

// ScaleView zooms around the viewport center. With limits the scale is kept
// within [MinScale, MaxScale]; it reports false once the upper limit is hit.
func (v *View) ScaleView(factor float64, limits bool) bool {
	return v.ScaleViewAt(factor, Point{v.width / 2, v.height / 2}, limits)
}

// ScaleViewAt zooms keeping the scene point under anchor fixed.
func (v *View) ScaleViewAt(factor float64, anchor Point, limits bool) bool {
	fixed := v.MapToScene(anchor)
	next := v.scale * factor
	ok := true
	if limits {
		if next >= MaxScale {
			next = MaxScale
			ok = false
		} else if next < MinScale {
			next = MinScale
		}
	}
	v.scale = next
	v.origin = Point{fixed.X - anchor.X/v.scale, fixed.Y - anchor.Y/v.scale}
	return ok
}

// FitView frames all nodes, or the selected ones, with padding around them.
func (v *View) FitView(selected bool, padding float64) {
	r := v.scene.ItemsBoundingRect()
	if selected {
		if sel, ok := v.scene.SelectionBoundingRect(); ok {
			r = sel
		}
	}
	r = r.Adjusted(-padding, -padding, padding, padding)
	if v.width <= 0 || v.height <= 0 || r.IsEmpty() {
		return
	}

	fit := 1 / math.Max(r.W/v.width, r.H/v.height)
	switch {
	case fit >= MaxScale:
		v.scale = MaxScale
	case fit < MinScale:
		v.scale = MinScale
	default:
		v.scale = fit
	}
	v.CenterOn(r.Center())
}

func (v *View) toScene(ev PointerEvent) PointerEvent {
	ev.Pos = v.MapToScene(ev.Pos)
	return ev
}

// Press takes a press in viewport coordinates. Alt+left or the middle button
// pans, anything else goes to the scene.
func (v *View) Press(ev PointerEvent) {
	v.pointer = ev.Pos
	if v.opts.Movable && ((ev.Button == ButtonLeft && ev.Mods.Alt) || ev.Button == ButtonMiddle) {
		v.pan = true
		return
	}
	v.scene.Press(v.toScene(ev))
}

func (v *View) Move(ev PointerEvent) {
	if v.pan {
		delta := v.MapToScene(v.pointer).Sub(v.MapToScene(ev.Pos))
		v.TranslateView(delta)
		v.pointer = ev.Pos
		v.scene.canvas.RequestRedraw()
		return
	}
	v.pointer = ev.Pos
	v.scene.Move(v.toScene(ev))
}

func (v *View) Release(ev PointerEvent) {
	v.pointer = ev.Pos
	if v.pan {
		v.pan = false
		return
	}
	v.scene.Release(v.toScene(ev))
}

func (v *View) DoubleClick(ev PointerEvent) {
	v.scene.DoubleClick(v.toScene(ev))
}

// Wheel zooms by 1.25 per 240 units of delta, anchored under the pointer.
func (v *View) Wheel(delta float64, at Point) {
	if !v.opts.Zoom {
		return
	}
	v.ScaleViewAt(math.Pow(wheelBase, delta/wheelStep), at, true)
	v.scene.canvas.RequestRedraw()
}

// FocusOut stops any pan left running when focus moved away mid-gesture.
func (v *View) FocusOut() {
	v.pan = false
}

// Key applies the view key bindings and reports whether key was handled.
func (v *View) Key(key string) bool {
	switch key {
	case "-", "_":
		v.ScaleView(0.9, true)
	case "+", "=":
		v.ScaleView(1.1, true)
	case "f":
		v.FitView(true, DefaultPadding)
	case "a":
		v.FitView(false, DefaultPadding)
	case "delete", "backspace":
		v.scene.DeleteSelected()
	case "c":
		v.createNodeAtPointer()
	case "o":
		v.resizeSelected(-10)
	case "p":
		v.resizeSelected(10)
	default:
		return false
	}
	v.scene.canvas.RequestRedraw()
	return true
}

func (v *View) createNodeAtPointer() {
	name := fmt.Sprintf("random%d", rand.Intn(1000000)+1)
	n, err := v.scene.CreateNode(name, []string{"in", "in1", "in2"}, []string{"out"}, DefaultGeometry())
	if err != nil {
		return
	}
	at := v.MapToScene(v.pointer)
	_ = v.scene.SetNodePos(n.id, at.Sub(n.BoundingRect().Center()))
}

func (v *View) resizeSelected(dh float64) {
	for _, n := range v.scene.SelectedNodes() {
		_ = v.scene.SetNodeHeight(n.id, math.Max(0, n.height+dh))
	}
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"nodegraph/internal/nodegraph"
)

var errNothingToExport = errors.New("nothing to export")

const (
	pngPadding  = 40.0
	pngFontSize = 12.0
)

var (
	pngBackground = color.White
	pngBody       = color.RGBA{0x3a, 0x3f, 0x4b, 0xff}
	pngBodyLine   = color.RGBA{0x20, 0x23, 0x2a, 0xff}
	pngSelected   = color.RGBA{0xf2, 0xc1, 0x1d, 0xff}
	pngText       = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	pngEdge       = color.RGBA{0x55, 0x5b, 0x66, 0xff}
	pngInverted   = color.RGBA{0xd9, 0x4f, 0x4f, 0xff}
	pngSlot       = color.RGBA{0x7f, 0xa7, 0xc9, 0xff}
	pngSlotActive = color.RGBA{0x4c, 0xc9, 0x7a, 0xff}
)

func labelFace(size float64) (font.Face, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// exportPNG draws the whole scene at scale 1 in scene units.
func exportPNG(s *nodegraph.Scene, filename string) error {
	if len(s.Nodes()) == 0 {
		return errNothingToExport
	}
	bounds := s.ItemsBoundingRect().Adjusted(-pngPadding, -pngPadding, pngPadding, pngPadding)

	dc := gg.NewContext(int(math.Ceil(bounds.W)), int(math.Ceil(bounds.H)))
	dc.SetColor(pngBackground)
	dc.Clear()

	face, err := labelFace(pngFontSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.Translate(-bounds.X, -bounds.Y)

	// Edges first so nodes cover their ends.
	for _, e := range s.Edges() {
		drawEdgePNG(dc, e)
	}
	for _, n := range s.Nodes() {
		drawNodePNG(dc, n)
	}

	return dc.SavePNG(filename)
}

func drawEdgePNG(dc *gg.Context, e *nodegraph.Edge) {
	p := e.Path()
	c := color.Color(pngEdge)
	switch {
	case e.IsSelected():
		c = pngSelected
	case e.Invert():
		c = pngInverted
	}
	dc.SetColor(c)
	dc.SetLineWidth(2)
	dc.MoveTo(p.Start.X, p.Start.Y)
	dc.CubicTo(p.C1.X, p.C1.Y, p.C2.X, p.C2.Y, p.End.X, p.End.Y)
	dc.Stroke()

	dc.MoveTo(p.Arrow[0].X, p.Arrow[0].Y)
	dc.LineTo(p.Arrow[1].X, p.Arrow[1].Y)
	dc.LineTo(p.Arrow[2].X, p.Arrow[2].Y)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, n *nodegraph.Node) {
	g := n.Geometry()
	pos := n.Pos()

	dc.DrawRoundedRectangle(pos.X, pos.Y, n.Width(), n.Height(), g.Outline)
	dc.SetColor(pngBody)
	dc.FillPreserve()
	if n.IsSelected() {
		dc.SetColor(pngSelected)
	} else {
		dc.SetColor(pngBodyLine)
	}
	dc.SetLineWidth(g.Outline)
	dc.Stroke()

	dc.SetColor(pngText)
	dc.DrawStringAnchored(n.Name(), pos.X+n.Width()/2, pos.Y+g.LabelHeight/2, 0.5, 0.5)

	for _, list := range [][]*nodegraph.Slot{n.Inputs(), n.Outputs()} {
		for _, slot := range list {
			if slot.IsSpacer() {
				continue
			}
			center := n.SlotCenter(slot.Ref())
			dc.DrawCircle(center.X, center.Y, g.SlotRadius)
			if slot.Active() {
				dc.SetColor(pngSlotActive)
			} else {
				dc.SetColor(pngSlot)
			}
			dc.Fill()

			dc.SetColor(pngText)
			if slot.Family() == nodegraph.Input {
				dc.DrawStringAnchored(slot.Name(), center.X+g.SlotRadius+g.Outline, center.Y, 0, 0.5)
			} else {
				dc.DrawStringAnchored(slot.Name(), center.X-g.SlotRadius-g.Outline, center.Y, 1, 0.5)
			}
		}
	}
}

// exportVisualTXT writes rows exactly as the editor shows them, without
// styling.
func exportVisualTXT(filename string, rows []string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, line := range rows {
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

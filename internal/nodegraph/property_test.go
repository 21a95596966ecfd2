package nodegraph

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestLayoutProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	slotName := gen.IntRange(0, 2).Map(func(i int) string {
		return []string{"a", "b", ""}[i]
	})
	slotNames := gen.SliceOfN(6, slotName)

	properties.Property("relayout is deterministic", prop.ForAll(
		func(width float64, inputs, outputs []string) bool {
			g := DefaultGeometry()
			g.Width = width
			n, err := newNode("n", inputs, outputs, g)
			if err != nil {
				return false
			}
			before := snapshotLayout(n)
			n.Relayout()
			after := snapshotLayout(n)
			for i := range before {
				if before[i] != after[i] {
					return false
				}
			}
			return true
		},
		gen.Float64Range(1, 600),
		slotNames,
		slotNames,
	))

	properties.Property("slots stay below the label and inside the body", prop.ForAll(
		func(inputs, outputs []string) bool {
			n, err := newNode("n", inputs, outputs, DefaultGeometry())
			if err != nil {
				return false
			}
			g := n.Geometry()
			for _, list := range [][]*Slot{n.Inputs(), n.Outputs()} {
				for _, s := range list {
					if s.IsSpacer() {
						if !s.HitRect().IsEmpty() {
							return false
						}
						continue
					}
					if s.Rect().Top() < g.LabelHeight || s.Rect().Bottom() > n.Height() {
						return false
					}
				}
			}
			return true
		},
		slotNames,
		slotNames,
	))

	properties.TestingRun(t)
}

// graphOps replays a sequence of encoded edits against three sources with
// outputs tx, ty, tz and one target with inputs tx, ty, tz.
func graphOps(s *Scene, sources []*Node, target *Node, ops []int) {
	for _, op := range ops {
		src := sources[(op/3)%len(sources)]
		slot := (op / 9) % 3
		input := (op / 27) % 3
		switch op % 3 {
		case 0:
			s.CreateEdge(out(src, slot), in(target, input))
		case 1:
			s.DeleteEdges([]EdgeID{EdgeKey(out(src, slot), in(target, input))})
		case 2:
			if edges := s.Edges(); len(edges) > 0 {
				s.ToggleInvert(edges[op%len(edges)].ID())
			}
		}
	}
}

func TestEdgeRegistryProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	build := func(opts Options) (*Scene, []*Node, *Node) {
		s := NewScene(opts)
		names := []string{"tx", "ty", "tz"}
		var sources []*Node
		for _, name := range []string{"s0", "s1", "s2"} {
			n, _ := s.CreateNode(name, nil, names, DefaultGeometry())
			sources = append(sources, n)
		}
		target, _ := s.CreateNode("target", names, nil, DefaultGeometry())
		_ = s.SetTargetNode(target.ID())
		return s, sources, target
	}

	ops := gen.SliceOf(gen.IntRange(0, 999))

	properties.Property("inputs hold at most one edge", prop.ForAll(
		func(ops []int) bool {
			s, sources, target := build(Options{})
			graphOps(s, sources, target, ops)
			for _, slot := range target.Inputs() {
				if slot.EdgeCount() > 1 {
					return false
				}
			}
			return true
		},
		ops,
	))

	properties.Property("mapping mirrors the registry", prop.ForAll(
		func(ops []int, multiple bool) bool {
			s, sources, target := build(Options{MultipleInputAllowed: multiple})
			graphOps(s, sources, target, ops)

			type entry struct {
				source, target string
				invert         bool
			}
			counts := make(map[entry]int)
			m := s.Connections()
			for _, source := range m.Sources() {
				for _, t := range m.Targets(source) {
					counts[entry{source, t.Name, t.Invert}]++
				}
			}
			for _, e := range s.Edges() {
				src, dst := s.Slot(e.Source()), s.Slot(e.Target())
				counts[entry{src.Name(), dst.Name(), e.Invert()}]--
			}
			for _, n := range counts {
				if n != 0 {
					return false
				}
			}
			return true
		},
		ops,
		gen.Bool(),
	))

	properties.Property("template mirrors the target edges", prop.ForAll(
		func(ops []int, multiple bool) bool {
			tmpl := NewTemplate()
			s, sources, target := build(Options{
				MultipleInputAllowed: multiple,
				Template:             tmpl,
				Translator:           strings.ToUpper,
			})
			graphOps(s, sources, target, ops)

			want := make(map[namePair]bool)
			for _, e := range s.inputEdges(target) {
				p := namePair{
					strings.ToUpper(s.Slot(e.Source()).Name()),
					strings.ToUpper(s.Slot(e.Target()).Name()),
				}
				if _, seen := want[p]; !seen {
					want[p] = e.Invert()
				}
			}
			m := s.Connections()
			pairs := 0
			for _, source := range m.Sources() {
				pairs += len(m.Targets(source))
			}
			if pairs != len(want) {
				return false
			}
			for p, invert := range want {
				got, ok := m.Invert(p.source, p.target)
				if !ok || got != invert {
					return false
				}
			}
			return true
		},
		ops,
		gen.Bool(),
	))

	properties.Property("slots and registry agree", prop.ForAll(
		func(ops []int) bool {
			s, sources, target := build(Options{MultipleInputAllowed: true})
			graphOps(s, sources, target, ops)
			count := 0
			for _, n := range s.Nodes() {
				for _, list := range [][]*Slot{n.Inputs(), n.Outputs()} {
					for _, slot := range list {
						for _, id := range slot.Edges() {
							e := s.Edge(id)
							if e == nil {
								return false
							}
							if e.Source() != slot.Handle() && e.Target() != slot.Handle() {
								return false
							}
							count++
						}
					}
				}
			}
			return count == 2*s.EdgeCount()
		},
		ops,
	))

	properties.TestingRun(t)
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"nodegraph/internal/nodegraph"
)

type nodeDoc struct {
	Name    string   `yaml:"name"`
	X       float64  `yaml:"x"`
	Y       float64  `yaml:"y"`
	Width   float64  `yaml:"width"`
	Height  float64  `yaml:"height"`
	Inputs  []string `yaml:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
	Pinned  bool     `yaml:"pinned,omitempty"`
}

// edgeDoc refers to nodes by their index in the document.
type edgeDoc struct {
	Source int  `yaml:"source"`
	Output int  `yaml:"output"`
	Target int  `yaml:"target"`
	Input  int  `yaml:"input"`
	Invert bool `yaml:"invert,omitempty"`
}

type cameraDoc struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Scale float64 `yaml:"scale"`
}

// document is the saved form of a graph and the unit undo works with.
type document struct {
	Nodes  []nodeDoc  `yaml:"nodes"`
	Edges  []edgeDoc  `yaml:"edges,omitempty"`
	Target *int       `yaml:"target,omitempty"`
	Pinned bool       `yaml:"target_pinned,omitempty"`
	Camera *cameraDoc `yaml:"camera,omitempty"`
}

func snapshot(s *nodegraph.Scene) document {
	d, index := snapshotNodes(s, s.Nodes())
	if t := s.TargetNode(); t != nil {
		i := index[t.ID()]
		d.Target = &i
		d.Pinned = s.TargetPinned()
	}
	return d
}

// snapshotNodes captures nodes and the edges running between them.
func snapshotNodes(s *nodegraph.Scene, nodes []*nodegraph.Node) (document, map[nodegraph.NodeID]int) {
	var d document
	index := make(map[nodegraph.NodeID]int)
	for i, n := range nodes {
		index[n.ID()] = i
		d.Nodes = append(d.Nodes, nodeDoc{
			Name:    n.Name(),
			X:       n.Pos().X,
			Y:       n.Pos().Y,
			Width:   n.Width(),
			Height:  n.Geometry().Height,
			Inputs:  slotNames(n.Inputs()),
			Outputs: slotNames(n.Outputs()),
			Pinned:  !n.IsMovable(),
		})
	}
	for _, e := range s.Edges() {
		source, sok := index[e.Source().Node]
		target, tok := index[e.Target().Node]
		if !sok || !tok {
			continue
		}
		d.Edges = append(d.Edges, edgeDoc{
			Source: source,
			Output: e.Source().Index,
			Target: target,
			Input:  e.Target().Index,
			Invert: e.Invert(),
		})
	}
	return d, index
}

func snapshotWithCamera(s *nodegraph.Scene, v *nodegraph.View) document {
	d := snapshot(s)
	c := v.VisibleRect().Center()
	d.Camera = &cameraDoc{X: c.X, Y: c.Y, Scale: v.Scale()}
	return d
}

func slotNames(slots []*nodegraph.Slot) []string {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.Name()
	}
	return names
}

// restore replaces the contents of s with the document, target included.
// Edges the scene refuses are reported but do not abort the load.
func (d document) restore(s *nodegraph.Scene) error {
	for _, n := range s.Nodes() {
		if err := s.DeleteNode(n.ID()); err != nil {
			return err
		}
	}
	err := d.merge(s, nodegraph.Point{})
	if d.Target == nil {
		s.ClearTarget()
	}
	return err
}

// merge adds the document's nodes and edges to s, shifted by offset.
func (d document) merge(s *nodegraph.Scene, offset nodegraph.Point) error {
	ids := make([]nodegraph.NodeID, len(d.Nodes))
	for i, nd := range d.Nodes {
		geom := nodegraph.DefaultGeometry()
		if nd.Width > 0 {
			geom.Width = nd.Width
		}
		geom.Height = nd.Height
		n, err := s.CreateNode(nd.Name, nd.Inputs, nd.Outputs, geom)
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		if err := s.SetNodePos(n.ID(), nodegraph.Point{X: nd.X, Y: nd.Y}.Add(offset)); err != nil {
			return err
		}
		n.SetMovable(!nd.Pinned)
		ids[i] = n.ID()
	}

	var rejected int
	for _, ed := range d.Edges {
		if !validIndex(ed.Source, ids) || !validIndex(ed.Target, ids) {
			rejected++
			continue
		}
		source := nodegraph.SlotHandle{Node: ids[ed.Source], Family: nodegraph.Output, Index: ed.Output}
		target := nodegraph.SlotHandle{Node: ids[ed.Target], Family: nodegraph.Input, Index: ed.Input}
		e, ok := s.CreateEdge(source, target)
		if !ok {
			rejected++
			continue
		}
		if e.Invert() != ed.Invert {
			s.ToggleInvert(e.ID())
		}
	}

	if d.Target != nil && validIndex(*d.Target, ids) {
		if err := s.SetTarget(ids[*d.Target], d.Pinned); err != nil {
			return err
		}
	}
	if rejected > 0 {
		return fmt.Errorf("%d of %d edges could not be restored", rejected, len(d.Edges))
	}
	return nil
}

func validIndex(i int, ids []nodegraph.NodeID) bool {
	return i >= 0 && i < len(ids)
}

// applyCamera moves v to the saved camera, if any.
func (d document) applyCamera(v *nodegraph.View) {
	if d.Camera == nil || d.Camera.Scale <= 0 {
		return
	}
	v.ScaleView(d.Camera.Scale/v.Scale(), false)
	v.CenterOn(nodegraph.Point{X: d.Camera.X, Y: d.Camera.Y})
}

func saveDocument(path string, d document) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func loadDocument(path string) (document, error) {
	var d document
	data, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

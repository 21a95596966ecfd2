package main

import (
	"sort"

	"nodegraph/internal/nodegraph"
)

const (
	arrangeColumnGap = 120.0
	arrangeRowGap    = 30.0
)

// nodeDepths returns the longest edge path from any root to each node.
// Edges always point downstream and the scene refuses cycles, so the
// relaxation settles within len(nodes) rounds.
func nodeDepths(s *nodegraph.Scene) map[nodegraph.NodeID]int {
	depth := make(map[nodegraph.NodeID]int)
	nodes := s.Nodes()
	edges := s.Edges()
	for i := 0; i < len(nodes); i++ {
		changed := false
		for _, e := range edges {
			if d := depth[e.Source().Node] + 1; d > depth[e.Target().Node] {
				depth[e.Target().Node] = d
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return depth
}

// arrangeColumns lays the graph out left to right: one column per depth,
// each column stacked around y = 0 in its current top to bottom order.
// Pinned nodes keep their position but still take up room. It returns the
// number of nodes moved.
func arrangeColumns(s *nodegraph.Scene) int {
	depth := nodeDepths(s)
	columns := make(map[int][]*nodegraph.Node)
	maxDepth := 0
	for _, n := range s.Nodes() {
		d := depth[n.ID()]
		columns[d] = append(columns[d], n)
		if d > maxDepth {
			maxDepth = d
		}
	}

	moved := 0
	x := 0.0
	for d := 0; d <= maxDepth; d++ {
		column := columns[d]
		if len(column) == 0 {
			continue
		}
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].Pos().Y < column[j].Pos().Y
		})

		width, total := 0.0, 0.0
		for i, n := range column {
			if n.Width() > width {
				width = n.Width()
			}
			total += n.Height()
			if i < len(column)-1 {
				total += arrangeRowGap
			}
		}

		y := -total / 2
		for _, n := range column {
			if n.IsMovable() {
				if err := s.SetNodePos(n.ID(), nodegraph.Point{X: x + (width-n.Width())/2, Y: y}); err == nil {
					moved++
				}
			}
			y += n.Height() + arrangeRowGap
		}
		x += width + arrangeColumnGap
	}
	return moved
}

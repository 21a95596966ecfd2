package main

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"gopkg.in/yaml.v3"

	"nodegraph/internal/nodegraph"
)

var errEmptyClipboard = errors.New("clipboard is empty")

type mappingEntry struct {
	Source  string             `yaml:"source"`
	Targets []nodegraph.Target `yaml:"targets"`
}

// mappingYAML renders a mapping in source order.
func mappingYAML(mapping nodegraph.Mapping) (string, error) {
	entries := make([]mappingEntry, 0, mapping.Len())
	for _, source := range mapping.Sources() {
		entries = append(entries, mappingEntry{Source: source, Targets: mapping.Targets(source)})
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func copyMappingToClipboard(s *nodegraph.Scene) (int, error) {
	mapping := s.Connections()
	if mapping.Len() == 0 {
		return 0, errors.New("target node has no connections")
	}
	text, err := mappingYAML(mapping)
	if err != nil {
		return 0, err
	}
	if err := clipboard.WriteAll(text); err != nil {
		return 0, fmt.Errorf("copy to clipboard: %w", err)
	}
	return mapping.Len(), nil
}

// copySelectionToClipboard puts the selected nodes and the edges between them
// on the clipboard in document form, ready for pasteDocument.
func copySelectionToClipboard(s *nodegraph.Scene) (int, error) {
	nodes := s.SelectedNodes()
	if len(nodes) == 0 {
		return 0, errors.New("no nodes selected")
	}
	d, _ := snapshotNodes(s, nodes)
	data, err := yaml.Marshal(d)
	if err != nil {
		return 0, err
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		return 0, fmt.Errorf("copy to clipboard: %w", err)
	}
	return len(nodes), nil
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// cleanClipboardText normalizes line endings and drops a leading byte order
// mark, which some editors add when copying.
func cleanClipboardText(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// pasteDocument reads a saved graph from the clipboard and adds it to s so
// that its bounding box is centered on at.
func pasteDocument(s *nodegraph.Scene, at nodegraph.Point) (int, error) {
	text, err := readClipboardText()
	if err != nil {
		return 0, fmt.Errorf("read clipboard: %w", err)
	}
	text = cleanClipboardText(text)
	if strings.TrimSpace(text) == "" {
		return 0, errEmptyClipboard
	}

	var d document
	if err := yaml.Unmarshal([]byte(text), &d); err != nil {
		return 0, fmt.Errorf("clipboard does not hold a graph: %w", err)
	}
	if len(d.Nodes) == 0 {
		return 0, errEmptyClipboard
	}

	// The pasted graph keeps following the current target, never pins its own.
	d.Target = nil
	return len(d.Nodes), d.merge(s, at.Sub(d.center()))
}

// center is the middle of the nodes' declared rectangles.
func (d document) center() nodegraph.Point {
	var r nodegraph.Rect
	for i, n := range d.Nodes {
		nr := nodegraph.Rect{X: n.X, Y: n.Y, W: n.Width, H: n.Height}
		if i == 0 {
			r = nr
			continue
		}
		r = r.United(nr)
	}
	return r.Center()
}

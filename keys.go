package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Undo        key.Binding
	Redo        key.Binding
	Save        key.Binding
	Open        key.Binding
	New         key.Binding
	ExportPNG   key.Binding
	ExportTXT   key.Binding
	CopyMapping key.Binding
	CopyGraph   key.Binding
	Paste       key.Binding
	Rename      key.Binding
	Target      key.Binding
	InvertAll   key.Binding
	ConnectAll  key.Binding
	Disconnect  key.Binding
	Pin         key.Binding
	Click       key.Binding
	Cancel      key.Binding
	MultiInput  key.Binding
	Arrange     key.Binding
	Pan         key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	FitSelected key.Binding
	FitAll      key.Binding
	Create      key.Binding
	Delete      key.Binding
	Shrink      key.Binding
	Grow        key.Binding
}

var keys = keyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Undo:        key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
	Redo:        key.NewBinding(key.WithKeys("ctrl+r", "U"), key.WithHelp("ctrl+r", "redo")),
	Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Open:        key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open")),
	New:         key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new graph")),
	ExportPNG:   key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export png")),
	ExportTXT:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "export txt")),
	CopyMapping: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy mapping")),
	CopyGraph:   key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy selection")),
	Paste:       key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste graph")),
	Rename:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename node")),
	Target:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set target")),
	InvertAll:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invert target edges")),
	ConnectAll:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "connect all slots")),
	Disconnect:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "disconnect all slots")),
	Pin:         key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "pin/unpin")),
	Click:       key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "click at cursor")),
	Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel gesture")),
	MultiInput:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle multi-input")),
	Arrange:     key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "arrange")),
	Pan:         key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "pan mode")),
	Up:          key.NewBinding(key.WithKeys("up", "k", "K", "shift+up"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j", "J", "shift+down"), key.WithHelp("↓/j", "down")),
	Left:        key.NewBinding(key.WithKeys("left", "h", "H", "shift+left"), key.WithHelp("←/h", "left")),
	Right:       key.NewBinding(key.WithKeys("right", "l", "L", "shift+right"), key.WithHelp("→/l", "right")),
	ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	FitSelected: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit selection")),
	FitAll:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "fit all")),
	Create:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new node")),
	Delete:      key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "delete")),
	Shrink:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "shorter")),
	Grow:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "taller")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Create, k.Delete, k.FitAll, k.CopyMapping, k.Undo, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Click, k.Cancel, k.Create, k.Delete, k.Rename, k.Shrink, k.Grow, k.Pin, k.Arrange, k.CopyGraph, k.Paste},
		{k.Target, k.InvertAll, k.ConnectAll, k.Disconnect, k.MultiInput, k.CopyMapping},
		{k.Up, k.Down, k.Left, k.Right, k.Pan, k.ZoomIn, k.ZoomOut, k.FitSelected, k.FitAll},
		{k.Undo, k.Redo, k.Save, k.Open, k.New, k.ExportPNG, k.ExportTXT, k.Help, k.Quit},
	}
}

// viewKey reports whether msg is one of the camera and editing keys the
// View handles itself.
func (k keyMap) viewKey(msg tea.KeyMsg) bool {
	return key.Matches(msg, k.ZoomIn, k.ZoomOut, k.FitSelected, k.FitAll, k.Create, k.Delete, k.Shrink, k.Grow)
}

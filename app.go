package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"nodegraph/internal/nodegraph"
)

const statusRows = 1

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39")).Bold(true).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
)

// newScene builds a scene wired to the configured connection rules.
func newScene(cfg *Config, canvas nodegraph.Canvas, log *zap.Logger) *nodegraph.Scene {
	opts := nodegraph.Options{
		MultipleInputAllowed: cfg.MultipleInputAllowed,
		Canvas:               canvas,
		Logger:               log,
	}
	if cfg.TranslateNames {
		opts.Translator = nodegraph.AttributeShortNames()
	}
	s := nodegraph.NewScene(opts)
	for _, pair := range cfg.Exclusive {
		s.AddExclusivePair(pair.Source, pair.Target)
	}
	return s
}

func initialModel(cfg *Config, log *zap.Logger) model {
	input := textinput.New()
	input.CharLimit = 256
	input.Prompt = ""

	m := model{
		config: cfg,
		log:    log,
		keys:   keys,
		help:   help.New(),
		input:  input,
		mode:   ModeNormal,
	}
	m.buffer = m.newBuffer("")
	return m
}

func (m *model) newBuffer(filename string) Buffer {
	canvas := NewCanvas(m.config.CellWidth, m.config.CellHeight)
	scene := newScene(m.config, canvas, m.log)
	w, h := m.viewportSize()
	view := nodegraph.NewView(scene, w, h, nodegraph.ViewOptions{Zoom: true, Movable: true})
	return Buffer{
		scene:     scene,
		view:      view,
		canvas:    canvas,
		undoStack: []Action{},
		redoStack: []Action{},
		filename:  filename,
	}
}

func (m *model) canvasRows() int {
	rows := m.height - statusRows
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *model) viewportSize() (float64, float64) {
	cols := m.width
	if cols < 1 {
		cols = 1
	}
	return float64(cols) * m.config.CellWidth, float64(m.canvasRows()) * m.config.CellHeight
}

// openFile replaces the current graph with the one stored at path. A missing
// file starts an empty graph that will be saved there.
func (m *model) openFile(path string) error {
	d, err := loadDocument(path)
	if errors.Is(err, fs.ErrNotExist) {
		m.buffer = m.newBuffer(path)
		return nil
	}
	if err != nil {
		return err
	}

	buf := m.newBuffer(path)
	restoreErr := d.restore(buf.scene)
	if d.Camera != nil {
		d.applyCamera(buf.view)
	} else {
		buf.view.FitView(false, nodegraph.DefaultPadding)
	}
	m.buffer = buf
	m.log.Info("graph opened",
		zap.String("file", path),
		zap.Int("nodes", len(d.Nodes)),
		zap.Int("edges", len(d.Edges)))
	return restoreErr
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.buffer.view.Resize(m.viewportSize())
		m.buffer.canvas.RequestRedraw()
		m.ensureCursorInBounds()
		return m, nil

	case tea.MouseMsg:
		if m.mode == ModeNormal && !m.showHelp {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeRename:
			return m.updateRename(msg)
		case ModeFileInput:
			return m.updateFileInput(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		}
		if m.showHelp {
			if key.Matches(msg, m.keys.Help, m.keys.Quit) || msg.Type == tea.KeyEsc {
				m.showHelp = false
			}
			return m, nil
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	if msg.Y >= m.canvasRows() && !m.pressed {
		return
	}
	buf := &m.buffer
	m.cursorX, m.cursorY = msg.X, msg.Y
	m.ensureCursorInBounds()
	ev := nodegraph.PointerEvent{
		Pos:  buf.canvas.CellToView(msg.X, msg.Y),
		Mods: nodegraph.InputModifiers{Shift: msg.Shift, Ctrl: msg.Ctrl, Alt: msg.Alt},
	}

	switch msg.Type {
	case tea.MouseLeft, tea.MouseMiddle:
		ev.Button = nodegraph.ButtonLeft
		if msg.Type == tea.MouseMiddle {
			ev.Button = nodegraph.ButtonMiddle
		}
		if m.pressed {
			// Some terminals repeat the button while dragging.
			buf.view.Move(ev)
			return
		}
		m.clearMessages()
		m.pressed = true
		m.beginChange()
		buf.view.Press(ev)
		if m.isDoubleClick(msg.X, msg.Y) {
			buf.view.DoubleClick(ev)
		}
	case tea.MouseMotion:
		if m.pressed {
			ev.Button = nodegraph.ButtonLeft
		}
		buf.view.Move(ev)
	case tea.MouseRelease:
		if !m.pressed {
			return
		}
		m.pressed = false
		ev.Button = nodegraph.ButtonLeft
		buf.view.Release(ev)
		m.commitGesture()
	case tea.MouseWheelUp:
		buf.view.Wheel(wheelDelta, ev.Pos)
	case tea.MouseWheelDown:
		buf.view.Wheel(-wheelDelta, ev.Pos)
	}
}

// wheelDelta is one notch of a classic mouse wheel.
const wheelDelta = 120

func (m *model) isDoubleClick(x, y int) bool {
	now := time.Now()
	double := x == m.lastCellX && y == m.lastCellY &&
		now.Sub(m.lastClick) < doubleClickWindow*time.Millisecond
	m.lastClick, m.lastCellX, m.lastCellY = now, x, y
	if double {
		// A third click starts over.
		m.lastClick = time.Time{}
	}
	return double
}

// clickAtCursor presses and releases the left button at the keyboard cursor.
// A press that starts an edge drag is held until the next click, so edges can
// be drawn by moving the cursor in between.
func (m *model) clickAtCursor() {
	buf := &m.buffer
	ev := nodegraph.PointerEvent{Pos: buf.canvas.CellToView(m.cursorX, m.cursorY), Button: nodegraph.ButtonLeft}
	if m.keyDrag {
		m.keyDrag = false
		buf.view.Release(ev)
		m.commitGesture()
		return
	}
	m.beginChange()
	buf.view.Press(ev)
	if buf.scene.IsInteractiveEdge() {
		m.keyDrag = true
		return
	}
	buf.view.Release(ev)
	m.commitGesture()
}

// cancelGesture drops whatever the pointer was doing, the way losing focus
// does. An edge drag ends without connecting.
func (m *model) cancelGesture() {
	buf := &m.buffer
	buf.view.FocusOut()
	if buf.scene.IsInteractiveEdge() {
		buf.scene.StopInteractiveEdge(nodegraph.HitResult{})
	}
	m.keyDrag = false
	m.pressed = false
	m.pending = nil
	buf.canvas.RequestRedraw()
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

func (m *model) setError(err error) {
	m.errorMessage = err.Error()
	m.successMessage = ""
	m.log.Warn("command failed", zap.Error(err))
}

func (m model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.clearMessages()
	buf := &m.buffer
	s := buf.scene

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.config.Confirmations && buf.modified {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.cancelGesture()
		m.showHelp = true

	case key.Matches(msg, m.keys.Cancel):
		m.cancelGesture()

	case key.Matches(msg, m.keys.Undo):
		m.undo()

	case key.Matches(msg, m.keys.Redo):
		m.redo()

	case key.Matches(msg, m.keys.Save):
		m.startFileInput(FileOpSave, strings.TrimSuffix(buf.filename, documentExt))

	case key.Matches(msg, m.keys.Open):
		m.startFileInput(FileOpOpen, "")

	case key.Matches(msg, m.keys.ExportPNG):
		m.startFileInput(FileOpSavePNG, m.exportBaseName())

	case key.Matches(msg, m.keys.ExportTXT):
		m.startFileInput(FileOpSaveVisualTXT, m.exportBaseName())

	case key.Matches(msg, m.keys.New):
		if m.config.Confirmations && buf.modified {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmNewGraph
			return m, nil
		}
		m.buffer = m.newBuffer("")

	case key.Matches(msg, m.keys.CopyMapping):
		if n, err := copyMappingToClipboard(s); err != nil {
			m.setError(err)
		} else {
			m.successMessage = fmt.Sprintf("Copied mapping of %d sources", n)
		}

	case key.Matches(msg, m.keys.CopyGraph):
		if n, err := copySelectionToClipboard(s); err != nil {
			m.setError(err)
		} else {
			m.successMessage = fmt.Sprintf("Copied %d nodes", n)
		}

	case key.Matches(msg, m.keys.Paste):
		at := buf.view.MapToScene(buf.canvas.CellToView(m.cursorX, m.cursorY))
		m.beginChange()
		n, err := pasteDocument(s, at)
		m.commitChange(ActionPaste)
		if err != nil {
			m.setError(err)
		} else {
			m.successMessage = fmt.Sprintf("Pasted %d nodes", n)
		}

	case key.Matches(msg, m.keys.Rename):
		nodes := s.SelectedNodes()
		if len(nodes) != 1 {
			m.errorMessage = "Select one node to rename"
			return m, nil
		}
		m.cancelGesture()
		m.renameTarget = nodes[0].ID()
		m.input.SetValue(nodes[0].Name())
		m.input.CursorEnd()
		m.input.Focus()
		m.mode = ModeRename

	case key.Matches(msg, m.keys.Target):
		nodes := s.SelectedNodes()
		if len(nodes) != 1 {
			m.errorMessage = "Select one node as target"
			return m, nil
		}
		m.beginChange()
		if err := s.SetTargetNode(nodes[0].ID()); err != nil {
			m.setError(err)
		} else {
			m.successMessage = "Target is " + nodes[0].Name()
		}
		m.commitChange(ActionConnect)

	case key.Matches(msg, m.keys.InvertAll):
		target := s.TargetNode()
		if target == nil {
			m.errorMessage = "No target node"
			return m, nil
		}
		invert := !allInputsInverted(s, target.ID())
		m.beginChange()
		if err := s.ToggleInvertAllEdges(target.ID(), invert); err != nil {
			m.setError(err)
		}
		m.commitChange(ActionInvert)

	case key.Matches(msg, m.keys.ConnectAll), key.Matches(msg, m.keys.Disconnect):
		create := key.Matches(msg, m.keys.ConnectAll)
		source, target, err := connectPair(s)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.beginChange()
		n, err := s.ConnectAllSlots(source.ID(), target.ID(), create)
		m.commitChange(ActionConnect)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		verb := "Connected"
		if !create {
			verb = "Disconnected"
		}
		m.successMessage = fmt.Sprintf("%s %d slots of %s and %s", verb, n, source.Name(), target.Name())

	case key.Matches(msg, m.keys.MultiInput):
		s.SetMultipleInputAllowed(!s.MultipleInputAllowed())
		m.successMessage = fmt.Sprintf("Multiple inputs: %v", s.MultipleInputAllowed())

	case key.Matches(msg, m.keys.Pin):
		nodes := s.SelectedNodes()
		if len(nodes) == 0 {
			m.errorMessage = "No nodes selected"
			return m, nil
		}
		m.beginChange()
		pin := nodes[0].IsMovable()
		for _, n := range nodes {
			n.SetMovable(!pin)
		}
		m.commitChange(ActionMove)
		buf.canvas.RequestRedraw()

	case key.Matches(msg, m.keys.Arrange):
		m.beginChange()
		moved := arrangeColumns(s)
		m.commitChange(ActionArrange)
		buf.view.FitView(false, nodegraph.DefaultPadding)
		m.successMessage = fmt.Sprintf("Arranged %d nodes", moved)

	case key.Matches(msg, m.keys.Pan):
		m.panMode = !m.panMode

	case key.Matches(msg, m.keys.Click):
		m.clickAtCursor()

	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right):
		m.handleNavigation(msg)

	case m.keys.viewKey(msg):
		m.beginChange()
		buf.view.Key(msg.String())
		m.commitGesture()
	}
	return m, nil
}

// connectPair picks the selected node as source and the target node as
// destination for the bulk connect commands.
func connectPair(s *nodegraph.Scene) (*nodegraph.Node, *nodegraph.Node, error) {
	target := s.TargetNode()
	if target == nil {
		return nil, nil, errors.New("no target node")
	}
	for _, n := range s.SelectedNodes() {
		if n != target {
			return n, target, nil
		}
	}
	return nil, nil, errors.New("select a source node other than the target")
}

func allInputsInverted(s *nodegraph.Scene, target nodegraph.NodeID) bool {
	found := false
	for _, e := range s.Edges() {
		if e.Target().Node != target {
			continue
		}
		if !e.Invert() {
			return false
		}
		found = true
	}
	return found
}

func (m *model) exportBaseName() string {
	if m.buffer.filename == "" {
		return "graph"
	}
	return strings.TrimSuffix(filepath.Base(m.buffer.filename), documentExt)
}

func (m *model) startFileInput(op FileOperation, value string) {
	m.cancelGesture()
	m.fileOp = op
	m.mode = ModeFileInput
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *model) leaveInput() {
	m.mode = ModeNormal
	m.input.Blur()
	m.input.SetValue("")
}

func (m model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.leaveInput()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		m.leaveInput()
		if name == "" {
			m.errorMessage = "Name cannot be empty"
			return m, nil
		}
		m.beginChange()
		if err := m.buffer.scene.RenameNode(m.renameTarget, name); err != nil {
			m.setError(err)
		}
		m.commitChange(ActionRename)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.leaveInput()
		m.clearMessages()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.errorMessage = "Please enter a filename"
			return m, nil
		}
		m.leaveInput()
		m.runFileOperation(name, false)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func fileExtension(op FileOperation) string {
	switch op {
	case FileOpSavePNG:
		return ".png"
	case FileOpSaveVisualTXT:
		return ".txt"
	default:
		return documentExt
	}
}

// runFileOperation performs the pending file operation on name. Writes to an
// existing file other than the buffer's own ask first unless overwrite is set.
func (m *model) runFileOperation(name string, overwrite bool) {
	ext := fileExtension(m.fileOp)
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	path := m.config.GetSavePath(name)
	buf := &m.buffer

	if m.fileOp != FileOpOpen && !overwrite && path != buf.filename && m.config.Confirmations {
		if _, err := os.Stat(path); err == nil {
			m.pendingPath, _ = filepath.Abs(path)
			m.mode = ModeConfirm
			m.confirmAction = ConfirmOverwriteFile
			return
		}
	}

	var err error
	switch m.fileOp {
	case FileOpSave:
		err = saveDocument(path, snapshotWithCamera(buf.scene, buf.view))
		if err == nil {
			buf.filename = path
			buf.modified = false
		}
	case FileOpOpen:
		err = m.openFile(path)
	case FileOpSavePNG:
		err = exportPNG(buf.scene, path)
	case FileOpSaveVisualTXT:
		err = exportVisualTXT(path, buf.canvas.Render(buf.view, m.width, m.canvasRows(), false))
	}
	if err != nil {
		m.setError(err)
		return
	}

	absPath, _ := filepath.Abs(path)
	if m.fileOp == FileOpOpen {
		m.successMessage = "Opened " + absPath
	} else {
		m.successMessage = "Saved to " + absPath
	}
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmNewGraph:
			m.buffer = m.newBuffer("")
		case ConfirmOverwriteFile:
			m.runFileOperation(m.pendingPath, true)
			m.pendingPath = ""
		}
	case "n", "esc", "ctrl+c":
		m.mode = ModeNormal
		m.pendingPath = ""
	}
	return m, nil
}

func (m model) View() string {
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}

	buf := &m.buffer
	rows := buf.canvas.Render(buf.view, m.width, m.canvasRows(), true)
	if m.mode == ModeNormal && !m.pressed {
		rows = m.withCursor(rows)
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	return b.String()
}

// withCursor marks the keyboard cursor cell. The styled rows cannot be
// indexed by cell, so the cursor row is rendered again without styles.
func (m *model) withCursor(rows []string) []string {
	if m.cursorY < 0 || m.cursorY >= len(rows) {
		return rows
	}
	plain := m.buffer.canvas.Render(m.buffer.view, m.width, m.canvasRows(), false)
	line := []rune(plain[m.cursorY])
	if m.cursorX < 0 || m.cursorX >= len(line) {
		return rows
	}
	out := make([]string, len(rows))
	copy(out, rows)
	out[m.cursorY] = string(line[:m.cursorX]) + cursorStyle.Render(string(line[m.cursorX])) + string(line[m.cursorX+1:])
	return out
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		if m.panMode {
			return "PAN"
		}
		return "NORMAL"
	case ModeRename:
		return "RENAME"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) statusLine() string {
	left := modeStyle.Render(m.modeString())

	var body string
	switch m.mode {
	case ModeRename:
		body = promptStyle.Render(" Rename: ") + m.input.View()
	case ModeFileInput:
		body = promptStyle.Render(" "+m.filePrompt()+": ") + m.input.View()
	case ModeConfirm:
		body = promptStyle.Render(" " + m.confirmPrompt() + " (y/n)")
	default:
		body = " " + m.summary()
		switch {
		case m.errorMessage != "":
			body += " | " + errorStyle.Render(m.errorMessage)
		case m.successMessage != "":
			body += " | " + successStyle.Render(m.successMessage)
		default:
			body += " | " + m.help.ShortHelpView(m.keys.ShortHelp())
		}
	}

	line := left + statusStyle.Render(body)
	if w := lipgloss.Width(line); w < m.width {
		line += statusStyle.Render(strings.Repeat(" ", m.width-w))
	}
	return line
}

func (m model) summary() string {
	buf := &m.buffer
	s := buf.scene
	name := "[new]"
	if buf.filename != "" {
		name = filepath.Base(buf.filename)
	}
	if buf.modified {
		name += "*"
	}
	target := "-"
	if t := s.TargetNode(); t != nil {
		target = t.Name()
		if s.TargetPinned() {
			target += " (pinned)"
		}
	}
	return fmt.Sprintf("%s | %d nodes %d edges | target %s | %.0f%%",
		name, len(s.Nodes()), s.EdgeCount(), target, buf.view.Scale()*100)
}

func (m model) filePrompt() string {
	switch m.fileOp {
	case FileOpSave:
		return "Save as"
	case FileOpOpen:
		return "Open"
	case FileOpSavePNG:
		return "Export PNG"
	case FileOpSaveVisualTXT:
		return "Export text"
	default:
		return "File"
	}
}

func (m model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmQuit:
		return "Quit without saving?"
	case ConfirmNewGraph:
		return "Discard this graph?"
	case ConfirmOverwriteFile:
		return "Overwrite " + filepath.Base(m.pendingPath) + "?"
	default:
		return "Are you sure?"
	}
}

package main

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"go.uber.org/zap"

	"nodegraph/internal/nodegraph"
)

// Buffer is one open graph with its camera and history.
type Buffer struct {
	scene     *nodegraph.Scene
	view      *nodegraph.View
	canvas    *Canvas
	undoStack []Action
	redoStack []Action
	filename  string
	modified  bool
}

type model struct {
	width    int
	height   int
	cursorX  int
	cursorY  int
	panMode  bool
	buffer   Buffer
	config   *Config
	log      *zap.Logger
	keys     keyMap
	help     help.Model
	showHelp bool
	mode     Mode

	input         textinput.Model
	fileOp        FileOperation
	confirmAction ConfirmAction
	renameTarget  nodegraph.NodeID
	pendingPath   string

	pressed   bool
	keyDrag   bool
	lastClick time.Time
	lastCellX int
	lastCellY int
	pending   *document

	errorMessage   string
	successMessage string
}

// Action is one undoable edit. Data is the graph after the edit and Inverse
// the graph before it.
type Action struct {
	Type    ActionType
	Data    document
	Inverse document
}

package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeRename
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpOpen
	FileOpSavePNG
	FileOpSaveVisualTXT
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmNewGraph
	ConfirmOverwriteFile
)

type ActionType int

const (
	ActionAddNode ActionType = iota
	ActionDeleteSelection
	ActionConnect
	ActionMove
	ActionResize
	ActionRename
	ActionInvert
	ActionArrange
	ActionPaste
)

func (a ActionType) String() string {
	switch a {
	case ActionAddNode:
		return "add node"
	case ActionDeleteSelection:
		return "delete"
	case ActionConnect:
		return "connect"
	case ActionMove:
		return "move"
	case ActionResize:
		return "resize"
	case ActionRename:
		return "rename"
	case ActionInvert:
		return "invert"
	case ActionArrange:
		return "arrange"
	case ActionPaste:
		return "paste"
	default:
		return "edit"
	}
}

const (
	documentExt       = ".yaml"
	defaultCellWidth  = 8.0
	defaultCellHeight = 16.0
	doubleClickWindow = 400 // milliseconds
	panStep           = 4   // cells per pan key press
	maxUndo           = 200
)

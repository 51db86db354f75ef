package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCoursesFetched MsgKind = iota
	MsgProgressUpdate
	MsgImportComplete
)

type coursesFetched struct {
	courses []*models.Course
	err     error
}

type importComplete struct {
	result *tasks.ImportResult
	err    error
}

// coursesFetchedMsg is the constructor for [MsgCoursesFetched]
func coursesFetchedMsg(courses []*models.Course, err error) Msg {
	return Msg{kind: MsgCoursesFetched, data: coursesFetched{courses, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// importCompleteMsg is the constructor for [MsgImportComplete]
func importCompleteMsg(result *tasks.ImportResult, err error) Msg {
	return Msg{kind: MsgImportComplete, data: importComplete{result, err}}
}

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/resonate/internal/tasks"
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
	MsgProgressUpdate MsgKind = iota
	MsgProfileFetched
	MsgProfileShared
)

type profileResult struct {
	profile *tasks.Profile
	err     error
}

type shareResult struct {
	code    string
	user    string
	message string
	err     error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// profileFetchedMsg is the constructor for [MsgProfileFetched]
func profileFetchedMsg(profile *tasks.Profile, err error) Msg {
	return Msg{kind: MsgProfileFetched, data: profileResult{profile, err}}
}

// profileSharedMsg is the constructor for [MsgProfileShared]
func profileSharedMsg(code, user, message string, err error) Msg {
	return Msg{kind: MsgProfileShared, data: shareResult{code, user, message, err}}
}

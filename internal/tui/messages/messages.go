package messages

import (
	"habitmap/internal/render"
	"habitmap/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewType represents the different views in the application
type ViewType int

const (
	ViewHeatmap ViewType = iota
	ViewSearch
	ViewPreview
)

// SwitchViewMsg is sent by child views to switch to a different view
type SwitchViewMsg struct {
	View ViewType
}

// OpenNoteMsg requests the preview of a single note
type OpenNoteMsg struct {
	Path string
}

// SearchMsg requests a vault search, e.g. for a cell backed by several notes
type SearchMsg struct {
	Query string
}

// RenderDoneMsg carries a finished render for one mounted container
type RenderDoneMsg struct {
	Update render.Update
}

// RefreshMsg asks for every mounted container to be rendered again
type RefreshMsg struct{}

// RefreshDoneMsg carries the still current results of a full refresh
type RefreshDoneMsg struct {
	Updates []render.Update
}

// UnmountMsg removes a container from the registry
type UnmountMsg struct {
	ID string
}

// ToggleAggregationMsg flips the session aggregation between sum and average
type ToggleAggregationMsg struct{}

// WatchMsg wraps a file system change
type WatchMsg struct {
	Event watch.Event
}

// WatchClosedMsg is sent once the watcher stops delivering events
type WatchClosedMsg struct{}

// EditorFinishedMsg is sent when the external editor exits
type EditorFinishedMsg struct {
	Path string
	Err  error
}

// StatusMsg shows a transient line in the status bar
type StatusMsg struct {
	Text  string
	Error bool
}

func SwitchView(v ViewType) tea.Cmd {
	return func() tea.Msg {
		return SwitchViewMsg{View: v}
	}
}

func OpenNote(path string) tea.Cmd {
	return func() tea.Msg {
		return OpenNoteMsg{Path: path}
	}
}

func Search(query string) tea.Cmd {
	return func() tea.Msg {
		return SearchMsg{Query: query}
	}
}

func Status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text, Error: isErr}
	}
}

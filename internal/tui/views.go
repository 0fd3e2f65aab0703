package tui

import "habitmap/internal/tui/messages"

// Re-export types from messages package for convenience
type ViewType = messages.ViewType

const (
	ViewHeatmap = messages.ViewHeatmap
	ViewSearch  = messages.ViewSearch
	ViewPreview = messages.ViewPreview
)

type SwitchViewMsg = messages.SwitchViewMsg
type OpenNoteMsg = messages.OpenNoteMsg
type SearchMsg = messages.SearchMsg
type RenderDoneMsg = messages.RenderDoneMsg
type RefreshMsg = messages.RefreshMsg
type WatchMsg = messages.WatchMsg

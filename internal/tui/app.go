package tui

import (
	"context"
	"fmt"
	"strings"

	"habitmap/internal/blocks"
	"habitmap/internal/config"
	"habitmap/internal/habit"
	"habitmap/internal/logs"
	"habitmap/internal/notes"
	"habitmap/internal/render"
	heatmapview "habitmap/internal/tui/heatmap"
	"habitmap/internal/tui/messages"
	previewview "habitmap/internal/tui/preview"
	searchview "habitmap/internal/tui/search"
	"habitmap/internal/tui/shared"
	"habitmap/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options holds what the app needs to start
type Options struct {
	Config     *config.Config
	Flags      config.CLIFlags // reapplied when the settings file changes
	Vault      *notes.Vault
	Containers []render.Container
	Discover   bool // containers came from a vault-wide scan
	Watcher    *watch.Watcher
}

// AppModel is the root model: a column of heatmap containers plus the search
// and preview views a click navigates to
type AppModel struct {
	cfg         *config.Config
	flags       config.CLIFlags
	vault       *notes.Vault
	pipeline    *render.Pipeline
	registry    *render.Registry
	watcher     *watch.Watcher
	ctx         context.Context
	cancel      context.CancelFunc
	discover    bool
	panes       []heatmapview.Model
	focus       int
	currentView ViewType
	searchView  searchview.Model
	previewView previewview.Model
	showHelp    bool
	status      string
	statusErr   bool
	width       int
	height      int
	ready       bool
}

// NewAppModel creates the root application model and mounts the containers
func NewAppModel(opts Options) AppModel {
	ctx, cancel := context.WithCancel(context.Background())

	registry := render.NewRegistry()
	for _, c := range opts.Containers {
		registry.Mount(c)
	}

	m := AppModel{
		cfg:         opts.Config,
		flags:       opts.Flags,
		vault:       opts.Vault,
		pipeline:    render.NewPipeline(opts.Vault, opts.Config.RenderOptions()),
		registry:    registry,
		watcher:     opts.Watcher,
		ctx:         ctx,
		cancel:      cancel,
		discover:    opts.Discover,
		currentView: ViewHeatmap,
		searchView:  searchview.New(opts.Vault),
		previewView: previewview.New(),
	}
	m.syncPanes()
	return m
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForWatch(m.watcher)}
	for _, p := range m.panes {
		cmds = append(cmds, m.renderCmd(p.ID()))
	}
	return tea.Batch(cmds...)
}

// renderCmd renders one container off the UI goroutine. A stale result
// yields no message.
func (m AppModel) renderCmd(id string) tea.Cmd {
	ctx, reg, p := m.ctx, m.registry, m.pipeline
	return func() tea.Msg {
		u, ok := reg.Render(ctx, p, id)
		if !ok {
			return nil
		}
		return messages.RenderDoneMsg{Update: u}
	}
}

func (m AppModel) refreshCmd() tea.Cmd {
	ctx, reg, p := m.ctx, m.registry, m.pipeline
	return func() tea.Msg {
		return messages.RefreshDoneMsg{Updates: reg.Refresh(ctx, p)}
	}
}

func waitForWatch(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return messages.WatchClosedMsg{}
		}
		return messages.WatchMsg{Event: ev}
	}
}

// syncPanes rebuilds the pane list from the registry, keeping cursor state
// of containers that stay mounted.
func (m *AppModel) syncPanes() {
	existing := make(map[string]heatmapview.Model, len(m.panes))
	for _, p := range m.panes {
		existing[p.ID()] = p
	}

	containers := m.registry.Containers()
	panes := make([]heatmapview.Model, 0, len(containers))
	for _, c := range containers {
		p, ok := existing[c.ID]
		if !ok {
			p = heatmapview.New(c)
		}
		p.SetContainer(c)
		p.SetWidth(m.width)
		panes = append(panes, p)
	}
	m.panes = panes

	if m.focus >= len(m.panes) {
		m.focus = max(0, len(m.panes)-1)
	}
	m.setFocus(m.focus)
}

func (m *AppModel) setFocus(i int) {
	m.focus = i
	for j := range m.panes {
		m.panes[j].SetFocused(j == i)
	}
}

func (m *AppModel) applyUpdate(u render.Update) {
	if !m.registry.IsCurrent(u.ID, u.Gen) {
		return
	}
	for i := range m.panes {
		if m.panes[i].ID() == u.ID {
			m.panes[i].SetResult(u.Result)
			return
		}
	}
}

// remountNote re-reads the blocks of a note: changed blocks get the new
// source, removed ones are unmounted. It reports whether anything mounted
// belongs to the note.
func (m *AppModel) remountNote(path string) bool {
	found, err := blocks.Containers(path)
	if err != nil {
		logs.Logger.Debugw("note without readable blocks", "path", path, "error", err)
	}

	touched := false
	keep := make(map[string]bool, len(found))
	for _, c := range found {
		m.registry.Mount(c)
		keep[c.ID] = true
		touched = true
	}
	for _, c := range m.registry.Containers() {
		if c.Note == path && !keep[c.ID] {
			m.registry.Unmount(c.ID)
			touched = true
		}
	}
	if touched {
		m.syncPanes()
	}
	return touched
}

func (m AppModel) mountedNote(path string) bool {
	for _, c := range m.registry.Containers() {
		if c.Note == path {
			return true
		}
	}
	return false
}

func (m *AppModel) handleWatch(ev watch.Event) tea.Cmd {
	switch ev.Kind {
	case watch.SettingsChanged:
		cfg, err := config.Load(m.flags)
		if err != nil {
			logs.Logger.Warnw("settings reload failed", "error", err)
			m.setStatus("settings not reloaded: "+err.Error(), true)
			return nil
		}
		m.cfg = cfg
		m.pipeline.SetOptions(cfg.RenderOptions())
		m.setStatus("settings reloaded", false)

	case watch.NotesChanged:
		if m.previewView.Path() == ev.Path {
			if err := m.previewView.Reload(); err != nil {
				m.setStatus(err.Error(), true)
			}
		}
		if m.discover || m.mountedNote(ev.Path) {
			m.remountNote(ev.Path)
		}
	}
	return m.refreshCmd()
}

func (m *AppModel) toggleAggregation() {
	opts := m.pipeline.Options()
	if opts.Aggregation == habit.Average {
		opts.Aggregation = habit.Sum
	} else {
		opts.Aggregation = habit.Average
	}
	m.pipeline.SetOptions(opts)
	m.setStatus(fmt.Sprintf("aggregation: %s", opts.Aggregation), false)
}

func (m *AppModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *AppModel) quit() tea.Cmd {
	m.cancel()
	return tea.Quit
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		contentHeight := msg.Height - 3 // Reserve space for status bar
		for i := range m.panes {
			m.panes[i].SetWidth(msg.Width)
		}
		m.searchView.SetSize(msg.Width, contentHeight)
		m.previewView.SetSize(msg.Width, contentHeight)
		return m, nil

	case messages.RenderDoneMsg:
		m.applyUpdate(msg.Update)
		return m, nil

	case messages.RefreshDoneMsg:
		for _, u := range msg.Updates {
			m.applyUpdate(u)
		}
		return m, nil

	case messages.RefreshMsg:
		return m, m.refreshCmd()

	case messages.WatchMsg:
		return m, tea.Batch(m.handleWatch(msg.Event), waitForWatch(m.watcher))

	case messages.WatchClosedMsg:
		logs.Logger.Debugw("watcher closed")
		return m, nil

	case messages.OpenNoteMsg:
		if err := m.previewView.Open(msg.Path); err != nil {
			logs.Logger.Warnw("cannot open note", "path", msg.Path, "error", err)
			m.setStatus(err.Error(), true)
		}
		m.currentView = ViewPreview
		return m, nil

	case messages.SearchMsg:
		m.currentView = ViewSearch
		return m, m.searchView.Start(msg.Query)

	case searchview.ResultsMsg:
		var cmd tea.Cmd
		m.searchView, cmd = m.searchView.Update(msg)
		return m, cmd

	case messages.EditorFinishedMsg:
		if msg.Err != nil {
			m.setStatus("editor: "+msg.Err.Error(), true)
		}
		if err := m.previewView.Reload(); err != nil {
			m.setStatus(err.Error(), true)
		}
		if m.discover || m.mountedNote(msg.Path) {
			m.remountNote(msg.Path)
		}
		return m, m.refreshCmd()

	case messages.SwitchViewMsg:
		m.currentView = msg.View
		return m, nil

	case messages.StatusMsg:
		m.setStatus(msg.Text, msg.Error)
		return m, nil

	case messages.UnmountMsg:
		if m.registry.Unmount(msg.ID) {
			m.syncPanes()
		}
		return m, nil

	case messages.ToggleAggregationMsg:
		m.toggleAggregation()
		return m, m.refreshCmd()

	case tea.KeyMsg:
		// Global keys: ctrl+c always quits
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}

		// Dismiss help overlay on any key
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		// Let the search filter take every key while typing
		if !(m.currentView == ViewSearch && m.searchView.IsTyping()) {
			switch msg.String() {
			case "q":
				return m, m.quit()
			case "?":
				m.showHelp = true
				return m, nil
			}
		}

		if m.currentView == ViewHeatmap {
			if handled, cmd := m.updateHeatmapKeys(msg); handled {
				return m, cmd
			}
		}
	}

	// Dispatch to current child view
	var cmd tea.Cmd
	switch m.currentView {
	case ViewHeatmap:
		if m.focus < len(m.panes) {
			m.panes[m.focus], cmd = m.panes[m.focus].Update(msg)
		}
	case ViewSearch:
		m.searchView, cmd = m.searchView.Update(msg)
	case ViewPreview:
		m.previewView, cmd = m.previewView.Update(msg)
	}
	return m, cmd
}

// updateHeatmapKeys handles the keys that act on the container list rather
// than on the focused grid.
func (m *AppModel) updateHeatmapKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if len(m.panes) > 0 {
			m.setFocus((m.focus + 1) % len(m.panes))
		}
		return true, nil
	case "shift+tab":
		if len(m.panes) > 0 {
			m.setFocus((m.focus - 1 + len(m.panes)) % len(m.panes))
		}
		return true, nil
	case "a":
		return true, func() tea.Msg { return messages.ToggleAggregationMsg{} }
	case "r":
		m.setStatus("refreshing", false)
		return true, m.refreshCmd()
	case "x":
		if m.focus < len(m.panes) {
			id := m.panes[m.focus].ID()
			return true, func() tea.Msg { return messages.UnmountMsg{ID: id} }
		}
		return true, nil
	case "/":
		return true, messages.Search("")
	case "o":
		if m.focus < len(m.panes) {
			if note := m.panes[m.focus].Container().Note; note != "" {
				return true, messages.OpenNote(note)
			}
		}
		return true, nil
	}
	return false, nil
}

func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return shared.RenderHelpPopup("habitmap - Keyboard Shortcuts", helpSections(), m.width, m.height)
	}

	contentHeight := m.height - 3
	var content string
	switch m.currentView {
	case ViewSearch:
		content = m.searchView.View()
	case ViewPreview:
		content = m.previewView.View()
	default:
		content = m.renderPanes(contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar())
}

// renderPanes stacks the containers and scrolls so the focused one starts
// on screen.
func (m AppModel) renderPanes(height int) string {
	if len(m.panes) == 0 {
		msg := TitleStyle.Render("No heatmap-habit blocks found") + "\n" +
			HelpStyle.Render("Add a ```heatmap-habit block to a note, or press / to search the vault")
		return shared.CenterContent(msg, height)
	}

	var lines []string
	focusLine := 0
	for i, p := range m.panes {
		if i == m.focus {
			focusLine = len(lines)
		}
		lines = append(lines, strings.Split(p.View(), "\n")...)
	}

	if len(lines) <= height {
		return strings.Join(lines, "\n")
	}
	start := min(focusLine, len(lines)-height)
	return strings.Join(lines[start:start+height], "\n")
}

func (m AppModel) renderStatusBar() string {
	var hints string
	switch m.currentView {
	case ViewSearch:
		hints = m.searchView.HintText()
	case ViewPreview:
		hints = m.previewView.HintText()
	default:
		hints = "tab:next  a:aggregation  r:refresh  x:close  o:open note  /:search  ?:help  q:quit"
		if m.focus < len(m.panes) {
			hints = m.panes[m.focus].HintText() + "  " + hints
		}
	}

	left := aggregationStyle.Render(string(m.pipeline.Options().Aggregation))
	if m.status != "" {
		style := statusInfoStyle
		if m.statusErr {
			style = statusErrorStyle
		}
		left += "  " + style.Render(m.status)
	}

	return StatusBarStyle.Width(m.width).Render(left + "  " + HelpStyle.Render(hints))
}

func helpSections() []shared.HelpSection {
	return []shared.HelpSection{
		{Title: "Global", Binds: []shared.HelpBind{
			{Key: "?", Desc: "Show this help"},
			{Key: "q", Desc: "Quit"},
			{Key: "ctrl+c", Desc: "Force quit"},
		}},
		{Title: "Heatmaps", Binds: []shared.HelpBind{
			{Key: "tab / S-tab", Desc: "Next / previous container"},
			{Key: "h / l", Desc: "Previous / next column"},
			{Key: "j / k", Desc: "Next / previous row"},
			{Key: "H / L", Desc: "Previous / next month"},
			{Key: "n / p", Desc: "Next / previous day with data"},
			{Key: "g / G", Desc: "First / last day"},
			{Key: "T", Desc: "Jump to today"},
			{Key: "enter", Desc: "Open the note, or search when several"},
			{Key: "a", Desc: "Toggle sum / average"},
			{Key: "r", Desc: "Render again"},
			{Key: "x", Desc: "Close container"},
			{Key: "o", Desc: "Open the note holding the block"},
			{Key: "/", Desc: "Search the vault"},
		}},
		{Title: "Search", Binds: []shared.HelpBind{
			{Key: "j / k", Desc: "Navigate results"},
			{Key: "/", Desc: "Fuzzy filter"},
			{Key: "enter", Desc: "Open note"},
			{Key: "esc", Desc: "Back"},
		}},
		{Title: "Preview", Binds: []shared.HelpBind{
			{Key: "j / k", Desc: "Scroll"},
			{Key: "e", Desc: "Edit in $EDITOR"},
			{Key: "esc", Desc: "Back"},
		}},
	}
}

package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"habitmap/internal/logs"
	"habitmap/internal/scanner"

	"github.com/fsnotify/fsnotify"
)

// Kind tells what changed
type Kind int

const (
	SettingsChanged Kind = iota
	NotesChanged
)

func (k Kind) String() string {
	if k == SettingsChanged {
		return "settings"
	}
	return "notes"
}

// Event is a debounced change notification
type Event struct {
	Kind Kind
	Path string
}

type pending struct {
	kind Kind
	at   time.Time
}

// Watcher reports changes to the settings file and to notes inside the
// vaults. Bursts of writes to the same path collapse into one event once the
// path has been quiet for the debounce duration.
type Watcher struct {
	mu           sync.Mutex
	fs           *fsnotify.Watcher
	settingsPath string
	vaults       []string
	debounce     time.Duration
	pending      map[string]pending
	events       chan Event
	stopCh       chan struct{}
	doneCh       chan struct{}
	running      bool
}

// New creates a watcher. An empty settingsPath disables settings events.
func New(settingsPath string, vaults []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if settingsPath != "" {
		settingsPath = filepath.Clean(settingsPath)
	}
	return &Watcher{
		fs:           fsw,
		settingsPath: settingsPath,
		vaults:       vaults,
		debounce:     debounce,
		pending:      make(map[string]pending),
		events:       make(chan Event, 16),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}, nil
}

// Events delivers debounced changes. It is closed once the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start adds the watches and runs the event loop in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if w.settingsPath != "" {
		// editors replace files on save, so watch the directory
		dir := filepath.Dir(w.settingsPath)
		if err := w.fs.Add(dir); err != nil {
			logs.Logger.Warnw("cannot watch settings dir", "dir", dir, "error", err)
		}
	}

	for _, vault := range w.vaults {
		scan, err := scanner.ScanVault(vault)
		if err != nil {
			logs.Logger.Warnw("cannot scan vault for watching", "vault", vault, "error", err)
			continue
		}
		for _, dir := range scan.Dirs {
			if err := w.fs.Add(dir); err != nil {
				logs.Logger.Warnw("cannot watch dir", "dir", dir, "error", err)
			}
		}
	}

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the watches. Safe to call twice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.fs.Close(); err != nil {
		logs.Logger.Warnw("closing watcher", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.events)

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logs.Logger.Warnw("watch error", "error", err)
		case <-ticker.C:
			if !w.flush(ctx) {
				return
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	path := filepath.Clean(event.Name)

	if w.settingsPath != "" && path == w.settingsPath {
		w.mark(path, SettingsChanged)
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !scanner.ShouldSkipDir(info.Name()) && w.inVault(path) {
				if err := w.fs.Add(path); err != nil {
					logs.Logger.Warnw("cannot watch new dir", "dir", path, "error", err)
				}
			}
			return
		}
	}

	if scanner.IsNoteFile(path) && w.inVault(path) {
		w.mark(path, NotesChanged)
	}
}

func (w *Watcher) inVault(path string) bool {
	for _, vault := range w.vaults {
		abs, err := filepath.Abs(vault)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(abs, path)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

func (w *Watcher) mark(path string, kind Kind) {
	w.mu.Lock()
	w.pending[path] = pending{kind: kind, at: time.Now()}
	w.mu.Unlock()
	logs.Logger.Debugw("change noticed", "kind", kind, "path", path)
}

// flush emits events for paths quiet longer than the debounce duration. It
// returns false when the watcher is shutting down.
func (w *Watcher) flush(ctx context.Context) bool {
	now := time.Now()
	var ready []Event

	w.mu.Lock()
	for path, p := range w.pending {
		if now.Sub(p.at) >= w.debounce {
			ready = append(ready, Event{Kind: p.kind, Path: path})
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, ev := range ready {
		select {
		case w.events <- ev:
		case <-w.stopCh:
			return false
		case <-ctx.Done():
			return false
		}
	}
	return true
}

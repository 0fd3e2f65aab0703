package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitFor(t *testing.T, events <-chan Event, kind Kind) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatal("events closed early")
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func newTestWatcher(t *testing.T) (*Watcher, string, string) {
	t.Helper()
	vault := t.TempDir()
	settings := filepath.Join(t.TempDir(), "config.yaml")

	w, err := New(settings, []string{vault}, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	t.Cleanup(w.Stop)
	return w, vault, settings
}

func TestWatcher_NoteChangesDebounced(t *testing.T) {
	w, vault, _ := newTestWatcher(t)

	note := filepath.Join(vault, "2024-03-15.md")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(note, []byte("value: 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	ev := waitFor(t, w.Events(), NotesChanged)
	if ev.Path != note {
		t.Errorf("expected %s, got %s", note, ev.Path)
	}

	select {
	case extra := <-w.Events():
		t.Errorf("expected a single debounced event, got another for %s", extra.Path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_SettingsFile(t *testing.T) {
	w, _, settings := newTestWatcher(t)

	if err := os.WriteFile(settings, []byte("aggregation: average\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ev := waitFor(t, w.Events(), SettingsChanged)
	if ev.Path != settings {
		t.Errorf("expected %s, got %s", settings, ev.Path)
	}
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	w, vault, _ := newTestWatcher(t)

	dir := filepath.Join(vault, "habits")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	// give the loop a moment to add the new directory
	time.Sleep(100 * time.Millisecond)

	note := filepath.Join(dir, "run.md")
	if err := os.WriteFile(note, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	ev := waitFor(t, w.Events(), NotesChanged)
	if ev.Path != note {
		t.Errorf("expected %s, got %s", note, ev.Path)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	w, vault, _ := newTestWatcher(t)

	if err := os.WriteFile(filepath.Join(vault, "image.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(250 * time.Millisecond):
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w, _, _ := newTestWatcher(t)
	w.Stop()
	w.Stop()

	select {
	case _, ok := <-w.Events():
		if ok {
			t.Error("expected closed events channel")
		}
	case <-time.After(time.Second):
		t.Error("events channel not closed after Stop")
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	w, err := New("", []string{t.TempDir()}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case <-w.Events():
	case <-time.After(time.Second):
		t.Error("expected the loop to exit on cancel")
	}
	w.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	w, err := New("", nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	w.Stop()
}

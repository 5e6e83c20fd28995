package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/medley/internal/event"
	"github.com/Iron-Ham/medley/internal/library"
	"github.com/Iron-Ham/medley/internal/store"
	"github.com/Iron-Ham/medley/internal/track"
)

func newFixture(t *testing.T) (*Watcher, *library.Library, string, *[]event.Event) {
	t.Helper()

	root := t.TempDir()
	bus := event.NewBus()
	events := &[]event.Event{}
	bus.SubscribeAll(func(e event.Event) {
		*events = append(*events, e)
	})

	lib, err := library.New("songs", library.WithBus(bus))
	if err != nil {
		t.Fatalf("library.New failed: %v", err)
	}
	st := store.New(filepath.Join(t.TempDir(), "lib.db"), track.NewCodec())

	w, err := New(Config{Library: lib, Store: st, Roots: []string{root}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return w, lib, root, events
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	lib, err := library.New("songs")
	if err != nil {
		t.Fatalf("library.New failed: %v", err)
	}
	st := store.New(filepath.Join(t.TempDir(), "lib.db"), track.NewCodec())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing library", Config{Store: st, Roots: []string{"/tmp"}}},
		{"missing store", Config{Library: lib, Roots: []string{"/tmp"}}},
		{"missing roots", Config{Library: lib, Store: st}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("Expected construction to fail")
			}
		})
	}
}

func TestWatcher_HandleCreateAddsTrack(t *testing.T) {
	w, lib, root, events := newFixture(t)

	path := filepath.Join(root, "song.flac")
	writeFile(t, path)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})

	if !lib.ContainsKey(path) {
		t.Fatal("Created file should be added to the library")
	}
	if len(*events) != 1 || (*events)[0].EventType() != library.EventItemsAdded {
		t.Errorf("Expected one added event, got %v", *events)
	}
}

func TestWatcher_HandleCreateSkipsHiddenFiles(t *testing.T) {
	w, lib, root, _ := newFixture(t)

	path := filepath.Join(root, ".hidden.flac")
	writeFile(t, path)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})

	if lib.Len() != 0 {
		t.Error("Hidden files should not be added")
	}
}

func TestWatcher_HandleWriteDeclaresChange(t *testing.T) {
	w, lib, root, events := newFixture(t)

	path := filepath.Join(root, "song.flac")
	writeFile(t, path)
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})
	*events = (*events)[:0]

	before, err := lib.Get(path)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	sizeBefore := before.(*track.Track).Size

	if err := os.WriteFile(path, []byte("longer audio payload"), 0644); err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})

	if len(*events) != 1 || (*events)[0].EventType() != library.EventItemsChanged {
		t.Fatalf("Expected one changed event, got %v", *events)
	}

	// The stored payload was refreshed without changing membership.
	it, err := lib.Get(path)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if it.(*track.Track).Size != int64(len("longer audio payload")) {
		t.Error("Write should refresh the stored track payload")
	}
	if lib.Len() != 1 {
		t.Errorf("Write should not change membership, got %d items", lib.Len())
	}

	// The refresh swaps instances rather than mutating the old one, so
	// holders of earlier snapshots never observe concurrent writes.
	if before.(*track.Track).Size != sizeBefore {
		t.Error("Previously obtained track instance must not be mutated")
	}
	if before == it {
		t.Error("Write should store a fresh track instance")
	}
}

func TestWatcher_HandleWriteToUntrackedFileIsDiscovery(t *testing.T) {
	w, lib, root, events := newFixture(t)

	path := filepath.Join(root, "song.flac")
	writeFile(t, path)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})

	if !lib.ContainsKey(path) {
		t.Fatal("Write to an untracked file should add it")
	}
	if len(*events) != 1 || (*events)[0].EventType() != library.EventItemsAdded {
		t.Errorf("Expected an added event, got %v", *events)
	}
}

func TestWatcher_HandleRemoveEvictsTrack(t *testing.T) {
	w, lib, root, events := newFixture(t)

	path := filepath.Join(root, "song.flac")
	writeFile(t, path)
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})
	*events = (*events)[:0]

	os.Remove(path)
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Remove})

	if lib.ContainsKey(path) {
		t.Error("Removed file should be evicted from the library")
	}
	if len(*events) != 1 || (*events)[0].EventType() != library.EventItemsRemoved {
		t.Errorf("Expected one removed event, got %v", *events)
	}
}

func TestWatcher_HandleRemoveOfUntrackedIsNoOp(t *testing.T) {
	w, _, root, events := newFixture(t)

	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "never.flac"), Op: fsnotify.Remove})

	if len(*events) != 0 {
		t.Errorf("Removing an untracked path should emit nothing, got %v", *events)
	}
}

func TestWatcher_StartStop(t *testing.T) {
	w, _, _, _ := newFixture(t)

	if w.Running() {
		t.Fatal("Watcher should not be running before Start")
	}

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !w.Running() {
		t.Error("Watcher should be running after Start")
	}

	if err := w.Start(context.Background()); err == nil {
		t.Error("Second Start should fail")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if w.Running() {
		t.Error("Watcher should not be running after Stop")
	}

	// Stop is idempotent.
	if err := w.Stop(); err != nil {
		t.Errorf("Second Stop failed: %v", err)
	}
}

func TestWatcher_PeriodicSaveFlushesDirtyLibrary(t *testing.T) {
	root := t.TempDir()
	lib, err := library.New("songs")
	if err != nil {
		t.Fatalf("library.New failed: %v", err)
	}
	dbPath := filepath.Join(t.TempDir(), "lib.db")
	st := store.New(dbPath, track.NewCodec())

	w, err := New(Config{Library: lib, Store: st, Roots: []string{root}},
		WithSaveInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	lib.Add(&track.Track{Path: "/m/a.flac"})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	deadline := time.After(2 * time.Second)
	for lib.Dirty() {
		select {
		case <-deadline:
			t.Fatal("Periodic save never flushed the dirty library")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("Expected library file after periodic save: %v", err)
	}
}

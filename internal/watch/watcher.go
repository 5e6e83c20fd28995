// Package watch keeps a library synchronized with the filesystem while the
// application runs. It feeds fsnotify events into the library's add,
// change, and remove operations and owns the periodic save timer that
// flushes dirty state through the store.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/medley/internal/library"
	"github.com/Iron-Ham/medley/internal/logging"
	"github.com/Iron-Ham/medley/internal/scan"
	"github.com/Iron-Ham/medley/internal/store"
	"github.com/Iron-Ham/medley/internal/track"
)

// DefaultSaveInterval is how often the watcher flushes a dirty library.
const DefaultSaveInterval = 30 * time.Second

// Config holds required dependencies for creating a Watcher.
type Config struct {
	Library *library.Library
	Store   *store.Store
	Roots   []string
}

// Watcher reacts to filesystem changes under the configured roots and
// periodically saves the library when it is dirty. It owns the lifecycle
// of its watch goroutine.
type Watcher struct {
	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	lib      *library.Library
	st       *store.Store
	roots    []string
	interval time.Duration
	scanner  *scan.Scanner
	log      *logging.Logger

	fw *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithSaveInterval sets the periodic save interval.
func WithSaveInterval(d time.Duration) Option {
	return func(w *Watcher) { w.interval = d }
}

// WithScanner sets the scanner whose filters decide which discovered files
// are eligible. Defaults to a hidden-skipping scanner with no excludes.
func WithScanner(s *scan.Scanner) Option {
	return func(w *Watcher) { w.scanner = s }
}

// New creates a Watcher for the given library, store, and roots.
func New(cfg Config, opts ...Option) (*Watcher, error) {
	if cfg.Library == nil {
		return nil, errors.New("watch: Library is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("watch: Store is required")
	}
	if len(cfg.Roots) == 0 {
		return nil, errors.New("watch: at least one root is required")
	}

	w := &Watcher{
		lib:      cfg.Library,
		st:       cfg.Store,
		roots:    cfg.Roots,
		interval: DefaultSaveInterval,
		scanner:  scan.New(),
		log:      logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. Returns an error if the watcher is already
// started or the roots cannot be registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return errors.New("watch: already started")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Join(errors.New("watch: failed to create watcher"), err)
	}

	for _, root := range w.roots {
		if err := w.addTree(fw, root); err != nil {
			fw.Close()
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	w.fw = fw
	w.cancel = cancel
	w.started = true
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		w.run(ctx)
	}()

	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
// It is idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return nil
	}

	w.cancel()
	<-w.done
	err := w.fw.Close()

	w.started = false
	return err
}

// Running returns whether the watcher is currently started.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

// addTree registers root and every non-hidden subdirectory with the
// fsnotify watcher. fsnotify watches are not recursive.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.log.Warn("unwatchable path skipped", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.scanner.SkipHidden && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.log.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// run is the watch loop: filesystem events, watcher errors, the periodic
// save tick, and cancellation.
func (w *Watcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		case <-ticker.C:
			w.saveIfDirty()
		}
	}
}

// saveIfDirty flushes the library when it has unsaved mutations. A failed
// save keeps the library dirty, so the next tick retries.
func (w *Watcher) saveIfDirty() {
	if !w.lib.Dirty() {
		return
	}
	if err := w.st.Save(w.lib); err != nil {
		w.log.Warn("periodic save failed, will retry", "error", err)
	}
}

// handleEvent maps one fsnotify event onto the library.
func (w *Watcher) handleEvent(ev fsnotify.Event) {
	switch {
	case ev.Op.Has(fsnotify.Create):
		w.handleCreate(ev.Name)
	case ev.Op.Has(fsnotify.Write):
		w.handleWrite(ev.Name)
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.handleRemove(ev.Name)
	}
}

func (w *Watcher) handleCreate(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		// New directories join the watch set so their files are seen.
		if w.fw != nil {
			if err := w.addTree(w.fw, path); err != nil {
				w.log.Warn("failed to watch new directory", "path", path, "error", err)
			}
		}
		return
	}
	if w.skipped(path) {
		return
	}

	t, err := track.Load(path)
	if err != nil {
		w.log.Debug("unloadable file ignored", "path", path, "error", err)
		return
	}
	if added := w.lib.Add(t); len(added) > 0 {
		w.log.Debug("track added", "path", path)
	}
}

func (w *Watcher) handleWrite(path string) {
	if !w.lib.ContainsKey(path) {
		// A write to an untracked file is a discovery.
		w.handleCreate(path)
		return
	}

	fresh, err := track.Load(path)
	if err != nil {
		return
	}

	// Swap in a fresh instance silently, then declare the change. The old
	// instance is never written to, so snapshots and event payloads handed
	// out earlier stay safe to read concurrently.
	w.lib.Load(fresh)
	w.lib.Changed(fresh)
}

func (w *Watcher) handleRemove(path string) {
	if removed := w.lib.Remove(pathRef(path)); len(removed) > 0 {
		w.log.Debug("track removed", "path", path)
	}
}

// skipped applies the scanner's hidden filter to a discovered file.
func (w *Watcher) skipped(path string) bool {
	return w.scanner.SkipHidden && strings.HasPrefix(filepath.Base(path), ".")
}

// pathRef is a bare key standing in for an item, for removal by path.
// Library membership accepts either form.
type pathRef string

func (p pathRef) Key() string { return string(p) }

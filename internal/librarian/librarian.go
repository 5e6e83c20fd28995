// Package librarian provides the shared mediator that coordinates change
// notification across multiple libraries.
//
// A Librarian holds non-owning references to registered libraries. When a
// library delegates a Changed call, the librarian broadcasts to whichever
// of its managed libraries actually contain each item; each of those emits
// a changed event for its own present subset. The delegating library itself
// only emits if it is among them.
package librarian

import (
	"iter"
	"sync"

	"github.com/Iron-Ham/medley/internal/errors"
	"github.com/Iron-Ham/medley/internal/library"
	"github.com/Iron-Ham/medley/internal/logging"
)

// Librarian mediates between libraries. It implements library.Librarian
// and is safe for concurrent use. A Librarian must outlive every library
// registered with it.
type Librarian struct {
	mu        sync.RWMutex
	libraries map[string]*library.Library
	log       *logging.Logger
}

// Option configures a Librarian.
type Option func(*Librarian)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(lbn *Librarian) { lbn.log = log }
}

// New creates an empty Librarian.
func New(opts ...Option) *Librarian {
	lbn := &Librarian{
		libraries: make(map[string]*library.Library),
		log:       logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(lbn)
	}
	return lbn
}

// Register adds a library under its name.
// Returns ErrAlreadyRegistered if the name is taken.
func (lbn *Librarian) Register(l *library.Library) error {
	lbn.mu.Lock()
	defer lbn.mu.Unlock()

	name := l.Name()
	if _, ok := lbn.libraries[name]; ok {
		return errors.NewLibraryError("register", errors.ErrAlreadyRegistered).WithLibrary(name)
	}
	lbn.libraries[name] = l
	lbn.log.Debug("library registered", "library", name)
	return nil
}

// Unregister removes a library. Further Changed calls on that library emit
// locally; its contents are untouched. Unregistering an unknown library is
// a no-op.
func (lbn *Librarian) Unregister(l *library.Library) {
	lbn.mu.Lock()
	defer lbn.mu.Unlock()

	name := l.Name()
	if registered, ok := lbn.libraries[name]; ok && registered == l {
		delete(lbn.libraries, name)
		lbn.log.Debug("library unregistered", "library", name)
	}
}

// Manages reports whether this exact library is currently registered. The
// comparison is by identity, so a different library that reused the name
// after an Unregister does not keep the old one delegating.
func (lbn *Librarian) Manages(l *library.Library) bool {
	lbn.mu.RLock()
	defer lbn.mu.RUnlock()

	registered, ok := lbn.libraries[l.Name()]
	return ok && registered == l
}

// Changed fans a change notification out across all managed libraries.
// Every library that contains one of the items emits a changed event for
// its own present subset; libraries containing none of them stay silent.
func (lbn *Librarian) Changed(items ...library.Item) {
	lbn.mu.RLock()
	libs := make([]*library.Library, 0, len(lbn.libraries))
	for _, l := range lbn.libraries {
		libs = append(libs, l)
	}
	lbn.mu.RUnlock()

	for _, l := range libs {
		if emitted := l.MarkChanged(items...); len(emitted) > 0 {
			lbn.log.Debug("change fanned out", "library", l.Name(), "items", len(emitted))
		}
	}
}

// Get returns the library registered under name.
func (lbn *Librarian) Get(name string) (*library.Library, error) {
	lbn.mu.RLock()
	defer lbn.mu.RUnlock()

	l, ok := lbn.libraries[name]
	if !ok {
		return nil, errors.NewNotFoundError("library", name)
	}
	return l, nil
}

// Libraries iterates over the managed libraries by name.
// The iteration works on a snapshot.
func (lbn *Librarian) Libraries() iter.Seq2[string, *library.Library] {
	lbn.mu.RLock()
	snapshot := make(map[string]*library.Library, len(lbn.libraries))
	for name, l := range lbn.libraries {
		snapshot[name] = l
	}
	lbn.mu.RUnlock()

	return func(yield func(string, *library.Library) bool) {
		for name, l := range snapshot {
			if !yield(name, l) {
				return
			}
		}
	}
}

// Count returns the number of managed libraries.
func (lbn *Librarian) Count() int {
	lbn.mu.RLock()
	defer lbn.mu.RUnlock()
	return len(lbn.libraries)
}

package library

import (
	"iter"
	"sync"

	"github.com/Iron-Ham/medley/internal/errors"
	"github.com/Iron-Ham/medley/internal/event"
)

// Item is the unit a Library tracks. The library never inspects an item
// beyond its key, which must be unique and stable for the item's lifetime.
type Item interface {
	// Key returns the unique, stable identifier for this item.
	// For file-backed items this is the absolute file path.
	Key() string
}

// Librarian mediates change notification across multiple libraries.
// It is implemented by the librarian package; the interface lives here so a
// Library can hold a non-owning handle without an import cycle.
//
// The librarian must outlive every library it manages. That lifetime is
// enforced by the host application, not by the Library.
type Librarian interface {
	// Register adds a library under its name. Fails if the name is taken.
	Register(l *Library) error

	// Unregister removes a library. Further Changed calls on that library
	// emit locally. Contents are not cleared.
	Unregister(l *Library)

	// Changed fans a change notification out across managed libraries.
	// Each managed library that contains an item emits for its own subset.
	Changed(items ...Item)

	// Manages reports whether this exact library is currently registered.
	// Identity matters: a different library registered under the same name
	// does not count.
	Manages(l *Library) bool
}

// Validator decides whether an item restored from disk is still valid.
// Items rejected during Load are silently dropped (for example, tracks
// whose backing file no longer exists).
type Validator func(Item) bool

// Library is a keyed collection of items with change notification and a
// dirty flag tracking unsaved mutations. It is safe for concurrent use.
//
// Membership follows the item's key: an item is "in" the library when its
// key is present, regardless of whether the stored value is the same
// instance. Insertion order is preserved for Content snapshots so saves are
// stable.
type Library struct {
	name      string
	librarian Librarian
	bus       *event.Bus
	validator Validator

	mu       sync.RWMutex
	contents map[string]Item
	order    []string // insertion order of keys, for Content snapshots
	dirty    bool
}

// Option configures a Library.
type Option func(*Library)

// WithBus sets the event bus the library publishes to.
// Without a bus the library mutates silently.
func WithBus(bus *event.Bus) Option {
	return func(l *Library) { l.bus = bus }
}

// WithLibrarian sets the librarian handle. New registers the library with
// the librarian under its name.
func WithLibrarian(lbn Librarian) Option {
	return func(l *Library) { l.librarian = lbn }
}

// WithValidator sets the validator applied during Load.
func WithValidator(v Validator) Option {
	return func(l *Library) { l.validator = v }
}

// New creates an empty Library. If a librarian was supplied, the library is
// registered with it under name; a duplicate name fails construction.
func New(name string, opts ...Option) (*Library, error) {
	l := &Library{
		name:     name,
		contents: make(map[string]Item),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.librarian != nil {
		if err := l.librarian.Register(l); err != nil {
			return nil, errors.NewLibraryError("registration failed", err).WithLibrary(name)
		}
	}
	return l, nil
}

// Name returns the library's identifier. Immutable after construction.
func (l *Library) Name() string { return l.name }

// -----------------------------------------------------------------------------
// Mutation
// -----------------------------------------------------------------------------

// Add inserts items that are not already present, keyed by their own key.
// It returns the accepted items and publishes a single ItemsAddedEvent
// carrying exactly that set. Adding only already-present items is a no-op:
// nothing is emitted and the dirty flag is untouched.
func (l *Library) Add(items ...Item) []Item {
	l.mu.Lock()
	var accepted []Item
	for _, it := range items {
		if _, ok := l.contents[it.Key()]; ok {
			continue
		}
		l.insertLocked(it)
		accepted = append(accepted, it)
	}
	if len(accepted) > 0 {
		l.dirty = true
	}
	l.mu.Unlock()

	if len(accepted) > 0 {
		l.publish(NewItemsAddedEvent(l.name, accepted))
	}
	return accepted
}

// Remove deletes items that are actually present and returns them.
// Publishes a single ItemsRemovedEvent carrying exactly the removed set.
// Removing absent items is a no-op with respect to notification and dirtiness.
func (l *Library) Remove(items ...Item) []Item {
	l.mu.Lock()
	var removed []Item
	for _, it := range items {
		key := it.Key()
		stored, ok := l.contents[key]
		if !ok {
			continue
		}
		delete(l.contents, key)
		l.dropKeyLocked(key)
		removed = append(removed, stored)
	}
	if len(removed) > 0 {
		l.dirty = true
	}
	l.mu.Unlock()

	if len(removed) > 0 {
		l.publish(NewItemsRemovedEvent(l.name, removed))
	}
	return removed
}

// Changed declares that the given items' content changed without altering
// membership. If a librarian manages this library, the call is delegated:
// the librarian decides which managed libraries emit, and this library's own
// changed event may not fire even though items changed. Otherwise the
// notification is handled locally via MarkChanged.
func (l *Library) Changed(items ...Item) {
	if l.librarian != nil && l.librarian.Manages(l) {
		l.librarian.Changed(items...)
		return
	}
	l.MarkChanged(items...)
}

// MarkChanged filters items to those currently present, marks the library
// dirty, and publishes an ItemsChangedEvent for the present subset. It is
// the local-emission half of Changed, and the entry point the librarian
// uses during fan-out. A fully-absent set is a no-op.
func (l *Library) MarkChanged(items ...Item) []Item {
	l.mu.Lock()
	var present []Item
	for _, it := range items {
		if stored, ok := l.contents[it.Key()]; ok {
			present = append(present, stored)
		}
	}
	if len(present) > 0 {
		l.dirty = true
	}
	l.mu.Unlock()

	if len(present) > 0 {
		l.publish(NewItemsChangedEvent(l.name, present))
	}
	return present
}

// Load bulk-ingests items without firing events. This is the startup
// restoration path used by the store; live discovery goes through Add.
// Items rejected by the validator are dropped. Returns the number ingested.
func (l *Library) Load(items ...Item) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	loaded := 0
	for _, it := range items {
		if l.validator != nil && !l.validator(it) {
			continue
		}
		l.insertLocked(it)
		loaded++
	}
	if loaded > 0 {
		l.dirty = true
	}
	return loaded
}

// insertLocked stores an item under its key, tracking insertion order.
// Re-inserting an existing key keeps its original position.
func (l *Library) insertLocked(it Item) {
	key := it.Key()
	if _, ok := l.contents[key]; !ok {
		l.order = append(l.order, key)
	}
	l.contents[key] = it
}

// dropKeyLocked removes a key from the insertion-order slice.
func (l *Library) dropKeyLocked(key string) {
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Read Surface
// -----------------------------------------------------------------------------

// Get returns the item stored under key.
func (l *Library) Get(key string) (Item, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	it, ok := l.contents[key]
	if !ok {
		return nil, errors.NewNotFoundError("item", key)
	}
	return it, nil
}

// Contains reports whether the item is in the library. Membership follows
// the key: a distinct instance with the same key counts as contained.
func (l *Library) Contains(it Item) bool {
	return l.ContainsKey(it.Key())
}

// ContainsKey reports whether any item is stored under key.
func (l *Library) ContainsKey(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.contents[key]
	return ok
}

// Len returns the number of items in the library.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.contents)
}

// Items iterates over the items in the library. The iteration works on a
// snapshot: mutating the library while ranging is safe.
func (l *Library) Items() iter.Seq[Item] {
	snapshot := l.Content()
	return func(yield func(Item) bool) {
		for _, it := range snapshot {
			if !yield(it) {
				return
			}
		}
	}
}

// Keys iterates over the keys in the library, in insertion order.
func (l *Library) Keys() iter.Seq[string] {
	l.mu.RLock()
	keys := make([]string, len(l.order))
	copy(keys, l.order)
	l.mu.RUnlock()

	return func(yield func(string) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

// All iterates over (key, item) pairs in insertion order.
func (l *Library) All() iter.Seq2[string, Item] {
	snapshot := l.Content()
	return func(yield func(string, Item) bool) {
		for _, it := range snapshot {
			if !yield(it.Key(), it) {
				return
			}
		}
	}
}

// Content returns a snapshot of the full current contents in insertion
// order, including any items a filtered variant may hide from normal
// iteration. Persistence saves exactly this set.
func (l *Library) Content() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make([]Item, 0, len(l.order))
	for _, key := range l.order {
		snapshot = append(snapshot, l.contents[key])
	}
	return snapshot
}

// -----------------------------------------------------------------------------
// Dirty Tracking
// -----------------------------------------------------------------------------

// Dirty reports whether the contents have changed since the last
// successful save.
func (l *Library) Dirty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dirty
}

// MarkClean clears the dirty flag. Only a fully successful save should
// call this; a failed save leaves the flag set so a retry is still owed.
func (l *Library) MarkClean() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirty = false
}

// publish sends an event to the bus, if one is attached.
func (l *Library) publish(e event.Event) {
	if l.bus != nil {
		l.bus.Publish(e)
	}
}

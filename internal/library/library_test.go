package library

import (
	"slices"
	"testing"

	"github.com/Iron-Ham/medley/internal/errors"
	"github.com/Iron-Ham/medley/internal/event"
)

// testItem is a minimal Item for library tests.
type testItem struct {
	key   string
	title string
}

func (t *testItem) Key() string { return t.key }

func item(key string) *testItem {
	return &testItem{key: key}
}

func keysOf(items []Item) []string {
	keys := make([]string, 0, len(items))
	for _, it := range items {
		keys = append(keys, it.Key())
	}
	slices.Sort(keys)
	return keys
}

// recorder collects every event published on a bus.
type recorder struct {
	events []event.Event
}

func record(bus *event.Bus) *recorder {
	r := &recorder{}
	bus.SubscribeAll(func(e event.Event) {
		r.events = append(r.events, e)
	})
	return r
}

func newTestLibrary(t *testing.T, opts ...Option) (*Library, *recorder) {
	t.Helper()
	bus := event.NewBus()
	rec := record(bus)
	lib, err := New("songs", append([]Option{WithBus(bus)}, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return lib, rec
}

// -----------------------------------------------------------------------------
// Add
// -----------------------------------------------------------------------------

func TestLibrary_AddDisjointSets(t *testing.T) {
	lib, rec := newTestLibrary(t)

	first := lib.Add(item("/m/a.flac"), item("/m/b.flac"))
	second := lib.Add(item("/m/c.flac"))

	if got := keysOf(first); !slices.Equal(got, []string{"/m/a.flac", "/m/b.flac"}) {
		t.Errorf("First add accepted %v", got)
	}
	if got := keysOf(second); !slices.Equal(got, []string{"/m/c.flac"}) {
		t.Errorf("Second add accepted %v", got)
	}

	if lib.Len() != 3 {
		t.Errorf("Expected 3 items, got %d", lib.Len())
	}

	if len(rec.events) != 2 {
		t.Fatalf("Expected one added event per call, got %d events", len(rec.events))
	}
	added := rec.events[1].(ItemsAddedEvent)
	if got := keysOf(added.Items); !slices.Equal(got, []string{"/m/c.flac"}) {
		t.Errorf("Second event should carry only newly accepted items, got %v", got)
	}
}

func TestLibrary_AddIsIdempotent(t *testing.T) {
	lib, rec := newTestLibrary(t)

	lib.Add(item("/m/a.flac"))
	accepted := lib.Add(item("/m/a.flac"))

	if len(accepted) != 0 {
		t.Errorf("Second add of same key should accept nothing, got %v", keysOf(accepted))
	}
	if lib.Len() != 1 {
		t.Errorf("Expected 1 item, got %d", lib.Len())
	}
	if len(rec.events) != 1 {
		t.Errorf("Duplicate add should not emit, got %d events", len(rec.events))
	}
}

func TestLibrary_AddSetsDirty(t *testing.T) {
	lib, _ := newTestLibrary(t)

	if lib.Dirty() {
		t.Error("New library should be clean")
	}

	lib.Add(item("/m/a.flac"))

	if !lib.Dirty() {
		t.Error("Add should set the dirty flag")
	}
}

func TestLibrary_AddAllPresentLeavesDirtyUntouched(t *testing.T) {
	lib, _ := newTestLibrary(t)

	lib.Add(item("/m/a.flac"))
	lib.MarkClean()

	lib.Add(item("/m/a.flac"))

	if lib.Dirty() {
		t.Error("Fully-duplicate add should not dirty the library")
	}
}

// -----------------------------------------------------------------------------
// Remove
// -----------------------------------------------------------------------------

func TestLibrary_RemoveOnlyPresent(t *testing.T) {
	lib, rec := newTestLibrary(t)

	a := item("/m/a.flac")
	lib.Add(a, item("/m/b.flac"))

	removed := lib.Remove(a, item("/m/missing.flac"))

	if got := keysOf(removed); !slices.Equal(got, []string{"/m/a.flac"}) {
		t.Errorf("Expected only present items removed, got %v", got)
	}
	if lib.ContainsKey("/m/a.flac") {
		t.Error("Removed item should no longer be contained")
	}
	if !lib.ContainsKey("/m/b.flac") {
		t.Error("Untouched item should remain")
	}

	last := rec.events[len(rec.events)-1].(ItemsRemovedEvent)
	if got := keysOf(last.Items); !slices.Equal(got, []string{"/m/a.flac"}) {
		t.Errorf("Removed event should carry exactly the removed set, got %v", got)
	}
}

func TestLibrary_RemoveDisjointIsNoOp(t *testing.T) {
	lib, rec := newTestLibrary(t)

	lib.Add(item("/m/a.flac"))
	lib.MarkClean()
	before := len(rec.events)

	removed := lib.Remove(item("/m/x.flac"), item("/m/y.flac"))

	if len(removed) != 0 {
		t.Errorf("Expected empty removal, got %v", keysOf(removed))
	}
	if len(rec.events) != before {
		t.Error("Disjoint remove should not emit")
	}
	if lib.Dirty() {
		t.Error("Disjoint remove should not dirty the library")
	}
}

// -----------------------------------------------------------------------------
// Changed
// -----------------------------------------------------------------------------

func TestLibrary_ChangedEmitsLocallyWithoutLibrarian(t *testing.T) {
	lib, rec := newTestLibrary(t)

	a := item("/m/a.flac")
	lib.Add(a)
	lib.MarkClean()

	lib.Changed(a, item("/m/absent.flac"))

	last := rec.events[len(rec.events)-1].(ItemsChangedEvent)
	if got := keysOf(last.Items); !slices.Equal(got, []string{"/m/a.flac"}) {
		t.Errorf("Changed event should carry only present items, got %v", got)
	}
	if !lib.Dirty() {
		t.Error("Changed should set the dirty flag")
	}
}

func TestLibrary_ChangedAbsentItemsIsNoOp(t *testing.T) {
	lib, rec := newTestLibrary(t)

	lib.Add(item("/m/a.flac"))
	lib.MarkClean()
	before := len(rec.events)

	lib.Changed(item("/m/absent.flac"))

	if len(rec.events) != before {
		t.Error("Changed with no present items should not emit")
	}
	if lib.Dirty() {
		t.Error("Changed with no present items should not dirty the library")
	}
}

// fakeLibrarian records delegation without fan-out.
type fakeLibrarian struct {
	managed   map[string]*Library
	delegated [][]Item
}

func (f *fakeLibrarian) Register(l *Library) error {
	if f.managed == nil {
		f.managed = make(map[string]*Library)
	}
	if _, ok := f.managed[l.Name()]; ok {
		return errors.ErrAlreadyRegistered
	}
	f.managed[l.Name()] = l
	return nil
}

func (f *fakeLibrarian) Unregister(l *Library) {
	if f.managed[l.Name()] == l {
		delete(f.managed, l.Name())
	}
}

func (f *fakeLibrarian) Changed(items ...Item) {
	f.delegated = append(f.delegated, items)
}

func (f *fakeLibrarian) Manages(l *Library) bool {
	return f.managed[l.Name()] == l
}

func TestLibrary_ChangedDelegatesToLibrarian(t *testing.T) {
	lbn := &fakeLibrarian{}
	lib, rec := newTestLibrary(t, WithLibrarian(lbn))

	a := item("/m/a.flac")
	lib.Add(a)
	before := len(rec.events)

	lib.Changed(a)

	if len(lbn.delegated) != 1 {
		t.Fatalf("Expected 1 delegated call, got %d", len(lbn.delegated))
	}
	// The librarian decides emission; this library emits nothing by itself.
	if len(rec.events) != before {
		t.Error("Delegated Changed should not emit directly")
	}
}

func TestLibrary_ChangedAfterUnregisterEmitsLocally(t *testing.T) {
	lbn := &fakeLibrarian{}
	lib, rec := newTestLibrary(t, WithLibrarian(lbn))

	a := item("/m/a.flac")
	lib.Add(a)
	lbn.Unregister(lib)

	lib.Changed(a)

	if len(lbn.delegated) != 0 {
		t.Error("Unmanaged library should not delegate")
	}
	last := rec.events[len(rec.events)-1]
	if last.EventType() != EventItemsChanged {
		t.Errorf("Expected local changed emission, got %s", last.EventType())
	}
}

func TestLibrary_ChangedAfterNameReuseEmitsLocally(t *testing.T) {
	lbn := &fakeLibrarian{}
	lib, rec := newTestLibrary(t, WithLibrarian(lbn))

	a := item("/m/a.flac")
	lib.Add(a)
	lbn.Unregister(lib)

	// Another library takes over the name. The old library must not treat
	// that as still being managed.
	if _, err := New(lib.Name(), WithLibrarian(lbn)); err != nil {
		t.Fatalf("Re-registration under the freed name failed: %v", err)
	}

	before := len(rec.events)
	lib.Changed(a)

	if len(lbn.delegated) != 0 {
		t.Error("A replaced library should not delegate")
	}
	if len(rec.events) != before+1 {
		t.Fatalf("Expected 1 local changed event, got %d", len(rec.events)-before)
	}
	if last := rec.events[len(rec.events)-1]; last.EventType() != EventItemsChanged {
		t.Errorf("Expected local changed emission, got %s", last.EventType())
	}
}

func TestNew_DuplicateRegistrationFails(t *testing.T) {
	lbn := &fakeLibrarian{}
	if _, err := New("songs", WithLibrarian(lbn)); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	_, err := New("songs", WithLibrarian(lbn))
	if err == nil {
		t.Fatal("Second registration under the same name should fail")
	}
	if !errors.Is(err, errors.ErrAlreadyRegistered) {
		t.Errorf("Expected ErrAlreadyRegistered, got %v", err)
	}
}

// -----------------------------------------------------------------------------
// Read Surface
// -----------------------------------------------------------------------------

func TestLibrary_Get(t *testing.T) {
	lib, _ := newTestLibrary(t)

	a := item("/m/a.flac")
	lib.Add(a)

	got, err := lib.Get("/m/a.flac")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != Item(a) {
		t.Error("Get should return the stored item")
	}

	_, err = lib.Get("/m/missing.flac")
	if !errors.Is(err, errors.ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
}

func TestLibrary_ContainsBothForms(t *testing.T) {
	lib, _ := newTestLibrary(t)

	lib.Add(item("/m/a.flac"))

	// A distinct instance with the same key is still "in" the library.
	if !lib.Contains(item("/m/a.flac")) {
		t.Error("Contains should accept an equivalent item")
	}
	if !lib.ContainsKey("/m/a.flac") {
		t.Error("ContainsKey should accept a bare key")
	}
	if lib.Contains(item("/m/b.flac")) {
		t.Error("Contains should reject an absent item")
	}
}

func TestLibrary_IterationSnapshots(t *testing.T) {
	lib, _ := newTestLibrary(t)

	lib.Add(item("/m/a.flac"), item("/m/b.flac"), item("/m/c.flac"))

	var keys []string
	for k := range lib.Keys() {
		keys = append(keys, k)
	}
	if !slices.Equal(keys, []string{"/m/a.flac", "/m/b.flac", "/m/c.flac"}) {
		t.Errorf("Keys should preserve insertion order, got %v", keys)
	}

	count := 0
	for it := range lib.Items() {
		// Mutation during iteration must be safe.
		lib.Remove(it)
		count++
	}
	if count != 3 {
		t.Errorf("Expected to visit 3 items, visited %d", count)
	}
	if lib.Len() != 0 {
		t.Errorf("Expected empty library after removals, got %d", lib.Len())
	}
}

func TestLibrary_AllPairs(t *testing.T) {
	lib, _ := newTestLibrary(t)

	lib.Add(item("/m/a.flac"), item("/m/b.flac"))

	pairs := make(map[string]Item)
	for k, it := range lib.All() {
		pairs[k] = it
	}

	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}
	for k, it := range pairs {
		if it.Key() != k {
			t.Errorf("Pair key %q does not match item key %q", k, it.Key())
		}
	}
}

func TestLibrary_ContentPreservesInsertionOrder(t *testing.T) {
	lib, _ := newTestLibrary(t)

	lib.Add(item("/m/c.flac"))
	lib.Add(item("/m/a.flac"))
	lib.Remove(item("/m/c.flac"))
	lib.Add(item("/m/b.flac"))

	var keys []string
	for _, it := range lib.Content() {
		keys = append(keys, it.Key())
	}
	if !slices.Equal(keys, []string{"/m/a.flac", "/m/b.flac"}) {
		t.Errorf("Content order wrong: %v", keys)
	}
}

// -----------------------------------------------------------------------------
// Load
// -----------------------------------------------------------------------------

func TestLibrary_LoadFiresNoEvents(t *testing.T) {
	lib, rec := newTestLibrary(t)

	n := lib.Load(item("/m/a.flac"), item("/m/b.flac"))

	if n != 2 {
		t.Errorf("Expected 2 items loaded, got %d", n)
	}
	if len(rec.events) != 0 {
		t.Errorf("Load should fire no events, got %d", len(rec.events))
	}
	if !lib.Dirty() {
		t.Error("Load should mark the library dirty")
	}
	if lib.Len() != 2 {
		t.Errorf("Expected 2 items, got %d", lib.Len())
	}
}

func TestLibrary_LoadAppliesValidator(t *testing.T) {
	validator := func(it Item) bool { return it.Key() != "/m/gone.flac" }
	lib, _ := newTestLibrary(t, WithValidator(validator))

	n := lib.Load(item("/m/a.flac"), item("/m/gone.flac"))

	if n != 1 {
		t.Errorf("Expected 1 item to survive validation, got %d", n)
	}
	if lib.ContainsKey("/m/gone.flac") {
		t.Error("Validator-rejected item should not be loaded")
	}
}

// -----------------------------------------------------------------------------
// Scenario (add → remove → clean round trip of the flag)
// -----------------------------------------------------------------------------

func TestLibrary_Scenario(t *testing.T) {
	lib, rec := newTestLibrary(t)

	a, b := item("/m/a.flac"), item("/m/b.flac")

	accepted := lib.Add(a, b)
	if got := keysOf(accepted); !slices.Equal(got, []string{"/m/a.flac", "/m/b.flac"}) {
		t.Fatalf("Add returned %v", got)
	}
	added := rec.events[0].(ItemsAddedEvent)
	if got := keysOf(added.Items); !slices.Equal(got, []string{"/m/a.flac", "/m/b.flac"}) {
		t.Fatalf("Added event carried %v", got)
	}
	if !lib.Dirty() {
		t.Fatal("Library should be dirty after add")
	}

	removed := lib.Remove(a)
	if got := keysOf(removed); !slices.Equal(got, []string{"/m/a.flac"}) {
		t.Fatalf("Remove returned %v", got)
	}
	if lib.Len() != 1 || !lib.ContainsKey("/m/b.flac") {
		t.Fatal("Library should contain exactly b")
	}

	lib.MarkClean()
	if lib.Dirty() {
		t.Fatal("MarkClean should clear the dirty flag")
	}
}

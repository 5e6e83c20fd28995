package library

import "github.com/Iron-Ham/medley/internal/event"

// Event types published by libraries.
const (
	EventItemsAdded   = "library.added"
	EventItemsRemoved = "library.removed"
	EventItemsChanged = "library.changed"
)

// ItemsAddedEvent is emitted when items are accepted into a library.
// Items carries exactly the accepted set, never items that were already
// present.
type ItemsAddedEvent struct {
	event.Base
	Library string // Name of the emitting library
	Items   []Item // Newly accepted items
}

// NewItemsAddedEvent creates an ItemsAddedEvent.
func NewItemsAddedEvent(library string, items []Item) ItemsAddedEvent {
	return ItemsAddedEvent{
		Base:    event.NewBase(EventItemsAdded),
		Library: library,
		Items:   items,
	}
}

// ItemsRemovedEvent is emitted when items are evicted from a library.
// Items carries exactly the removed set.
type ItemsRemovedEvent struct {
	event.Base
	Library string // Name of the emitting library
	Items   []Item // Removed items
}

// NewItemsRemovedEvent creates an ItemsRemovedEvent.
func NewItemsRemovedEvent(library string, items []Item) ItemsRemovedEvent {
	return ItemsRemovedEvent{
		Base:    event.NewBase(EventItemsRemoved),
		Library: library,
		Items:   items,
	}
}

// ItemsChangedEvent is emitted when contained items change in place.
// Membership is unaffected; Items carries the present subset of the
// declared change set.
type ItemsChangedEvent struct {
	event.Base
	Library string // Name of the emitting library
	Items   []Item // Changed items currently in this library
}

// NewItemsChangedEvent creates an ItemsChangedEvent.
func NewItemsChangedEvent(library string, items []Item) ItemsChangedEvent {
	return ItemsChangedEvent{
		Base:    event.NewBase(EventItemsChanged),
		Library: library,
		Items:   items,
	}
}

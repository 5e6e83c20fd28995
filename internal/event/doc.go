// Package event provides a pub-sub event bus for decoupled inter-component
// communication in medley.
//
// This package enables loose coupling between libraries, the librarian, the
// filesystem watcher, and any observing layer by allowing them to communicate
// through events rather than direct method calls. Components can publish
// events without knowing who will receive them, and subscribe to events
// without knowing who will produce them.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//   - [Base]: Embeddable struct that satisfies the Event interface
//
// Concrete event types are defined next to their producers; the library
// package defines ItemsAddedEvent, ItemsRemovedEvent, and ItemsChangedEvent.
//
// # Usage
//
// Subscribing to events:
//
//	bus := event.NewBus()
//	token := bus.Subscribe("library.added", func(e event.Event) {
//	    added := e.(library.ItemsAddedEvent)
//	    fmt.Printf("%d items added to %s\n", len(added.Items), added.Library)
//	})
//	defer bus.Unsubscribe(token)
//
// Publishing is synchronous: Publish returns after every handler has run.
// Handlers that panic are recovered and logged so one misbehaving observer
// cannot block delivery to the rest.
package event

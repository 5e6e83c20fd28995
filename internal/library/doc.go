// Package library implements the keyed item collection at the core of
// medley: membership semantics, change notification, and dirty-state
// tracking for crash-safe persistence.
//
// A [Library] owns a mapping from key to [Item]. Items enter either through
// [Library.Load] (startup restoration, no events) or [Library.Add] (live
// discovery, emits [ItemsAddedEvent]); they leave through [Library.Remove]
// (emits [ItemsRemovedEvent]); in-place payload changes are declared with
// [Library.Changed] (emits [ItemsChangedEvent], possibly via a [Librarian]).
//
// # Membership
//
// An item is "in" a library when its key is present. Lookups accept either
// an item ([Library.Contains]) or a bare key ([Library.ContainsKey]); both
// forms answer the same question. The mapping is always keyed consistently
// with the item's own Key().
//
// # Dirty State
//
// Every mutation — Load, Add, Remove, and an acknowledged change — sets the
// dirty flag. Only a fully successful save clears it (via
// [Library.MarkClean], called by the store). A failed save leaves the flag
// set so a later periodic or shutdown save retries.
//
// # Librarian Delegation
//
// When a [Librarian] manages a library, [Library.Changed] delegates to it
// instead of emitting locally. The librarian broadcasts to whichever of its
// managed libraries contain each item; the delegating library's own changed
// event may not fire even though items changed. A librarian handle that
// does not (or no longer does) manage the library is treated as absent.
package library

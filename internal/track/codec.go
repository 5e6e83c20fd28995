package track

import (
	"encoding/json"

	"github.com/Iron-Ham/medley/internal/errors"
	"github.com/Iron-Ham/medley/internal/library"
)

// Codec persists a sequence of tracks as an indented JSON array. It
// implements store.Codec.
//
// Items that are not *Track are rejected at encode time: a library of
// tracks holding anything else is a programming error.
type Codec struct{}

// NewCodec creates a track codec.
func NewCodec() Codec { return Codec{} }

// Encode serializes items to JSON.
func (Codec) Encode(items []library.Item) ([]byte, error) {
	tracks := make([]*Track, 0, len(items))
	for _, it := range items {
		t, ok := it.(*Track)
		if !ok {
			return nil, errors.Wrapf(errors.New("unexpected item type"), "cannot encode %q", it.Key())
		}
		tracks = append(tracks, t)
	}
	data, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode tracks")
	}
	return data, nil
}

// Decode deserializes items from JSON. Structural failures wrap
// errors.ErrCorruptData so the store can quarantine the source file.
func (Codec) Decode(data []byte) ([]library.Item, error) {
	var tracks []*Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptData, "invalid track data: %v", err)
	}

	items := make([]library.Item, 0, len(tracks))
	for _, t := range tracks {
		if t == nil || t.Path == "" {
			return nil, errors.Wrap(errors.ErrCorruptData, "track record missing path")
		}
		items = append(items, t)
	}
	return items, nil
}

// Validator adapts Exists to the library's Validator signature. Non-track
// items are rejected outright.
func Validator(it library.Item) bool {
	t, ok := it.(*Track)
	return ok && Exists(t)
}

// Package track defines the concrete item medley libraries hold: an audio
// file on disk, keyed by its absolute path. It also provides the JSON codec
// the store uses to persist a library of tracks.
package track

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iron-Ham/medley/internal/errors"
)

// Track is a single audio file. The path doubles as the library key; all
// other fields are payload the library never inspects.
type Track struct {
	Path    string    `json:"path"`
	Title   string    `json:"title,omitempty"`
	Artist  string    `json:"artist,omitempty"`
	Album   string    `json:"album,omitempty"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Key returns the track's library key: its absolute path.
func (t *Track) Key() string { return t.Path }

// Load builds a Track from the file at path. The title is derived from the
// filename; richer tag parsing belongs to a dedicated tagger, not here.
func Load(path string) (*Track, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", abs)
	}
	if info.IsDir() {
		return nil, errors.Wrapf(errors.New("is a directory"), "cannot load %s", abs)
	}

	return &Track{
		Path:    abs,
		Title:   titleFromPath(abs),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// titleFromPath derives a display title from the file name, stripping the
// extension and replacing underscores.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(base, "_", " ")
}

// Exists reports whether the track's backing file is still present.
// Suitable as a library validator so restored entries whose files vanished
// between sessions are dropped.
func Exists(t *Track) bool {
	info, err := os.Stat(t.Path)
	return err == nil && !info.IsDir()
}

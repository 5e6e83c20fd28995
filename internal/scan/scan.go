// Package scan discovers candidate files for a library by walking a
// directory tree.
//
// The walk is top-down with hidden directories pruned before descent.
// Directory symlinks are never followed (only the root itself may be a
// symlink), which also bounds symlink cycles: a walk that never descends
// into a directory symlink cannot revisit a directory. File symlinks are
// dereferenced, and the exclusion filters are re-applied to the resolved
// path, since a file can pass the filters where it sits but resolve into an
// excluded or hidden tree.
package scan

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Scanner yields candidate file paths under a root directory.
// The zero value skips nothing; New applies the usual defaults.
type Scanner struct {
	// Exclude lists path prefixes to skip. Matching is a raw string-prefix
	// test, not path-segment aware: pass normalized absolute paths. The walk
	// operates on symlink-resolved paths, so prefixes must be spelled in
	// physical terms: a prefix reached through a symlinked parent will never
	// match.
	Exclude []string

	// SkipHidden skips dot-prefixed files and prunes dot-prefixed
	// directories during descent.
	SkipHidden bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExclude sets the excluded path prefixes.
func WithExclude(prefixes ...string) Option {
	return func(s *Scanner) { s.Exclude = prefixes }
}

// WithHidden includes hidden files and directories in the walk.
func WithHidden() Option {
	return func(s *Scanner) { s.SkipHidden = false }
}

// New creates a Scanner that skips hidden entries by default.
func New(opts ...Option) *Scanner {
	s := &Scanner{SkipHidden: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths lazily walks the tree under root and yields absolute,
// symlink-dereferenced file paths. A hidden root yields nothing when
// SkipHidden is set. Unreadable subtrees are skipped, not fatal. Each call
// re-walks from scratch.
func (s *Scanner) Paths(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return
		}
		if s.SkipHidden && hiddenName(filepath.Base(abs)) {
			return
		}

		// The root may itself be a symlink; resolve it up front so the
		// walk below never needs to follow directory symlinks.
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return
		}

		filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != resolved && s.SkipHidden && hiddenName(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}

			if s.skip(path, resolved) {
				return nil
			}

			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			info, err := os.Stat(target)
			if err != nil || info.IsDir() {
				// Dangling symlinks and directory symlinks yield nothing.
				return nil
			}
			if s.skip(target, resolved) {
				return nil
			}

			if !yield(target) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

// skip applies the exclude-prefix and hidden filters to a path. The hidden
// test covers every path component below root, so a symlink that resolves
// into a hidden tree is caught; components of root itself are exempt (the
// caller vetted the root).
func (s *Scanner) skip(path, root string) bool {
	for _, prefix := range s.Exclude {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if !s.SkipHidden {
		return false
	}

	probe := path
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		probe = rel
	}
	for _, part := range strings.Split(probe, string(filepath.Separator)) {
		if hiddenName(part) {
			return true
		}
	}
	return false
}

// hiddenName reports whether a single path component is hidden by name
// convention.
func hiddenName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

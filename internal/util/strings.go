// Package util provides shared utility functions used across the codebase.
package util

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
// This is a simple truncation that does not account for ANSI escape codes or
// wide characters. For terminal output with styling, use TruncateANSI instead.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// TruncateANSI truncates a string to maxWidth visual columns, adding "..." if
// truncated. This function properly handles ANSI escape codes and wide
// characters, making it suitable for terminal output with styling.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// ShortenPath reduces a filesystem path to at most maxLen runes by dropping
// leading components, keeping the filename intact. Track keys are absolute
// paths, so listings shorten from the front where the components carry the
// least information.
func ShortenPath(path string, maxLen int) string {
	if len([]rune(path)) <= maxLen {
		return path
	}
	base := filepath.Base(path)
	if len([]rune(base))+4 >= maxLen {
		return TruncateString(base, maxLen)
	}

	sep := string(filepath.Separator)
	parts := strings.Split(filepath.Dir(path), sep)
	for i := range parts {
		candidate := "..." + sep + strings.Join(parts[i:], sep) + sep + base
		if len([]rune(candidate)) <= maxLen {
			return candidate
		}
	}
	return "..." + sep + base
}

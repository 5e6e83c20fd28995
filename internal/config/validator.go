package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scan.roots")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Library.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "library.name",
			Value:   c.Library.Name,
			Message: "library name cannot be empty",
		})
	}

	if c.Library.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "library.path",
			Value:   c.Library.Path,
			Message: "library path cannot be empty",
		})
	}

	for _, root := range c.Scan.Roots {
		if !filepath.IsAbs(root) {
			errors = append(errors, ValidationError{
				Field:   "scan.roots",
				Value:   root,
				Message: "scan roots must be absolute paths",
			})
		}
	}

	// Exclusion is a raw prefix test against absolute resolved paths, so
	// relative prefixes can never match.
	for _, prefix := range c.Scan.Exclude {
		if !filepath.IsAbs(prefix) {
			errors = append(errors, ValidationError{
				Field:   "scan.exclude",
				Value:   prefix,
				Message: "exclude prefixes must be absolute paths",
			})
		}
	}

	if c.Watch.SaveInterval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.save_interval",
			Value:   c.Watch.SaveInterval,
			Message: "save interval must be positive",
		})
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

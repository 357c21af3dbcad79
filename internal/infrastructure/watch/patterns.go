package watch

import (
	"path/filepath"
)

// Payload file patterns recognized by the file provider. Editor swap and
// backup files are excluded so they never trigger invalidation.
var (
	payloadInclude = []string{"sprint-*.json", "items-*.json", "history-*.json"}
	payloadExclude = []string{".*", "*~", "*.swp", "*.tmp"}
)

// PatternFilter filters file paths based on include/exclude glob patterns.
type PatternFilter struct {
	Include []string
	Exclude []string
}

// NewPatternFilter creates a filter from explicit pattern lists.
func NewPatternFilter(include, exclude []string) *PatternFilter {
	return &PatternFilter{
		Include: include,
		Exclude: exclude,
	}
}

// NewPayloadFilter creates the filter matching provider payload files.
func NewPayloadFilter() *PatternFilter {
	return NewPatternFilter(payloadInclude, payloadExclude)
}

// Matches returns true if the path passes the filter.
// If include patterns are set, at least one must match.
// If exclude patterns are set, none must match.
func (f *PatternFilter) Matches(path string) bool {
	base := filepath.Base(path)

	for _, pattern := range f.Exclude {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

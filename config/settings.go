// Package config provides configuration structures for the span search engine.
// It defines index settings: which fields carry positions, how multi-valued
// fields are laid out, and how searches over the index are executed.
package config

import (
	"strconv"
	"strings"
)

const (
	// DefaultMaxSegmentDocs is the number of documents buffered before a segment is flushed.
	DefaultMaxSegmentDocs = 1000
	// DefaultRewriteCacheSize is the number of normalized queries kept per index.
	DefaultRewriteCacheSize = 256
	// DefaultSearchParallelism bounds how many segments are scored concurrently.
	DefaultSearchParallelism = 4
)

// IndexSettings contains all configuration options for a span index.
//
// Every value of a searchable field is tokenized into consecutive positions.
// When a field holds several values (e.g. ["john", "smith"]), the next value
// starts PositionIncrementGap positions after the end of the previous one.
// With the default gap of 0, ["john", "smith"] occupies positions 0 and 1,
// exactly as if it had been the single value "john smith".
type IndexSettings struct {
	Name                 string   `json:"name"`                   // Unique name for the index
	SearchableFields     []string `json:"searchable_fields"`      // Fields indexed with positions (e.g., ["first", "last", "gender"])
	PositionIncrementGap int      `json:"position_increment_gap"` // Extra positions inserted between values of a multi-valued field
	MaxSegmentDocs       int      `json:"max_segment_docs"`       // Documents per segment before a flush
	RewriteCacheSize     int      `json:"rewrite_cache_size"`     // Entries in the normalized query cache
	SearchParallelism    int      `json:"search_parallelism"`     // Segments scored concurrently per search
}

// ValidateFieldNames validates field names and numeric settings.
// It returns one message per problem found; an empty result means the settings are usable.
func (settings *IndexSettings) ValidateFieldNames() []string {
	var conflicts []string

	conflicts = append(conflicts, checkDuplicates("searchable_fields", settings.SearchableFields)...)

	for _, field := range settings.SearchableFields {
		if strings.TrimSpace(field) == "" {
			conflicts = append(conflicts, "Field name cannot be empty or whitespace-only")
		}
	}

	if settings.PositionIncrementGap < 0 {
		conflicts = append(conflicts, "position_increment_gap must be >= 0, got "+strconv.Itoa(settings.PositionIncrementGap))
	}
	if settings.MaxSegmentDocs < 0 {
		conflicts = append(conflicts, "max_segment_docs must be >= 0, got "+strconv.Itoa(settings.MaxSegmentDocs))
	}
	if settings.RewriteCacheSize < 0 {
		conflicts = append(conflicts, "rewrite_cache_size must be >= 0, got "+strconv.Itoa(settings.RewriteCacheSize))
	}
	if settings.SearchParallelism < 0 {
		conflicts = append(conflicts, "search_parallelism must be >= 0, got "+strconv.Itoa(settings.SearchParallelism))
	}

	return conflicts
}

// IsSearchable reports whether field is indexed with positions.
func (settings *IndexSettings) IsSearchable(field string) bool {
	for _, f := range settings.SearchableFields {
		if f == field {
			return true
		}
	}
	return false
}

// checkDuplicates checks for duplicate values in a slice and returns error messages
func checkDuplicates(fieldName string, fields []string) []string {
	var errors []string
	seen := make(map[string]bool)

	for _, field := range fields {
		if seen[field] {
			errors = append(errors, "Duplicate field '"+field+"' found in "+fieldName)
		}
		seen[field] = true
	}

	return errors
}

// ApplyDefaults applies default values to the index settings.
// PositionIncrementGap keeps its zero value.
func (settings *IndexSettings) ApplyDefaults() {
	if settings.MaxSegmentDocs == 0 {
		settings.MaxSegmentDocs = DefaultMaxSegmentDocs
	}
	if settings.RewriteCacheSize == 0 {
		settings.RewriteCacheSize = DefaultRewriteCacheSize
	}
	if settings.SearchParallelism == 0 {
		settings.SearchParallelism = DefaultSearchParallelism
	}

	// Initialize empty slices if nil to prevent nil pointer issues
	if settings.SearchableFields == nil {
		settings.SearchableFields = []string{}
	}
}

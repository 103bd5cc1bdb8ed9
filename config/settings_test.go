package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFieldNames(t *testing.T) {
	tests := []struct {
		name           string
		settings       IndexSettings
		expectedErrors int
		description    string
	}{
		{
			name: "valid configuration",
			settings: IndexSettings{
				Name:             "people",
				SearchableFields: []string{"first", "last", "gender"},
			},
			expectedErrors: 0,
			description:    "Distinct non-empty fields with default numbers are valid",
		},
		{
			name: "duplicate searchable field",
			settings: IndexSettings{
				Name:             "people",
				SearchableFields: []string{"first", "first"},
			},
			expectedErrors: 1,
			description:    "Duplicates are reported once per repeat",
		},
		{
			name: "whitespace field name",
			settings: IndexSettings{
				Name:             "people",
				SearchableFields: []string{"first", "  "},
			},
			expectedErrors: 1,
			description:    "Blank field names are rejected",
		},
		{
			name: "negative numbers",
			settings: IndexSettings{
				Name:                 "people",
				SearchableFields:     []string{"first"},
				PositionIncrementGap: -1,
				MaxSegmentDocs:       -5,
				RewriteCacheSize:     -1,
				SearchParallelism:    -2,
			},
			expectedErrors: 4,
			description:    "Each negative numeric setting is reported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := tt.settings.ValidateFieldNames()
			assert.Len(t, errors, tt.expectedErrors, tt.description)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	settings := &IndexSettings{Name: "people"}
	settings.ApplyDefaults()

	assert.Equal(t, DefaultMaxSegmentDocs, settings.MaxSegmentDocs)
	assert.Equal(t, DefaultRewriteCacheSize, settings.RewriteCacheSize)
	assert.Equal(t, DefaultSearchParallelism, settings.SearchParallelism)
	assert.Equal(t, 0, settings.PositionIncrementGap)
	assert.NotNil(t, settings.SearchableFields)

	custom := &IndexSettings{Name: "people", MaxSegmentDocs: 2, PositionIncrementGap: 10}
	custom.ApplyDefaults()
	assert.Equal(t, 2, custom.MaxSegmentDocs)
	assert.Equal(t, 10, custom.PositionIncrementGap)
}

func TestIsSearchable(t *testing.T) {
	settings := &IndexSettings{SearchableFields: []string{"first", "last"}}

	assert.True(t, settings.IsSearchable("first"))
	assert.True(t, settings.IsSearchable("last"))
	assert.False(t, settings.IsSearchable("gender"))
}

package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "index not found",
			err:      NewIndexNotFoundError("test-index"),
			sentinel: ErrIndexNotFound,
			message:  "index named 'test-index' not found",
		},
		{
			name:     "index already exists",
			err:      NewIndexAlreadyExistsError("existing-index"),
			sentinel: ErrIndexAlreadyExists,
			message:  "index named 'existing-index' already exists",
		},
		{
			name:     "document not found without index",
			err:      NewDocumentNotFoundError("doc123"),
			sentinel: ErrDocumentNotFound,
			message:  "document with ID 'doc123' not found",
		},
		{
			name:     "document not found with index",
			err:      NewDocumentNotFoundError("doc123", "test-index"),
			sentinel: ErrDocumentNotFound,
			message:  "document with ID 'doc123' not found in index 'test-index'",
		},
		{
			name:     "validation error with field",
			err:      NewValidationError("name", "cannot be empty"),
			sentinel: ErrInvalidInput,
			message:  "validation error for field 'name': cannot be empty",
		},
		{
			name:     "validation error without field",
			err:      NewValidationError("", "cannot be empty"),
			sentinel: ErrInvalidInput,
			message:  "validation error: cannot be empty",
		},
		{
			name:     "same name",
			err:      NewSameNameError("same-name"),
			sentinel: ErrSameName,
			message:  "new name 'same-name' is the same as the current name",
		},
		{
			name:     "invalid near query",
			err:      NewInvalidQueryError("near", "slop must be >= -1"),
			sentinel: ErrInvalidQuery,
			message:  "invalid near query: slop must be >= -1",
		},
		{
			name:     "invalid query without node",
			err:      NewInvalidQueryError("", "unknown node type"),
			sentinel: ErrInvalidQuery,
			message:  "invalid query: unknown node type",
		},
		{
			name:     "segment fault",
			err:      NewSegmentFaultError(3, io.ErrUnexpectedEOF),
			sentinel: ErrSegmentFault,
			message:  "segment 3: unexpected EOF",
		},
		{
			name:     "invariant violation",
			err:      NewInvariantViolationError("or", "match (1,0,1) after (2,0,1)"),
			sentinel: ErrInvariantViolation,
			message:  "invariant violated in or: match (1,0,1) after (2,0,1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestSentinelsDoNotOverlap(t *testing.T) {
	err := NewIndexNotFoundError("test-index")
	assert.NotErrorIs(t, err, ErrDocumentNotFound)

	qerr := NewInvalidQueryError("or", "no clauses")
	assert.NotErrorIs(t, qerr, ErrInvalidInput)
	assert.NotErrorIs(t, qerr, ErrInvariantViolation)
}

func TestSegmentFaultUnwrap(t *testing.T) {
	err := fmt.Errorf("search failed: %w", NewSegmentFaultError(1, io.ErrClosedPipe))

	assert.ErrorIs(t, err, ErrSegmentFault)
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	var segErr *SegmentFaultError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, 1, segErr.Segment)
}

func TestErrorChaining(t *testing.T) {
	originalErr := NewIndexNotFoundError("test-index")
	wrappedErr := errors.Join(originalErr, errors.New("additional context"))

	assert.ErrorIs(t, wrappedErr, ErrIndexNotFound)

	var indexErr *IndexNotFoundError
	require.ErrorAs(t, wrappedErr, &indexErr)
	assert.Equal(t, "test-index", indexErr.IndexName)
}

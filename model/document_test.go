package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDocumentID(t *testing.T) {
	tests := []struct {
		name   string
		doc    Document
		wantID string
		wantOK bool
	}{
		{"present", Document{"documentID": "p1"}, "p1", true},
		{"empty", Document{"documentID": ""}, "", false},
		{"wrong type", Document{"documentID": 7}, "", false},
		{"missing", Document{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.doc.GetDocumentID()
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestFieldValues(t *testing.T) {
	doc := Document{
		"single": "sally smith",
		"json":   []interface{}{"sally", 3.0, "greta"},
		"typed":  []string{"a", "b"},
		"number": 42.0,
	}

	tests := []struct {
		field  string
		want   []string
		wantOK bool
	}{
		{"single", []string{"sally smith"}, true},
		{"json", []string{"sally", "greta"}, true},
		{"typed", []string{"a", "b"}, true},
		{"number", nil, false},
		{"missing", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := doc.FieldValues(tt.field)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProject(t *testing.T) {
	doc := Document{"documentID": "p1", "first": "sally", "last": "smith"}

	assert.Equal(t, doc, doc.Project(nil))
	assert.Equal(t, Document{"documentID": "p1", "first": "sally"}, doc.Project([]string{"first", "unknown"}))
}

package engine

import (
	"fmt"
	"strings"

	"github.com/gcbaptista/go-span-search/config"
	"github.com/gcbaptista/go-span-search/internal/errors"
)

// CreateIndex validates settings, applies defaults and registers a new empty index.
func (e *Engine) CreateIndex(settings config.IndexSettings) error {
	if strings.TrimSpace(settings.Name) == "" {
		return errors.NewValidationError("name", "index name cannot be empty")
	}
	if conflicts := settings.ValidateFieldNames(); len(conflicts) > 0 {
		return errors.NewValidationError("settings", strings.Join(conflicts, "; "))
	}
	settings.ApplyDefaults()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indexes[settings.Name]; exists {
		return errors.NewIndexAlreadyExistsError(settings.Name)
	}

	instance, err := NewIndexInstance(settings, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create new index instance for '%s': %w", settings.Name, err)
	}
	e.indexes[settings.Name] = instance
	e.logger.Info("index created", "index", settings.Name, "searchable_fields", settings.SearchableFields)
	return nil
}

// DeleteIndex drops an index and all its documents.
func (e *Engine) DeleteIndex(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indexes[name]; !exists {
		return errors.NewIndexNotFoundError(name)
	}
	delete(e.indexes, name)

	e.logger.Info("index deleted", "index", name)
	return nil
}

// RenameIndex renames an index.
func (e *Engine) RenameIndex(oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return errors.NewValidationError("new_name", "index name cannot be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if oldName == newName {
		return errors.NewSameNameError(oldName)
	}
	instance, exists := e.indexes[oldName]
	if !exists {
		return errors.NewIndexNotFoundError(oldName)
	}
	if _, exists := e.indexes[newName]; exists {
		return errors.NewIndexAlreadyExistsError(newName)
	}

	instance.rename(newName)
	e.indexes[newName] = instance
	delete(e.indexes, oldName)

	e.logger.Info("index renamed", "from", oldName, "to", newName)
	return nil
}

package engine

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/gcbaptista/go-span-search/config"
	"github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/services"
)

// Engine manages multiple span indexes held in memory.
// It implements the services.IndexManager interface.
type Engine struct {
	mu      sync.RWMutex
	indexes map[string]*IndexInstance
	logger  *slog.Logger
}

// NewEngine creates a new engine. A nil logger uses slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		indexes: make(map[string]*IndexInstance),
		logger:  logger,
	}
}

// GetIndex retrieves an index by its name.
func (e *Engine) GetIndex(name string) (services.IndexAccessor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.indexes[name]
	if !exists {
		return nil, errors.NewIndexNotFoundError(name)
	}
	return instance, nil
}

// GetIndexSettings retrieves the settings for a specific index.
func (e *Engine) GetIndexSettings(name string) (config.IndexSettings, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.indexes[name]
	if !exists {
		return config.IndexSettings{}, errors.NewIndexNotFoundError(name)
	}
	return instance.Settings(), nil
}

// ListIndexes returns the names of all indexes in lexical order.
func (e *Engine) ListIndexes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.indexes))
	for name := range e.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package store

import (
	"sync"

	"github.com/gcbaptista/go-span-search/model"
)

// DocumentStore keeps the source documents of an index by internal id.
// Internal ids are the global document ids of the segments, so a hit's
// document id resolves directly to its source.
type DocumentStore struct {
	mu                     sync.RWMutex
	docs                   map[uint32]model.Document // Internal ID to full document
	externalIDtoInternalID map[string]uint32         // User-provided ID to internal uint32 ID
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:                   make(map[uint32]model.Document),
		externalIDtoInternalID: make(map[string]uint32),
	}
}

// Put stores doc under internalID and maps externalID to it.
func (ds *DocumentStore) Put(externalID string, internalID uint32, doc model.Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs[internalID] = doc
	ds.externalIDtoInternalID[externalID] = internalID
}

// Get returns the document stored under internalID.
func (ds *DocumentStore) Get(internalID uint32) (model.Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	doc, ok := ds.docs[internalID]
	return doc, ok
}

// Lookup resolves an external id.
func (ds *DocumentStore) Lookup(externalID string) (uint32, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	id, ok := ds.externalIDtoInternalID[externalID]
	return id, ok
}

// Remove drops the document mapped to externalID and returns its internal id.
func (ds *DocumentStore) Remove(externalID string) (uint32, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	id, ok := ds.externalIDtoInternalID[externalID]
	if !ok {
		return 0, false
	}
	delete(ds.externalIDtoInternalID, externalID)
	delete(ds.docs, id)
	return id, true
}

// Reset drops every document.
func (ds *DocumentStore) Reset() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs = make(map[uint32]model.Document)
	ds.externalIDtoInternalID = make(map[string]uint32)
}

func (ds *DocumentStore) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.docs)
}

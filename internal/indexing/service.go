package indexing

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-span-search/config"
	"github.com/gcbaptista/go-span-search/index"
	"github.com/gcbaptista/go-span-search/internal/errors"
	"github.com/gcbaptista/go-span-search/internal/metrics"
	"github.com/gcbaptista/go-span-search/internal/tokenizer"
	"github.com/gcbaptista/go-span-search/model"
	"github.com/gcbaptista/go-span-search/store"
)

// Service turns documents into segments for a single index.
// It fulfills the services.Indexer interface.
//
// Documents get consecutive global ids. A segment covers the ids
// [base, base+MaxDoc) and is never merged, so ids stay valid until
// DeleteAllDocuments.
type Service struct {
	mu            sync.Mutex
	settings      *config.IndexSettings
	documentStore *store.DocumentStore
	logger        *slog.Logger

	writer   *index.SegmentWriter
	segments []*index.Segment
	bases    []uint32
	nextBase uint32 // global id of the writer's first document
}

// NewService creates a new indexing Service.
func NewService(settings *config.IndexSettings, documentStore *store.DocumentStore, logger *slog.Logger) (*Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("index settings cannot be nil")
	}
	if documentStore == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		settings:      settings,
		documentStore: documentStore,
		logger:        logger.With("index", settings.Name),
		writer:        index.NewSegmentWriter(settings.PositionIncrementGap),
	}, nil
}

type analyzedDocument struct {
	id     string
	doc    model.Document
	values []index.FieldValue
}

// AddDocuments indexes a batch. A document whose documentID is already
// present replaces the previous version. Buffered documents are flushed
// into a segment every MaxSegmentDocs documents and at the end of the batch.
func (s *Service) AddDocuments(docs []model.Document) error {
	analyzed, err := s.analyze(docs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range analyzed {
		if internalID, exists := s.documentStore.Lookup(a.id); exists {
			if internalID >= s.nextBase {
				// the old version is still buffered; segments only take deletes once flushed
				s.flushLocked()
			}
			s.deleteLocked(internalID)
			s.documentStore.Remove(a.id)
		}
		internalID := s.nextBase + s.writer.AddDocument(a.values)
		s.documentStore.Put(a.id, internalID, a.doc)

		if int(s.writer.NumDocs()) >= s.maxSegmentDocs() {
			s.flushLocked()
		}
	}
	s.flushLocked()
	return nil
}

// analyze validates and tokenizes docs in parallel, keeping their order.
func (s *Service) analyze(docs []model.Document) ([]analyzedDocument, error) {
	out := make([]analyzedDocument, len(docs))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, doc := range docs {
		g.Go(func() error {
			id, err := documentID(doc)
			if err != nil {
				return fmt.Errorf("document at position %d: %w", i, err)
			}
			out[i] = analyzedDocument{id: id, doc: doc, values: s.fieldValues(id, doc)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func documentID(doc model.Document) (string, error) {
	raw, ok := doc["documentID"]
	if !ok {
		return "", errors.NewValidationError("documentID", "documentID must be provided in the document data")
	}
	id, ok := raw.(string)
	if !ok {
		return "", errors.NewValidationError("documentID", "documentID must be a string")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewValidationError("documentID", "documentID cannot be empty or whitespace-only")
	}
	return id, nil
}

// fieldValues tokenizes the searchable fields of doc. Every element of an
// array field becomes its own value.
func (s *Service) fieldValues(id string, doc model.Document) []index.FieldValue {
	var values []index.FieldValue
	for _, field := range s.settings.SearchableFields {
		texts, ok := doc.FieldValues(field)
		if !ok {
			if _, present := doc[field]; present {
				s.logger.Warn("searchable field has unsupported type", "documentID", id, "field", field, "type", fmt.Sprintf("%T", doc[field]))
			}
			continue
		}
		values = append(values, tokenizer.FieldValues(field, texts)...)
	}
	return values
}

func (s *Service) maxSegmentDocs() int {
	if s.settings.MaxSegmentDocs > 0 {
		return s.settings.MaxSegmentDocs
	}
	return config.DefaultMaxSegmentDocs
}

func (s *Service) flushLocked() {
	seg := s.writer.Flush()
	if seg == nil {
		return
	}
	s.segments = append(s.segments, seg)
	s.bases = append(s.bases, s.nextBase)
	s.nextBase += seg.MaxDoc()
	metrics.SegmentsFlushed.Inc()
	s.logger.Debug("segment flushed", "segment", len(s.segments)-1, "docs", seg.MaxDoc())
}

// deleteLocked marks a flushed document as deleted in its segment.
func (s *Service) deleteLocked(internalID uint32) {
	i := sort.Search(len(s.bases), func(i int) bool { return s.bases[i] > internalID }) - 1
	if i < 0 {
		return
	}
	s.segments[i].Delete(internalID - s.bases[i])
}

// DeleteAllDocuments removes all documents and segments.
// This satisfies the services.Indexer interface.
func (s *Service) DeleteAllDocuments() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documentStore.Reset()
	s.writer = index.NewSegmentWriter(s.settings.PositionIncrementGap)
	s.segments = nil
	s.bases = nil
	s.nextBase = 0
	s.logger.Info("all documents deleted")
	return nil
}

// DeleteDocument removes a specific document from the index by its external ID.
// This satisfies the services.Indexer interface.
func (s *Service) DeleteDocument(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	internalID, exists := s.documentStore.Remove(docID)
	if !exists {
		return errors.NewDocumentNotFoundError(docID, s.settings.Name)
	}
	s.deleteLocked(internalID)
	s.logger.Debug("document deleted", "documentID", docID)
	return nil
}

// GetDocument returns the stored source of a document.
func (s *Service) GetDocument(docID string) (model.Document, error) {
	internalID, exists := s.documentStore.Lookup(docID)
	if !exists {
		return nil, errors.NewDocumentNotFoundError(docID, s.settings.Name)
	}
	doc, ok := s.documentStore.Get(internalID)
	if !ok {
		return nil, errors.NewDocumentNotFoundError(docID, s.settings.Name)
	}
	return doc, nil
}

// Reader returns a point-in-time view of every flushed segment. Later
// additions and deletions are not visible to it.
func (s *Service) Reader() *index.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()

	leaves := make([]index.LeafReader, len(s.segments))
	for i, seg := range s.segments {
		leaves[i] = seg.Snapshot()
	}
	return index.NewReader(leaves...)
}

// SegmentStats reports the number of segments, allocated ids and deleted ids.
func (s *Service) SegmentStats() (segments int, maxDoc, deleted uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seg := range s.segments {
		deleted += seg.NumDeleted()
	}
	return len(s.segments), s.nextBase, deleted
}

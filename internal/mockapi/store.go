package mockapi

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pdfchat/cli/internal/api"
)

type document struct {
	api.Document
	chunks  []string
	history []api.HistoryEntry
	created time.Time
}

// store keeps uploaded documents in memory; gin serves handlers concurrently
type store struct {
	mu   sync.RWMutex
	docs map[string]*document
	now  func() time.Time
}

func newStore(now func() time.Time) *store {
	return &store{docs: make(map[string]*document), now: now}
}

func (s *store) add(filename string, size int64, chunks []string) *document {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(chunks)
	created := s.now()
	doc := &document{
		Document: api.Document{
			ID:         uuid.NewString(),
			Filename:   filename,
			UploadTime: created.UTC().Format(time.RFC3339),
			Size:       size,
			ChunkCount: &count,
		},
		chunks:  chunks,
		created: created,
	}
	s.docs[doc.ID] = doc
	return doc
}

func (s *store) get(id string) (*document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

func (s *store) list() []api.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].created.After(docs[j].created)
	})

	out := make([]api.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Document)
	}
	return out
}

func (s *store) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	return true
}

func (s *store) record(id string, entry api.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		doc.history = append(doc.history, entry)
	}
}

func (s *store) history(id string) ([]api.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, false
	}
	return append([]api.HistoryEntry{}, doc.history...), true
}

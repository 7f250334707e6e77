package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/go-kratos/canvas"
	"github.com/google/uuid"
)

// ErrCompositionNotFound is returned by a Store when no composition exists
// under the requested id.
var ErrCompositionNotFound = errors.New("composition not found")

// ErrNoStore is returned by operations that need persistence when the editor
// was constructed without a store.
var ErrNoStore = errors.New("no store configured")

// Store is the persistence collaborator. Create and Update are chosen by the
// editor based on whether the composition already has an id.
type Store interface {
	Get(ctx context.Context, id string) (*canvas.Document, error)
	Create(ctx context.Context, doc *canvas.Document) (string, error)
	Update(ctx context.Context, id string, doc *canvas.Document) error
}

// InMemoryStore is a Store backed by a map, for tests and local use.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*canvas.Document
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string]*canvas.Document)}
}

// Get returns the composition stored under id.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*canvas.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrCompositionNotFound
	}
	return doc, nil
}

// Create stores the composition under a fresh id and returns it.
func (s *InMemoryStore) Create(ctx context.Context, doc *canvas.Document) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.docs[id] = doc
	s.mu.Unlock()
	return id, nil
}

// Update replaces the composition stored under id.
func (s *InMemoryStore) Update(ctx context.Context, id string, doc *canvas.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrCompositionNotFound
	}
	s.docs[id] = doc
	return nil
}

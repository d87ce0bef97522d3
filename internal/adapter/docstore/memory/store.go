// Package memory implements the generic document store in process memory.
//
// It backs tests and local development. Documents are normalized through a
// JSON round-trip on write so that equality filters behave the same as with
// the JSONB-backed store. Ids are monotonic ULIDs, so lexicographic id order
// follows creation order.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// Store is a mutex-guarded in-memory document store.
type Store struct {
	mu      sync.RWMutex
	entropy *ulid.MonotonicEntropy
	cols    map[string]map[string]map[string]any
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		entropy: ulid.Monotonic(rand.Reader, 0),
		cols:    make(map[string]map[string]map[string]any),
	}
}

func normalize(doc map[string]any) (map[string]any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make(map[string]any)
	}
	return out, nil
}

func (s *Store) collection(name string) map[string]map[string]any {
	c, ok := s.cols[name]
	if !ok {
		c = make(map[string]map[string]any)
		s.cols[name] = c
	}
	return c
}

// NewID returns a fresh monotonic ULID.
func (s *Store) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), s.entropy).String()
}

// Add stores doc under a fresh id and returns it.
func (s *Store) Add(_ context.Context, collection string, doc map[string]any) (string, error) {
	n, err := normalize(doc)
	if err != nil {
		return "", fmt.Errorf("op=memstore.add: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), s.entropy).String()
	s.collection(collection)[id] = n
	return id, nil
}

// Get returns a copy of the document or domain.ErrNotFound.
func (s *Store) Get(_ context.Context, collection, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.cols[collection][id]
	if !ok {
		return nil, fmt.Errorf("op=memstore.get: %w", domain.ErrNotFound)
	}
	return normalize(doc)
}

// Set fully replaces the document at id, creating it if absent.
func (s *Store) Set(_ context.Context, collection, id string, doc map[string]any) error {
	n, err := normalize(doc)
	if err != nil {
		return fmt.Errorf("op=memstore.set: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = n
	return nil
}

// Update merges fields into an existing document.
func (s *Store) Update(_ context.Context, collection, id string, fields map[string]any) error {
	n, err := normalize(fields)
	if err != nil {
		return fmt.Errorf("op=memstore.update: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.cols[collection][id]
	if !ok {
		return fmt.Errorf("op=memstore.update: %w", domain.ErrNotFound)
	}
	for k, v := range n {
		doc[k] = v
	}
	return nil
}

// Query returns documents whose fields equal every filter value.
func (s *Store) Query(_ context.Context, collection string, filters map[string]any, limit int) ([]domain.Document, error) {
	nf, err := normalize(filters)
	if err != nil {
		return nil, fmt.Errorf("op=memstore.query: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Document
	for id, doc := range s.cols[collection] {
		match := true
		for k, want := range nf {
			if got, ok := doc[k]; !ok || !reflect.DeepEqual(got, want) {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		cp, err := normalize(doc)
		if err != nil {
			return nil, fmt.Errorf("op=memstore.query: %w", err)
		}
		out = append(out, domain.Document{ID: id, Data: cp})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

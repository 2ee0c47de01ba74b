package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps collections in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

func clone(d Document) Document {
	return Document{ID: d.ID, Data: slices.Clone(d.Data)}
}

func (s *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = clone(d)
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, collection string, id int64) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.collections[collection] {
		if d.ID == id {
			return clone(d), nil
		}
	}
	return Document{}, notFound(collection, id)
}

func (s *MemoryStore) Insert(_ context.Context, collection string, build func(id int64) ([]byte, error)) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := maxID(s.collections[collection]) + 1
	data, err := build(id)
	if err != nil {
		return Document{}, err
	}

	doc := Document{ID: id, Data: slices.Clone(data)}
	s.collections[collection] = append(s.collections[collection], doc)
	return clone(doc), nil
}

func (s *MemoryStore) Update(_ context.Context, collection string, id int64, mutate func([]byte) ([]byte, error)) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i, d := range docs {
		if d.ID != id {
			continue
		}
		data, err := mutate(slices.Clone(d.Data))
		if err != nil {
			return Document{}, err
		}
		docs[i] = Document{ID: id, Data: slices.Clone(data)}
		return clone(docs[i]), nil
	}
	return Document{}, notFound(collection, id)
}

func (s *MemoryStore) Delete(_ context.Context, collection string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections[collection] = slices.DeleteFunc(s.collections[collection], func(d Document) bool {
		return d.ID == id
	})
	return nil
}

func (s *MemoryStore) Put(_ context.Context, collection string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i, d := range docs {
		if d.ID == doc.ID {
			docs[i] = clone(doc)
			return nil
		}
	}

	docs = append(docs, clone(doc))
	slices.SortFunc(docs, func(a, b Document) int { return cmpID(a.ID, b.ID) })
	s.collections[collection] = docs
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func cmpID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

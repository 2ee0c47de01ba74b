package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sync"

	"github.com/ISTE-SCTCE/Admin/internal/filex"
)

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// JSONFileStore keeps each collection as a pretty-printed JSON array in
// <dir>/<collection>.json, the layout the legacy deployment used. Every write
// rewrites the whole file atomically.
type JSONFileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewJSONFileStore(dir string) (*JSONFileStore, error) {
	if dir == "" {
		dir = "data"
	}
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &JSONFileStore{dir: abs, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *JSONFileStore) lock(collection string) (func(), error) {
	if !collectionName.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	s.mu.Lock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock, nil
}

func (s *JSONFileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *JSONFileStore) read(collection string) ([]Document, error) {
	raw, err := os.ReadFile(s.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(items))
	for i, item := range items {
		var head struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(item, &head); err != nil {
			return nil, fmt.Errorf("parse %s[%d]: %w", collection, i, err)
		}
		docs = append(docs, Document{ID: head.ID, Data: item})
	}

	slices.SortStableFunc(docs, func(a, b Document) int { return cmpID(a.ID, b.ID) })
	return docs, nil
}

func (s *JSONFileStore) write(collection string, docs []Document) error {
	items := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		items[i] = d.Data
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}

	if err := filex.WriteFileAtomic(s.path(collection), data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}

func (s *JSONFileStore) List(_ context.Context, collection string) ([]Document, error) {
	unlock, err := s.lock(collection)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.read(collection)
}

func (s *JSONFileStore) Get(_ context.Context, collection string, id int64) (Document, error) {
	unlock, err := s.lock(collection)
	if err != nil {
		return Document{}, err
	}
	defer unlock()

	docs, err := s.read(collection)
	if err != nil {
		return Document{}, err
	}
	for _, d := range docs {
		if d.ID == id {
			return d, nil
		}
	}
	return Document{}, notFound(collection, id)
}

func (s *JSONFileStore) Insert(_ context.Context, collection string, build func(id int64) ([]byte, error)) (Document, error) {
	unlock, err := s.lock(collection)
	if err != nil {
		return Document{}, err
	}
	defer unlock()

	docs, err := s.read(collection)
	if err != nil {
		return Document{}, err
	}

	id := maxID(docs) + 1
	data, err := build(id)
	if err != nil {
		return Document{}, err
	}

	doc := Document{ID: id, Data: data}
	if err := s.write(collection, append(docs, doc)); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *JSONFileStore) Update(_ context.Context, collection string, id int64, mutate func([]byte) ([]byte, error)) (Document, error) {
	unlock, err := s.lock(collection)
	if err != nil {
		return Document{}, err
	}
	defer unlock()

	docs, err := s.read(collection)
	if err != nil {
		return Document{}, err
	}

	idx := slices.IndexFunc(docs, func(d Document) bool { return d.ID == id })
	if idx < 0 {
		return Document{}, notFound(collection, id)
	}

	data, err := mutate(docs[idx].Data)
	if err != nil {
		return Document{}, err
	}

	docs[idx] = Document{ID: id, Data: data}
	if err := s.write(collection, docs); err != nil {
		return Document{}, err
	}
	return docs[idx], nil
}

func (s *JSONFileStore) Delete(_ context.Context, collection string, id int64) error {
	unlock, err := s.lock(collection)
	if err != nil {
		return err
	}
	defer unlock()

	docs, err := s.read(collection)
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(docs, func(d Document) bool { return d.ID == id })
	return s.write(collection, kept)
}

func (s *JSONFileStore) Put(_ context.Context, collection string, doc Document) error {
	unlock, err := s.lock(collection)
	if err != nil {
		return err
	}
	defer unlock()

	docs, err := s.read(collection)
	if err != nil {
		return err
	}

	if idx := slices.IndexFunc(docs, func(d Document) bool { return d.ID == doc.ID }); idx >= 0 {
		docs[idx] = doc
	} else {
		docs = append(docs, doc)
		slices.SortStableFunc(docs, func(a, b Document) int { return cmpID(a.ID, b.ID) })
	}
	return s.write(collection, docs)
}

func (s *JSONFileStore) Close() error { return nil }

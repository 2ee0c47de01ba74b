package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const conflictAttempts = 5

// BadgerStore keeps records in badger under "<collection>/<big-endian id>",
// so a prefix scan yields a collection in id order.
type BadgerStore struct {
	db *badger.DB
	// serialises writers within this process
	writeMu sync.Mutex
}

// OpenBadgerStore opens (or creates) the database in <dir>/badger.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	if dir == "" {
		dir = "data"
	}
	opts := badger.DefaultOptions(filepath.Join(dir, "badger")).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return NewBadgerStore(db), nil
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func badgerPrefix(collection string) []byte {
	return []byte(collection + "/")
}

func badgerKey(collection string, id int64) []byte {
	k := badgerPrefix(collection)
	return binary.BigEndian.AppendUint64(k, uint64(id))
}

func badgerID(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key[len(key)-8:]))
}

func checkCollection(collection string) error {
	if !collectionName.MatchString(collection) {
		return fmt.Errorf("invalid collection name %q", collection)
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on conflicts with
// concurrent writers.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var err error
	for range conflictAttempts {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *BadgerStore) List(_ context.Context, collection string) ([]Document, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	var docs []Document
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerPrefix(collection)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			docs = append(docs, Document{ID: badgerID(item.Key()), Data: data})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: %w", err)
	}
	return docs, nil
}

func (s *BadgerStore) Get(_ context.Context, collection string, id int64) (Document, error) {
	if err := checkCollection(collection); err != nil {
		return Document{}, err
	}

	var doc Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(collection, id))
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		doc = Document{ID: id, Data: data}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Document{}, notFound(collection, id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("badger: %w", err)
	}
	return doc, nil
}

func lastID(txn *badger.Txn, collection string) int64 {
	prefix := badgerPrefix(collection)

	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	// in reverse mode Seek lands on the greatest key <= the seek key
	it.Seek(badgerKey(collection, -1))
	if it.ValidForPrefix(prefix) {
		return badgerID(it.Item().Key())
	}
	return 0
}

func (s *BadgerStore) Insert(_ context.Context, collection string, build func(id int64) ([]byte, error)) (Document, error) {
	if err := checkCollection(collection); err != nil {
		return Document{}, err
	}

	var doc Document
	err := s.update(func(txn *badger.Txn) error {
		id := lastID(txn, collection) + 1
		data, err := build(id)
		if err != nil {
			return err
		}
		if err := txn.Set(badgerKey(collection, id), data); err != nil {
			return err
		}
		doc = Document{ID: id, Data: data}
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *BadgerStore) Update(_ context.Context, collection string, id int64, mutate func([]byte) ([]byte, error)) (Document, error) {
	if err := checkCollection(collection); err != nil {
		return Document{}, err
	}

	var doc Document
	err := s.update(func(txn *badger.Txn) error {
		key := badgerKey(collection, id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound(collection, id)
		}
		if err != nil {
			return err
		}
		current, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		data, err := mutate(current)
		if err != nil {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		doc = Document{ID: id, Data: data}
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *BadgerStore) Delete(_ context.Context, collection string, id int64) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	return s.update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(collection, id))
	})
}

func (s *BadgerStore) Put(_ context.Context, collection string, doc Document) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	return s.update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(collection, doc.ID), doc.Data)
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

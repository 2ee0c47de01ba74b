// Package store persists named collections of JSON records. Every backend
// assigns ids as max(existing)+1 inside a per-collection critical section and
// returns records in id order.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ISTE-SCTCE/Admin/internal/common"
)

// Document is one stored record: its id and its JSON encoding.
type Document struct {
	ID   int64
	Data []byte
}

// Backend is the storage contract shared by the json, memory, sql and
// badger implementations.
type Backend interface {
	// List returns every document of the collection ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)

	// Get returns common.ErrorNotFound when the id is absent.
	Get(ctx context.Context, collection string, id int64) (Document, error)

	// Insert reserves the next id and stores what build returns for it.
	Insert(ctx context.Context, collection string, build func(id int64) ([]byte, error)) (Document, error)

	// Update replaces the document with what mutate returns for its current
	// bytes. It returns common.ErrorNotFound when the id is absent.
	Update(ctx context.Context, collection string, id int64, mutate func(current []byte) ([]byte, error)) (Document, error)

	// Delete succeeds whether or not the id exists.
	Delete(ctx context.Context, collection string, id int64) error

	// Put stores doc under its own id, replacing any existing document.
	Put(ctx context.Context, collection string, doc Document) error

	Close() error
}

// Driver names accepted by Open.
const (
	DriverJSON     = "json"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverBadger   = "badger"
)

// ErrUnknownDriver is returned by Open for unsupported driver names.
var ErrUnknownDriver = errors.New("unknown store driver")

// Options select and configure a backend.
type Options struct {
	Driver string
	// DataDir is the directory of the json and badger backends.
	DataDir string
	// DSN is the connection string of the sql backends.
	DSN string
	// Migrate applies embedded schema migrations when opening a sql backend.
	Migrate bool
}

// Open builds the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverJSON:
		return NewJSONFileStore(opts.DataDir)
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverPostgres, DriverSQLite:
		return OpenSQLStore(ctx, opts.Driver, opts.DSN, opts.Migrate)
	case DriverBadger:
		return OpenBadgerStore(opts.DataDir)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}

func notFound(collection string, id int64) error {
	return fmt.Errorf("%s %d: %w", collection, id, common.ErrorNotFound)
}

func maxID(docs []Document) int64 {
	var m int64
	for _, d := range docs {
		if d.ID > m {
			m = d.ID
		}
	}
	return m
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
)

type identifiable interface {
	SetID(id int64)
}

type stampable interface {
	Stamp(now time.Time)
}

// Collection is typed access to one named collection of a Backend. Records
// are JSON encoded; *T must implement SetID, and may implement Stamp to get
// server-set timestamps on create.
type Collection[T any] struct {
	backend Backend
	name    string
	now     func() time.Time
	logger  logging.Logger
}

type collectionConfig struct {
	now    func() time.Time
	logger logging.Logger
}

// CollectionOption configures NewCollection.
type CollectionOption func(*collectionConfig)

// WithClock replaces the clock used for Stamp.
func WithClock(now func() time.Time) CollectionOption {
	return func(c *collectionConfig) { c.now = now }
}

// WithLogger sets where skipped records are reported.
func WithLogger(l logging.Logger) CollectionOption {
	return func(c *collectionConfig) { c.logger = l }
}

func NewCollection[T any](b Backend, name string, opts ...CollectionOption) *Collection[T] {
	cfg := collectionConfig{now: time.Now, logger: logging.Nop()}
	for _, o := range opts {
		o(&cfg)
	}
	return &Collection[T]{
		backend: b,
		name:    name,
		now:     cfg.now,
		logger:  cfg.logger.With("collection", name),
	}
}

func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) decode(doc Document) (T, error) {
	var rec T
	if err := json.Unmarshal(doc.Data, &rec); err != nil {
		return rec, fmt.Errorf("decode %s %d: %w", c.name, doc.ID, err)
	}
	setID(&rec, doc.ID)
	return rec, nil
}

func setID[T any](rec *T, id int64) bool {
	if s, ok := any(rec).(identifiable); ok {
		s.SetID(id)
		return true
	}
	return false
}

// All returns every record in id order. Records that no longer decode are
// logged and left out.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	docs, err := c.backend.List(ctx, c.name)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(docs))
	for _, d := range docs {
		rec, err := c.decode(d)
		if err != nil {
			c.logger.Warn(ctx, "skipping undecodable record", "id", d.ID, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id int64) (T, error) {
	doc, err := c.backend.Get(ctx, c.name, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.decode(doc)
}

// Find returns the first record, in id order, for which match is true.
func (c *Collection[T]) Find(ctx context.Context, match func(T) bool) (T, error) {
	var zero T

	all, err := c.All(ctx)
	if err != nil {
		return zero, err
	}
	for _, rec := range all {
		if match(rec) {
			return rec, nil
		}
	}
	return zero, fmt.Errorf("%s: %w", c.name, common.ErrorNotFound)
}

// Create assigns the next id and timestamps to rec and stores it.
func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	if s, ok := any(&rec).(stampable); ok {
		s.Stamp(c.now().UTC())
	}

	doc, err := c.backend.Insert(ctx, c.name, func(id int64) ([]byte, error) {
		if !setID(&rec, id) {
			return nil, fmt.Errorf("%s: record type %T has no SetID", c.name, rec)
		}
		return json.Marshal(rec)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return c.decode(doc)
}

// Update loads the record, lets fn change it and stores the result. The id
// cannot be changed by fn. Returning an error from fn aborts the write.
func (c *Collection[T]) Update(ctx context.Context, id int64, fn func(*T) error) (T, error) {
	doc, err := c.backend.Update(ctx, c.name, id, func(current []byte) ([]byte, error) {
		var rec T
		if err := json.Unmarshal(current, &rec); err != nil {
			return nil, fmt.Errorf("decode %s %d: %w", c.name, id, err)
		}
		if err := fn(&rec); err != nil {
			return nil, err
		}
		setID(&rec, id)
		return json.Marshal(rec)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return c.decode(doc)
}

func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	return c.backend.Delete(ctx, c.name, id)
}

// Put stores rec under id as-is, without timestamps.
func (c *Collection[T]) Put(ctx context.Context, id int64, rec T) error {
	if id <= 0 {
		return errors.New("put: id must be positive")
	}
	setID(&rec, id)
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.backend.Put(ctx, c.name, Document{ID: id, Data: data})
}

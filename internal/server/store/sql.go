package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/dbx"
	"github.com/ISTE-SCTCE/Admin/internal/server/migrations"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const insertAttempts = 5

// SQLStore keeps every collection in one records table keyed by
// (collection, id), on PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect dbx.Dialect
	now     func() time.Time
}

func NewSQLStore(db *sql.DB, dialect dbx.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, now: time.Now}
}

// OpenSQLStore connects with the driver for dialectName and optionally
// applies the embedded migrations.
func OpenSQLStore(ctx context.Context, dialectName, dsn string, migrate bool) (*SQLStore, error) {
	d, err := dbx.ParseDialect(dialectName)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if d == dbx.SQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if migrate {
		if err := Migrate(ctx, db, d); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return NewSQLStore(db, d), nil
}

var gooseMu sync.Mutex

// Migrate applies the embedded migrations for dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect.GooseDialect()); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, string(dialect)); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func (s *SQLStore) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *SQLStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT id, data FROM records WHERE collection = $1 ORDER BY id`), collection)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Data); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return docs, nil
}

func (s *SQLStore) Get(ctx context.Context, collection string, id int64) (Document, error) {
	d := Document{ID: id}
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT data FROM records WHERE collection = $1 AND id = $2`), collection, id).Scan(&d.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, notFound(collection, id)
		}
		return Document{}, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (s *SQLStore) Insert(ctx context.Context, collection string, build func(id int64) ([]byte, error)) (Document, error) {
	var lastErr error

	for range insertAttempts {
		var doc Document
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			var id int64
			if err := tx.QueryRowContext(ctx,
				s.q(`SELECT COALESCE(MAX(id), 0) + 1 FROM records WHERE collection = $1`), collection).Scan(&id); err != nil {
				return fmt.Errorf("db error: %w", err)
			}

			data, err := build(id)
			if err != nil {
				return err
			}

			now := s.now().UTC()
			if _, err := tx.ExecContext(ctx,
				s.q(`INSERT INTO records (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`),
				collection, id, string(data), now, now); err != nil {
				return fmt.Errorf("db error: %w", err)
			}

			doc = Document{ID: id, Data: data}
			return nil
		})
		if err == nil {
			return doc, nil
		}
		if !isUniqueViolation(err) {
			return Document{}, err
		}
		lastErr = err
	}

	return Document{}, fmt.Errorf("insert %s: id contention: %w", collection, lastErr)
}

func (s *SQLStore) Update(ctx context.Context, collection string, id int64, mutate func([]byte) ([]byte, error)) (Document, error) {
	selectQuery := `SELECT data FROM records WHERE collection = $1 AND id = $2`
	if s.dialect == dbx.Postgres {
		selectQuery += ` FOR UPDATE`
	}

	var doc Document
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var current []byte
		if err := tx.QueryRowContext(ctx, s.q(selectQuery), collection, id).Scan(&current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound(collection, id)
			}
			return fmt.Errorf("db error: %w", err)
		}

		data, err := mutate(current)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			s.q(`UPDATE records SET data = $1, updated_at = $2 WHERE collection = $3 AND id = $4`),
			string(data), s.now().UTC(), collection, id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		doc = Document{ID: id, Data: data}
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *SQLStore) Delete(ctx context.Context, collection string, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		s.q(`DELETE FROM records WHERE collection = $1 AND id = $2`), collection, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQLStore) Put(ctx context.Context, collection string, doc Document) error {
	now := s.now().UTC()
	if _, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO records (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`),
		collection, doc.ID, string(doc.Data), now, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// DB exposes the handle for migrations and health checks.
func (s *SQLStore) DB() *sql.DB { return s.db }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

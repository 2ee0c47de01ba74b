package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(db, dbx.Postgres), mock
}

var (
	qMaxID  = `(?s)^SELECT\s+COALESCE\(MAX\(id\),\s*0\)\s*\+\s*1\s+FROM\s+records\s+WHERE\s+collection\s*=\s*\$1$`
	qInsert = `(?s)^INSERT\s+INTO\s+records\s*\(collection,\s*id,\s*data,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)$`
	qLock   = `(?s)^SELECT\s+data\s+FROM\s+records\s+WHERE\s+collection\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s+FOR\s+UPDATE$`
	qUpdate = `(?s)^UPDATE\s+records\s+SET\s+data\s*=\s*\$1,\s*updated_at\s*=\s*\$2\s+WHERE\s+collection\s*=\s*\$3\s+AND\s+id\s*=\s*\$4$`
)

func TestSQLStore_Insert_Success(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qMaxID).WithArgs("members").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(6)))
	mock.ExpectExec(qInsert).
		WithArgs("members", int64(6), `{"id":6}`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	doc, err := s.Insert(context.Background(), "members", func(id int64) ([]byte, error) {
		return []byte(`{"id":6}`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), doc.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Insert_RetriesOnUniqueViolation(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qMaxID).WithArgs("messages").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(3)))
	mock.ExpectExec(qInsert).
		WithArgs("messages", int64(3), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(qMaxID).WithArgs("messages").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(4)))
	mock.ExpectExec(qInsert).
		WithArgs("messages", int64(4), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	doc, err := s.Insert(context.Background(), "messages", func(id int64) ([]byte, error) {
		return []byte(`{}`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), doc.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Insert_OtherErrorsAreNotRetried(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qMaxID).WithArgs("users").WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := s.Insert(context.Background(), "users", func(int64) ([]byte, error) { return []byte(`{}`), nil })
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Update_LocksRow(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qLock).WithArgs("members", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"id":5,"role":"Member"}`)))
	mock.ExpectExec(qUpdate).
		WithArgs(`{"id":5,"role":"Chair"}`, sqlmock.AnyArg(), "members", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	doc, err := s.Update(context.Background(), "members", 5, func(cur []byte) ([]byte, error) {
		assert.JSONEq(t, `{"id":5,"role":"Member"}`, string(cur))
		return []byte(`{"id":5,"role":"Chair"}`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), doc.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Update_NotFound(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qLock).WithArgs("members", int64(9)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), "members", 9, func(cur []byte) ([]byte, error) { return cur, nil })
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Get_NotFound(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+data\s+FROM\s+records\s+WHERE\s+collection\s*=\s*\$1\s+AND\s+id\s*=\s*\$2$`).
		WithArgs("files", int64(2)).WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "files", 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLStore_List_DBError(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*data\s+FROM\s+records\s+WHERE\s+collection\s*=\s*\$1\s+ORDER\s+BY\s+id$`).
		WithArgs("events").WillReturnError(errors.New("conn reset"))

	_, err := s.List(context.Background(), "events")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: records.collection, records.id (1555)")))
	assert.False(t, isUniqueViolation(errors.New("disk full")))
}

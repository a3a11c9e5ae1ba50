package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/assert/v2"
	"github.com/lib/pq"

	"newsmentor/internal/model"
)

const bookmarkID = "0b3c6c2e-5a55-4f0c-9f53-6ad3a7d3b4c1"

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func TestBookmarkAdd(t *testing.T) {
	conn, mock := newMock(t)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO bookmark").
		WithArgs("user-1", "quantitative easing", "Central banks buy bonds.").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(bookmarkID, created))

	b := &model.Bookmark{UserID: "user-1", Text: "quantitative easing", Explanation: "Central banks buy bonds."}
	err := NewBookmarkRepository(conn).Add(context.Background(), b)

	assert.Equal(t, nil, err)
	assert.Equal(t, bookmarkID, b.ID)
	assert.Equal(t, created, b.CreatedAt)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestBookmarkAddDuplicate(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO bookmark").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := NewBookmarkRepository(conn).Add(context.Background(), &model.Bookmark{UserID: "user-1", Text: "x"})

	assert.Equal(t, ErrDuplicate, err)
}

func TestBookmarkFindMissing(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT id, user_id, text, explanation, created_at").
		WithArgs("user-1", "nothing").
		WillReturnError(sql.ErrNoRows)

	b, err := NewBookmarkRepository(conn).Find(context.Background(), "user-1", "nothing")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, b == nil)
}

func TestBookmarkList(t *testing.T) {
	conn, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM bookmark").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "text", "explanation", "created_at"}).
			AddRow(bookmarkID, "user-1", "tariff", "A tax on imports.", now).
			AddRow("7e0c", "user-1", "yield curve", "Rates by maturity.", now.Add(-time.Hour)))

	list, err := NewBookmarkRepository(conn).List(context.Background(), "user-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(list))
	assert.Equal(t, "tariff", list[0].Text)
	assert.Equal(t, "Rates by maturity.", list[1].Explanation)
}

func TestBookmarkRemove(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectExec("DELETE FROM bookmark").
		WithArgs(bookmarkID, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM bookmark").
		WithArgs(bookmarkID, "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewBookmarkRepository(conn)

	assert.Equal(t, nil, repo.Remove(context.Background(), "user-1", bookmarkID))
	assert.Equal(t, ErrNotFound, repo.Remove(context.Background(), "user-2", bookmarkID))
	assert.Equal(t, ErrNotFound, repo.Remove(context.Background(), "user-1", "not-a-uuid"))
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestBookmarkCount(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := NewBookmarkRepository(conn).Count(context.Background(), "user-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, 4, n)
}

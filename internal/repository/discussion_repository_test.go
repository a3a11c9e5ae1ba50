package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/assert/v2"

	"newsmentor/internal/model"
)

func TestSaveDiscussion(t *testing.T) {
	conn, mock := newMock(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	summary := &model.DiscussionSummary{
		SubjectID: "user-1",
		Topic:     "Rates",
		Entries: []model.ConversationEntry{
			{Kind: model.EntryQuestion, Text: "Why?", OccurredAt: at},
			{Kind: model.EntryResponse, Text: "Inflation.", OccurredAt: at},
		},
		ExchangeCount: 1,
		CreatedAt:     at,
	}

	mock.ExpectQuery("INSERT INTO discussion").
		WithArgs("user-1", "Rates", sqlmock.AnyArg(), 1, at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("d-1"))

	err := NewDiscussionRepository(conn).SaveDiscussion(context.Background(), summary)

	assert.Equal(t, nil, err)
	assert.Equal(t, "d-1", summary.ID)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestSaveDiscussionError(t *testing.T) {
	conn, mock := newMock(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery("INSERT INTO discussion").WillReturnError(boom)

	err := NewDiscussionRepository(conn).SaveDiscussion(context.Background(), &model.DiscussionSummary{})

	assert.Equal(t, true, errors.Is(err, boom))
}

func TestRecentDiscussions(t *testing.T) {
	conn, mock := newMock(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := `[{"type":"question","text":"Why?","timestamp":"2026-03-01T09:00:00Z"}]`

	mock.ExpectQuery("FROM discussion").
		WithArgs("user-1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "topic", "entries", "total_exchanges", "created_at"}).
			AddRow("d-1", "user-1", "Rates", []byte(entries), 0, at))

	list, err := NewDiscussionRepository(conn).RecentDiscussions(context.Background(), "user-1", 5)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(list))
	assert.Equal(t, "Rates", list[0].Topic)
	assert.Equal(t, model.EntryQuestion, list[0].Entries[0].Kind)
	assert.Equal(t, at, list[0].Entries[0].OccurredAt)
}

func TestRecentDiscussionsCorruptEntries(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("FROM discussion").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "topic", "entries", "total_exchanges", "created_at"}).
			AddRow("d-1", "user-1", "Rates", []byte(`{`), 0, time.Now()))

	_, err := NewDiscussionRepository(conn).RecentDiscussions(context.Background(), "user-1", 5)

	assert.NotEqual(t, nil, err)
}

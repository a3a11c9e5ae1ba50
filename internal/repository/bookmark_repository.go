package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"newsmentor/internal/model"
)

const uniqueViolation = "23505"

type BookmarkRepository struct {
	db *sql.DB
}

func NewBookmarkRepository(db *sql.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Add stores b and fills its ID and CreatedAt. The same text can be
// bookmarked once per user.
func (r *BookmarkRepository) Add(ctx context.Context, b *model.Bookmark) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO bookmark(user_id, text, explanation)
		VALUES($1, $2, $3)
		RETURNING id, created_at
	`, b.UserID, b.Text, b.Explanation).Scan(&b.ID, &b.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *BookmarkRepository) List(ctx context.Context, userID string) ([]model.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, text, explanation, created_at
		FROM bookmark
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.Text, &b.Explanation, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookmarks, nil
}

// Find returns nil when the user has not bookmarked text.
func (r *BookmarkRepository) Find(ctx context.Context, userID, text string) (*model.Bookmark, error) {
	var b model.Bookmark
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, text, explanation, created_at
		FROM bookmark
		WHERE user_id = $1 AND text = $2
	`, userID, text).Scan(&b.ID, &b.UserID, &b.Text, &b.Explanation, &b.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *BookmarkRepository) Remove(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM bookmark WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookmarkRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookmark WHERE user_id = $1
	`, userID).Scan(&n)
	return n, err
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"newsmentor/internal/model"
)

type DiscussionRepository struct {
	db *sql.DB
}

func NewDiscussionRepository(db *sql.DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

func (r *DiscussionRepository) SaveDiscussion(ctx context.Context, s *model.DiscussionSummary) error {
	entries, err := json.Marshal(s.Entries)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO discussion(user_id, topic, entries, total_exchanges, created_at)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id
	`, s.SubjectID, s.Topic, entries, s.ExchangeCount, s.CreatedAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("save discussion: %w", err)
	}
	return nil
}

func (r *DiscussionRepository) RecentDiscussions(ctx context.Context, userID string, limit int) ([]model.DiscussionSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, topic, entries, total_exchanges, created_at
		FROM discussion
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []model.DiscussionSummary{}
	for rows.Next() {
		var s model.DiscussionSummary
		var entries []byte
		if err := rows.Scan(&s.ID, &s.SubjectID, &s.Topic, &entries, &s.ExchangeCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(entries, &s.Entries); err != nil {
			return nil, fmt.Errorf("discussion %s entries: %w", s.ID, err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

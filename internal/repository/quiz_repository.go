package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"newsmentor/internal/model"
)

type QuizRepository struct {
	db *sql.DB
}

func NewQuizRepository(db *sql.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) SaveResult(ctx context.Context, result *model.QuizResult) error {
	questions, err := json.Marshal(result.Questions)
	if err != nil {
		return err
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO quiz_result(user_id, main_topic, total_questions, correct_answers, questions)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, result.UserID, result.MainTopic, result.TotalQuestions, result.CorrectAnswers, questions).Scan(&result.ID, &result.CreatedAt)
}

// Results returns the user's quiz results, newest first.
func (r *QuizRepository) Results(ctx context.Context, userID string) ([]model.QuizResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, main_topic, total_questions, correct_answers, questions, created_at
		FROM quiz_result
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.QuizResult{}
	for rows.Next() {
		var q model.QuizResult
		var questions []byte
		if err := rows.Scan(&q.ID, &q.UserID, &q.MainTopic, &q.TotalQuestions, &q.CorrectAnswers, &questions, &q.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(questions, &q.Questions); err != nil {
			return nil, fmt.Errorf("quiz result %s questions: %w", q.ID, err)
		}
		results = append(results, q)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

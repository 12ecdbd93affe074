package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dekorhaus/apiserver/types"
)

// FeedbackRepository handles persistence for project feedback.
type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// ListByProject returns the project's feedback, newest first. The author's
// username is joined in for display.
func (r *FeedbackRepository) ListByProject(ctx context.Context, projectID int) ([]types.Feedback, error) {
	const query = `
		SELECT f.id, f.project_id, f.user_id, u.username, f.message, f.created_at
		FROM feedbacks f
		JOIN users u ON u.id = f.user_id
		WHERE f.project_id = $1
		ORDER BY f.created_at DESC, f.id DESC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedbacks := make([]types.Feedback, 0)
	for rows.Next() {
		var feedback types.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.ProjectID,
			&feedback.UserID,
			&feedback.Username,
			&feedback.Message,
			&feedback.CreatedAt,
		); err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, feedback)
	}
	return feedbacks, rows.Err()
}

func (r *FeedbackRepository) Get(ctx context.Context, id int) (types.Feedback, error) {
	const query = `
		SELECT f.id, f.project_id, f.user_id, u.username, f.message, f.created_at
		FROM feedbacks f
		JOIN users u ON u.id = f.user_id
		WHERE f.id = $1`
	var feedback types.Feedback
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&feedback.ID,
		&feedback.ProjectID,
		&feedback.UserID,
		&feedback.Username,
		&feedback.Message,
		&feedback.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Feedback{}, ErrNotFound
		}
		return types.Feedback{}, err
	}
	return feedback, nil
}

func (r *FeedbackRepository) Create(ctx context.Context, feedback types.Feedback) (types.Feedback, error) {
	feedback.CreatedAt = time.Now()

	const query = `
		INSERT INTO feedbacks (project_id, user_id, message, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		feedback.ProjectID,
		feedback.UserID,
		feedback.Message,
		feedback.CreatedAt,
	).Scan(&feedback.ID); err != nil {
		return types.Feedback{}, err
	}
	return feedback, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM feedbacks WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SQLiteOutcomeRepo implements OutcomeRepo using a SQLite database.
type SQLiteOutcomeRepo struct {
	db db.DBTX
}

func NewSQLiteOutcomeRepo(conn db.DBTX) *SQLiteOutcomeRepo {
	return &SQLiteOutcomeRepo{db: conn}
}

func (r *SQLiteOutcomeRepo) Get(ctx context.Context, learnerID, categoryKey string) (*domain.AssessmentOutcome, error) {
	var o domain.AssessmentOutcome
	err := r.db.QueryRowContext(ctx,
		`SELECT average_score, rating_delta, sample_count FROM assessment_outcomes
		WHERE learner_id = ? AND category_key = ?`, learnerID, categoryKey,
	).Scan(&o.AverageScore, &o.RatingDelta, &o.SampleCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assessment outcome %s: %w", categoryKey, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning assessment outcome: %w", err)
	}
	return &o, nil
}

func (r *SQLiteOutcomeRepo) Upsert(ctx context.Context, learnerID, categoryKey string, o domain.AssessmentOutcome) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assessment_outcomes (learner_id, category_key, average_score, rating_delta, sample_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(learner_id, category_key) DO UPDATE SET
			average_score = excluded.average_score,
			rating_delta = excluded.rating_delta,
			sample_count = excluded.sample_count,
			updated_at = excluded.updated_at`,
		learnerID, categoryKey, o.AverageScore, o.RatingDelta, o.SampleCount, formatTime(nowUTC()))
	if err != nil {
		return fmt.Errorf("upserting assessment outcome: %w", err)
	}
	return nil
}

func (r *SQLiteOutcomeRepo) Record(ctx context.Context, learnerID, categoryKey string, score, delta float64) (*domain.AssessmentOutcome, error) {
	cur, err := r.Get(ctx, learnerID, categoryKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	next := domain.AssessmentOutcome{AverageScore: score, RatingDelta: delta, SampleCount: 1}
	if cur != nil {
		n := float64(cur.SampleCount)
		next.AverageScore = (cur.AverageScore*n + score) / (n + 1)
		next.SampleCount = cur.SampleCount + 1
	}
	if err := r.Upsert(ctx, learnerID, categoryKey, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (r *SQLiteOutcomeRepo) ListByLearner(ctx context.Context, learnerID string) (map[string]domain.AssessmentOutcome, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_key, average_score, rating_delta, sample_count
		FROM assessment_outcomes WHERE learner_id = ?`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("listing assessment outcomes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.AssessmentOutcome)
	for rows.Next() {
		var key string
		var o domain.AssessmentOutcome
		if err := rows.Scan(&key, &o.AverageScore, &o.RatingDelta, &o.SampleCount); err != nil {
			return nil, fmt.Errorf("scanning assessment outcome: %w", err)
		}
		out[key] = o
	}
	return out, rows.Err()
}

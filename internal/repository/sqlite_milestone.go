package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SQLiteMilestoneRepo implements MilestoneRepo using a SQLite database.
type SQLiteMilestoneRepo struct {
	db db.DBTX
}

func NewSQLiteMilestoneRepo(conn db.DBTX) *SQLiteMilestoneRepo {
	return &SQLiteMilestoneRepo{db: conn}
}

func (r *SQLiteMilestoneRepo) Append(ctx context.Context, learnerID string, rec domain.MilestoneRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = nowUTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO milestone_history (id, learner_id, category_key, title, completed_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, learnerID, rec.CategoryKey, rec.Title, formatTime(rec.CompletedAt))
	if err != nil {
		return fmt.Errorf("inserting milestone record: %w", err)
	}
	return nil
}

func (r *SQLiteMilestoneRepo) ListByLearner(ctx context.Context, learnerID string) ([]domain.MilestoneRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_key, title, completed_at FROM milestone_history
		WHERE learner_id = ? ORDER BY completed_at, id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("listing milestone history: %w", err)
	}
	defer rows.Close()

	var out []domain.MilestoneRecord
	for rows.Next() {
		var rec domain.MilestoneRecord
		var at string
		if err := rows.Scan(&rec.ID, &rec.CategoryKey, &rec.Title, &at); err != nil {
			return nil, fmt.Errorf("scanning milestone record: %w", err)
		}
		if rec.CompletedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

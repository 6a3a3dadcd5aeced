package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SQLiteCompletionRepo implements CompletionRepo using a SQLite database.
type SQLiteCompletionRepo struct {
	db db.DBTX
}

func NewSQLiteCompletionRepo(conn db.DBTX) *SQLiteCompletionRepo {
	return &SQLiteCompletionRepo{db: conn}
}

func (r *SQLiteCompletionRepo) Record(ctx context.Context, rec *domain.CompletionRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = nowUTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO completions (id, learner_id, item_key, item_id, kind, category_key, title, score, rating_delta, notes, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(learner_id, item_key) DO NOTHING`,
		rec.ID, rec.LearnerID, rec.ItemKey, rec.ItemID, string(rec.Kind), rec.CategoryKey, rec.Title,
		nullableFloatToValue(rec.Outcome.Score), rec.Outcome.RatingDelta, rec.Outcome.Notes,
		formatTime(rec.CompletedAt))
	if err != nil {
		return false, fmt.Errorf("inserting completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteCompletionRepo) ListByLearner(ctx context.Context, learnerID string) ([]domain.CompletionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_key, item_id, kind, category_key, title, score, rating_delta, notes, completed_at
		FROM completions WHERE learner_id = ? ORDER BY completed_at, id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}
	defer rows.Close()

	var out []domain.CompletionRecord
	for rows.Next() {
		rec := domain.CompletionRecord{LearnerID: learnerID}
		var kind, at string
		var score sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.ItemKey, &rec.ItemID, &kind, &rec.CategoryKey, &rec.Title,
			&score, &rec.Outcome.RatingDelta, &rec.Outcome.Notes, &at); err != nil {
			return nil, fmt.Errorf("scanning completion: %w", err)
		}
		rec.Kind = domain.ItemKind(kind)
		rec.Outcome.Score = floatPtr(score)
		if rec.CompletedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SQLiteCategoryRepo implements CategoryRepo using a SQLite database.
type SQLiteCategoryRepo struct {
	db db.DBTX
}

func NewSQLiteCategoryRepo(conn db.DBTX) *SQLiteCategoryRepo {
	return &SQLiteCategoryRepo{db: conn}
}

func (r *SQLiteCategoryRepo) Upsert(ctx context.Context, learnerID string, c domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (learner_id, key, label, weight, current_rating, target_rating, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(learner_id, key) DO UPDATE SET
			label = excluded.label,
			weight = excluded.weight,
			current_rating = excluded.current_rating,
			target_rating = excluded.target_rating,
			position = excluded.position`,
		learnerID, c.Key, c.Label, c.Weight, c.CurrentRating, nullableFloatToValue(c.TargetRating), c.Position,
	)
	if err != nil {
		return fmt.Errorf("upserting category %s: %w", c.Key, err)
	}
	return nil
}

func (r *SQLiteCategoryRepo) ListByLearner(ctx context.Context, learnerID string) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, label, weight, current_rating, target_rating, position
		FROM categories WHERE learner_id = ? ORDER BY position, key`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var target sql.NullFloat64
		if err := rows.Scan(&c.Key, &c.Label, &c.Weight, &c.CurrentRating, &target, &c.Position); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.TargetRating = floatPtr(target)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteCategoryRepo) ApplyRatingDelta(ctx context.Context, learnerID, key string, delta float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET current_rating = current_rating + ? WHERE learner_id = ? AND key = ?`,
		delta, learnerID, key)
	if err != nil {
		return fmt.Errorf("applying rating delta: %w", err)
	}
	return requireAffected(res, "category", key)
}

func (r *SQLiteCategoryRepo) Delete(ctx context.Context, learnerID, key string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE learner_id = ? AND key = ?`, learnerID, key)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return requireAffected(res, "category", key)
}

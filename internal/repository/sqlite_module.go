package repository

import (
	"context"
	"fmt"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SQLiteModuleRepo implements ModuleRepo using a SQLite database.
type SQLiteModuleRepo struct {
	db db.DBTX
}

func NewSQLiteModuleRepo(conn db.DBTX) *SQLiteModuleRepo {
	return &SQLiteModuleRepo{db: conn}
}

func (r *SQLiteModuleRepo) ReplaceCategory(ctx context.Context, learnerID, categoryKey string, modules []domain.Module) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM modules WHERE learner_id = ? AND category_key = ?`, learnerID, categoryKey); err != nil {
		return fmt.Errorf("clearing modules of %s: %w", categoryKey, err)
	}
	for i, m := range modules {
		prereqs, err := encodeStrings(m.Prerequisites)
		if err != nil {
			return err
		}
		objectives, err := encodeStrings(m.Objectives)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO modules (learner_id, category_key, id, title, estimated_minutes, prerequisites, objectives, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			learnerID, categoryKey, m.ID, m.Title, m.EstimatedMinutes, prereqs, objectives, i)
		if err != nil {
			return fmt.Errorf("inserting module %s: %w", m.ID, err)
		}
	}
	return nil
}

func (r *SQLiteModuleRepo) ListByLearner(ctx context.Context, learnerID string) (map[string][]domain.Module, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_key, id, title, estimated_minutes, prerequisites, objectives
		FROM modules WHERE learner_id = ? ORDER BY category_key, position`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Module)
	for rows.Next() {
		var m domain.Module
		var prereqs, objectives string
		if err := rows.Scan(&m.CategoryKey, &m.ID, &m.Title, &m.EstimatedMinutes, &prereqs, &objectives); err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}
		if m.Prerequisites, err = decodeStrings(prereqs); err != nil {
			return nil, err
		}
		if m.Objectives, err = decodeStrings(objectives); err != nil {
			return nil, err
		}
		out[m.CategoryKey] = append(out[m.CategoryKey], m)
	}
	return out, rows.Err()
}

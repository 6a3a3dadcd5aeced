package repository

import (
	"context"
	"fmt"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SQLiteRationaleRepo implements RationaleRepo using a SQLite database.
// Entry ids are ULIDs, so ordering by id is ordering by creation.
type SQLiteRationaleRepo struct {
	db db.DBTX
}

func NewSQLiteRationaleRepo(conn db.DBTX) *SQLiteRationaleRepo {
	return &SQLiteRationaleRepo{db: conn}
}

func (r *SQLiteRationaleRepo) Append(ctx context.Context, learnerID string, e domain.ScheduleRationaleEntry) error {
	notes, err := encodeStrings(e.AdjustmentNotes)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO rationale_entries (id, learner_id, headline, summary, adjustment_notes, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, learnerID, e.Headline, e.Summary, notes, formatTime(e.GeneratedAt))
	if err != nil {
		return fmt.Errorf("inserting rationale entry: %w", err)
	}
	return nil
}

func (r *SQLiteRationaleRepo) Newest(ctx context.Context, learnerID string, limit int) ([]domain.ScheduleRationaleEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, headline, summary, adjustment_notes, generated_at FROM (
			SELECT id, headline, summary, adjustment_notes, generated_at FROM rationale_entries
			WHERE learner_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id`, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing rationale entries: %w", err)
	}
	defer rows.Close()

	var out []domain.ScheduleRationaleEntry
	for rows.Next() {
		var e domain.ScheduleRationaleEntry
		var notes, at string
		if err := rows.Scan(&e.ID, &e.Headline, &e.Summary, &notes, &at); err != nil {
			return nil, fmt.Errorf("scanning rationale entry: %w", err)
		}
		if e.AdjustmentNotes, err = decodeStrings(notes); err != nil {
			return nil, err
		}
		if e.GeneratedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRationaleRepo) Count(ctx context.Context, learnerID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rationale_entries WHERE learner_id = ?`, learnerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rationale entries: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SQLiteDeferralRepo implements DeferralRepo using a SQLite database.
// Each adjustment is its own row; readers see them collapsed per key.
type SQLiteDeferralRepo struct {
	db db.DBTX
}

func NewSQLiteDeferralRepo(conn db.DBTX) *SQLiteDeferralRepo {
	return &SQLiteDeferralRepo{db: conn}
}

func (r *SQLiteDeferralRepo) Append(ctx context.Context, learnerID, itemKey string, dayShift int, reason string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO deferrals (id, learner_id, item_key, day_shift, reason, requested_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), learnerID, itemKey, dayShift, reason, formatTime(at))
	if err != nil {
		return fmt.Errorf("inserting deferral: %w", err)
	}
	return nil
}

func (r *SQLiteDeferralRepo) Collapsed(ctx context.Context, learnerID string) (map[string]domain.Deferral, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT item_key, day_shift, reason, requested_at FROM deferrals
		WHERE learner_id = ? ORDER BY requested_at, id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("listing deferrals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Deferral)
	for rows.Next() {
		var key, reason, at string
		var shift int
		if err := rows.Scan(&key, &shift, &reason, &at); err != nil {
			return nil, fmt.Errorf("scanning deferral: %w", err)
		}
		when, err := parseTime(at)
		if err != nil {
			return nil, err
		}
		d := out[key]
		d.ItemKey = key
		d.DayShift += shift
		d.Count++
		if reason != "" {
			d.Reason = reason
		}
		d.LastRequestedAt = when
		out[key] = d
	}
	return out, rows.Err()
}

func (r *SQLiteDeferralRepo) DeleteKeys(ctx context.Context, learnerID string, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, learnerID)
	for _, k := range keys {
		args = append(args, k)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM deferrals WHERE learner_id = ? AND item_key IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting deferrals: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking affected rows: %w", err)
	}
	return n, nil
}

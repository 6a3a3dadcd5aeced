package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SQLiteLearnerRepo implements LearnerRepo using a SQLite database.
type SQLiteLearnerRepo struct {
	db db.DBTX
}

func NewSQLiteLearnerRepo(conn db.DBTX) *SQLiteLearnerRepo {
	return &SQLiteLearnerRepo{db: conn}
}

func (r *SQLiteLearnerRepo) Create(ctx context.Context, l *domain.Learner) error {
	now := nowUTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	if l.Revision <= 0 {
		l.Revision = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO learners (id, goal_summary, revision, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.GoalSummary, l.Revision, formatTime(l.CreatedAt), formatTime(l.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting learner: %w", err)
	}
	return nil
}

func (r *SQLiteLearnerRepo) GetByID(ctx context.Context, id string) (*domain.Learner, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, goal_summary, revision, created_at, updated_at FROM learners WHERE id = ?`, id)
	l, err := scanLearner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learner %s: %w", id, ErrNotFound)
	}
	return l, err
}

func (r *SQLiteLearnerRepo) List(ctx context.Context) ([]*domain.Learner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, goal_summary, revision, created_at, updated_at FROM learners ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing learners: %w", err)
	}
	defer rows.Close()

	var out []*domain.Learner
	for rows.Next() {
		l, err := scanLearner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLiteLearnerRepo) UpdateGoal(ctx context.Context, id, goal string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE learners SET goal_summary = ?, revision = revision + 1, updated_at = ? WHERE id = ?`,
		goal, formatTime(nowUTC()), id)
	if err != nil {
		return fmt.Errorf("updating learner goal: %w", err)
	}
	return requireAffected(res, "learner", id)
}

func (r *SQLiteLearnerRepo) BumpRevision(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE learners SET revision = revision + 1, updated_at = ? WHERE id = ?`,
		formatTime(nowUTC()), id)
	if err != nil {
		return 0, fmt.Errorf("bumping learner revision: %w", err)
	}
	if err := requireAffected(res, "learner", id); err != nil {
		return 0, err
	}
	var rev int64
	if err := r.db.QueryRowContext(ctx, `SELECT revision FROM learners WHERE id = ?`, id).Scan(&rev); err != nil {
		return 0, fmt.Errorf("reading learner revision: %w", err)
	}
	return rev, nil
}

func (r *SQLiteLearnerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM learners WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting learner: %w", err)
	}
	return requireAffected(res, "learner", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLearner(row rowScanner) (*domain.Learner, error) {
	var l domain.Learner
	var created, updated string
	if err := row.Scan(&l.ID, &l.GoalSummary, &l.Revision, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning learner: %w", err)
	}
	var err error
	if l.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &l, nil
}

func requireAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

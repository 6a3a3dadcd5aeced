package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SQLiteSignalStore assembles a learner's SignalSnapshot from the profile
// store. Run it inside a unit of work to read one consistent revision.
type SQLiteSignalStore struct {
	learners    *SQLiteLearnerRepo
	categories  *SQLiteCategoryRepo
	modules     *SQLiteModuleRepo
	outcomes    *SQLiteOutcomeRepo
	milestones  *SQLiteMilestoneRepo
	deferrals   *SQLiteDeferralRepo
	completions *SQLiteCompletionRepo
}

func NewSQLiteSignalStore(conn db.DBTX) *SQLiteSignalStore {
	return &SQLiteSignalStore{
		learners:    NewSQLiteLearnerRepo(conn),
		categories:  NewSQLiteCategoryRepo(conn),
		modules:     NewSQLiteModuleRepo(conn),
		outcomes:    NewSQLiteOutcomeRepo(conn),
		milestones:  NewSQLiteMilestoneRepo(conn),
		deferrals:   NewSQLiteDeferralRepo(conn),
		completions: NewSQLiteCompletionRepo(conn),
	}
}

func (s *SQLiteSignalStore) Snapshot(ctx context.Context, learnerID string) (*domain.SignalSnapshot, error) {
	learner, err := s.learners.GetByID(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	snap := &domain.SignalSnapshot{
		LearnerID:   learner.ID,
		GoalSummary: learner.GoalSummary,
		Revision:    learner.Revision,
		Categories:  make(map[string]domain.Category),
		Completions: make(map[string]time.Time),
	}

	cats, err := s.categories.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("snapshot categories: %w", err)
	}
	for _, c := range cats {
		snap.Categories[c.Key] = c
	}
	if snap.ModuleLibrary, err = s.modules.ListByLearner(ctx, learnerID); err != nil {
		return nil, fmt.Errorf("snapshot modules: %w", err)
	}
	if snap.AssessmentOutcomes, err = s.outcomes.ListByLearner(ctx, learnerID); err != nil {
		return nil, fmt.Errorf("snapshot outcomes: %w", err)
	}
	if snap.MilestoneHistory, err = s.milestones.ListByLearner(ctx, learnerID); err != nil {
		return nil, fmt.Errorf("snapshot milestones: %w", err)
	}
	if snap.PendingDeferrals, err = s.deferrals.Collapsed(ctx, learnerID); err != nil {
		return nil, fmt.Errorf("snapshot deferrals: %w", err)
	}
	completions, err := s.completions.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("snapshot completions: %w", err)
	}
	for _, c := range completions {
		snap.Completions[c.ItemKey] = c.CompletedAt
	}
	return snap, nil
}

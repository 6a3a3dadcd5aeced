package repository

import (
	"context"
	"time"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

type LearnerRepo interface {
	Create(ctx context.Context, l *domain.Learner) error
	GetByID(ctx context.Context, id string) (*domain.Learner, error)
	List(ctx context.Context) ([]*domain.Learner, error)
	UpdateGoal(ctx context.Context, id, goal string) error
	// BumpRevision marks the learner's profile as changed and returns the
	// new revision.
	BumpRevision(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type CategoryRepo interface {
	Upsert(ctx context.Context, learnerID string, c domain.Category) error
	ListByLearner(ctx context.Context, learnerID string) ([]domain.Category, error)
	ApplyRatingDelta(ctx context.Context, learnerID, key string, delta float64) error
	Delete(ctx context.Context, learnerID, key string) error
}

type ModuleRepo interface {
	// ReplaceCategory swaps a category's whole library for modules, keeping
	// their order.
	ReplaceCategory(ctx context.Context, learnerID, categoryKey string, modules []domain.Module) error
	ListByLearner(ctx context.Context, learnerID string) (map[string][]domain.Module, error)
}

type OutcomeRepo interface {
	Get(ctx context.Context, learnerID, categoryKey string) (*domain.AssessmentOutcome, error)
	Upsert(ctx context.Context, learnerID, categoryKey string, o domain.AssessmentOutcome) error
	// Record folds one graded score into the running average and stores
	// delta as the most recent rating change.
	Record(ctx context.Context, learnerID, categoryKey string, score, delta float64) (*domain.AssessmentOutcome, error)
	ListByLearner(ctx context.Context, learnerID string) (map[string]domain.AssessmentOutcome, error)
}

type MilestoneRepo interface {
	Append(ctx context.Context, learnerID string, rec domain.MilestoneRecord) error
	ListByLearner(ctx context.Context, learnerID string) ([]domain.MilestoneRecord, error)
}

type DeferralRepo interface {
	Append(ctx context.Context, learnerID, itemKey string, dayShift int, reason string, at time.Time) error
	// Collapsed folds every adjustment of a key into one cumulative Deferral.
	Collapsed(ctx context.Context, learnerID string) (map[string]domain.Deferral, error)
	DeleteKeys(ctx context.Context, learnerID string, keys []string) (int64, error)
}

type CompletionRepo interface {
	// Record stores a completion and reports false when the key was already
	// completed.
	Record(ctx context.Context, rec *domain.CompletionRecord) (bool, error)
	ListByLearner(ctx context.Context, learnerID string) ([]domain.CompletionRecord, error)
}

type RationaleRepo interface {
	Append(ctx context.Context, learnerID string, e domain.ScheduleRationaleEntry) error
	// Newest returns up to limit of the latest entries, oldest first.
	Newest(ctx context.Context, learnerID string, limit int) ([]domain.ScheduleRationaleEntry, error)
	Count(ctx context.Context, learnerID string) (int, error)
}

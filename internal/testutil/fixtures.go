package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// SnapshotOption customizes a snapshot built by NewSnapshot.
type SnapshotOption func(*domain.SignalSnapshot)

// CategoryOption customizes a category added with WithCategory.
type CategoryOption func(*domain.Category)

func WithTarget(rating float64) CategoryOption {
	return func(c *domain.Category) {
		c.TargetRating = &rating
	}
}

func WithLabel(label string) CategoryOption {
	return func(c *domain.Category) {
		c.Label = label
	}
}

func WithLearnerID(id string) SnapshotOption {
	return func(s *domain.SignalSnapshot) {
		s.LearnerID = id
	}
}

func WithGoal(goal string) SnapshotOption {
	return func(s *domain.SignalSnapshot) {
		s.GoalSummary = goal
	}
}

func WithCategory(key string, weight, rating float64, opts ...CategoryOption) SnapshotOption {
	return func(s *domain.SignalSnapshot) {
		c := domain.Category{
			Key:           key,
			Label:         key,
			Weight:        weight,
			CurrentRating: rating,
			Position:      len(s.Categories),
		}
		for _, opt := range opts {
			opt(&c)
		}
		s.Categories[key] = c
	}
}

func WithModules(categoryKey string, modules ...domain.Module) SnapshotOption {
	return func(s *domain.SignalSnapshot) {
		s.ModuleLibrary[categoryKey] = append(s.ModuleLibrary[categoryKey], modules...)
	}
}

// WithModuleChain adds n modules named <category>-1..n where each requires
// the one before it.
func WithModuleChain(categoryKey string, n, minutes int) SnapshotOption {
	return func(s *domain.SignalSnapshot) {
		for i := 1; i <= n; i++ {
			var prereqs []string
			if i > 1 {
				prereqs = []string{fmt.Sprintf("%s-%d", categoryKey, i-1)}
			}
			s.ModuleLibrary[categoryKey] = append(s.ModuleLibrary[categoryKey],
				NewModule(categoryKey, fmt.Sprintf("%s-%d", categoryKey, i), minutes, prereqs...))
		}
	}
}

func WithOutcome(categoryKey string, averageScore, ratingDelta float64) SnapshotOption {
	return func(s *domain.SignalSnapshot) {
		s.AssessmentOutcomes[categoryKey] = domain.AssessmentOutcome{
			AverageScore: averageScore,
			RatingDelta:  ratingDelta,
			SampleCount:  1,
		}
	}
}

func WithMilestoneHistory(categoryKey string, completedAt time.Time) SnapshotOption {
	return func(s *domain.SignalSnapshot) {
		s.MilestoneHistory = append(s.MilestoneHistory, domain.MilestoneRecord{
			ID:          uuid.New().String(),
			CategoryKey: categoryKey,
			Title:       categoryKey + " milestone",
			CompletedAt: completedAt,
		})
	}
}

func WithDeferral(itemKey string, dayShift int) SnapshotOption {
	return func(s *domain.SignalSnapshot) {
		d := s.PendingDeferrals[itemKey]
		d.ItemKey = itemKey
		d.DayShift += dayShift
		d.Count++
		d.LastRequestedAt = time.Now().UTC()
		s.PendingDeferrals[itemKey] = d
	}
}

func WithCompletion(itemKey string) SnapshotOption {
	return func(s *domain.SignalSnapshot) {
		s.Completions[itemKey] = time.Now().UTC()
	}
}

// NewSnapshot returns an empty, fully initialized snapshot with options applied.
func NewSnapshot(opts ...SnapshotOption) *domain.SignalSnapshot {
	s := &domain.SignalSnapshot{
		LearnerID:          uuid.New().String(),
		Revision:           1,
		Categories:         make(map[string]domain.Category),
		ModuleLibrary:      make(map[string][]domain.Module),
		AssessmentOutcomes: make(map[string]domain.AssessmentOutcome),
		PendingDeferrals:   make(map[string]domain.Deferral),
		Completions:        make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewModule(categoryKey, id string, minutes int, prereqs ...string) domain.Module {
	return domain.Module{
		ID:               id,
		CategoryKey:      categoryKey,
		Title:            "Module " + id,
		EstimatedMinutes: minutes,
		Prerequisites:    prereqs,
		Objectives:       []string{"Understand " + id},
	}
}

// NewTestLearner returns a learner row ready to insert.
func NewTestLearner(goal string) *domain.Learner {
	now := time.Now().UTC()
	return &domain.Learner{
		ID:          uuid.New().String(),
		GoalSummary: goal,
		Revision:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

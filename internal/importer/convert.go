package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// LearnerProfile is a converted import ready for persistence.
type LearnerProfile struct {
	Learner    *domain.Learner
	Categories []domain.Category
	Modules    map[string][]domain.Module
	Outcomes   map[string]domain.AssessmentOutcome
	Milestones []domain.MilestoneRecord
}

// Convert transforms a validated schema into domain values. Call
// ValidateLearnerSchema first; Convert assumes the schema is valid.
func Convert(schema *LearnerSchema) (*LearnerProfile, error) {
	now := time.Now().UTC()

	id := strings.TrimSpace(schema.Learner.ID)
	if id == "" {
		id = uuid.New().String()
	}
	out := &LearnerProfile{
		Learner: &domain.Learner{
			ID:          id,
			GoalSummary: strings.TrimSpace(schema.Learner.Goal),
			Revision:    1,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Modules:  make(map[string][]domain.Module, len(schema.Categories)),
		Outcomes: make(map[string]domain.AssessmentOutcome, len(schema.Outcomes)),
	}

	for i, c := range schema.Categories {
		cat := domain.Category{
			Key:           c.Key,
			Label:         c.Label,
			Weight:        c.Weight,
			CurrentRating: c.CurrentRating,
			Position:      i,
		}
		if c.TargetRating != nil {
			t := *c.TargetRating
			cat.TargetRating = &t
		}
		out.Categories = append(out.Categories, cat)

		modules := make([]domain.Module, 0, len(c.Modules))
		for _, m := range c.Modules {
			modules = append(modules, domain.Module{
				ID:               m.ID,
				CategoryKey:      c.Key,
				Title:            m.Title,
				EstimatedMinutes: m.EstimatedMinutes,
				Prerequisites:    append([]string(nil), m.Prerequisites...),
				Objectives:       append([]string(nil), m.Objectives...),
			})
		}
		out.Modules[c.Key] = modules
	}

	for _, o := range schema.Outcomes {
		out.Outcomes[o.Category] = domain.AssessmentOutcome{
			AverageScore: o.AverageScore,
			RatingDelta:  o.RatingDelta,
			SampleCount:  o.SampleCount,
		}
	}

	for _, m := range schema.Milestones {
		at, err := parseTimestamp(m.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("milestone %q: %w", m.Title, err)
		}
		out.Milestones = append(out.Milestones, domain.MilestoneRecord{
			ID:          uuid.New().String(),
			CategoryKey: m.Category,
			Title:       m.Title,
			CompletedAt: at,
		})
	}

	return out, nil
}

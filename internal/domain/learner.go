package domain

import (
	"sort"
	"time"
)

// Learner is the profile-store row that owns every other signal.
type Learner struct {
	ID          string
	GoalSummary string
	Revision    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Category struct {
	Key           string   `json:"key"`
	Label         string   `json:"label"`
	Weight        float64  `json:"weight"`
	CurrentRating float64  `json:"current_rating"`
	TargetRating  *float64 `json:"target_rating,omitempty"`
	Position      int      `json:"-"`
}

// DisplayLabel prefers the human label and falls back to the key.
func (c Category) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// Target is the category's own target rating, or fallback when it has none.
func (c Category) Target(fallback float64) float64 {
	if c.TargetRating != nil {
		return *c.TargetRating
	}
	return fallback
}

// Module is immutable reference data owned by the external module library.
type Module struct {
	ID               string   `json:"id"`
	CategoryKey      string   `json:"category_key"`
	Title            string   `json:"title"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	Prerequisites    []string `json:"prerequisites,omitempty"`
	Objectives       []string `json:"objectives,omitempty"`
}

type AssessmentOutcome struct {
	AverageScore float64 `json:"average_score"`
	RatingDelta  float64 `json:"rating_delta"`
	SampleCount  int     `json:"sample_count"`
}

type MilestoneRecord struct {
	ID          string    `json:"id"`
	CategoryKey string    `json:"category_key"`
	Title       string    `json:"title"`
	CompletedAt time.Time `json:"completed_at"`
}

// Deferral is the collapsed view of every adjustment persisted for one item
// key. DayShift is cumulative.
type Deferral struct {
	ItemKey         string    `json:"item_key"`
	DayShift        int       `json:"day_shift"`
	Count           int       `json:"count"`
	Reason          string    `json:"reason,omitempty"`
	LastRequestedAt time.Time `json:"last_requested_at"`
}

// SignalSnapshot is the immutable input of one planning run.
type SignalSnapshot struct {
	LearnerID          string
	GoalSummary        string
	Revision           int64
	Categories         map[string]Category
	ModuleLibrary      map[string][]Module
	AssessmentOutcomes map[string]AssessmentOutcome
	MilestoneHistory   []MilestoneRecord
	PendingDeferrals   map[string]Deferral
	Completions        map[string]time.Time
}

// CategoryKeys returns the snapshot's category keys in ascending order.
func (s *SignalSnapshot) CategoryKeys() []string {
	keys := make([]string, 0, len(s.Categories))
	for k := range s.Categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CompletedMilestones counts milestone records for a category.
func (s *SignalSnapshot) CompletedMilestones(categoryKey string) int {
	n := 0
	for _, m := range s.MilestoneHistory {
		if m.CategoryKey == categoryKey {
			n++
		}
	}
	return n
}

// IsCompleted reports whether an item key has a recorded completion.
func (s *SignalSnapshot) IsCompleted(itemKey string) bool {
	_, ok := s.Completions[itemKey]
	return ok
}

// CompletionOutcome is what the grading collaborator reports for one item.
type CompletionOutcome struct {
	Score       *float64 `json:"score,omitempty"`
	RatingDelta float64  `json:"rating_delta"`
	Notes       string   `json:"notes,omitempty"`
}

// CompletionRecord is a persisted completion of a scheduled item.
type CompletionRecord struct {
	ID          string
	LearnerID   string
	ItemKey     string
	ItemID      string
	Kind        ItemKind
	CategoryKey string
	Title       string
	Outcome     CompletionOutcome
	CompletedAt time.Time
}

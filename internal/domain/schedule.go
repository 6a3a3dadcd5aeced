package domain

import (
	"sort"
	"time"
)

type CategoryPacingAllocation struct {
	CategoryKey      string           `json:"category_key"`
	PlannedMinutes   int              `json:"planned_minutes"`
	TargetSharePct   float64          `json:"target_share_pct"`
	ActualSharePct   float64          `json:"actual_share_pct"`
	DeferralCount    int              `json:"deferral_count"`
	MaxDeferralDays  int              `json:"max_deferral_days"`
	DeferralPressure DeferralPressure `json:"deferral_pressure"`
	Rationale        string           `json:"rationale"`
}

// ScheduleRationaleEntry is append-only; entries are never edited once written.
type ScheduleRationaleEntry struct {
	ID              string    `json:"id"`
	Headline        string    `json:"headline"`
	Summary         string    `json:"summary"`
	AdjustmentNotes []string  `json:"adjustment_notes,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

type CategoryDistribution struct {
	CategoryKey        string `json:"category_key"`
	Count              int    `json:"count"`
	RefresherCount     int    `json:"refresher_count"`
	LongestStreak      int    `json:"longest_streak"`
	FirstAppearanceDay int    `json:"first_appearance_day"`
}

// DistributionSummary is telemetry about the long-range spread of a plan.
type DistributionSummary struct {
	Categories         []CategoryDistribution `json:"categories"`
	CoverageWindowDays int                    `json:"coverage_window_days"`
	AllCovered         bool                   `json:"all_covered"`
}

type SliceInfo struct {
	StartDay     int    `json:"start_day"`
	DaySpan      int    `json:"day_span"`
	HasMore      bool   `json:"has_more"`
	NextStartDay int    `json:"next_start_day"`
	PageToken    string `json:"page_token,omitempty"`
}

type Schedule struct {
	LearnerID           string                     `json:"learner_id"`
	Version             uint64                     `json:"version"`
	Revision            int64                      `json:"revision"`
	GeneratedAt         time.Time                  `json:"generated_at"`
	TimeHorizonDays     int                        `json:"time_horizon_days"`
	Items               []WorkItem                 `json:"items"`
	CategoryAllocations []CategoryPacingAllocation `json:"category_allocations"`
	RationaleHistory    []ScheduleRationaleEntry   `json:"rationale_history"`
	Distribution        *DistributionSummary       `json:"distribution,omitempty"`
	IsStale             bool                       `json:"is_stale"`
	Warnings            []Warning                  `json:"warnings,omitempty"`
	Slice               *SliceInfo                 `json:"slice,omitempty"`
}

// ScheduleSlice is a day-range window into a Schedule.
type ScheduleSlice struct {
	LearnerID       string     `json:"learner_id"`
	Version         uint64     `json:"version"`
	GeneratedAt     time.Time  `json:"generated_at"`
	TimeHorizonDays int        `json:"time_horizon_days"`
	IsStale         bool       `json:"is_stale"`
	Warnings        []Warning  `json:"warnings,omitempty"`
	Items           []WorkItem `json:"items"`
	Slice           SliceInfo  `json:"slice"`
}

// Clone deep-copies a schedule so a cached value is never mutated by readers.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	out := *s
	out.Items = make([]WorkItem, len(s.Items))
	for i, it := range s.Items {
		out.Items[i] = it.Clone()
	}
	out.CategoryAllocations = append([]CategoryPacingAllocation(nil), s.CategoryAllocations...)
	out.RationaleHistory = make([]ScheduleRationaleEntry, len(s.RationaleHistory))
	for i, e := range s.RationaleHistory {
		e.AdjustmentNotes = append([]string(nil), e.AdjustmentNotes...)
		out.RationaleHistory[i] = e
	}
	if s.Distribution != nil {
		d := *s.Distribution
		d.Categories = append([]CategoryDistribution(nil), s.Distribution.Categories...)
		out.Distribution = &d
	}
	out.Warnings = append([]Warning(nil), s.Warnings...)
	if s.Slice != nil {
		sl := *s.Slice
		out.Slice = &sl
	}
	return &out
}

// FindItem returns the item with the given id.
func (s *Schedule) FindItem(id string) (WorkItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return WorkItem{}, false
}

// FindItemByKey returns the item with the given stable key.
func (s *Schedule) FindItemByKey(key string) (WorkItem, bool) {
	for _, it := range s.Items {
		if it.Key == key {
			return it, true
		}
	}
	return WorkItem{}, false
}

// SortItems orders items by day offset, then placement slot, then priority.
func SortItems(items []WorkItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.DayOffset != b.DayOffset {
			return a.DayOffset < b.DayOffset
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.Priority < b.Priority
	})
}

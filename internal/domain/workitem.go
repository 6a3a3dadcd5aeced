package domain

import (
	"fmt"
	"strings"
)

// WorkItem is one placed unit of practice. DayOffset 0 is today.
type WorkItem struct {
	ID            string           `json:"id"`
	Key           string           `json:"key"`
	Kind          ItemKind         `json:"kind"`
	CategoryKey   string           `json:"category_key"`
	ModuleID      string           `json:"module_id"`
	Title         string           `json:"title"`
	DayOffset     int              `json:"day_offset"`
	EffortMinutes int              `json:"effort_minutes"`
	EffortLevel   EffortLevel      `json:"effort_level"`
	Prerequisites []string         `json:"prerequisites,omitempty"`
	UserAdjusted  bool             `json:"user_adjusted"`
	Priority      int              `json:"priority"`
	Slot          int              `json:"-"`
	Milestone     *MilestoneDetail `json:"milestone,omitempty"`
}

// Clone returns a deep copy so callers can mutate placement fields freely.
func (w WorkItem) Clone() WorkItem {
	out := w
	if w.Prerequisites != nil {
		out.Prerequisites = append([]string(nil), w.Prerequisites...)
	}
	if w.Milestone != nil {
		m := w.Milestone.Clone()
		out.Milestone = &m
	}
	return out
}

// ItemKey builds the stable deferral identity category/module/kind.
func ItemKey(categoryKey, moduleID string, kind ItemKind) string {
	return categoryKey + "/" + moduleID + "/" + string(kind)
}

// ParseItemKey splits a key produced by ItemKey.
func ParseItemKey(key string) (categoryKey, moduleID string, kind ItemKind, err error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("item key %q must look like category/module/kind", key)
	}
	if !ValidItemKinds[parts[2]] {
		return "", "", "", fmt.Errorf("item key %q has unknown kind %q", key, parts[2])
	}
	return parts[0], parts[1], ItemKind(parts[2]), nil
}

type MilestoneBrief struct {
	Title             string   `json:"title"`
	Summary           string   `json:"summary"`
	Objectives        []string `json:"objectives"`
	Deliverables      []string `json:"deliverables"`
	SuccessCriteria   []string `json:"success_criteria"`
	KickoffSteps      []string `json:"kickoff_steps"`
	RelatedCategories []string `json:"related_categories,omitempty"`
	Source            string   `json:"source"`
}

type RequirementEntry struct {
	CategoryKey   string  `json:"category_key"`
	TargetRating  float64 `json:"target_rating"`
	CurrentRating float64 `json:"current_rating"`
	Progress      float64 `json:"progress"`
	Satisfied     bool    `json:"satisfied"`
}

type RequirementSet struct {
	Entries            []RequirementEntry `json:"entries"`
	SatisfiedCount     int                `json:"satisfied_count"`
	AverageProgress    float64            `json:"average_progress"`
	BlockingCategories []string           `json:"blocking_categories"`
}

// Unlocked reports whether no category blocks the milestone.
func (r RequirementSet) Unlocked() bool {
	return len(r.BlockingCategories) == 0
}

// Blocks reports whether categoryKey is one of the blocking categories.
func (r RequirementSet) Blocks(categoryKey string) bool {
	for _, k := range r.BlockingCategories {
		if k == categoryKey {
			return true
		}
	}
	return false
}

type MilestoneDetail struct {
	Brief             MilestoneBrief `json:"brief"`
	Requirements      RequirementSet `json:"requirements"`
	DependencyTargets []string       `json:"dependency_targets"`
}

func (m MilestoneDetail) Clone() MilestoneDetail {
	out := m
	out.Brief.Objectives = append([]string(nil), m.Brief.Objectives...)
	out.Brief.Deliverables = append([]string(nil), m.Brief.Deliverables...)
	out.Brief.SuccessCriteria = append([]string(nil), m.Brief.SuccessCriteria...)
	out.Brief.KickoffSteps = append([]string(nil), m.Brief.KickoffSteps...)
	out.Brief.RelatedCategories = append([]string(nil), m.Brief.RelatedCategories...)
	out.Requirements.Entries = append([]RequirementEntry(nil), m.Requirements.Entries...)
	out.Requirements.BlockingCategories = append([]string(nil), m.Requirements.BlockingCategories...)
	out.DependencyTargets = append([]string(nil), m.DependencyTargets...)
	return out
}

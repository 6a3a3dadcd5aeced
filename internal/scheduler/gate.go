package scheduler

import (
	"fmt"
	"math"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// EvaluateRequirements builds the requirement set of a milestone owned by
// anchor and tagged with related categories. Entries follow the order anchor
// first, then related categories as authored; duplicates collapse and unknown
// keys are reported as warnings.
func EvaluateRequirements(snap *domain.SignalSnapshot, anchor string, related []string, cfg Config) (domain.RequirementSet, []domain.Warning) {
	cfg = cfg.withDefaults()
	var (
		set      domain.RequirementSet
		warnings []domain.Warning
	)
	seen := make(map[string]bool)
	for _, key := range append([]string{anchor}, related...) {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		cat, ok := snap.Categories[key]
		if !ok {
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarnUnknownCategory,
				Message: fmt.Sprintf("milestone brief references unknown category %q", key),
			})
			continue
		}
		set.Entries = append(set.Entries, requirementEntry(cat, len(snap.ModuleLibrary[key]), cfg))
	}

	var progressSum float64
	for _, e := range set.Entries {
		progressSum += e.Progress
		if e.Satisfied {
			set.SatisfiedCount++
		} else {
			set.BlockingCategories = append(set.BlockingCategories, e.CategoryKey)
		}
	}
	if len(set.Entries) > 0 {
		set.AverageProgress = progressSum / float64(len(set.Entries))
	}
	return set, warnings
}

func requirementEntry(cat domain.Category, moduleCount int, cfg Config) domain.RequirementEntry {
	planTarget := cat.Target(cfg.DefaultTargetRating)
	calibrated := cfg.CalibrationBaseRating + cfg.CalibrationPerModule*float64(moduleCount)
	target := math.Max(planTarget, calibrated)

	progress := 1.0
	if target > 0 {
		progress = clampFloat(cat.CurrentRating/target, 0, 1)
	}
	return domain.RequirementEntry{
		CategoryKey:   cat.Key,
		TargetRating:  target,
		CurrentRating: cat.CurrentRating,
		Progress:      progress,
		Satisfied:     cat.CurrentRating >= target,
	}
}

// DependencyTargets selects, for each blocking category in category-priority
// order, the highest-priority item of that category that is not yet placed.
// items must already carry their Priority.
func DependencyTargets(reqs domain.RequirementSet, order []CategoryScore, items []domain.WorkItem, placed func(id string) bool) []string {
	var targets []string
	for _, cs := range order {
		if !reqs.Blocks(cs.CategoryKey) {
			continue
		}
		best := -1
		for i, it := range items {
			if it.CategoryKey != cs.CategoryKey || it.Kind == domain.KindMilestone {
				continue
			}
			if placed != nil && placed(it.ID) {
				continue
			}
			if best < 0 || it.Priority < items[best].Priority {
				best = i
			}
		}
		if best >= 0 {
			targets = append(targets, items[best].ID)
		}
	}
	return targets
}

package scheduler

import (
	"fmt"
	"sort"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

type ViolationCode string

const (
	ViolationNegativeDay    ViolationCode = "NEGATIVE_DAY"
	ViolationBudget         ViolationCode = "BUDGET"
	ViolationPrerequisite   ViolationCode = "PREREQUISITE"
	ViolationStreak         ViolationCode = "STREAK"
	ViolationMilestoneOrder ViolationCode = "MILESTONE_ORDER"
)

type Violation struct {
	Code    ViolationCode
	ItemID  string
	Day     int
	Message string
}

func (v Violation) key() string {
	return fmt.Sprintf("%s|%s|%d", v.Code, v.ItemID, v.Day)
}

// ValidateSchedule checks a placed item list against the packing rules.
// Items the learner moved are checked like any other; callers decide what to
// tolerate.
func ValidateSchedule(items []domain.WorkItem, cfg Config) []Violation {
	cfg = cfg.withDefaults()
	sorted := make([]domain.WorkItem, len(items))
	copy(sorted, items)
	domain.SortItems(sorted)

	var out []Violation
	dayOf := make(map[string]int, len(sorted))
	used := make(map[int]int)
	count := make(map[int]int)
	for _, it := range sorted {
		dayOf[it.ID] = it.DayOffset
		used[it.DayOffset] += it.EffortMinutes
		count[it.DayOffset]++
		if it.DayOffset < 0 {
			out = append(out, Violation{Code: ViolationNegativeDay, ItemID: it.ID, Day: it.DayOffset,
				Message: fmt.Sprintf("%s has a negative day offset", it.ID)})
		}
	}

	days := make([]int, 0, len(used))
	for d := range used {
		days = append(days, d)
	}
	sort.Ints(days)
	for _, d := range days {
		if count[d] > 1 && used[d] > cfg.DailyBudgetMinutes {
			out = append(out, Violation{Code: ViolationBudget, Day: d,
				Message: fmt.Sprintf("day %d uses %d of %d minutes", d, used[d], cfg.DailyBudgetMinutes)})
		}
	}

	for _, it := range sorted {
		for _, p := range it.Prerequisites {
			if pd, ok := dayOf[p]; ok && pd >= it.DayOffset {
				out = append(out, Violation{Code: ViolationPrerequisite, ItemID: it.ID, Day: it.DayOffset,
					Message: fmt.Sprintf("%s is on day %d but its prerequisite %s is on day %d", it.ID, it.DayOffset, p, pd)})
			}
		}
		if it.Milestone == nil {
			continue
		}
		for _, t := range it.Milestone.DependencyTargets {
			if td, ok := dayOf[t]; ok && td >= it.DayOffset {
				out = append(out, Violation{Code: ViolationMilestoneOrder, ItemID: it.ID, Day: it.DayOffset,
					Message: fmt.Sprintf("milestone %s is not after dependency target %s", it.ID, t)})
			}
		}
	}

	if streakEnabled(sorted) {
		limit := cfg.StreakCap
		for i := limit; i < len(sorted); i++ {
			first := sorted[i-limit]
			same := true
			for j := i - limit + 1; j <= i; j++ {
				if sorted[j].CategoryKey != first.CategoryKey {
					same = false
					break
				}
			}
			if same && sorted[i].DayOffset-first.DayOffset < cfg.StreakWindowDays {
				out = append(out, Violation{Code: ViolationStreak, ItemID: sorted[i].ID, Day: sorted[i].DayOffset,
					Message: fmt.Sprintf("%s runs more than %d in a row within %d days", first.CategoryKey, limit, cfg.StreakWindowDays)})
			}
		}
	}
	return out
}

// newViolations returns the violations of after that before did not have.
func newViolations(before, after []Violation) []Violation {
	known := make(map[string]bool, len(before))
	for _, v := range before {
		known[v.key()] = true
	}
	var out []Violation
	for _, v := range after {
		if !known[v.key()] {
			out = append(out, v)
		}
	}
	return out
}

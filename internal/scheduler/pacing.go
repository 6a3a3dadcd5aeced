package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// DeferralPressureFor buckets how hard a learner has been pushing a category
// back. Recent deferrals weigh more than old ones.
func DeferralPressureFor(count int, last time.Time, now time.Time) domain.DeferralPressure {
	score := count
	if count > 0 && !last.IsZero() {
		age := now.Sub(last)
		switch {
		case age <= 7*24*time.Hour:
			score += 2
		case age <= 14*24*time.Hour:
			score++
		}
	}
	switch {
	case score < 2:
		return domain.PressureLow
	case score < 4:
		return domain.PressureMedium
	default:
		return domain.PressureHigh
	}
}

// BuildAllocations summarizes, per ranked category, how much of the plan it
// received against its share of the weight plan and how often the learner
// pushed it back.
func BuildAllocations(items []domain.WorkItem, ranking []CategoryScore, deferrals map[string]domain.Deferral, now time.Time) []domain.CategoryPacingAllocation {
	planned := make(map[string]int)
	total := 0
	for _, it := range items {
		planned[it.CategoryKey] += it.EffortMinutes
		total += it.EffortMinutes
	}

	type deferralStats struct {
		count   int
		maxDays int
		last    time.Time
	}
	stats := make(map[string]*deferralStats)
	for key, d := range deferrals {
		cat, _, _, err := domain.ParseItemKey(key)
		if err != nil {
			continue
		}
		s, ok := stats[cat]
		if !ok {
			s = &deferralStats{}
			stats[cat] = s
		}
		s.count += max(d.Count, 1)
		s.maxDays = max(s.maxDays, abs(d.DayShift))
		if d.LastRequestedAt.After(s.last) {
			s.last = d.LastRequestedAt
		}
	}

	out := make([]domain.CategoryPacingAllocation, 0, len(ranking))
	for rank, cs := range ranking {
		a := domain.CategoryPacingAllocation{
			CategoryKey:      cs.CategoryKey,
			PlannedMinutes:   planned[cs.CategoryKey],
			TargetSharePct:   round1(cs.NormalizedWeight * 100),
			DeferralPressure: domain.PressureLow,
		}
		if total > 0 {
			a.ActualSharePct = round1(float64(a.PlannedMinutes) / float64(total) * 100)
		}
		if s, ok := stats[cs.CategoryKey]; ok {
			a.DeferralCount = s.count
			a.MaxDeferralDays = s.maxDays
			a.DeferralPressure = DeferralPressureFor(s.count, s.last, now)
		}
		a.Rationale = allocationRationale(rank, cs, a)
		out = append(out, a)
	}
	return out
}

func allocationRationale(rank int, cs CategoryScore, a domain.CategoryPacingAllocation) string {
	var parts []string
	for _, r := range cs.Reasons {
		if r.Code == ReasonWeight {
			continue
		}
		parts = append(parts, r.Message)
	}
	text := fmt.Sprintf("Priority #%d (score %.2f)", rank+1, cs.Score)
	if len(parts) > 0 {
		text += ": " + strings.Join(parts, "; ")
	}
	if a.DeferralCount > 0 {
		text += fmt.Sprintf(". Deferred %d time(s), %s pressure", a.DeferralCount, a.DeferralPressure)
	}
	return text
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package scheduler

import (
	"fmt"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

type PackResult struct {
	Items       []domain.WorkItem
	HorizonDays int
	Truncated   []domain.WorkItem
	Warnings    []domain.Warning
}

// PackItems assigns day offsets greedily, day by day: on each day it keeps
// taking the first item in priority order that fits. Milestones wait in a
// pending queue until every blocking category's items have been placed on
// earlier days. The horizon grows one day at a time up to MaxHorizonDays;
// anything still unplaced there is truncated.
func PackItems(items []domain.WorkItem, cfg Config) PackResult {
	cfg = cfg.withDefaults()
	b := newBoard(cfg, idSet(items), streakEnabled(items))

	byCategory := make(map[string][]string)
	var queue, pending []domain.WorkItem
	for _, it := range items {
		if it.Kind == domain.KindMilestone {
			pending = append(pending, it.Clone())
			continue
		}
		byCategory[it.CategoryKey] = append(byCategory[it.CategoryKey], it.ID)
		queue = append(queue, it.Clone())
	}

	released := func(m domain.WorkItem, day int) bool {
		if m.Milestone == nil {
			return true
		}
		for _, cat := range m.Milestone.Requirements.BlockingCategories {
			for _, id := range byCategory[cat] {
				if d, ok := b.dayOf[id]; !ok || d >= day {
					return false
				}
			}
		}
		return true
	}

	var result PackResult
	day := 0
	for ; len(queue)+len(pending) > 0 && day < cfg.MaxHorizonDays; day++ {
		for {
			if i := firstFit(b, pending, day, released); i >= 0 {
				result.Items = append(result.Items, take(b, &pending, i, day))
				continue
			}
			if i := firstFit(b, queue, day, nil); i >= 0 {
				result.Items = append(result.Items, take(b, &queue, i, day))
				continue
			}
			break
		}
	}

	if left := len(queue) + len(pending); left > 0 {
		result.Truncated = append(append(result.Truncated, queue...), pending...)
		result.Warnings = append(result.Warnings, domain.Warning{
			Code:    domain.WarnHorizonExhausted,
			Message: fmt.Sprintf("%d item(s) could not be placed within %d days and were left out", left, cfg.MaxHorizonDays),
		})
	}

	result.HorizonDays = cfg.HorizonDays
	for _, it := range result.Items {
		result.HorizonDays = max(result.HorizonDays, it.DayOffset+1)
	}
	if result.HorizonDays > cfg.HorizonDays {
		result.Warnings = append(result.Warnings, domain.Warning{
			Code:    domain.WarnHorizonExtended,
			Message: fmt.Sprintf("plan extended from %d to %d days to fit every item", cfg.HorizonDays, result.HorizonDays),
		})
	}
	return result
}

func firstFit(b *board, queue []domain.WorkItem, day int, gate func(domain.WorkItem, int) bool) int {
	for i, it := range queue {
		if gate != nil && !gate(it, day) {
			continue
		}
		if b.fits(it, day, b.nextSlot) {
			return i
		}
	}
	return -1
}

func take(b *board, queue *[]domain.WorkItem, i, day int) domain.WorkItem {
	item := (*queue)[i]
	*queue = append((*queue)[:i], (*queue)[i+1:]...)
	b.place(&item, day, -1)
	return item
}

// boardFrom rebuilds a board from already placed items without re-checking
// any rule.
func boardFrom(items []domain.WorkItem, cfg Config, streak bool) *board {
	b := newBoard(cfg, idSet(items), streak)
	for i := range items {
		it := items[i]
		b.place(&it, it.DayOffset, it.Slot)
	}
	return b
}

package scheduler

import (
	"fmt"
	"sort"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

type DeferralResult struct {
	Items   []domain.WorkItem
	Applied []string
	Stale   []string
	Notes   []string
}

// ApplyDeferrals overlays persisted user shifts onto freshly packed items.
// Each matching item asks for its packed day plus the cumulative shift and is
// marked UserAdjusted. Keys that match nothing are returned as stale.
//
// The overlay never breaks a packing rule. A moved item lands on its requested
// day when that day still fits; otherwise it waits until the day after its
// latest prerequisite (and, for a milestone, its latest dependency target) or
// slides to the next day with room. Items the user did not touch keep their
// packed day unless a moved item crowds them out, and then only move later.
func ApplyDeferrals(items []domain.WorkItem, deferrals map[string]domain.Deferral, cfg Config) DeferralResult {
	cfg = cfg.withDefaults()
	res := DeferralResult{Items: make([]domain.WorkItem, len(items))}
	byKey := make(map[string]int, len(items))
	for i, it := range items {
		res.Items[i] = it.Clone()
		byKey[it.Key] = i
	}

	keys := make([]string, 0, len(deferrals))
	for k := range deferrals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	requested := make(map[int]int)
	for _, key := range keys {
		i, ok := byKey[key]
		if !ok {
			res.Stale = append(res.Stale, key)
			continue
		}
		it := &res.Items[i]
		requested[i] = max(0, it.DayOffset+deferrals[key].DayShift)
		it.UserAdjusted = true
		res.Applied = append(res.Applied, key)
	}

	if len(res.Applied) > 0 {
		landed := repair(res.Items, requested, cfg)
		for _, key := range res.Applied {
			i := byKey[key]
			res.Notes = append(res.Notes, deferralNote(res.Items[i], deferrals[key].DayShift, requested[i], landed[i]))
		}
	}
	domain.SortItems(res.Items)
	if len(res.Applied) > 0 {
		for i := range res.Items {
			res.Items[i].Slot = i
		}
	}
	return res
}

// landing records where a moved item ended up and the earliest day its
// dependencies allowed.
type landing struct {
	day   int
	floor int
}

func deferralNote(it domain.WorkItem, shift, want int, got landing) string {
	note := fmt.Sprintf("%s moved %+d day(s) at the learner's request", it.Title, shift)
	switch {
	case got.day == want:
		return note
	case got.floor > want:
		return fmt.Sprintf("%s; it waits until day %d, after the work it depends on", note, got.day)
	default:
		return fmt.Sprintf("%s; day %d had no room, so it lands on day %d", note, want, got.day)
	}
}

// repair re-places every item in dependency order: an item is only placed
// once its prerequisites and milestone targets are on the board. Among ready
// items the earliest wanted day goes first, moved items before untouched ones
// on the same day, then packed order. It returns where each moved item landed.
func repair(items []domain.WorkItem, requested map[int]int, cfg Config) map[int]landing {
	n := len(items)
	index := make(map[string]int, n)
	for i := range items {
		index[items[i].ID] = i
	}

	// Spread packed slots apart so moved items can be slotted between them.
	spacing := n + 1
	for i := range items {
		items[i].Slot *= spacing
	}

	want := make([]int, n)
	waiting := make([]int, n)
	dependents := make([][]int, n)
	for i := range items {
		want[i] = items[i].DayOffset
		if d, ok := requested[i]; ok {
			want[i] = d
		}
		for _, dep := range dependsOn(items[i]) {
			j, ok := index[dep]
			if !ok || j == i {
				continue
			}
			waiting[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	before := func(a, c int) bool {
		if want[a] != want[c] {
			return want[a] < want[c]
		}
		_, am := requested[a]
		_, cm := requested[c]
		if am != cm {
			return am
		}
		if items[a].Slot != items[c].Slot {
			return items[a].Slot < items[c].Slot
		}
		return a < c
	}

	b := newBoard(cfg, idSet(items), streakEnabled(items))
	landed := make(map[int]landing, len(requested))
	done := make([]bool, n)
	for range n {
		next := -1
		for i := range items {
			if !done[i] && waiting[i] == 0 && (next < 0 || before(i, next)) {
				next = i
			}
		}
		if next < 0 {
			// Only reachable with a prerequisite cycle; take the rest in order.
			for i := range items {
				if !done[i] && (next < 0 || before(i, next)) {
					next = i
				}
			}
		}
		done[next] = true
		for _, d := range dependents[next] {
			waiting[d]--
		}

		it := &items[next]
		floor := b.dependencyFloor(*it)
		if _, moved := requested[next]; moved {
			b.placeMoved(it, max(want[next], floor))
			landed[next] = landing{day: it.DayOffset, floor: floor}
			continue
		}
		day := b.earliestFrom(*it, max(want[next], floor), it.Slot)
		b.place(it, day, it.Slot)
	}
	return landed
}

func dependsOn(it domain.WorkItem) []string {
	if it.Milestone == nil || len(it.Milestone.DependencyTargets) == 0 {
		return it.Prerequisites
	}
	out := make([]string, 0, len(it.Prerequisites)+len(it.Milestone.DependencyTargets))
	out = append(out, it.Prerequisites...)
	return append(out, it.Milestone.DependencyTargets...)
}

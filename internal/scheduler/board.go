package scheduler

import (
	"sort"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

type placement struct {
	id       string
	category string
	day      int
	slot     int
}

// board is the mutable placement state shared by the packer, the distributor,
// the deferral repair pass and the advisor. The sequence is kept in
// (day, slot) order, which is also the order items are shown in.
type board struct {
	cfg      Config
	streak   bool
	seq      []placement
	used     map[int]int
	count    map[int]int
	dayOf    map[string]int
	known    map[string]bool
	nextSlot int
}

// newBoard creates an empty board. known lists every item id that may be
// placed; prerequisites outside it are ignored.
func newBoard(cfg Config, known map[string]bool, streak bool) *board {
	return &board{
		cfg:    cfg,
		streak: streak,
		used:   make(map[int]int),
		count:  make(map[int]int),
		dayOf:  make(map[string]int),
		known:  known,
	}
}

func (b *board) placed(id string) bool {
	_, ok := b.dayOf[id]
	return ok
}

// fits reports whether item can sit on day with the given slot without
// breaking the budget, prerequisite or streak rules.
func (b *board) fits(item domain.WorkItem, day, slot int) bool {
	return day >= 0 &&
		b.withinBudget(item, day) &&
		b.prerequisitesBefore(item, day) &&
		!b.breaksStreak(item.CategoryKey, day, slot)
}

func (b *board) withinBudget(item domain.WorkItem, day int) bool {
	if b.count[day] == 0 {
		return true // oversized items are placed alone
	}
	return b.used[day]+item.EffortMinutes <= b.cfg.DailyBudgetMinutes
}

func (b *board) prerequisitesBefore(item domain.WorkItem, day int) bool {
	for _, p := range item.Prerequisites {
		if !b.known[p] {
			continue
		}
		d, ok := b.dayOf[p]
		if !ok || d >= day {
			return false
		}
	}
	return true
}

// breaksStreak checks only the windows that would contain the new entry.
func (b *board) breaksStreak(category string, day, slot int) bool {
	if !b.streak {
		return false
	}
	idx := b.insertIndex(day, slot)
	limit := b.cfg.StreakCap

	// Days of the same-category run around the insertion point.
	var left []int
	for i := idx - 1; i >= 0 && b.seq[i].category == category; i-- {
		left = append(left, b.seq[i].day)
	}
	run := make([]int, 0, len(left)+1)
	for i := len(left) - 1; i >= 0; i-- {
		run = append(run, left[i])
	}
	pos := len(run)
	run = append(run, day)
	for i := idx; i < len(b.seq) && b.seq[i].category == category; i++ {
		run = append(run, b.seq[i].day)
	}

	if len(run) <= limit {
		return false
	}
	for start := max(0, pos-limit); start <= pos && start+limit < len(run); start++ {
		if run[start+limit]-run[start] < b.cfg.StreakWindowDays {
			return true
		}
	}
	return false
}

func (b *board) insertIndex(day, slot int) int {
	return sort.Search(len(b.seq), func(i int) bool {
		p := b.seq[i]
		if p.day != day {
			return p.day > day
		}
		return p.slot > slot
	})
}

// place records item on day. A negative slot takes the next free slot, which
// puts the item at the end of its day.
func (b *board) place(item *domain.WorkItem, day, slot int) {
	if slot < 0 {
		slot = b.nextSlot
	}
	if slot >= b.nextSlot {
		b.nextSlot = slot + 1
	}
	item.DayOffset = day
	item.Slot = slot

	idx := b.insertIndex(day, slot)
	b.seq = append(b.seq, placement{})
	copy(b.seq[idx+1:], b.seq[idx:])
	b.seq[idx] = placement{id: item.ID, category: item.CategoryKey, day: day, slot: slot}

	b.used[day] += item.EffortMinutes
	b.count[day]++
	b.dayOf[item.ID] = day
}

// earliest finds the first day in [from, to) that fits item with slot.
func (b *board) earliest(item domain.WorkItem, from, to, slot int) (int, bool) {
	for d := max(from, 0); d < to; d++ {
		s := slot
		if s < 0 {
			s = b.nextSlot
		}
		if b.fits(item, d, s) {
			return d, true
		}
	}
	return 0, false
}

// streakEnabled reports whether the streak rule applies: it needs at least two
// categories to alternate between.
func streakEnabled(items []domain.WorkItem) bool {
	first := ""
	for _, it := range items {
		if first == "" {
			first = it.CategoryKey
		} else if it.CategoryKey != first {
			return true
		}
	}
	return false
}

func idSet(items []domain.WorkItem) map[string]bool {
	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}
	return known
}

// dependencyFloor is the first day after every placed prerequisite and, for a
// milestone, every placed dependency target.
func (b *board) dependencyFloor(item domain.WorkItem) int {
	floor := 0
	for _, id := range dependsOn(item) {
		if d, ok := b.dayOf[id]; ok {
			floor = max(floor, d+1)
		}
	}
	return floor
}

func (b *board) lastDay() int {
	if len(b.seq) == 0 {
		return 0
	}
	return b.seq[len(b.seq)-1].day
}

// searchLimit is a day on which item always fits: past the last placed day by
// a full streak window, so no run can reach it.
func (b *board) searchLimit(from int) int {
	return max(from, b.lastDay()) + b.cfg.StreakWindowDays
}

// earliestFrom returns the first day from on that fits item with slot.
func (b *board) earliestFrom(item domain.WorkItem, from, slot int) int {
	limit := b.searchLimit(from)
	if day, ok := b.earliest(item, from, limit+1, slot); ok {
		return day
	}
	return limit
}

// placeMoved places a user-moved item on the first day from on where some
// position within the day fits. Its packed slot is tried first, then the gap
// before each item already on that day, then the end of the day.
func (b *board) placeMoved(item *domain.WorkItem, from int) {
	limit := b.searchLimit(from)
	for d := max(from, 0); d <= limit; d++ {
		for _, s := range b.candidateSlots(d, item.Slot) {
			if b.fits(*item, d, s) {
				b.place(item, d, s)
				return
			}
		}
	}
	b.place(item, limit, item.Slot)
}

func (b *board) candidateSlots(day, own int) []int {
	start := sort.Search(len(b.seq), func(i int) bool { return b.seq[i].day >= day })
	taken := make(map[int]bool)
	var onDay []int
	for i := start; i < len(b.seq) && b.seq[i].day == day; i++ {
		taken[b.seq[i].slot] = true
		onDay = append(onDay, b.seq[i].slot)
	}

	out := make([]int, 0, len(onDay)+2)
	add := func(s int) {
		if !taken[s] {
			taken[s] = true
			out = append(out, s)
		}
	}
	add(own)
	for _, s := range onDay {
		add(s - 1)
	}
	if len(onDay) > 0 {
		add(onDay[len(onDay)-1] + 1)
	}
	return out
}

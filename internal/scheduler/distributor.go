package scheduler

import (
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

type DistributeInput struct {
	Snapshot    *domain.SignalSnapshot
	Items       []domain.WorkItem
	Ranking     []CategoryScore
	Modules     map[string][]domain.Module
	HorizonDays int
	Config      Config
}

// DistributeRefreshers adds spaced-repetition refreshers to a packed plan
// whose horizon reaches past the near-term window. Every category first gets
// coverage inside the first weeks; after that one refresher is injected per
// tick, cycling through categories in priority order. Only the new items are
// returned; a tick with no room inside its interval is skipped.
func DistributeRefreshers(in DistributeInput) []domain.WorkItem {
	cfg := in.Config.withDefaults()
	if in.HorizonDays <= cfg.NearTermWindowDays || len(in.Ranking) == 0 {
		return nil
	}

	d := &distributor{
		in:         in,
		cfg:        cfg,
		board:      boardFrom(in.Items, cfg, streakEnabled(in.Items)),
		lessonDay:  make(map[string]int),
		occurrence: make(map[string]int),
		rotation:   make(map[string]int),
	}
	for _, it := range in.Items {
		if it.Kind == domain.KindLesson {
			d.lessonDay[it.CategoryKey+"/"+it.ModuleID] = it.DayOffset
		}
		d.priority = max(d.priority, it.Priority+1)
	}

	window := min(cfg.FirstWeeksCoverageDays, in.HorizonDays)
	for _, cs := range in.Ranking {
		if first := d.firstDay(cs.CategoryKey); first >= 0 && first < window {
			continue
		}
		d.inject(cs.CategoryKey, 0, in.HorizonDays)
	}

	tick := 0
	for t := cfg.NearTermWindowDays; t < in.HorizonDays; t += cfg.RefresherIntervalDays {
		cat := in.Ranking[tick%len(in.Ranking)].CategoryKey
		tick++
		d.inject(cat, t, min(t+cfg.RefresherIntervalDays, in.HorizonDays))
	}
	return d.out
}

type distributor struct {
	in         DistributeInput
	cfg        Config
	board      *board
	lessonDay  map[string]int
	occurrence map[string]int
	rotation   map[string]int
	priority   int
	out        []domain.WorkItem
}

func (d *distributor) firstDay(category string) int {
	for _, p := range d.board.seq {
		if p.category == category {
			return p.day
		}
	}
	return -1
}

// reviewable lists modules already met before day: completed lessons or
// lessons placed earlier. With none, the first module serves as a warm-up.
func (d *distributor) reviewable(category string, day int) []domain.Module {
	modules := d.in.Modules[category]
	var out []domain.Module
	for _, m := range modules {
		if d.in.Snapshot != nil && d.in.Snapshot.IsCompleted(domain.ItemKey(category, m.ID, domain.KindLesson)) {
			out = append(out, m)
			continue
		}
		if ld, ok := d.lessonDay[category+"/"+m.ID]; ok && ld < day {
			out = append(out, m)
		}
	}
	if len(out) == 0 && len(modules) > 0 {
		out = modules[:1]
	}
	return out
}

func (d *distributor) inject(category string, from, to int) bool {
	candidates := d.reviewable(category, from)
	if len(candidates) == 0 {
		return false
	}
	m := candidates[d.rotation[category]%len(candidates)]

	n := d.occurrence[category] + 1
	for d.in.Snapshot != nil && d.in.Snapshot.IsCompleted(RefresherKey(category, m.ID, n)) {
		n++
	}
	item := newRefresher(category, m, n, d.cfg)

	day, ok := d.board.earliest(item, from, to, -1)
	if !ok {
		return false
	}
	item.Priority = d.priority
	d.priority++
	d.board.place(&item, day, -1)
	d.occurrence[category] = n
	d.rotation[category]++
	d.out = append(d.out, item)
	return true
}

// SummarizeDistribution reports how categories are spread over the final
// plan. It is telemetry only.
func SummarizeDistribution(items []domain.WorkItem, ranking []CategoryScore, horizon int, cfg Config) *domain.DistributionSummary {
	cfg = cfg.withDefaults()
	sorted := make([]domain.WorkItem, len(items))
	copy(sorted, items)
	domain.SortItems(sorted)

	stats := make(map[string]*domain.CategoryDistribution, len(ranking))
	for _, cs := range ranking {
		stats[cs.CategoryKey] = &domain.CategoryDistribution{CategoryKey: cs.CategoryKey, FirstAppearanceDay: -1}
	}

	run, prev := 0, ""
	for _, it := range sorted {
		s, ok := stats[it.CategoryKey]
		if !ok {
			continue
		}
		s.Count++
		if it.Kind == domain.KindRefresher {
			s.RefresherCount++
		}
		if s.FirstAppearanceDay < 0 {
			s.FirstAppearanceDay = it.DayOffset
		}
		if it.CategoryKey == prev {
			run++
		} else {
			run, prev = 1, it.CategoryKey
		}
		s.LongestStreak = max(s.LongestStreak, run)
	}

	window := min(cfg.FirstWeeksCoverageDays, horizon)
	summary := &domain.DistributionSummary{CoverageWindowDays: window, AllCovered: true}
	for _, cs := range ranking {
		s := stats[cs.CategoryKey]
		if s.FirstAppearanceDay < 0 || s.FirstAppearanceDay >= window {
			summary.AllCovered = false
		}
		summary.Categories = append(summary.Categories, *s)
	}
	return summary
}

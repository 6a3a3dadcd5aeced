package scheduler

import (
	"fmt"
	"math"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// minLaneWeight keeps zero-score categories in the interleave rotation.
const minLaneWeight = 0.01

type GenerateInput struct {
	Snapshot     *domain.SignalSnapshot
	Ranking      []CategoryScore
	Anchor       string
	Brief        *domain.MilestoneBrief
	Requirements domain.RequirementSet
	Config       Config
}

// Generation is the generator output. Items are in priority order with the
// milestone, if any, last.
type Generation struct {
	Items    []domain.WorkItem
	Modules  map[string][]domain.Module
	Warnings []domain.Warning
}

type itemIdentity struct {
	Category   string
	Module     string
	Kind       string
	Occurrence int
}

// ItemID derives the stable id of a work item from its identity.
func ItemID(categoryKey, moduleID string, kind domain.ItemKind, occurrence int) string {
	h, err := hashstructure.Hash(itemIdentity{
		Category:   categoryKey,
		Module:     moduleID,
		Kind:       string(kind),
		Occurrence: occurrence,
	}, hashstructure.FormatV2, nil)
	if err != nil {
		return "wi-" + domain.ItemKey(categoryKey, moduleID, kind)
	}
	return fmt.Sprintf("wi-%016x", h)
}

// RefresherKey is the deferral key of the n-th refresher of a module.
func RefresherKey(categoryKey, moduleID string, occurrence int) string {
	return domain.ItemKey(categoryKey, fmt.Sprintf("%s@%d", moduleID, occurrence), domain.KindRefresher)
}

// PrimerModule is synthesized for a category without library modules so the
// category never drops out of the plan.
func PrimerModule(cat domain.Category, cfg Config) domain.Module {
	return domain.Module{
		ID:               cat.Key + "-primer",
		CategoryKey:      cat.Key,
		Title:            cat.DisplayLabel() + " primer",
		EstimatedMinutes: cfg.PrimerMinutes,
		Objectives:       []string{"Get oriented in " + cat.DisplayLabel()},
	}
}

// QuizMinutes sizes a quiz relative to its lesson.
func QuizMinutes(lessonMinutes int) int {
	return clamp(int(math.Round(0.4*float64(lessonMinutes))), 10, 30)
}

// GenerateItems expands every ranked category into lesson and quiz items,
// interleaves the categories by score, and appends one milestone for the
// anchor category.
func GenerateItems(in GenerateInput) Generation {
	cfg := in.Config.withDefaults()
	snap := in.Snapshot
	gen := Generation{Modules: make(map[string][]domain.Module)}

	lanes := make([]*lane, 0, len(in.Ranking))
	for _, cs := range in.Ranking {
		cat := snap.Categories[cs.CategoryKey]
		library := snap.ModuleLibrary[cs.CategoryKey]
		if len(library) == 0 {
			library = []domain.Module{PrimerModule(cat, cfg)}
		}
		ordered, cyclic := OrderModules(library)
		if cyclic {
			gen.Warnings = append(gen.Warnings, domain.Warning{
				Code:    domain.WarnModuleCycle,
				Message: fmt.Sprintf("modules of %s have circular prerequisites; using library order", cat.DisplayLabel()),
			})
		}
		gen.Modules[cs.CategoryKey] = ordered
		lanes = append(lanes, &lane{
			key:    cs.CategoryKey,
			weight: math.Max(cs.Score, minLaneWeight),
			items:  categoryItems(snap, cs.CategoryKey, ordered, cfg),
		})
	}

	gen.Items = interleave(lanes)
	for i := range gen.Items {
		gen.Items[i].Priority = i
	}

	if in.Anchor != "" && in.Brief != nil {
		gen.Items = append(gen.Items, milestoneItem(in, gen.Items, cfg))
	}
	return gen
}

func categoryItems(snap *domain.SignalSnapshot, categoryKey string, modules []domain.Module, cfg Config) []domain.WorkItem {
	position := make(map[string]int, len(modules))
	for i, m := range modules {
		position[m.ID] = i
	}

	var items []domain.WorkItem
	lessonIDs := make(map[string]string)
	for i, m := range modules {
		minutes := m.EstimatedMinutes
		if minutes <= 0 {
			minutes = cfg.DefaultModuleMinutes
		}

		var lessonID string
		if !snap.IsCompleted(domain.ItemKey(categoryKey, m.ID, domain.KindLesson)) {
			var prereqs []string
			for _, p := range m.Prerequisites {
				// Only earlier modules count; this also cuts any cycle.
				if j, ok := position[p]; ok && j < i {
					if id, ok := lessonIDs[p]; ok {
						prereqs = append(prereqs, id)
					}
				}
			}
			lesson := newItem(categoryKey, m.ID, domain.KindLesson, 0, m.Title, minutes, prereqs)
			lessonID = lesson.ID
			lessonIDs[m.ID] = lesson.ID
			items = append(items, lesson)
		}

		if !snap.IsCompleted(domain.ItemKey(categoryKey, m.ID, domain.KindQuiz)) {
			var prereqs []string
			if lessonID != "" {
				prereqs = []string{lessonID}
			}
			items = append(items, newItem(categoryKey, m.ID, domain.KindQuiz, 0, "Quiz: "+m.Title, QuizMinutes(minutes), prereqs))
		}
	}

	if len(items) == 0 && len(modules) > 0 {
		// Everything is done; keep the category visible with a light review.
		last := modules[len(modules)-1]
		items = append(items, newRefresher(categoryKey, last, 0, cfg))
	}
	return items
}

func newItem(categoryKey, moduleID string, kind domain.ItemKind, occurrence int, title string, minutes int, prereqs []string) domain.WorkItem {
	key := domain.ItemKey(categoryKey, moduleID, kind)
	if kind == domain.KindRefresher {
		key = RefresherKey(categoryKey, moduleID, occurrence)
	}
	return domain.WorkItem{
		ID:            ItemID(categoryKey, moduleID, kind, occurrence),
		Key:           key,
		Kind:          kind,
		CategoryKey:   categoryKey,
		ModuleID:      moduleID,
		Title:         title,
		EffortMinutes: minutes,
		EffortLevel:   domain.EffortLevelFor(minutes),
		Prerequisites: prereqs,
	}
}

func newRefresher(categoryKey string, m domain.Module, occurrence int, cfg Config) domain.WorkItem {
	return newItem(categoryKey, m.ID, domain.KindRefresher, occurrence, "Refresher: "+m.Title, cfg.RefresherMinutes, nil)
}

func milestoneItem(in GenerateInput, items []domain.WorkItem, cfg Config) domain.WorkItem {
	moduleID := fmt.Sprintf("milestone-%d", in.Snapshot.CompletedMilestones(in.Anchor)+1)

	var prereqs []string
	for _, it := range items {
		if it.CategoryKey == in.Anchor || in.Requirements.Blocks(it.CategoryKey) {
			prereqs = append(prereqs, it.ID)
		}
	}

	detail := domain.MilestoneDetail{
		Brief:             *in.Brief,
		Requirements:      in.Requirements,
		DependencyTargets: DependencyTargets(in.Requirements, in.Ranking, items, nil),
	}.Clone()

	title := in.Brief.Title
	if title == "" {
		title = in.Anchor + " milestone"
	}
	item := newItem(in.Anchor, moduleID, domain.KindMilestone, 0, title, cfg.MilestoneMinutes, prereqs)
	item.Priority = len(items)
	item.Milestone = &detail
	return item
}

type lane struct {
	key     string
	weight  float64
	current float64
	items   []domain.WorkItem
	next    int
}

// interleave merges category queues with a smooth weighted round-robin. Each
// lane keeps its internal order; earlier lanes win ties.
func interleave(lanes []*lane) []domain.WorkItem {
	active := make([]*lane, 0, len(lanes))
	total := 0
	for _, l := range lanes {
		if len(l.items) > 0 {
			active = append(active, l)
			total += len(l.items)
		}
	}

	out := make([]domain.WorkItem, 0, total)
	for len(active) > 0 {
		var sum float64
		best := 0
		for i, l := range active {
			sum += l.weight
			l.current += l.weight
			if l.current > active[best].current {
				best = i
			}
		}
		l := active[best]
		l.current -= sum
		out = append(out, l.items[l.next])
		l.next++
		if l.next == len(l.items) {
			active = append(active[:best], active[best+1:]...)
		}
	}
	return out
}

// OrderModules sorts modules so prerequisites come first, breaking ties by
// library position. On a cycle it returns the library order and true.
func OrderModules(library []domain.Module) ([]domain.Module, bool) {
	var modules []domain.Module
	position := make(map[string]int)
	for _, m := range library {
		if _, dup := position[m.ID]; dup {
			continue
		}
		position[m.ID] = len(modules)
		modules = append(modules, m)
	}

	indegree := make([]int, len(modules))
	dependents := make([][]int, len(modules))
	for i, m := range modules {
		seen := make(map[int]bool)
		for _, p := range m.Prerequisites {
			j, ok := position[p]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i := range modules {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]domain.Module, 0, len(modules))
	for len(ready) > 0 {
		pick := 0
		for k := range ready {
			if ready[k] < ready[pick] {
				pick = k
			}
		}
		i := ready[pick]
		ready = append(ready[:pick], ready[pick+1:]...)
		ordered = append(ordered, modules[i])
		for _, d := range dependents[i] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(ordered) != len(modules) {
		return modules, true
	}
	return ordered, false
}

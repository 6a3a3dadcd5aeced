package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// FoundationsCategory stands in when a learner has no active category.
const FoundationsCategory = "foundations"

var ErrNilSnapshot = errors.New("scheduler: nil snapshot")

type PlanInput struct {
	Snapshot *domain.SignalSnapshot
	// Brief is the authored milestone brief; nil uses TemplateBrief.
	Brief   *domain.MilestoneBrief
	Config  Config
	Advisor Advisor
	Now     time.Time
}

type PlanResult struct {
	Items             []domain.WorkItem
	TimeHorizonDays   int
	Ranking           []CategoryScore
	Anchor            string
	Requirements      domain.RequirementSet
	DependencyTargets []string
	Allocations       []domain.CategoryPacingAllocation
	Distribution      *domain.DistributionSummary
	AppliedDeferrals  []string
	StaleDeferrals    []string
	Notes             []string
	Warnings          []domain.Warning
}

// Milestone returns the run's milestone item, if one was placed.
func (r *PlanResult) Milestone() (domain.WorkItem, bool) {
	for _, it := range r.Items {
		if it.Kind == domain.KindMilestone {
			return it, true
		}
	}
	return domain.WorkItem{}, false
}

// Plan runs the whole pipeline over one snapshot: prioritize, generate, pack,
// distribute, overlay deferrals and finally the optional advisor. Apart from
// the advisor, which runs under its own deadline, the computation is pure and
// deterministic for a given input.
func Plan(ctx context.Context, in PlanInput) (*PlanResult, error) {
	if in.Snapshot == nil {
		return nil, ErrNilSnapshot
	}
	cfg := in.Config.withDefaults()
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	res := &PlanResult{}
	snap, synthesized := activeSnapshot(in.Snapshot)
	if synthesized {
		res.Warnings = append(res.Warnings, domain.Warning{
			Code:    domain.WarnNoActiveCategories,
			Message: "no active skill categories; scheduling a primer to get started",
		})
	}

	base := PrioritizeCategories(snap, cfg, nil)
	res.Anchor = AnchorCategory(base)
	res.Ranking = base

	var brief *domain.MilestoneBrief
	if !synthesized {
		if in.Brief != nil {
			b := *in.Brief
			brief = &b
		} else {
			b := TemplateBrief(snap, res.Anchor, base)
			brief = &b
		}
		reqs, warns := EvaluateRequirements(snap, res.Anchor, brief.RelatedCategories, cfg)
		res.Requirements = reqs
		res.Warnings = append(res.Warnings, warns...)
		if pressure := RequirementPressure(reqs, res.Anchor); len(pressure) > 0 {
			res.Ranking = PrioritizeCategories(snap, cfg, pressure)
		}
	}

	gen := GenerateItems(GenerateInput{
		Snapshot:     snap,
		Ranking:      res.Ranking,
		Anchor:       res.Anchor,
		Brief:        brief,
		Requirements: res.Requirements,
		Config:       cfg,
	})
	res.Warnings = append(res.Warnings, gen.Warnings...)
	for _, it := range gen.Items {
		if it.Milestone != nil {
			res.DependencyTargets = append([]string(nil), it.Milestone.DependencyTargets...)
		}
	}

	packed := PackItems(gen.Items, cfg)
	res.Warnings = append(res.Warnings, packed.Warnings...)
	items := packed.Items
	horizon := packed.HorizonDays

	distributed := horizon > cfg.NearTermWindowDays
	if distributed {
		items = append(items, DistributeRefreshers(DistributeInput{
			Snapshot:    snap,
			Items:       items,
			Ranking:     res.Ranking,
			Modules:     gen.Modules,
			HorizonDays: horizon,
			Config:      cfg,
		})...)
	}

	deferred := ApplyDeferrals(items, snap.PendingDeferrals, cfg)
	items = deferred.Items
	res.AppliedDeferrals = deferred.Applied
	res.StaleDeferrals = deferred.Stale
	res.Notes = deferred.Notes
	if len(deferred.Stale) > 0 {
		res.Warnings = append(res.Warnings, domain.Warning{
			Code:    domain.WarnStaleDeferral,
			Message: fmt.Sprintf("dropped %d deferral(s) for items that are no longer planned", len(deferred.Stale)),
		})
	}

	advised, warn := RunAdvisor(ctx, in.Advisor, AdvisorPlan{
		Items:             items,
		DependencyTargets: res.DependencyTargets,
		Config:            cfg,
	})
	if warn != nil {
		res.Warnings = append(res.Warnings, *warn)
	}
	items = advised
	domain.SortItems(items)

	for _, it := range items {
		horizon = max(horizon, it.DayOffset+1)
	}
	res.Items = items
	res.TimeHorizonDays = horizon
	res.Allocations = BuildAllocations(items, res.Ranking, snap.PendingDeferrals, now)
	if distributed {
		res.Distribution = SummarizeDistribution(items, res.Ranking, horizon, cfg)
	}
	return res, nil
}

// activeSnapshot returns snap itself, or a copy with a single foundations
// category when the learner has none.
func activeSnapshot(snap *domain.SignalSnapshot) (*domain.SignalSnapshot, bool) {
	if len(snap.Categories) > 0 {
		return snap, false
	}
	cp := *snap
	cp.Categories = map[string]domain.Category{
		FoundationsCategory: {Key: FoundationsCategory, Label: "Foundations", Weight: 1},
	}
	return &cp, true
}

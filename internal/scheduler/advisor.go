package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// AdvisorPlan is what an advisor gets to work on. Items is a private copy.
type AdvisorPlan struct {
	Items             []domain.WorkItem
	DependencyTargets []string
	Config            Config
}

// Advisor is an optional reprioritization pass over a packed plan. It may
// only move dependency targets to earlier days.
type Advisor interface {
	Reprioritize(ctx context.Context, plan AdvisorPlan) ([]domain.WorkItem, error)
}

// AdvisorFunc adapts a function to the Advisor interface.
type AdvisorFunc func(ctx context.Context, plan AdvisorPlan) ([]domain.WorkItem, error)

func (f AdvisorFunc) Reprioritize(ctx context.Context, plan AdvisorPlan) ([]domain.WorkItem, error) {
	return f(ctx, plan)
}

// NoopAdvisor leaves every plan as packed.
type NoopAdvisor struct{}

func (NoopAdvisor) Reprioritize(_ context.Context, plan AdvisorPlan) ([]domain.WorkItem, error) {
	return plan.Items, nil
}

// DependencyPullAdvisor moves each dependency target to the earliest earlier
// day that still satisfies budget, prerequisites and the streak cap.
type DependencyPullAdvisor struct{}

func (DependencyPullAdvisor) Reprioritize(ctx context.Context, plan AdvisorPlan) ([]domain.WorkItem, error) {
	cfg := plan.Config.withDefaults()
	items := plan.Items
	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.ID] = i
	}

	for _, target := range plan.DependencyTargets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		i, ok := index[target]
		if !ok || items[i].UserAdjusted || items[i].DayOffset == 0 {
			continue
		}
		others := make([]domain.WorkItem, 0, len(items)-1)
		for j, it := range items {
			if j != i {
				others = append(others, it)
			}
		}
		b := boardFrom(others, cfg, streakEnabled(items))
		if day, ok := b.earliest(items[i], 0, items[i].DayOffset, items[i].Slot); ok {
			items[i].DayOffset = day
		}
	}
	return items, nil
}

// RunAdvisor runs adv under the configured time budget and returns its output
// only when it passes every acceptance check. On timeout, error, panic or
// rejection the packed items are returned unchanged together with a warning.
func RunAdvisor(ctx context.Context, adv Advisor, plan AdvisorPlan) ([]domain.WorkItem, *domain.Warning) {
	if adv == nil {
		return plan.Items, nil
	}
	cfg := plan.Config.withDefaults()
	ctx, cancel := context.WithTimeout(ctx, cfg.AdvisorTimeout)
	defer cancel()

	type outcome struct {
		items []domain.WorkItem
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("advisor panicked: %v", r)}
			}
		}()
		items, err := adv.Reprioritize(ctx, AdvisorPlan{
			Items:             cloneItems(plan.Items),
			DependencyTargets: append([]string(nil), plan.DependencyTargets...),
			Config:            cfg,
		})
		done <- outcome{items: items, err: err}
	}()

	select {
	case <-ctx.Done():
		return plan.Items, advisorTimeout(cfg)
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return plan.Items, advisorTimeout(cfg)
			}
			return plan.Items, &domain.Warning{
				Code:    domain.WarnAdvisorError,
				Message: "advisor failed, keeping packed order: " + out.err.Error(),
			}
		}
		if err := acceptAdvice(plan, out.items, cfg); err != nil {
			return plan.Items, &domain.Warning{
				Code:    domain.WarnAdvisorError,
				Message: "advisor output rejected, keeping packed order: " + err.Error(),
			}
		}
		advised := cloneItems(out.items)
		domain.SortItems(advised)
		return advised, nil
	}
}

func advisorTimeout(cfg Config) *domain.Warning {
	return &domain.Warning{
		Code:    domain.WarnAdvisorTimeout,
		Message: fmt.Sprintf("advisor did not answer within %s, keeping packed order", cfg.AdvisorTimeout),
	}
}

func acceptAdvice(plan AdvisorPlan, advised []domain.WorkItem, cfg Config) error {
	if len(advised) != len(plan.Items) {
		return fmt.Errorf("item count changed from %d to %d", len(plan.Items), len(advised))
	}
	original := make(map[string]domain.WorkItem, len(plan.Items))
	for _, it := range plan.Items {
		original[it.ID] = it
	}
	targets := make(map[string]bool, len(plan.DependencyTargets))
	for _, t := range plan.DependencyTargets {
		targets[t] = true
	}

	seen := make(map[string]bool, len(advised))
	for _, it := range advised {
		orig, ok := original[it.ID]
		if !ok {
			return fmt.Errorf("unknown item %s", it.ID)
		}
		if seen[it.ID] {
			return fmt.Errorf("item %s appears twice", it.ID)
		}
		seen[it.ID] = true
		if it.Key != orig.Key || it.EffortMinutes != orig.EffortMinutes || it.UserAdjusted != orig.UserAdjusted {
			return fmt.Errorf("item %s was altered", it.ID)
		}
		if it.DayOffset == orig.DayOffset {
			continue
		}
		switch {
		case orig.UserAdjusted:
			return fmt.Errorf("item %s was moved by the learner and must stay", it.ID)
		case !targets[it.ID]:
			return fmt.Errorf("item %s is not a dependency target", it.ID)
		case it.DayOffset > orig.DayOffset || it.DayOffset < 0:
			return fmt.Errorf("item %s may only move earlier", it.ID)
		}
	}

	if fresh := newViolations(ValidateSchedule(plan.Items, cfg), ValidateSchedule(advised, cfg)); len(fresh) > 0 {
		return fmt.Errorf("%s", fresh[0].Message)
	}
	return nil
}

func cloneItems(items []domain.WorkItem) []domain.WorkItem {
	out := make([]domain.WorkItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

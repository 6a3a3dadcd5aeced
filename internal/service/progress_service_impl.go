package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/repository"
)

func (s *planService) Adjust(ctx context.Context, req app.AdjustRequest) (sched *domain.Schedule, err error) {
	fields := map[string]any{
		"learner_id": req.LearnerID,
		"item":       req.ItemKey,
		"day_shift":  req.DayShift,
	}
	defer observe(ctx, s.observer, "adjust-schedule", fields, &err)()

	if err = req.Validate(); err != nil {
		return nil, err
	}
	now := s.clock(req.Now)

	err = s.locks.With(req.LearnerID, func() error {
		current, err := s.currentLocked(ctx, req.LearnerID, now)
		if err != nil {
			return err
		}
		item, err := findItem(current, req.ItemKey)
		if err != nil {
			return err
		}
		fields["item_key"] = item.Key

		reason := strings.TrimSpace(req.Reason)
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			if err := repository.NewSQLiteDeferralRepo(tx).Append(ctx, req.LearnerID, item.Key, req.DayShift, reason, now); err != nil {
				return err
			}
			_, err := repository.NewSQLiteLearnerRepo(tx).BumpRevision(ctx, req.LearnerID)
			return err
		})
		if err != nil {
			return fmt.Errorf("persisting adjustment: %w", err)
		}

		note := fmt.Sprintf("%s moved %s", item.Title, describeShift(req.DayShift))
		if reason != "" {
			note += ": " + reason
		}
		sched, err = s.regenerateLocked(ctx, req.LearnerID, regenEvent{
			trigger:  domain.TriggerAdjustment,
			headline: "Adjusted " + item.Title,
			notes:    []string{note},
			now:      now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *planService) CompleteItem(ctx context.Context, req app.CompleteRequest) (sched *domain.Schedule, err error) {
	fields := map[string]any{
		"learner_id": req.LearnerID,
		"item":       req.ItemID,
	}
	defer observe(ctx, s.observer, "complete-item", fields, &err)()

	if err = req.Validate(); err != nil {
		return nil, err
	}
	now := s.clock(req.Now)

	err = s.locks.With(req.LearnerID, func() error {
		current, err := s.currentLocked(ctx, req.LearnerID, now)
		if err != nil {
			return err
		}
		item, err := findItem(current, req.ItemID)
		if app.ErrorCode(err) == app.PlanErrItemNotFound {
			done, lookupErr := s.alreadyCompleted(ctx, req.LearnerID, req.ItemID)
			if lookupErr != nil {
				return lookupErr
			}
			if done {
				fields["duplicate"] = true
				sched = current
				return nil
			}
		}
		if err != nil {
			return err
		}
		fields["item_key"] = item.Key
		fields["kind"] = string(item.Kind)

		rec := &domain.CompletionRecord{
			LearnerID:   req.LearnerID,
			ItemKey:     item.Key,
			ItemID:      item.ID,
			Kind:        item.Kind,
			CategoryKey: item.CategoryKey,
			Title:       item.Title,
			Outcome:     req.Outcome,
			CompletedAt: now,
		}
		var inserted bool
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			var err error
			inserted, err = repository.NewSQLiteCompletionRepo(tx).Record(ctx, rec)
			if err != nil || !inserted {
				return err
			}
			if err := applyCompletion(ctx, tx, req.LearnerID, item, req.Outcome, now); err != nil {
				return err
			}
			_, err = repository.NewSQLiteLearnerRepo(tx).BumpRevision(ctx, req.LearnerID)
			return err
		})
		if err != nil {
			return fmt.Errorf("recording completion: %w", err)
		}
		fields["duplicate"] = !inserted

		note := fmt.Sprintf("%s completed", item.Title)
		if !inserted {
			note = fmt.Sprintf("%s was already completed", item.Title)
		}
		sched, err = s.regenerateLocked(ctx, req.LearnerID, regenEvent{
			trigger:  domain.TriggerCompletion,
			headline: "Completed " + item.Title,
			notes:    []string{note},
			now:      now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

// alreadyCompleted reports whether ref names an item completed in an earlier
// run, which is no longer part of the schedule.
func (s *planService) alreadyCompleted(ctx context.Context, learnerID, ref string) (bool, error) {
	var done bool
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		recs, err := repository.NewSQLiteCompletionRepo(tx).ListByLearner(ctx, learnerID)
		if err != nil {
			return err
		}
		for _, r := range recs {
			if r.ItemKey == ref || r.ItemID == ref {
				done = true
				return nil
			}
		}
		return nil
	})
	return done, err
}

// applyCompletion folds a first-time completion into the learner's signals.
// Items of the synthesized primer category have no stored category and only
// leave the completion row behind.
func applyCompletion(ctx context.Context, tx db.DBTX, learnerID string, item domain.WorkItem, outcome domain.CompletionOutcome, at time.Time) error {
	categories := repository.NewSQLiteCategoryRepo(tx)
	known, err := categories.ListByLearner(ctx, learnerID)
	if err != nil {
		return err
	}
	if !hasCategory(known, item.CategoryKey) {
		return nil
	}

	if outcome.Score != nil && (item.Kind == domain.KindQuiz || item.Kind == domain.KindMilestone) {
		if _, err := repository.NewSQLiteOutcomeRepo(tx).Record(ctx, learnerID, item.CategoryKey, *outcome.Score, outcome.RatingDelta); err != nil {
			return err
		}
	}
	if outcome.RatingDelta != 0 {
		if err := categories.ApplyRatingDelta(ctx, learnerID, item.CategoryKey, outcome.RatingDelta); err != nil {
			return err
		}
	}
	if item.Kind == domain.KindMilestone {
		rec := domain.MilestoneRecord{CategoryKey: item.CategoryKey, Title: item.Title, CompletedAt: at}
		if err := repository.NewSQLiteMilestoneRepo(tx).Append(ctx, learnerID, rec); err != nil {
			return err
		}
	}
	return nil
}

func hasCategory(cats []domain.Category, key string) bool {
	for _, c := range cats {
		if c.Key == key {
			return true
		}
	}
	return false
}

// findItem resolves a reference that may be an item key or an item id.
func findItem(s *domain.Schedule, ref string) (domain.WorkItem, error) {
	if it, ok := s.FindItemByKey(ref); ok {
		return it, nil
	}
	if it, ok := s.FindItem(ref); ok {
		return it, nil
	}
	return domain.WorkItem{}, app.NewPlanError(app.PlanErrItemNotFound,
		fmt.Sprintf("item %s is not in the current schedule", ref), nil)
}

func describeShift(days int) string {
	unit := "days"
	if days == 1 || days == -1 {
		unit = "day"
	}
	if days > 0 {
		return fmt.Sprintf("%d %s later", days, unit)
	}
	return fmt.Sprintf("%d %s earlier", -days, unit)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/cache"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/intelligence"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/lock"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/logging"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/repository"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/scheduler"
)

type PlanConfig struct {
	Planner           scheduler.Config
	BriefTimeout      time.Duration
	RationalePageSize int
}

func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Planner:           scheduler.DefaultConfig(),
		BriefTimeout:      2 * time.Second,
		RationalePageSize: 10,
	}
}

// PlanDeps are the collaborators of the plan service. Only UoW is required.
type PlanDeps struct {
	UoW db.UnitOfWork
	// Snapshots defaults to reading the profile store through UoW.
	Snapshots SnapshotSource
	// Cache defaults to a cache whose entries never expire on age.
	Cache *cache.ScheduleCache
	// Author defaults to the template author.
	Author  intelligence.BriefAuthor
	Advisor scheduler.Advisor
	Log     *logging.Logger
	Clock   func() time.Time
}

type planService struct {
	uow       db.UnitOfWork
	snapshots SnapshotSource
	cache     *cache.ScheduleCache
	author    intelligence.BriefAuthor
	advisor   scheduler.Advisor
	cfg       PlanConfig
	log       *logging.Logger
	observer  UseCaseObserver
	now       func() time.Time
	locks     *lock.MutexMap
	flight    singleflight.Group
	ids       *idSource
}

func NewPlanService(deps PlanDeps, cfg PlanConfig, observers ...UseCaseObserver) PlanService {
	s := &planService{
		uow:       deps.UoW,
		snapshots: deps.Snapshots,
		cache:     deps.Cache,
		author:    deps.Author,
		advisor:   deps.Advisor,
		cfg:       cfg,
		log:       deps.Log,
		observer:  useCaseObserverOrNoop(observers),
		now:       deps.Clock,
		locks:     lock.NewMutexMap(),
		ids:       newIDSource(),
	}
	if s.snapshots == nil {
		s.snapshots = NewSnapshotSource(deps.UoW)
	}
	if s.cache == nil {
		s.cache = cache.New(0)
	}
	if s.author == nil {
		s.author = intelligence.TemplateAuthor{}
	}
	if s.log == nil {
		s.log = logging.Nop()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.cfg.BriefTimeout <= 0 {
		s.cfg.BriefTimeout = DefaultPlanConfig().BriefTimeout
	}
	if s.cfg.RationalePageSize <= 0 {
		s.cfg.RationalePageSize = DefaultPlanConfig().RationalePageSize
	}
	return s
}

// regenEvent describes why a run happens; it ends up in the rationale entry.
type regenEvent struct {
	trigger  domain.RegenerationTrigger
	headline string
	notes    []string
	now      time.Time
}

func (s *planService) clock(override *time.Time) time.Time {
	if override != nil {
		return override.UTC()
	}
	return s.now()
}

func (s *planService) Generate(ctx context.Context, req app.GenerateRequest) (sched *domain.Schedule, err error) {
	fields := map[string]any{
		"learner_id": req.LearnerID,
		"force":      req.ForceRegenerate,
	}
	defer observe(ctx, s.observer, "generate-schedule", fields, &err)()

	if err = req.Validate(); err != nil {
		return nil, err
	}

	var rev int64
	if !req.ForceRegenerate {
		var revErr error
		rev, revErr = s.revision(ctx, req.LearnerID)
		switch {
		case errors.Is(revErr, repository.ErrNotFound):
			return nil, learnerNotFound(req.LearnerID, revErr)
		case revErr != nil:
			rev = -1 // matches no cached revision
		}
		if cached, ok := s.cache.Fresh(req.LearnerID, rev); ok {
			fields["cache"] = "hit"
			return cached, nil
		}
	}
	fields["cache"] = "miss"

	ev := regenEvent{trigger: domain.TriggerRefresh, now: s.clock(req.Now)}
	if _, ok := s.cache.Load(req.LearnerID); !ok {
		ev.trigger = domain.TriggerInitial
	}

	if req.ForceRegenerate {
		return s.regenerate(ctx, req.LearnerID, ev)
	}

	// Callers that lose the race to an in-flight run share its result; a
	// caller arriving after it finished finds the fresh entry under the lock.
	v, err, shared := s.flight.Do(req.LearnerID, func() (any, error) {
		var out *domain.Schedule
		err := s.locks.With(req.LearnerID, func() error {
			if cached, ok := s.cache.Fresh(req.LearnerID, rev); ok {
				out = cached
				return nil
			}
			var err error
			out, err = s.regenerateLocked(ctx, req.LearnerID, ev)
			return err
		})
		return out, err
	})
	fields["shared"] = shared
	if err != nil {
		return nil, err
	}
	return v.(*domain.Schedule).Clone(), nil
}

func (s *planService) Slice(ctx context.Context, req app.SliceRequest) (out *domain.ScheduleSlice, err error) {
	fields := map[string]any{
		"learner_id": req.LearnerID,
		"start_day":  req.StartDay,
		"day_span":   req.DaySpan,
		"paged":      req.PageToken != "",
	}
	defer observe(ctx, s.observer, "slice-schedule", fields, &err)()

	if err = req.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.cache.Load(req.LearnerID); !ok {
		if _, err = s.Generate(ctx, app.GenerateRequest{LearnerID: req.LearnerID}); err != nil {
			return nil, err
		}
	}

	out, err = s.cache.Slice(req.LearnerID, req.StartDay, req.DaySpan, req.PageToken)
	switch {
	case err == nil:
		fields["items"] = len(out.Items)
		return out, nil
	case errors.Is(err, cache.ErrInvalidPageToken):
		return nil, app.NewPlanError(app.PlanErrInvalidPageToken, "page token is not valid for this learner", err)
	case errors.Is(err, cache.ErrInvalidRange):
		return nil, app.NewPlanError(app.PlanErrInvalidRequest, "day range is invalid", err)
	default:
		return nil, app.NewPlanError(app.PlanErrInternal, "slicing schedule", err)
	}
}

func (s *planService) revision(ctx context.Context, learnerID string) (int64, error) {
	var rev int64
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		l, err := repository.NewSQLiteLearnerRepo(tx).GetByID(ctx, learnerID)
		if err != nil {
			return err
		}
		rev = l.Revision
		return nil
	})
	return rev, err
}

func (s *planService) regenerate(ctx context.Context, learnerID string, ev regenEvent) (sched *domain.Schedule, err error) {
	err = s.locks.With(learnerID, func() error {
		sched, err = s.regenerateLocked(ctx, learnerID, ev)
		return err
	})
	return sched, err
}

// currentLocked returns the cached schedule, generating the first one when
// the learner has none. The learner lock must be held.
func (s *planService) currentLocked(ctx context.Context, learnerID string, now time.Time) (*domain.Schedule, error) {
	if cached, ok := s.cache.Load(learnerID); ok {
		return cached, nil
	}
	return s.regenerateLocked(ctx, learnerID, regenEvent{trigger: domain.TriggerInitial, now: now})
}

// regenerateLocked runs read snapshot, compute, swap. The learner lock must
// be held. Failures after the first good run serve the cached schedule
// flagged stale instead of an error.
func (s *planService) regenerateLocked(ctx context.Context, learnerID string, ev regenEvent) (*domain.Schedule, error) {
	snap, err := s.snapshots.Snapshot(ctx, learnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.cache.Invalidate(learnerID)
			return nil, learnerNotFound(learnerID, err)
		}
		return s.degrade(learnerID, domain.WarnSnapshotUnavailable,
			"profile store is unavailable; showing the last good schedule", app.PlanErrSnapshotUnavailable, err)
	}

	brief, briefWarn := s.authorBrief(ctx, snap)
	res, err := scheduler.Plan(ctx, scheduler.PlanInput{
		Snapshot: snap,
		Brief:    brief,
		Config:   s.cfg.Planner,
		Advisor:  s.advisor,
		Now:      ev.now,
	})
	if err != nil {
		return s.degrade(learnerID, domain.WarnRegenerationFailed,
			"schedule regeneration failed; showing the last good schedule", app.PlanErrInternal, err)
	}

	warnings := res.Warnings
	if briefWarn != nil {
		warnings = append(warnings, *briefWarn)
	}

	entry := buildRationale(s.ids.next(ev.now), snap, res, warnings, ev)
	history := s.persistRun(ctx, learnerID, res.StaleDeferrals, entry)

	stored := s.cache.Swap(&domain.Schedule{
		LearnerID:           learnerID,
		Revision:            snap.Revision,
		GeneratedAt:         ev.now,
		TimeHorizonDays:     res.TimeHorizonDays,
		Items:               res.Items,
		CategoryAllocations: res.Allocations,
		RationaleHistory:    history,
		Distribution:        res.Distribution,
		Warnings:            warnings,
	})
	s.log.Info("schedule_generated",
		"learner_id", learnerID,
		"trigger", string(ev.trigger),
		"version", stored.Version,
		"revision", stored.Revision,
		"items", len(stored.Items),
		"horizon_days", stored.TimeHorizonDays,
		"warnings", len(stored.Warnings),
	)
	return stored, nil
}

func (s *planService) degrade(learnerID string, code domain.WarningCode, msg string, errCode app.PlanErrorCode, cause error) (*domain.Schedule, error) {
	if stale, ok := s.cache.MarkStale(learnerID, domain.Warning{Code: code, Message: msg}); ok {
		s.log.Warn("serving_stale_schedule",
			"learner_id", learnerID,
			"reason", string(code),
			"error", cause.Error(),
		)
		return stale, nil
	}
	return nil, app.NewPlanError(errCode, msg, cause)
}

// authorBrief asks the author for the anchor's brief under BriefTimeout. A
// nil brief tells the planner to use the template.
func (s *planService) authorBrief(ctx context.Context, snap *domain.SignalSnapshot) (*domain.MilestoneBrief, *domain.Warning) {
	if len(snap.Categories) == 0 {
		return nil, nil
	}
	ranking := scheduler.PrioritizeCategories(snap, s.cfg.Planner, nil)
	anchor := scheduler.AnchorCategory(ranking)

	bctx, cancel := context.WithTimeout(ctx, s.cfg.BriefTimeout)
	defer cancel()

	type authored struct {
		brief domain.MilestoneBrief
		err   error
	}
	done := make(chan authored, 1)
	go func() {
		b, err := s.author.Author(bctx, snap, anchor, ranking)
		done <- authored{brief: b, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil {
			return &r.brief, nil
		}
		s.log.Warn("brief_author_failed", "learner_id", snap.LearnerID, "error", r.err.Error())
	case <-bctx.Done():
		s.log.Warn("brief_author_timeout", "learner_id", snap.LearnerID, "timeout_ms", s.cfg.BriefTimeout.Milliseconds())
	}
	return nil, &domain.Warning{
		Code:    domain.WarnBriefFallback,
		Message: "milestone brief could not be authored; using the template brief",
	}
}

// persistRun prunes stale deferrals, appends the rationale entry and returns
// the newest rationale page. Storage failures are logged; the run still
// returns with at least its own entry.
func (s *planService) persistRun(ctx context.Context, learnerID string, stale []string, entry domain.ScheduleRationaleEntry) []domain.ScheduleRationaleEntry {
	var history []domain.ScheduleRationaleEntry
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if len(stale) > 0 {
			if _, err := repository.NewSQLiteDeferralRepo(tx).DeleteKeys(ctx, learnerID, stale); err != nil {
				return err
			}
		}
		rationale := repository.NewSQLiteRationaleRepo(tx)
		if err := rationale.Append(ctx, learnerID, entry); err != nil {
			return err
		}
		var err error
		history, err = rationale.Newest(ctx, learnerID, s.cfg.RationalePageSize)
		return err
	})
	if err != nil {
		s.log.Warn("rationale_persist_failed", "learner_id", learnerID, "error", err.Error())
		return []domain.ScheduleRationaleEntry{entry}
	}
	return history
}

func learnerNotFound(learnerID string, cause error) error {
	return app.NewPlanError(app.PlanErrLearnerNotFound, fmt.Sprintf("learner %s not found", learnerID), cause)
}

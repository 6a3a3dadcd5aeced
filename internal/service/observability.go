package service

import (
	"context"
	"time"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/logging"
)

// UseCaseEvent is reported once per service call.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Fields    map[string]any
}

func (e UseCaseEvent) Success() bool { return e.Err == nil }

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type observerSet []UseCaseObserver

func (s observerSet) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, obs := range s {
		obs.ObserveUseCase(ctx, event)
	}
}

type logUseCaseObserver struct {
	log *logging.Logger
}

// NewLogUseCaseObserver logs every call as "service_use_case". Requests the
// caller got wrong (unknown learner or item, bad input) log at warn level;
// everything else that fails logs at error level.
func NewLogUseCaseObserver(log *logging.Logger) UseCaseObserver {
	if log == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{log: log}
}

func (o *logUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	kv := make([]any, 0, 6+len(event.Fields)*2)
	kv = append(kv,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success(),
	)
	for _, k := range sortedKeys(event.Fields) {
		kv = append(kv, k, event.Fields[k])
	}
	if event.Err == nil {
		o.log.Info("service_use_case", kv...)
		return
	}

	kv = append(kv, "error", event.Err.Error())
	switch code := app.ErrorCode(event.Err); code {
	case app.PlanErrInvalidRequest, app.PlanErrInvalidPageToken, app.PlanErrItemNotFound, app.PlanErrLearnerNotFound:
		o.log.Warn("service_use_case", append(kv, "error_code", string(code))...)
	case "":
		o.log.Error("service_use_case", kv...)
	default:
		o.log.Error("service_use_case", append(kv, "error_code", string(code))...)
	}
}

// useCaseObserverOrNoop fans events out to every non-nil observer.
func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	var set observerSet
	for _, obs := range observers {
		if obs != nil {
			set = append(set, obs)
		}
	}
	switch len(set) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return set[0]
	default:
		return set
	}
}

// observe reports one use case when the returned func runs. Callers defer it
// with a pointer to their named error.
func observe(ctx context.Context, obs UseCaseObserver, name string, fields map[string]any, errp *error) func() {
	startedAt := time.Now().UTC()
	return func() {
		obs.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Err:       *errp,
			Fields:    fields,
		})
	}
}

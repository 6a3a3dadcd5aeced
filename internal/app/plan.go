package app

import (
	"errors"
	"strings"
	"time"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

const (
	DefaultSliceSpan = 7
	MaxSliceSpan     = 365
	MaxSliceStart    = 10 * 365
	MaxDayShift      = 365
)

type GenerateRequest struct {
	LearnerID       string
	ForceRegenerate bool
	Now             *time.Time
}

type SliceRequest struct {
	LearnerID string
	StartDay  int
	DaySpan   int
	PageToken string
}

func NewSliceRequest(learnerID string) SliceRequest {
	return SliceRequest{LearnerID: learnerID, DaySpan: DefaultSliceSpan}
}

// AdjustRequest defers (positive shift) or pulls forward (negative shift)
// one item. ItemKey may also carry the item's per-run id.
type AdjustRequest struct {
	LearnerID string
	ItemKey   string
	DayShift  int
	Reason    string
	Now       *time.Time
}

type CompleteRequest struct {
	LearnerID string
	ItemID    string
	Outcome   domain.CompletionOutcome
	Now       *time.Time
}

type PlanErrorCode string

const (
	PlanErrSnapshotUnavailable PlanErrorCode = "SNAPSHOT_UNAVAILABLE"
	PlanErrInvalidRequest      PlanErrorCode = "INVALID_REQUEST"
	PlanErrItemNotFound        PlanErrorCode = "ITEM_NOT_FOUND"
	PlanErrInvalidPageToken    PlanErrorCode = "INVALID_PAGE_TOKEN"
	PlanErrLearnerNotFound     PlanErrorCode = "LEARNER_NOT_FOUND"
	PlanErrInternal            PlanErrorCode = "INTERNAL_ERROR"
)

type PlanError struct {
	Code    PlanErrorCode
	Message string
	Err     error
}

func (e *PlanError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *PlanError) Unwrap() error { return e.Err }

func NewPlanError(code PlanErrorCode, message string, err error) *PlanError {
	return &PlanError{Code: code, Message: message, Err: err}
}

// ErrorCode extracts the plan error code from err, or "" when err is not a
// PlanError.
func ErrorCode(err error) PlanErrorCode {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func invalid(message string) *PlanError {
	return &PlanError{Code: PlanErrInvalidRequest, Message: message}
}

func requireLearner(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("learner id is required")
	}
	return nil
}

func (r GenerateRequest) Validate() error {
	return requireLearner(r.LearnerID)
}

func (r SliceRequest) Validate() error {
	if err := requireLearner(r.LearnerID); err != nil {
		return err
	}
	if r.PageToken != "" {
		return nil
	}
	if r.StartDay < 0 || r.StartDay > MaxSliceStart {
		return invalid("start day must be between 0 and 3650")
	}
	if r.DaySpan <= 0 || r.DaySpan > MaxSliceSpan {
		return invalid("day span must be between 1 and 365")
	}
	return nil
}

func (r AdjustRequest) Validate() error {
	if err := requireLearner(r.LearnerID); err != nil {
		return err
	}
	if strings.TrimSpace(r.ItemKey) == "" {
		return invalid("item key is required")
	}
	if r.DayShift == 0 {
		return invalid("day shift must not be zero")
	}
	if r.DayShift > MaxDayShift || r.DayShift < -MaxDayShift {
		return invalid("day shift must be within 365 days")
	}
	return nil
}

func (r CompleteRequest) Validate() error {
	if err := requireLearner(r.LearnerID); err != nil {
		return err
	}
	if strings.TrimSpace(r.ItemID) == "" {
		return invalid("item id is required")
	}
	if s := r.Outcome.Score; s != nil && (*s < 0 || *s > 1) {
		return invalid("score must be between 0 and 1")
	}
	return nil
}

package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/importer"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/logging"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type ScheduleHandler struct {
	log *logging.Logger
	svc app.PlanUseCase
}

func NewScheduleHandler(log *logging.Logger, svc app.PlanUseCase) *ScheduleHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &ScheduleHandler{
		log: log.With("handler", "ScheduleHandler"),
		svc: svc,
	}
}

type generateBody struct {
	ForceRegenerate bool `json:"force_regenerate"`
}

type adjustBody struct {
	Item     string `json:"item" binding:"required"`
	DayShift int    `json:"day_shift"`
	Reason   string `json:"reason"`
}

type completeBody struct {
	Item        string   `json:"item" binding:"required"`
	Score       *float64 `json:"score"`
	RatingDelta float64  `json:"rating_delta"`
	Notes       string   `json:"notes"`
}

// GET /api/learners/:id/schedule
// Serve the cached schedule or generate one. ?refresh=true forces a run.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	force, err := queryBool(c, "refresh")
	if err != nil {
		RespondError(c, http.StatusBadRequest, string(app.PlanErrInvalidRequest), err)
		return
	}
	h.generate(c, force)
}

// POST /api/learners/:id/schedule
// Generate, optionally forcing a run past a fresh cache entry.
func (h *ScheduleHandler) GenerateSchedule(c *gin.Context) {
	var body generateBody
	if err := bindOptionalJSON(c, &body); err != nil {
		RespondError(c, http.StatusBadRequest, codeInvalidBody, err)
		return
	}
	h.generate(c, body.ForceRegenerate)
}

func (h *ScheduleHandler) generate(c *gin.Context, force bool) {
	sched, err := h.svc.Generate(c.Request.Context(), app.GenerateRequest{
		LearnerID:       c.Param("id"),
		ForceRegenerate: force,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sched)
}

// GET /api/learners/:id/schedule/slice?start_day=&day_span=&page_token=
func (h *ScheduleHandler) SliceSchedule(c *gin.Context) {
	req := app.NewSliceRequest(c.Param("id"))
	req.PageToken = c.Query("page_token")
	var err error
	if req.StartDay, err = queryInt(c, "start_day", 0); err != nil {
		RespondError(c, http.StatusBadRequest, string(app.PlanErrInvalidRequest), err)
		return
	}
	if req.DaySpan, err = queryInt(c, "day_span", app.DefaultSliceSpan); err != nil {
		RespondError(c, http.StatusBadRequest, string(app.PlanErrInvalidRequest), err)
		return
	}

	slice, err := h.svc.Slice(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, slice)
}

// POST /api/learners/:id/schedule/adjust
// Move one item by a number of days. The item may be named by key or id.
func (h *ScheduleHandler) AdjustSchedule(c *gin.Context) {
	var body adjustBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, codeInvalidBody, err)
		return
	}

	sched, err := h.svc.Adjust(c.Request.Context(), app.AdjustRequest{
		LearnerID: c.Param("id"),
		ItemKey:   body.Item,
		DayShift:  body.DayShift,
		Reason:    body.Reason,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sched)
}

// POST /api/learners/:id/schedule/complete
func (h *ScheduleHandler) CompleteItem(c *gin.Context) {
	var body completeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, codeInvalidBody, err)
		return
	}

	sched, err := h.svc.CompleteItem(c.Request.Context(), app.CompleteRequest{
		LearnerID: c.Param("id"),
		ItemID:    body.Item,
		Outcome: domain.CompletionOutcome{
			Score:       body.Score,
			RatingDelta: body.RatingDelta,
			Notes:       body.Notes,
		},
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sched)
}

type ImportHandler struct {
	log *logging.Logger
	svc app.ImportLearnerUseCase
}

func NewImportHandler(log *logging.Logger, svc app.ImportLearnerUseCase) *ImportHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &ImportHandler{
		log: log.With("handler", "ImportHandler"),
		svc: svc,
	}
}

type importResponse struct {
	LearnerID      string `json:"learner_id"`
	Revision       int64  `json:"revision"`
	CategoryCount  int    `json:"category_count"`
	ModuleCount    int    `json:"module_count"`
	OutcomeCount   int    `json:"outcome_count"`
	MilestoneCount int    `json:"milestone_count"`
}

// POST /api/learners/import
// Body is the same document `arcadia import` reads, as JSON.
func (h *ImportHandler) ImportLearner(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, codeInvalidBody, err)
		return
	}
	schema, err := importer.ParseJSON(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, codeInvalidBody, err)
		return
	}

	result, err := h.svc.ImportLearnerFromSchema(c.Request.Context(), schema)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	h.log.Info("learner_imported", "learner_id", result.Learner.ID, "revision", result.Learner.Revision)
	c.JSON(http.StatusCreated, importResponse{
		LearnerID:      result.Learner.ID,
		Revision:       result.Learner.Revision,
		CategoryCount:  result.CategoryCount,
		ModuleCount:    result.ModuleCount,
		OutcomeCount:   result.OutcomeCount,
		MilestoneCount: result.MilestoneCount,
	})
}

// bindOptionalJSON decodes a JSON body when one was sent.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func queryBool(c *gin.Context, name string) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", name)
	}
	return v, nil
}

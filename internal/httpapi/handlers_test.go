package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/service"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePlanService struct {
	generated []app.GenerateRequest
	sliced    []app.SliceRequest
	adjusted  []app.AdjustRequest
	completed []app.CompleteRequest
	err       error
}

func (f *fakePlanService) Generate(_ context.Context, req app.GenerateRequest) (*domain.Schedule, error) {
	f.generated = append(f.generated, req)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Schedule{LearnerID: req.LearnerID, Version: 1}, nil
}

func (f *fakePlanService) Slice(_ context.Context, req app.SliceRequest) (*domain.ScheduleSlice, error) {
	f.sliced = append(f.sliced, req)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ScheduleSlice{LearnerID: req.LearnerID, Slice: domain.SliceInfo{StartDay: req.StartDay, DaySpan: req.DaySpan}}, nil
}

func (f *fakePlanService) Adjust(_ context.Context, req app.AdjustRequest) (*domain.Schedule, error) {
	f.adjusted = append(f.adjusted, req)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Schedule{LearnerID: req.LearnerID, Version: 2}, nil
}

func (f *fakePlanService) CompleteItem(_ context.Context, req app.CompleteRequest) (*domain.Schedule, error) {
	f.completed = append(f.completed, req)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Schedule{LearnerID: req.LearnerID, Version: 2}, nil
}

func newTestRouter(plan app.PlanUseCase, imp app.ImportLearnerUseCase) *gin.Engine {
	return NewRouter(RouterConfig{
		HealthHandler:   NewHealthHandler(),
		ScheduleHandler: NewScheduleHandler(nil, plan),
		ImportHandler:   NewImportHandler(nil, imp),
	})
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error
}

func TestHealthCheck(t *testing.T) {
	w := do(t, newTestRouter(&fakePlanService{}, nil), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newTestRouter(&fakePlanService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "req-42")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(headerRequestID))
}

func TestGetSchedule_RefreshFlag(t *testing.T) {
	fake := &fakePlanService{}
	r := newTestRouter(fake, nil)

	w := do(t, r, http.MethodGet, "/api/learners/lrn-1/schedule?refresh=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fake.generated, 1)
	assert.Equal(t, "lrn-1", fake.generated[0].LearnerID)
	assert.True(t, fake.generated[0].ForceRegenerate)

	w = do(t, r, http.MethodGet, "/api/learners/lrn-1/schedule?refresh=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateSchedule_EmptyBodyIsAllowed(t *testing.T) {
	fake := &fakePlanService{}
	r := newTestRouter(fake, nil)

	w := do(t, r, http.MethodPost, "/api/learners/lrn-1/schedule", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/learners/lrn-1/schedule", `{"force_regenerate":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, fake.generated, 2)
	assert.False(t, fake.generated[0].ForceRegenerate)
	assert.True(t, fake.generated[1].ForceRegenerate)
}

func TestSliceSchedule_QueryParsing(t *testing.T) {
	fake := &fakePlanService{}
	r := newTestRouter(fake, nil)

	w := do(t, r, http.MethodGet, "/api/learners/lrn-1/schedule/slice?start_day=7&day_span=14&page_token=abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fake.sliced, 1)
	assert.Equal(t, app.SliceRequest{LearnerID: "lrn-1", StartDay: 7, DaySpan: 14, PageToken: "abc"}, fake.sliced[0])

	w = do(t, r, http.MethodGet, "/api/learners/lrn-1/schedule/slice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, app.DefaultSliceSpan, fake.sliced[1].DaySpan)

	w = do(t, r, http.MethodGet, "/api/learners/lrn-1/schedule/slice?day_span=week", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(app.PlanErrInvalidRequest), decodeError(t, w).Code)
}

func TestAdjustSchedule_Body(t *testing.T) {
	fake := &fakePlanService{}
	r := newTestRouter(fake, nil)

	w := do(t, r, http.MethodPost, "/api/learners/lrn-1/schedule/adjust", `{"item":"A/A-2/quiz","day_shift":3,"reason":"travel"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fake.adjusted, 1)
	assert.Equal(t, "A/A-2/quiz", fake.adjusted[0].ItemKey)
	assert.Equal(t, 3, fake.adjusted[0].DayShift)
	assert.Equal(t, "travel", fake.adjusted[0].Reason)

	w = do(t, r, http.MethodPost, "/api/learners/lrn-1/schedule/adjust", `{"day_shift":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidBody, decodeError(t, w).Code)
}

func TestCompleteItem_Body(t *testing.T) {
	fake := &fakePlanService{}
	r := newTestRouter(fake, nil)

	w := do(t, r, http.MethodPost, "/api/learners/lrn-1/schedule/complete", `{"item":"B/B-1/quiz","score":0.8,"rating_delta":12}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fake.completed, 1)
	got := fake.completed[0]
	assert.Equal(t, "B/B-1/quiz", got.ItemID)
	require.NotNil(t, got.Outcome.Score)
	assert.InDelta(t, 0.8, *got.Outcome.Score, 1e-9)
	assert.InDelta(t, 12, got.Outcome.RatingDelta, 1e-9)
}

func TestServiceErrorsMapToStatuses(t *testing.T) {
	cases := []struct {
		code   app.PlanErrorCode
		status int
	}{
		{app.PlanErrInvalidRequest, http.StatusBadRequest},
		{app.PlanErrInvalidPageToken, http.StatusBadRequest},
		{app.PlanErrLearnerNotFound, http.StatusNotFound},
		{app.PlanErrItemNotFound, http.StatusNotFound},
		{app.PlanErrSnapshotUnavailable, http.StatusServiceUnavailable},
		{app.PlanErrInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			fake := &fakePlanService{err: app.NewPlanError(tc.code, "boom", nil)}
			w := do(t, newTestRouter(fake, nil), http.MethodGet, "/api/learners/lrn-1/schedule", "")

			assert.Equal(t, tc.status, w.Code)
			apiErr := decodeError(t, w)
			assert.Equal(t, string(tc.code), apiErr.Code)
			assert.Equal(t, "boom", apiErr.Message)
		})
	}
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	fake := &fakePlanService{err: errors.New("disk on fire")}

	w := do(t, newTestRouter(fake, nil), http.MethodGet, "/api/learners/lrn-1/schedule", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestUnknownRoute(t *testing.T) {
	w := do(t, newTestRouter(&fakePlanService{}, nil), http.MethodGet, "/api/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, codeNotFound, decodeError(t, w).Code)
}

// Import and schedule calls against the real services and SQLite store.
func TestRouter_EndToEnd(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	r := newTestRouter(
		service.NewPlanService(service.PlanDeps{UoW: uow}, service.DefaultPlanConfig()),
		service.NewImportService(uow),
	)

	doc := `{
		"learner": {"id": "http-learner", "goal": "learn go"},
		"categories": [
			{"key": "syntax", "label": "Syntax", "weight": 1, "current_rating": 1000,
			 "modules": [{"id": "basics", "title": "Basics", "estimated_minutes": 30}]}
		]
	}`
	w := do(t, r, http.MethodPost, "/api/learners/import", doc)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var imported importResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &imported))
	assert.Equal(t, "http-learner", imported.LearnerID)
	assert.Equal(t, 1, imported.ModuleCount)

	w = do(t, r, http.MethodGet, "/api/learners/http-learner/schedule", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sched domain.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sched))
	assert.Equal(t, uint64(1), sched.Version)
	_, ok := sched.FindItemByKey("syntax/basics/lesson")
	assert.True(t, ok)

	w = do(t, r, http.MethodPost, "/api/learners/http-learner/schedule/complete", `{"item":"syntax/basics/lesson"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/learners/http-learner/schedule/adjust", `{"item":"syntax/nope/lesson","day_shift":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(app.PlanErrItemNotFound), decodeError(t, w).Code)

	w = do(t, r, http.MethodGet, "/api/learners/ghost/schedule", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImport_ValidationDetails(t *testing.T) {
	database := testutil.NewTestDB(t)
	r := newTestRouter(&fakePlanService{}, service.NewImportService(testutil.NewTestUoW(database)))

	w := do(t, r, http.MethodPost, "/api/learners/import", `{"learner":{"goal":"x"},"categories":[{"key":"a/b","weight":-1,"current_rating":1}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, codeInvalidImport, apiErr.Code)
	assert.Len(t, apiErr.Details, 2)

	w = do(t, r, http.MethodPost, "/api/learners/import", `{"learner":{"goal":"x"},"surprise":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidBody, decodeError(t, w).Code)
}

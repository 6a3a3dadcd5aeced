package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/config"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/logging"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/service"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/testutil"
)

const learnerYAML = `learner:
  id: cli-learner
  goal: write a compiler
categories:
  - key: A
    label: Parsing
    weight: 0.6
    current_rating: 900
    target_rating: 1300
    modules:
      - {id: A-1, title: Tokens, estimated_minutes: 45}
      - {id: A-2, title: Grammars, estimated_minutes: 45, prerequisites: [A-1]}
  - key: B
    label: Codegen
    weight: 0.4
    current_rating: 1200
    target_rating: 1300
    modules:
      - {id: B-1, title: Registers, estimated_minutes: 45}
`

var cliNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

// testWire wires the real services against one in-memory store shared by
// every command of the test.
func testWire(t *testing.T) WireFunc {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	plan := service.NewPlanService(service.PlanDeps{
		UoW:   uow,
		Clock: func() time.Time { return cliNow },
	}, service.DefaultPlanConfig())

	return func(cfg config.Config) (*App, error) {
		return &App{
			Config: cfg,
			Log:    logging.Nop(),
			Plan:   plan,
			Import: service.NewImportService(uow),
		}, nil
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, wire WireFunc, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(wire)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func importLearner(t *testing.T, wire WireFunc) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "learner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(learnerYAML), 0o600))
	out, err := executeCmd(t, wire, "import", path)
	require.NoError(t, err)
	require.Contains(t, out, "cli-learner")
}

func decodeSchedule(t *testing.T, out string) domain.Schedule {
	t.Helper()
	var s domain.Schedule
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	return s
}

func TestImportCmd_PrintsSummary(t *testing.T) {
	wire := testWire(t)
	path := filepath.Join(t.TempDir(), "learner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(learnerYAML), 0o600))

	out, err := executeCmd(t, wire, "import", path)

	require.NoError(t, err)
	assert.Contains(t, out, "IMPORTED")
	assert.Contains(t, out, "2 categories, 3 modules")
}

func TestImportCmd_ValidationErrorsSurface(t *testing.T) {
	wire := testWire(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("learner:\n  goal: x\ncategories:\n  - key: ''\n    weight: -1\n"), 0o600))

	_, err := executeCmd(t, wire, "import", path)

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errs)
}

func TestPlanCmd_TextAndJSON(t *testing.T) {
	wire := testWire(t)
	importLearner(t, wire)

	out, err := executeCmd(t, wire, "plan", "cli-learner")
	require.NoError(t, err)
	assert.Contains(t, out, "learner cli-learner · v1")
	assert.Contains(t, out, "Today · Sat Mar 15")
	assert.Contains(t, out, "MILESTONE")
	assert.NotContains(t, out, "\x1b[", "output to a buffer is never colored")

	out, err = executeCmd(t, wire, "--json", "plan", "cli-learner")
	require.NoError(t, err)
	s := decodeSchedule(t, out)
	assert.Equal(t, "cli-learner", s.LearnerID)
	assert.Equal(t, uint64(1), s.Version, "second call is served from the cache")

	out, err = executeCmd(t, wire, "--json", "plan", "cli-learner", "--refresh")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), decodeSchedule(t, out).Version)
}

func TestPlanCmd_UnknownLearner(t *testing.T) {
	wire := testWire(t)

	_, err := executeCmd(t, wire, "plan", "nobody")

	assert.Equal(t, app.PlanErrLearnerNotFound, app.ErrorCode(err))
}

func TestSliceCmd_PagesForward(t *testing.T) {
	wire := testWire(t)
	importLearner(t, wire)

	out, err := executeCmd(t, wire, "--json", "slice", "cli-learner", "--span", "1")
	require.NoError(t, err)
	var first domain.ScheduleSlice
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, 0, first.Slice.StartDay)
	require.True(t, first.Slice.HasMore)
	for _, it := range first.Items {
		assert.Equal(t, 0, it.DayOffset)
	}

	out, err = executeCmd(t, wire, "--json", "slice", "cli-learner", "--page-token", first.Slice.PageToken)
	require.NoError(t, err)
	var second domain.ScheduleSlice
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Equal(t, 1, second.Slice.StartDay)

	_, err = executeCmd(t, wire, "slice", "cli-learner", "--page-token", "garbage")
	assert.Equal(t, app.PlanErrInvalidPageToken, app.ErrorCode(err))
}

func TestAdjustCmd_MovesItem(t *testing.T) {
	wire := testWire(t)
	importLearner(t, wire)
	const key = "A/A-2/lesson"

	out, err := executeCmd(t, wire, "--json", "plan", "cli-learner")
	require.NoError(t, err)
	beforeSched := decodeSchedule(t, out)
	before, ok := beforeSched.FindItemByKey(key)
	require.True(t, ok)

	out, err = executeCmd(t, wire, "--json", "adjust", "cli-learner", key, "--days", "2", "--reason", "busy")
	require.NoError(t, err)
	afterSched := decodeSchedule(t, out)
	after, ok := afterSched.FindItemByKey(key)
	require.True(t, ok)
	assert.Equal(t, before.DayOffset+2, after.DayOffset)
	assert.True(t, after.UserAdjusted)
}

func TestAdjustCmd_RequiresDays(t *testing.T) {
	wire := testWire(t)

	_, err := executeCmd(t, wire, "adjust", "cli-learner", "A/A-1/lesson")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "days")
}

func TestCompleteCmd_RecordsCompletion(t *testing.T) {
	wire := testWire(t)
	importLearner(t, wire)
	const key = "A/A-1/lesson"

	out, err := executeCmd(t, wire, "complete", "cli-learner", key, "--notes", "done")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed Tokens")

	out, err = executeCmd(t, wire, "--json", "plan", "cli-learner")
	require.NoError(t, err)
	sched := decodeSchedule(t, out)
	_, ok := sched.FindItemByKey(key)
	assert.False(t, ok, "completed lesson leaves the schedule")
}

func TestCompleteCmd_UnknownItem(t *testing.T) {
	wire := testWire(t)
	importLearner(t, wire)

	_, err := executeCmd(t, wire, "complete", "cli-learner", "A/missing/lesson")

	assert.Equal(t, app.PlanErrItemNotFound, app.ErrorCode(err))
}

func TestConfigCmd_SkipsWiring(t *testing.T) {
	wire := func(config.Config) (*App, error) {
		return nil, errors.New("config must not open the store")
	}

	out, err := executeCmd(t, wire, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "daily_budget_minutes:")
	assert.Contains(t, out, "author: template")
}

func TestConfigCmd_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcadia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("planner:\n  horizon_days: 21\n  max_horizon_days: 60\n"), 0o600))

	out, err := executeCmd(t, testWire(t), "--config", path, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "horizon_days: 21")
}

func TestRun_ClosesApp(t *testing.T) {
	closed := false
	wire := func(cfg config.Config) (*App, error) {
		return &App{Config: cfg, Close: func() error { closed = true; return nil }}, nil
	}

	err := Run(context.Background(), wire, []string{"plan"})

	require.Error(t, err, "plan needs a learner id")
	assert.False(t, closed, "arguments are rejected before wiring")

	err = Run(context.Background(), wire, []string{"serve", "--addr", "bad::addr::"})
	require.Error(t, err)
	assert.True(t, closed)
}

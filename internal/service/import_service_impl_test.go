package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/importer"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/repository"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/testutil"
)

func TestImportLearner_CreatesProfile(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database))
	ctx := context.Background()
	schema := validLearnerSchema()
	schema.Outcomes = []importer.OutcomeImport{{Category: "B", AverageScore: 0.7, RatingDelta: -5, SampleCount: 3}}
	schema.Milestones = []importer.MilestoneImport{{Category: "A", Title: "Tokenizer", CompletedAt: "2025-01-10"}}

	result, err := svc.ImportLearnerFromSchema(ctx, schema)
	require.NoError(t, err)

	assert.Equal(t, testLearner, result.Learner.ID)
	assert.Equal(t, int64(1), result.Learner.Revision)
	assert.Equal(t, 2, result.CategoryCount)
	assert.Equal(t, 8, result.ModuleCount)
	assert.Equal(t, 1, result.OutcomeCount)
	assert.Equal(t, 1, result.MilestoneCount)

	snap, err := repository.NewSQLiteSignalStore(database).Snapshot(ctx, testLearner)
	require.NoError(t, err)
	assert.Equal(t, "ship a compiler", snap.GoalSummary)
	assert.Equal(t, []string{"A", "B"}, snap.CategoryKeys())
	assert.Len(t, snap.ModuleLibrary["A"], 4)
	assert.Equal(t, 3, snap.AssessmentOutcomes["B"].SampleCount)
	assert.Equal(t, 1, snap.CompletedMilestones("A"))
}

func TestImportLearner_ReimportKeepsHistory(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database))
	ctx := context.Background()
	schema := validLearnerSchema()
	schema.Milestones = []importer.MilestoneImport{{Category: "A", Title: "Tokenizer", CompletedAt: "2025-01-10"}}

	_, err := svc.ImportLearnerFromSchema(ctx, schema)
	require.NoError(t, err)

	schema.Learner.Goal = "ship an optimizing compiler"
	schema.Categories[1].Modules = schema.Categories[1].Modules[:2]
	again, err := svc.ImportLearnerFromSchema(ctx, schema)
	require.NoError(t, err)

	assert.Equal(t, int64(2), again.Learner.Revision)
	assert.Equal(t, "ship an optimizing compiler", again.Learner.GoalSummary)
	assert.Equal(t, 0, again.MilestoneCount, "known milestone records are not duplicated")

	snap, err := repository.NewSQLiteSignalStore(database).Snapshot(ctx, testLearner)
	require.NoError(t, err)
	assert.Len(t, snap.ModuleLibrary["B"], 2)
	assert.Equal(t, 1, snap.CompletedMilestones("A"))
}

func TestImportLearner_ValidationErrorsAreCollected(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database))
	schema := validLearnerSchema()
	schema.Categories[0].Weight = -1
	schema.Categories[1].Key = "B/x"

	_, err := svc.ImportLearnerFromSchema(context.Background(), schema)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "import validation failed (2 errors)")
	assert.Contains(t, err.Error(), "weight must not be negative")
	assert.Contains(t, err.Error(), "must not contain '/'")

	_, err = repository.NewSQLiteLearnerRepo(database).GetByID(context.Background(), testLearner)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestImportLearner_RollbackOnCategoryFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	// Writes: #1 learner insert, #2 first category upsert.
	failUoW := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: errors.New("injected category failure")}
	svc := NewImportService(failUoW)

	_, err := svc.ImportLearnerFromSchema(context.Background(), validLearnerSchema())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected category failure")
	_, err = repository.NewSQLiteLearnerRepo(database).GetByID(context.Background(), testLearner)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestImportLearner_FromYAMLFile(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database))
	path := filepath.Join(t.TempDir(), "learner.yaml")
	content := `learner:
  id: yaml-learner
  goal: learn rust
categories:
  - key: ownership
    label: Ownership
    weight: 1
    current_rating: 1000
    modules:
      - id: borrowck
        title: The borrow checker
        estimated_minutes: 45
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	result, err := svc.ImportLearner(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-learner", result.Learner.ID)
	assert.Equal(t, 1, result.ModuleCount)
}

func TestImportLearner_MissingFile(t *testing.T) {
	svc := NewImportService(testutil.NewTestUoW(testutil.NewTestDB(t)))

	_, err := svc.ImportLearner(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading import file")
}

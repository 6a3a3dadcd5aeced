package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/testutil"
)

func TestCategoryRepo_UpsertListAndDelta(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedLearner(t, database, "l1")
	repo := NewSQLiteCategoryRepo(database)
	ctx := context.Background()
	target := 1300.0

	require.NoError(t, repo.Upsert(ctx, "l1", domain.Category{Key: "b", Weight: 0.4, CurrentRating: 1200, Position: 1}))
	require.NoError(t, repo.Upsert(ctx, "l1", domain.Category{Key: "a", Label: "Algebra", Weight: 0.6, CurrentRating: 900, TargetRating: &target}))
	require.NoError(t, repo.ApplyRatingDelta(ctx, "l1", "a", 25))

	cats, err := repo.ListByLearner(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "a", cats[0].Key)
	assert.Equal(t, 925.0, cats[0].CurrentRating)
	require.NotNil(t, cats[0].TargetRating)
	assert.Equal(t, 1300.0, *cats[0].TargetRating)
	assert.Nil(t, cats[1].TargetRating)

	assert.ErrorIs(t, repo.ApplyRatingDelta(ctx, "l1", "zzz", 1), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "l1", "b"))
	cats, err = repo.ListByLearner(ctx, "l1")
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestModuleRepo_ReplaceKeepsOrder(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedLearner(t, database, "l1")
	ctx := context.Background()
	require.NoError(t, NewSQLiteCategoryRepo(database).Upsert(ctx, "l1", domain.Category{Key: "a", Weight: 1}))
	repo := NewSQLiteModuleRepo(database)

	require.NoError(t, repo.ReplaceCategory(ctx, "l1", "a", []domain.Module{
		{ID: "old", Title: "Old"},
	}))
	require.NoError(t, repo.ReplaceCategory(ctx, "l1", "a", []domain.Module{
		{ID: "z-intro", Title: "Intro", EstimatedMinutes: 40, Objectives: []string{"read"}},
		{ID: "a-next", Title: "Next", EstimatedMinutes: 20, Prerequisites: []string{"z-intro"}},
	}))

	lib, err := repo.ListByLearner(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, lib["a"], 2)
	assert.Equal(t, "z-intro", lib["a"][0].ID)
	assert.Equal(t, []string{"read"}, lib["a"][0].Objectives)
	assert.Nil(t, lib["a"][0].Prerequisites)
	assert.Equal(t, []string{"z-intro"}, lib["a"][1].Prerequisites)
	assert.Equal(t, "a", lib["a"][1].CategoryKey)
}

func TestModuleRepo_RequiresCategory(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedLearner(t, database, "l1")

	err := NewSQLiteModuleRepo(database).ReplaceCategory(context.Background(), "l1", "missing", []domain.Module{{ID: "m"}})

	assert.Error(t, err)
}

func TestOutcomeRepo_RecordRunningAverage(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedLearner(t, database, "l1")
	ctx := context.Background()
	require.NoError(t, NewSQLiteCategoryRepo(database).Upsert(ctx, "l1", domain.Category{Key: "a", Weight: 1}))
	repo := NewSQLiteOutcomeRepo(database)

	_, err := repo.Get(ctx, "l1", "a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Record(ctx, "l1", "a", 1.0, 10)
	require.NoError(t, err)
	o, err := repo.Record(ctx, "l1", "a", 0.4, -20)
	require.NoError(t, err)

	assert.InDelta(t, 0.7, o.AverageScore, 1e-9)
	assert.Equal(t, -20.0, o.RatingDelta)
	assert.Equal(t, 2, o.SampleCount)

	all, err := repo.ListByLearner(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, *o, all["a"])
}

func TestMilestoneRepo_AppendAndList(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedLearner(t, database, "l1")
	repo := NewSQLiteMilestoneRepo(database)
	ctx := context.Background()

	first := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, "l1", domain.MilestoneRecord{CategoryKey: "a", Title: "A milestone 2", CompletedAt: first.Add(time.Hour)}))
	require.NoError(t, repo.Append(ctx, "l1", domain.MilestoneRecord{CategoryKey: "a", Title: "A milestone 1", CompletedAt: first}))

	recs, err := repo.ListByLearner(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.NotEmpty(t, recs[0].ID)
	assert.Equal(t, "A milestone 1", recs[0].Title)
}

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

func TestPackItems_DailyBudget(t *testing.T) {
	items := withPriorities([]domain.WorkItem{
		testItem("a", "m1", 50),
		testItem("a", "m2", 50),
		testItem("a", "m3", 50),
		testItem("a", "m4", 50),
	})

	res := PackItems(items, DefaultConfig())

	require.Len(t, res.Items, 4)
	days := []int{res.Items[0].DayOffset, res.Items[1].DayOffset, res.Items[2].DayOffset, res.Items[3].DayOffset}
	assert.Equal(t, []int{0, 0, 1, 1}, days)
	assert.Equal(t, 30, res.HorizonDays)
	assert.Empty(t, res.Warnings)
}

func TestPackItems_OversizedItemPlacedAlone(t *testing.T) {
	items := withPriorities([]domain.WorkItem{
		testItem("a", "big", 200),
		testItem("a", "small", 20),
	})

	res := PackItems(items, DefaultConfig())

	byKey := itemsByKey(res.Items)
	assert.Equal(t, 0, byKey["a/big/lesson"].DayOffset)
	assert.Equal(t, 1, byKey["a/small/lesson"].DayOffset)
}

func TestPackItems_PrerequisitesOnEarlierDay(t *testing.T) {
	lesson := testItem("a", "m1", 20)
	quiz := newItem("a", "m1", domain.KindQuiz, 0, "quiz", 10, []string{lesson.ID})
	items := withPriorities([]domain.WorkItem{lesson, quiz})

	res := PackItems(items, DefaultConfig())

	byKey := itemsByKey(res.Items)
	assert.Equal(t, 0, byKey[lesson.Key].DayOffset)
	assert.Equal(t, 1, byKey[quiz.Key].DayOffset)
}

func TestPackItems_StreakCapInterleavesCategories(t *testing.T) {
	items := withPriorities([]domain.WorkItem{
		testItem("a", "a1", 10),
		testItem("a", "a2", 10),
		testItem("a", "a3", 10),
		testItem("a", "a4", 10),
		testItem("b", "b1", 10),
	})

	res := PackItems(items, DefaultConfig())

	require.Len(t, res.Items, 5)
	var order []string
	for _, it := range res.Items {
		assert.Equal(t, 0, it.DayOffset)
		order = append(order, it.ModuleID)
	}
	assert.Equal(t, []string{"a1", "a2", "b1", "a3", "a4"}, order)
	assert.Empty(t, ValidateSchedule(res.Items, DefaultConfig()))
}

func TestPackItems_StreakWaitsOutTheWindow(t *testing.T) {
	items := withPriorities([]domain.WorkItem{
		testItem("b", "b1", 10),
		testItem("a", "a1", 10),
		testItem("a", "a2", 10),
		testItem("a", "a3", 10),
	})

	res := PackItems(items, DefaultConfig())

	byKey := itemsByKey(res.Items)
	assert.Equal(t, 0, byKey["a/a1/lesson"].DayOffset)
	assert.Equal(t, 0, byKey["a/a2/lesson"].DayOffset)
	assert.Equal(t, 7, byKey["a/a3/lesson"].DayOffset, "third in a row must leave the 7-day window")
}

func TestPackItems_SingleCategoryIgnoresStreak(t *testing.T) {
	items := withPriorities([]domain.WorkItem{
		testItem("a", "a1", 10),
		testItem("a", "a2", 10),
		testItem("a", "a3", 10),
	})

	res := PackItems(items, DefaultConfig())

	for _, it := range res.Items {
		assert.Equal(t, 0, it.DayOffset)
	}
}

func TestPackItems_MilestoneWaitsForBlockingCategories(t *testing.T) {
	a1 := testItem("a", "a1", 60)
	b1 := testItem("b", "b1", 60)
	b2 := testItem("b", "b2", 60, b1.ID)
	ms := newItem("a", "milestone-1", domain.KindMilestone, 0, "ms", 30, []string{a1.ID})
	ms.Milestone = &domain.MilestoneDetail{
		Requirements: domain.RequirementSet{BlockingCategories: []string{"b"}},
	}
	items := withPriorities([]domain.WorkItem{a1, b1, b2, ms})

	res := PackItems(items, DefaultConfig())

	byKey := itemsByKey(res.Items)
	assert.Equal(t, 0, byKey[a1.Key].DayOffset)
	assert.Equal(t, 1, byKey[b2.Key].DayOffset)
	assert.Equal(t, 2, byKey[ms.Key].DayOffset)
}

func TestPackItems_HorizonExtendsThenTruncates(t *testing.T) {
	l1 := testItem("a", "m1", 10)
	l2 := testItem("a", "m2", 10, l1.ID)
	l3 := testItem("a", "m3", 10, l2.ID)
	items := withPriorities([]domain.WorkItem{l1, l2, l3})

	cfg := DefaultConfig()
	cfg.HorizonDays = 2
	cfg.MaxHorizonDays = 2
	res := PackItems(items, cfg)

	assert.Len(t, res.Items, 2)
	require.Len(t, res.Truncated, 1)
	assert.Equal(t, l3.ID, res.Truncated[0].ID)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, domain.WarnHorizonExhausted, res.Warnings[0].Code)

	cfg.MaxHorizonDays = 10
	res = PackItems(items, cfg)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, 3, res.HorizonDays)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.WarnHorizonExtended, res.Warnings[0].Code)
}

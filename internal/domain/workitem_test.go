package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffortLevelFor(t *testing.T) {
	cases := []struct {
		minutes int
		want    EffortLevel
	}{
		{0, EffortLight},
		{29, EffortLight},
		{30, EffortModerate},
		{60, EffortModerate},
		{61, EffortFocus},
		{240, EffortFocus},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EffortLevelFor(tc.minutes), "minutes=%d", tc.minutes)
	}
}

func TestParseItemKey_RoundTrip(t *testing.T) {
	key := ItemKey("algebra", "alg-101", KindQuiz)
	assert.Equal(t, "algebra/alg-101/quiz", key)

	cat, mod, kind, err := ParseItemKey(key)
	require.NoError(t, err)
	assert.Equal(t, "algebra", cat)
	assert.Equal(t, "alg-101", mod)
	assert.Equal(t, KindQuiz, kind)
}

func TestParseItemKey_Refresher(t *testing.T) {
	_, mod, kind, err := ParseItemKey("algebra/alg-101@3/refresher")
	require.NoError(t, err)
	assert.Equal(t, "alg-101@3", mod)
	assert.Equal(t, KindRefresher, kind)
}

func TestParseItemKey_Invalid(t *testing.T) {
	for _, key := range []string{"", "algebra", "algebra/alg-101", "algebra//lesson", "a/b/homework", "a/b/c/lesson"} {
		_, _, _, err := ParseItemKey(key)
		assert.Error(t, err, "key=%q", key)
	}
}

func TestWorkItemClone_IsDeep(t *testing.T) {
	orig := WorkItem{
		ID:            "wi-1",
		Prerequisites: []string{"wi-0"},
		Milestone: &MilestoneDetail{
			Brief:             MilestoneBrief{Objectives: []string{"ship it"}},
			Requirements:      RequirementSet{BlockingCategories: []string{"b"}},
			DependencyTargets: []string{"wi-7"},
		},
	}
	cp := orig.Clone()
	cp.Prerequisites[0] = "changed"
	cp.Milestone.Brief.Objectives[0] = "changed"
	cp.Milestone.Requirements.BlockingCategories[0] = "changed"
	cp.Milestone.DependencyTargets[0] = "changed"

	assert.Equal(t, "wi-0", orig.Prerequisites[0])
	assert.Equal(t, "ship it", orig.Milestone.Brief.Objectives[0])
	assert.Equal(t, "b", orig.Milestone.Requirements.BlockingCategories[0])
	assert.Equal(t, "wi-7", orig.Milestone.DependencyTargets[0])
}

func TestRequirementSet_Blocks(t *testing.T) {
	rs := RequirementSet{BlockingCategories: []string{"a", "b"}}
	assert.True(t, rs.Blocks("b"))
	assert.False(t, rs.Blocks("c"))
	assert.False(t, rs.Unlocked())
	assert.True(t, RequirementSet{}.Unlocked())
}

func TestScheduleClone_DoesNotShareSlices(t *testing.T) {
	s := &Schedule{
		LearnerID: "l-1",
		Items:     []WorkItem{{ID: "a", DayOffset: 1}},
		Warnings:  []Warning{{Code: WarnAdvisorTimeout}},
		RationaleHistory: []ScheduleRationaleEntry{
			{ID: "r1", AdjustmentNotes: []string{"n"}, GeneratedAt: time.Now()},
		},
	}
	cp := s.Clone()
	cp.Items[0].DayOffset = 9
	cp.Warnings = append(cp.Warnings, Warning{Code: WarnHorizonExhausted})
	cp.RationaleHistory[0].AdjustmentNotes[0] = "x"

	assert.Equal(t, 1, s.Items[0].DayOffset)
	assert.Len(t, s.Warnings, 1)
	assert.Equal(t, "n", s.RationaleHistory[0].AdjustmentNotes[0])
}

func TestSortItems_DayThenSlot(t *testing.T) {
	items := []WorkItem{
		{ID: "c", DayOffset: 1, Slot: 0},
		{ID: "b", DayOffset: 0, Slot: 5},
		{ID: "a", DayOffset: 0, Slot: 2},
	}
	SortItems(items)
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestSnapshot_Helpers(t *testing.T) {
	snap := &SignalSnapshot{
		Categories: map[string]Category{"b": {Key: "b"}, "a": {Key: "a"}},
		MilestoneHistory: []MilestoneRecord{
			{CategoryKey: "a"}, {CategoryKey: "a"}, {CategoryKey: "b"},
		},
		Completions: map[string]time.Time{"a/m1/lesson": time.Now()},
	}
	assert.Equal(t, []string{"a", "b"}, snap.CategoryKeys())
	assert.Equal(t, 2, snap.CompletedMilestones("a"))
	assert.True(t, snap.IsCompleted("a/m1/lesson"))
	assert.False(t, snap.IsCompleted("a/m1/quiz"))
}

func TestCategory_LabelAndTarget(t *testing.T) {
	target := 1400.0
	withLabel := Category{Key: "graphs", Label: "Graph theory", TargetRating: &target}
	bare := Category{Key: "graphs"}

	assert.Equal(t, "Graph theory", withLabel.DisplayLabel())
	assert.Equal(t, "graphs", bare.DisplayLabel())
	assert.Equal(t, 1400.0, withLabel.Target(1200))
	assert.Equal(t, 1200.0, bare.Target(1200))
}

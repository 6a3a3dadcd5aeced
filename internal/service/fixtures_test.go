package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/importer"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/testutil"
)

const testLearner = "lrn-1"

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func moduleChain(category string, n, minutes int) []importer.ModuleImport {
	mods := make([]importer.ModuleImport, 0, n)
	for i := 1; i <= n; i++ {
		m := importer.ModuleImport{
			ID:               fmt.Sprintf("%s-%d", category, i),
			Title:            fmt.Sprintf("Module %s-%d", category, i),
			EstimatedMinutes: minutes,
			Objectives:       []string{fmt.Sprintf("Understand %s-%d", category, i)},
		}
		if i > 1 {
			m.Prerequisites = []string{fmt.Sprintf("%s-%d", category, i-1)}
		}
		mods = append(mods, m)
	}
	return mods
}

// validLearnerSchema is a two-category profile: A is heavier and further
// from its target than B.
func validLearnerSchema() *importer.LearnerSchema {
	return &importer.LearnerSchema{
		Learner: importer.LearnerImport{ID: testLearner, Goal: "ship a compiler"},
		Categories: []importer.CategoryImport{
			{Key: "A", Label: "Parsing", Weight: 0.6, CurrentRating: 900, TargetRating: floatPtr(1300), Modules: moduleChain("A", 4, 60)},
			{Key: "B", Label: "Codegen", Weight: 0.4, CurrentRating: 1200, TargetRating: floatPtr(1300), Modules: moduleChain("B", 4, 60)},
		},
	}
}

func seedProfile(t *testing.T, database *sql.DB) {
	t.Helper()
	_, err := NewImportService(testutil.NewTestUoW(database)).
		ImportLearnerFromSchema(context.Background(), validLearnerSchema())
	require.NoError(t, err)
}

func fixedClock() time.Time { return testNow }

func newTestPlanService(t *testing.T, database *sql.DB, mutate func(*PlanDeps, *PlanConfig)) PlanService {
	t.Helper()
	deps := PlanDeps{UoW: testutil.NewTestUoW(database), Clock: fixedClock}
	cfg := DefaultPlanConfig()
	if mutate != nil {
		mutate(&deps, &cfg)
	}
	return NewPlanService(deps, cfg)
}

func itemByKey(t *testing.T, s *domain.Schedule, key string) domain.WorkItem {
	t.Helper()
	it, ok := s.FindItemByKey(key)
	require.True(t, ok, "item %s not scheduled", key)
	return it
}

func milestoneOf(t *testing.T, s *domain.Schedule) domain.WorkItem {
	t.Helper()
	for _, it := range s.Items {
		if it.Kind == domain.KindMilestone {
			return it
		}
	}
	t.Fatalf("schedule has no milestone")
	return domain.WorkItem{}
}

func warningCodes(ws []domain.Warning) []domain.WarningCode {
	out := make([]domain.WarningCode, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat(f float64) *float64 { return &f }

func validMinimalSchema() *LearnerSchema {
	return &LearnerSchema{
		Learner: LearnerImport{Goal: "ship a compiler"},
		Categories: []CategoryImport{
			{Key: "parsing", Weight: 1, CurrentRating: 1000, Modules: []ModuleImport{
				{ID: "lexing", Title: "Lexing"},
				{ID: "recursive-descent", Title: "Recursive descent", Prerequisites: []string{"lexing"}},
			}},
		},
	}
}

func TestValidateLearnerSchema_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateLearnerSchema(validMinimalSchema()))
}

func TestValidateLearnerSchema_NoCategoriesIsValid(t *testing.T) {
	assert.Empty(t, ValidateLearnerSchema(&LearnerSchema{Learner: LearnerImport{Goal: "explore"}}))
}

func TestValidateLearnerSchema_ValidFull(t *testing.T) {
	schema := validMinimalSchema()
	schema.Learner.ID = "learner-1"
	schema.Categories = append(schema.Categories, CategoryImport{
		Key: "codegen", Label: "Code generation", Weight: 0.5, CurrentRating: 900, TargetRating: ptrFloat(1300),
	})
	schema.Outcomes = []OutcomeImport{{Category: "parsing", AverageScore: 0.7, RatingDelta: -15, SampleCount: 4}}
	schema.Milestones = []MilestoneImport{
		{Category: "parsing", Title: "Calculator", CompletedAt: "2025-02-01"},
		{Category: "codegen", Title: "Stack VM", CompletedAt: "2025-03-01T10:00:00Z"},
	}

	assert.Empty(t, ValidateLearnerSchema(schema))
}

func TestValidateLearnerSchema_CollectsAllErrors(t *testing.T) {
	schema := &LearnerSchema{
		Categories: []CategoryImport{
			{Key: "", Weight: -1},
			{Key: "a/b", CurrentRating: -5, TargetRating: ptrFloat(0)},
			{Key: "dup"},
			{Key: "dup", Modules: []ModuleImport{
				{ID: "m1", Title: "M1", Prerequisites: []string{"m1", "ghost"}},
				{ID: "m1", EstimatedMinutes: -3},
				{Title: "no id"},
			}},
		},
		Outcomes: []OutcomeImport{
			{Category: "nope", AverageScore: 2},
			{Category: "dup", SampleCount: -1},
			{Category: "dup"},
		},
		Milestones: []MilestoneImport{{Category: "dup", CompletedAt: "yesterday"}},
	}

	errs := ValidateLearnerSchema(schema)

	want := []string{
		"categories[0].key is required",
		"categories[0].weight must not be negative",
		"categories[1].key \"a/b\" must not contain '/'",
		"categories[1].current_rating must not be negative",
		"categories[1].target_rating must be positive",
		"categories[3].key \"dup\" is duplicated",
		"categories[3].modules[1].id \"m1\" is duplicated",
		"categories[3].modules[1].title is required",
		"categories[3].modules[1].estimated_minutes must not be negative",
		"categories[3].modules[2].id is required",
		"categories[3].modules[0]: module \"m1\" cannot require itself",
		"categories[3].modules[0]: unknown prerequisite \"ghost\"",
		"outcomes[0].category \"nope\" is not a declared category",
		"outcomes[0].average_score must be between 0 and 1",
		"outcomes[1].sample_count must not be negative",
		"outcomes[2].category \"dup\" has more than one outcome",
		"milestones[0].title is required",
	}
	var got []string
	for _, e := range errs {
		got = append(got, e.Error())
	}
	for _, w := range want {
		assert.Contains(t, got, w)
	}
	require.Len(t, errs, len(want)+1, "plus the completed_at error")
}

func TestParseTimestamp(t *testing.T) {
	d, err := parseTimestamp("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())

	ts, err := parseTimestamp("2025-03-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())

	_, err = parseTimestamp("")
	assert.Error(t, err)
	_, err = parseTimestamp("03/01/2025")
	assert.Error(t, err)
}

package intelligence

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/llm"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/scheduler"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/testutil"
)

type mockLLMClient struct {
	response string
	err      error
	lastReq  llm.GenerateRequest
}

func (m *mockLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.response, Model: "mock"}, nil
}

func (m *mockLLMClient) Available(context.Context) bool { return m.err == nil }

func briefFixture() (*domain.SignalSnapshot, []scheduler.CategoryScore) {
	snap := testutil.NewSnapshot(
		testutil.WithGoal("ship a compiler"),
		testutil.WithCategory("parsing", 0.6, 900, testutil.WithLabel("Parsing")),
		testutil.WithCategory("codegen", 0.4, 1100),
		testutil.WithModuleChain("parsing", 2, 40),
	)
	return snap, scheduler.PrioritizeCategories(snap, scheduler.DefaultConfig(), nil)
}

func llmBrief(related ...string) string {
	data, _ := json.Marshal(map[string]any{
		"title":              "Recursive descent calculator",
		"summary":            "Build a calculator that parses arithmetic.",
		"objectives":         []string{"Tokenize input", "Parse precedence"},
		"deliverables":       []string{"A CLI calculator"},
		"success_criteria":   []string{"Handles nested parentheses"},
		"kickoff_steps":      []string{"Write the tokenizer"},
		"related_categories": related,
	})
	return "Here you go:\n```json\n" + string(data) + "\n```"
}

func TestLLMBriefAuthor_UsesModelOutput(t *testing.T) {
	snap, ranking := briefFixture()
	client := &mockLLMClient{response: llmBrief("codegen", "parsing", "unknown", "codegen")}

	brief, err := NewLLMBriefAuthor(client).Author(context.Background(), snap, "parsing", ranking)

	require.NoError(t, err)
	assert.Equal(t, BriefSourceLLM, brief.Source)
	assert.Equal(t, "Recursive descent calculator", brief.Title)
	assert.Equal(t, []string{"codegen"}, brief.RelatedCategories)
	assert.Equal(t, llm.TaskMilestoneBrief, client.lastReq.Task)
	assert.Contains(t, client.lastReq.UserPrompt, "ship a compiler")
	assert.Contains(t, client.lastReq.UserPrompt, "Understand parsing-1")
}

func TestLLMBriefAuthor_EmptyRelatedFallsBackToRanking(t *testing.T) {
	snap, ranking := briefFixture()
	client := &mockLLMClient{response: llmBrief()}

	brief, err := NewLLMBriefAuthor(client).Author(context.Background(), snap, "parsing", ranking)

	require.NoError(t, err)
	assert.Equal(t, []string{"codegen"}, brief.RelatedCategories)
}

func TestLLMBriefAuthor_FallbackWhenLLMDown(t *testing.T) {
	snap, ranking := briefFixture()
	client := &mockLLMClient{err: llm.ErrUnavailable}

	brief, err := NewLLMBriefAuthor(client).Author(context.Background(), snap, "parsing", ranking)

	require.NoError(t, err)
	assert.Equal(t, scheduler.BriefSourceTemplate, brief.Source)
	assert.Equal(t, scheduler.TemplateBrief(snap, "parsing", ranking), brief)
}

func TestLLMBriefAuthor_FallbackOnSchemaViolation(t *testing.T) {
	snap, ranking := briefFixture()
	tests := map[string]string{
		"missing lists": `{"title":"x","summary":"y"}`,
		"empty title":   `{"title":"","summary":"y","objectives":["a"],"deliverables":["b"],"success_criteria":["c"],"kickoff_steps":["d"]}`,
		"blank title":   `{"title":"   ","summary":"y","objectives":["a"],"deliverables":["b"],"success_criteria":["c"],"kickoff_steps":["d"]}`,
		"not json":      "I would suggest building a calculator.",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			brief, err := NewLLMBriefAuthor(&mockLLMClient{response: raw}).Author(context.Background(), snap, "parsing", ranking)

			require.NoError(t, err)
			assert.Equal(t, scheduler.BriefSourceTemplate, brief.Source)
		})
	}
}

func TestTemplateAuthor(t *testing.T) {
	snap, ranking := briefFixture()

	brief, err := TemplateAuthor{}.Author(context.Background(), snap, "parsing", ranking)

	require.NoError(t, err)
	assert.Equal(t, scheduler.BriefSourceTemplate, brief.Source)
	assert.Equal(t, "Parsing milestone 1", brief.Title)
	assert.Contains(t, brief.Summary, "ship a compiler")
}

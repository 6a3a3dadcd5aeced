package intelligence

import "github.com/RLTree/ArcadiaCoach-sub000/internal/llm"

const maxBriefListLen = 6

func stringList(minItems int) map[string]any {
	return map[string]any{
		"type":     "array",
		"minItems": minItems,
		"maxItems": maxBriefListLen,
		"items":    map[string]any{"type": "string", "minLength": 1},
	}
}

// briefSchema is the contract an LLM-authored brief must satisfy before it
// reaches the planner.
var briefSchema = llm.NewSchema("milestone_brief", map[string]any{
	"$schema":  "https://json-schema.org/draft/2020-12/schema",
	"type":     "object",
	"required": []any{"title", "summary", "objectives", "deliverables", "success_criteria", "kickoff_steps"},
	"properties": map[string]any{
		"title":              map[string]any{"type": "string", "minLength": 1, "maxLength": 120},
		"summary":            map[string]any{"type": "string", "minLength": 1},
		"objectives":         stringList(1),
		"deliverables":       stringList(1),
		"success_criteria":   stringList(1),
		"kickoff_steps":      stringList(1),
		"related_categories": stringList(0),
	},
})

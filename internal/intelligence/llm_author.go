package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/llm"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/scheduler"
)

const BriefSourceLLM = "llm"

type llmBriefAuthor struct {
	client llm.LLMClient
}

// NewLLMBriefAuthor returns an author backed by client. Any provider error or
// malformed output yields the template brief instead.
func NewLLMBriefAuthor(client llm.LLMClient) BriefAuthor {
	return &llmBriefAuthor{client: client}
}

type briefPromptCategory struct {
	Key           string   `json:"key"`
	Label         string   `json:"label"`
	Score         float64  `json:"score"`
	CurrentRating float64  `json:"current_rating"`
	Modules       []string `json:"modules,omitempty"`
}

type briefPrompt struct {
	Goal                string                `json:"goal,omitempty"`
	Anchor              briefPromptCategory   `json:"anchor"`
	Objectives          []string              `json:"module_objectives,omitempty"`
	CompletedMilestones int                   `json:"completed_milestones"`
	Categories          []briefPromptCategory `json:"categories"`
}

func (a *llmBriefAuthor) Author(ctx context.Context, snap *domain.SignalSnapshot, anchor string, ranking []scheduler.CategoryScore) (domain.MilestoneBrief, error) {
	fallback := scheduler.TemplateBrief(snap, anchor, ranking)

	prompt, err := json.MarshalIndent(buildBriefPrompt(snap, anchor, ranking), "", "  ")
	if err != nil {
		return fallback, nil
	}

	resp, err := a.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskMilestoneBrief,
		SystemPrompt: briefSystemPrompt,
		UserPrompt:   "Design the next milestone for this learner:\n\n" + string(prompt),
	})
	if err != nil {
		return fallback, nil
	}

	brief, err := llm.ExtractJSON[domain.MilestoneBrief](resp.Text, briefSchema, validateBrief)
	if err != nil {
		return fallback, nil
	}

	brief.RelatedCategories = knownRelated(snap, anchor, brief.RelatedCategories)
	if len(brief.RelatedCategories) == 0 {
		brief.RelatedCategories = fallback.RelatedCategories
	}
	brief.Source = BriefSourceLLM
	return brief, nil
}

func validateBrief(b domain.MilestoneBrief) error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("title is blank")
	}
	if strings.TrimSpace(b.Summary) == "" {
		return fmt.Errorf("summary is blank")
	}
	return nil
}

// knownRelated keeps keys that exist in the snapshot, drops the anchor and
// duplicates, and preserves order.
func knownRelated(snap *domain.SignalSnapshot, anchor string, keys []string) []string {
	seen := map[string]bool{anchor: true}
	var out []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if _, ok := snap.Categories[k]; !ok || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func buildBriefPrompt(snap *domain.SignalSnapshot, anchor string, ranking []scheduler.CategoryScore) briefPrompt {
	p := briefPrompt{
		Goal:                snap.GoalSummary,
		CompletedMilestones: snap.CompletedMilestones(anchor),
	}
	for _, cs := range ranking {
		cat := snap.Categories[cs.CategoryKey]
		pc := briefPromptCategory{
			Key:           cs.CategoryKey,
			Label:         cat.DisplayLabel(),
			Score:         cs.Score,
			CurrentRating: cat.CurrentRating,
		}
		for _, m := range snap.ModuleLibrary[cs.CategoryKey] {
			pc.Modules = append(pc.Modules, m.Title)
		}
		if cs.CategoryKey == anchor {
			p.Anchor = pc
			for _, m := range snap.ModuleLibrary[anchor] {
				p.Objectives = append(p.Objectives, m.Objectives...)
			}
			continue
		}
		p.Categories = append(p.Categories, pc)
	}
	if p.Anchor.Key == "" {
		p.Anchor = briefPromptCategory{Key: anchor, Label: anchor}
	}
	return p
}

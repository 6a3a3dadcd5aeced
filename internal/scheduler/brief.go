package scheduler

import (
	"fmt"
	"strings"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

const BriefSourceTemplate = "template"

const maxTemplateObjectives = 3

// TemplateBrief is the deterministic milestone brief. It is used directly when
// no author is configured and as the fallback whenever an author fails.
// The highest ranked category other than the anchor is tagged as related.
func TemplateBrief(snap *domain.SignalSnapshot, anchor string, ranking []CategoryScore) domain.MilestoneBrief {
	cat, ok := snap.Categories[anchor]
	if !ok {
		cat = domain.Category{Key: anchor}
	}
	label := cat.DisplayLabel()
	n := snap.CompletedMilestones(anchor) + 1

	var objectives []string
	for _, m := range snap.ModuleLibrary[anchor] {
		for _, o := range m.Objectives {
			if len(objectives) == maxTemplateObjectives {
				break
			}
			objectives = append(objectives, o)
		}
	}
	if len(objectives) == 0 {
		objectives = []string{fmt.Sprintf("Demonstrate working command of %s fundamentals", label)}
	}

	summary := fmt.Sprintf("Apply what you have practised in %s to a small end-to-end project.", label)
	if goal := strings.TrimSpace(snap.GoalSummary); goal != "" {
		summary += " It should move you toward your goal: " + goal
	}

	var related []string
	for _, cs := range ranking {
		if cs.CategoryKey != anchor {
			related = append(related, cs.CategoryKey)
			break
		}
	}

	return domain.MilestoneBrief{
		Title:      fmt.Sprintf("%s milestone %d", label, n),
		Summary:    summary,
		Objectives: objectives,
		Deliverables: []string{
			fmt.Sprintf("A working project that exercises %s", label),
			"A short write-up of the decisions you made",
		},
		SuccessCriteria: []string{
			"Every objective is visible in the deliverable",
			"You can explain each step without notes",
		},
		KickoffSteps: []string{
			fmt.Sprintf("Re-read the notes from your latest %s lesson", label),
			"Sketch the project scope in a few bullet points",
			"Set up the workspace and commit a first skeleton",
		},
		RelatedCategories: related,
		Source:            BriefSourceTemplate,
	}
}

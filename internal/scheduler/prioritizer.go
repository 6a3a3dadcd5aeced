package scheduler

import (
	"fmt"
	"math"
	"sort"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

type ScoreReasonCode string

const (
	ReasonWeight              ScoreReasonCode = "WEIGHT"
	ReasonRatingDeficit       ScoreReasonCode = "RATING_DEFICIT"
	ReasonAssessmentGap       ScoreReasonCode = "ASSESSMENT_GAP"
	ReasonNegativeDelta       ScoreReasonCode = "NEGATIVE_DELTA"
	ReasonRequirementPressure ScoreReasonCode = "REQUIREMENT_PRESSURE"
)

type ScoreReason struct {
	Code    ScoreReasonCode `json:"code"`
	Message string          `json:"message"`
	Delta   float64         `json:"delta"`
}

// CategoryScore is one row of the prioritizer output.
type CategoryScore struct {
	CategoryKey      string        `json:"category_key"`
	Score            float64       `json:"score"`
	NormalizedWeight float64       `json:"normalized_weight"`
	Reasons          []ScoreReason `json:"reasons,omitempty"`
}

type scoringInput struct {
	category         domain.Category
	normalizedWeight float64
	deficit          float64 // already normalized to [0,1]
	rawDeficit       float64
	outcome          *domain.AssessmentOutcome
	pressure         float64
	weights          Weights
	deltaScale       float64
}

// PrioritizeCategories scores every category of the snapshot and returns them
// by score descending, then key ascending. pressure carries the requirement
// pressure per category and may be nil.
func PrioritizeCategories(snap *domain.SignalSnapshot, cfg Config, pressure map[string]float64) []CategoryScore {
	cfg = cfg.withDefaults()
	keys := snap.CategoryKeys()
	if len(keys) == 0 {
		return nil
	}

	var weightSum float64
	for _, k := range keys {
		if w := snap.Categories[k].Weight; w > 0 {
			weightSum += w
		}
	}

	rawDeficits := make(map[string]float64, len(keys))
	var maxDeficit float64
	for _, k := range keys {
		cat := snap.Categories[k]
		target := cat.Target(cfg.DefaultTargetRating)
		d := math.Max(0, target-cat.CurrentRating)
		rawDeficits[k] = d
		maxDeficit = math.Max(maxDeficit, d)
	}

	out := make([]CategoryScore, 0, len(keys))
	for _, k := range keys {
		cat := snap.Categories[k]
		in := scoringInput{
			category:   cat,
			rawDeficit: rawDeficits[k],
			pressure:   pressure[k],
			weights:    cfg.Weights,
			deltaScale: cfg.RatingDeltaScale,
		}
		if weightSum > 0 {
			in.normalizedWeight = math.Max(0, cat.Weight) / weightSum
		} else {
			in.normalizedWeight = 1 / float64(len(keys))
		}
		if maxDeficit > 0 {
			in.deficit = rawDeficits[k] / maxDeficit
		}
		if o, ok := snap.AssessmentOutcomes[k]; ok {
			in.outcome = &o
		}
		out = append(out, scoreCategory(in))
	}

	sortScores(out)
	return out
}

// AnchorCategory returns the category that owns this run's milestone: the top
// of the ranking before requirement pressure is applied.
func AnchorCategory(base []CategoryScore) string {
	if len(base) == 0 {
		return ""
	}
	return base[0].CategoryKey
}

// RequirementPressure pulls the last blocker of an otherwise ready milestone
// upward. Pressure is only set when exactly one category blocks and it is
// not the anchor; its value is that requirement's progress, so a nearly met
// requirement pulls hardest.
func RequirementPressure(reqs domain.RequirementSet, anchor string) map[string]float64 {
	if len(reqs.BlockingCategories) != 1 || reqs.BlockingCategories[0] == anchor {
		return nil
	}
	last := reqs.BlockingCategories[0]
	for _, e := range reqs.Entries {
		if e.CategoryKey == last {
			return map[string]float64{last: e.Progress}
		}
	}
	return nil
}

func scoreCategory(in scoringInput) CategoryScore {
	result := CategoryScore{
		CategoryKey:      in.category.Key,
		NormalizedWeight: in.normalizedWeight,
	}

	var score float64
	factors := []func(scoringInput) (float64, *ScoreReason){
		scoreWeight,
		scoreDeficit,
		scoreAssessmentGap,
		scoreNegativeDelta,
		scoreRequirementPressure,
	}
	for _, f := range factors {
		delta, reason := f(in)
		score += delta
		if reason != nil {
			result.Reasons = append(result.Reasons, *reason)
		}
	}
	result.Score = score
	return result
}

func scoreWeight(in scoringInput) (float64, *ScoreReason) {
	delta := in.normalizedWeight * in.weights.Weight
	return delta, &ScoreReason{
		Code:    ReasonWeight,
		Message: fmt.Sprintf("%.0f%% of the weight plan", in.normalizedWeight*100),
		Delta:   delta,
	}
}

func scoreDeficit(in scoringInput) (float64, *ScoreReason) {
	if in.deficit <= 0 {
		return 0, nil
	}
	delta := in.deficit * in.weights.Deficit
	return delta, &ScoreReason{
		Code:    ReasonRatingDeficit,
		Message: fmt.Sprintf("%.0f rating points below target", in.rawDeficit),
		Delta:   delta,
	}
}

func scoreAssessmentGap(in scoringInput) (float64, *ScoreReason) {
	if in.outcome == nil {
		return 0, nil
	}
	gap := clampFloat(1-in.outcome.AverageScore, 0, 1)
	if gap == 0 {
		return 0, nil
	}
	delta := gap * in.weights.AssessmentGap
	return delta, &ScoreReason{
		Code:    ReasonAssessmentGap,
		Message: fmt.Sprintf("assessments average %.0f%%", in.outcome.AverageScore*100),
		Delta:   delta,
	}
}

func scoreNegativeDelta(in scoringInput) (float64, *ScoreReason) {
	if in.outcome == nil || in.outcome.RatingDelta >= 0 {
		return 0, nil
	}
	norm := math.Min(1, -in.outcome.RatingDelta/in.deltaScale)
	delta := norm * in.weights.NegativeDelta
	return delta, &ScoreReason{
		Code:    ReasonNegativeDelta,
		Message: fmt.Sprintf("rating dropped %.0f recently", -in.outcome.RatingDelta),
		Delta:   delta,
	}
}

func scoreRequirementPressure(in scoringInput) (float64, *ScoreReason) {
	if in.pressure <= 0 {
		return 0, nil
	}
	delta := in.pressure * in.weights.RequirementPressure
	return delta, &ScoreReason{
		Code:    ReasonRequirementPressure,
		Message: "last blocker of the next milestone",
		Delta:   delta,
	}
}

func sortScores(scores []CategoryScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].CategoryKey < scores[j].CategoryKey
	})
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

package service

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/scheduler"
)

// idSource hands out ULIDs that sort in generation order, even for runs
// sharing a millisecond.
type idSource struct {
	mu      sync.Mutex
	entropy io.Reader
}

func newIDSource() *idSource {
	return &idSource{entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)}
}

func (g *idSource) next(at time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), g.entropy).String()
}

func defaultHeadline(trigger domain.RegenerationTrigger) string {
	switch trigger {
	case domain.TriggerInitial:
		return "First schedule generated"
	case domain.TriggerAdjustment:
		return "Schedule adjusted"
	case domain.TriggerCompletion:
		return "Progress recorded"
	default:
		return "Schedule refreshed"
	}
}

func buildRationale(id string, snap *domain.SignalSnapshot, res *scheduler.PlanResult, warnings []domain.Warning, ev regenEvent) domain.ScheduleRationaleEntry {
	headline := ev.headline
	if headline == "" {
		headline = defaultHeadline(ev.trigger)
	}

	notes := append([]string(nil), ev.notes...)
	notes = append(notes, res.Notes...)
	for _, w := range warnings {
		notes = append(notes, fmt.Sprintf("%s: %s", w.Code, w.Message))
	}

	return domain.ScheduleRationaleEntry{
		ID:              id,
		Headline:        headline,
		Summary:         summarizePlan(snap, res),
		AdjustmentNotes: notes,
		GeneratedAt:     ev.now,
	}
}

func summarizePlan(snap *domain.SignalSnapshot, res *scheduler.PlanResult) string {
	cat, ok := snap.Categories[res.Anchor]
	if !ok {
		return fmt.Sprintf("No active categories yet; %d starter items over %d days.", len(res.Items), res.TimeHorizonDays)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s leads this plan with %d items over %d days.", cat.DisplayLabel(), len(res.Items), res.TimeHorizonDays)
	if ms, ok := res.Milestone(); ok && ms.Milestone != nil {
		fmt.Fprintf(&b, " Milestone %q lands on day %d.", ms.Title, ms.DayOffset+1)
		if blocking := ms.Milestone.Requirements.BlockingCategories; len(blocking) > 0 {
			fmt.Fprintf(&b, " It still waits on %s.", strings.Join(blocking, ", "))
		}
	}
	return b.String()
}

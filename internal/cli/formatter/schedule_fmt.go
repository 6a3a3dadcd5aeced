package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// FormatSchedule renders a whole schedule: the day-by-day plan, the
// milestone and its requirements, pacing, warnings and the latest rationale.
func FormatSchedule(s *domain.Schedule) string {
	var b strings.Builder

	b.WriteString(scheduleTitle(s.LearnerID, s.Version, s.TimeHorizonDays, s.IsStale))
	b.WriteString("\n\n")
	writeDays(&b, s.Items, s.GeneratedAt)

	for _, it := range s.Items {
		if it.Kind == domain.KindMilestone && it.Milestone != nil {
			b.WriteString("\n")
			b.WriteString(formatMilestone(it))
			break
		}
	}

	if len(s.CategoryAllocations) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Pacing"))
		b.WriteString("\n")
		b.WriteString(formatAllocations(s.CategoryAllocations))
	}

	writeWarnings(&b, s.Warnings)

	if n := len(s.RationaleHistory); n > 0 {
		latest := s.RationaleHistory[n-1]
		b.WriteString("\n")
		b.WriteString(Header("Why this plan"))
		b.WriteString("\n")
		b.WriteString(Bold(latest.Headline) + "\n")
		b.WriteString(StyleFg.Render(latest.Summary) + "\n")
		for _, note := range latest.AdjustmentNotes {
			b.WriteString(Dim("  · "+note) + "\n")
		}
	}
	return b.String()
}

// FormatSlice renders one page of a schedule and the command for the next.
func FormatSlice(s *domain.ScheduleSlice) string {
	var b strings.Builder

	b.WriteString(scheduleTitle(s.LearnerID, s.Version, s.TimeHorizonDays, s.IsStale))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("days %d–%d", s.Slice.StartDay+1, s.Slice.StartDay+s.Slice.DaySpan)))
	b.WriteString("\n\n")

	if len(s.Items) == 0 {
		b.WriteString(Dim("Nothing scheduled in this range.") + "\n")
	} else {
		writeDays(&b, s.Items, s.GeneratedAt)
	}
	writeWarnings(&b, s.Warnings)

	if s.Slice.HasMore {
		b.WriteString("\n")
		b.WriteString(Dim("more: ") + StyleBlue.Render("--page-token "+s.Slice.PageToken) + "\n")
	}
	return b.String()
}

func FormatImport(res *app.ImportResult) string {
	lines := []string{
		fmt.Sprintf("%s %s", Dim("Learner:"), Bold(res.Learner.ID)),
		fmt.Sprintf("%s %d", Dim("Revision:"), res.Learner.Revision),
		fmt.Sprintf("%s %d categories, %d modules", Dim("Library:"), res.CategoryCount, res.ModuleCount),
		fmt.Sprintf("%s %d outcomes, %d milestone records", Dim("History:"), res.OutcomeCount, res.MilestoneCount),
	}
	return RenderBox("Imported", strings.Join(lines, "\n")) + "\n"
}

func scheduleTitle(learnerID string, version uint64, horizon int, stale bool) string {
	title := fmt.Sprintf("%s  %s",
		StyleHeader.Render("SCHEDULE"),
		Dim(fmt.Sprintf("learner %s · v%d · %d days", learnerID, version, horizon)))
	if stale {
		title += "  " + StyleYellow.Render("▲ STALE")
	}
	return title
}

func writeDays(b *strings.Builder, items []domain.WorkItem, generatedAt time.Time) {
	day := -1
	var rows [][]string
	flush := func() {
		if len(rows) > 0 {
			b.WriteString(RenderTable([]string{"KIND", "ITEM", "CATEGORY", "EFFORT", "KEY"}, rows))
			b.WriteString("\n")
			rows = nil
		}
	}
	for _, it := range items {
		if it.DayOffset != day {
			flush()
			day = it.DayOffset
			b.WriteString(Bold(DayLabel(generatedAt, day)) + "  " + Dim(FormatMinutes(dayMinutes(items, day))) + "\n")
		}
		title := StyleFg.Render(it.Title)
		if it.UserAdjusted {
			title += " " + StyleYellow.Render("(moved)")
		}
		rows = append(rows, []string{
			KindBadge(it.Kind),
			title,
			StylePurple.Render(it.CategoryKey),
			EffortColor(it.EffortLevel).Render(FormatMinutes(it.EffortMinutes)),
			Dim(it.Key),
		})
	}
	flush()
}

func dayMinutes(items []domain.WorkItem, day int) int {
	total := 0
	for _, it := range items {
		if it.DayOffset == day {
			total += it.EffortMinutes
		}
	}
	return total
}

func formatMilestone(it domain.WorkItem) string {
	var b strings.Builder
	brief := it.Milestone.Brief
	b.WriteString(Header("Milestone"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s\n", Bold(it.Title), Dim(fmt.Sprintf("day %d · %s brief", it.DayOffset+1, brief.Source))))
	if brief.Summary != "" {
		b.WriteString(StyleFg.Render(brief.Summary) + "\n")
	}
	for _, d := range brief.Deliverables {
		b.WriteString(Dim("  ▸ ") + d + "\n")
	}

	reqs := it.Milestone.Requirements
	if len(reqs.Entries) > 0 {
		b.WriteString("\n")
		rows := make([][]string, 0, len(reqs.Entries))
		for _, e := range reqs.Entries {
			state := StyleGreen.Render("✔ met")
			if !e.Satisfied {
				state = StyleYellow.Render("… blocking")
			}
			rows = append(rows, []string{
				StylePurple.Render(e.CategoryKey),
				fmt.Sprintf("%.0f / %.0f", e.CurrentRating, e.TargetRating),
				RenderProgress(e.Progress, 12),
				state,
			})
		}
		b.WriteString(RenderTable([]string{"CATEGORY", "RATING", "PROGRESS", ""}, rows))
	}
	return b.String()
}

func formatAllocations(allocs []domain.CategoryPacingAllocation) string {
	rows := make([][]string, 0, len(allocs))
	for _, a := range allocs {
		rows = append(rows, []string{
			StylePurple.Render(a.CategoryKey),
			FormatMinutes(a.PlannedMinutes),
			fmt.Sprintf("%.0f%%", a.TargetSharePct),
			fmt.Sprintf("%.0f%%", a.ActualSharePct),
			fmt.Sprintf("%d (max %s)", a.DeferralCount, FormatShift(a.MaxDeferralDays)),
			PressureIndicator(a.DeferralPressure),
		})
	}
	return RenderTable([]string{"CATEGORY", "PLANNED", "TARGET", "ACTUAL", "DEFERRALS", "PRESSURE"}, rows)
}

func writeWarnings(b *strings.Builder, warnings []domain.Warning) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("\n")
	for _, w := range warnings {
		b.WriteString(StyleYellow.Render("▲ "+string(w.Code)) + " " + Dim(w.Message) + "\n")
	}
}

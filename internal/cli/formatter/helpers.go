package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		content = StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content
	}
	return boxStyle.Render(content)
}

// DayLabel names a schedule day relative to the generation date, e.g.
// "Day 3 · Mon Mar 17".
func DayLabel(generatedAt time.Time, offset int) string {
	date := generatedAt.AddDate(0, 0, offset)
	switch offset {
	case 0:
		return fmt.Sprintf("Today · %s", date.Format("Mon Jan 2"))
	case 1:
		return fmt.Sprintf("Tomorrow · %s", date.Format("Mon Jan 2"))
	default:
		return fmt.Sprintf("Day %d · %s", offset+1, date.Format("Mon Jan 2"))
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

func FormatShift(days int) string {
	if days > 0 {
		return fmt.Sprintf("+%dd", days)
	}
	return fmt.Sprintf("%dd", days)
}

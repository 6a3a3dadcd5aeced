package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/cli/formatter"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

func arcadiaHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// adjustFields holds the form-bound values of an interactive adjustment.
type adjustFields struct {
	itemKey string
	days    string
	reason  string
}

func (f adjustFields) request(learnerID string) (app.AdjustRequest, error) {
	days, err := strconv.Atoi(strings.TrimSpace(f.days))
	if err != nil {
		return app.AdjustRequest{}, fmt.Errorf("days: %q is not a whole number", f.days)
	}
	return app.AdjustRequest{
		LearnerID: learnerID,
		ItemKey:   f.itemKey,
		DayShift:  days,
		Reason:    strings.TrimSpace(f.reason),
	}, nil
}

func validateDayShift(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number of days")
	}
	if n == 0 {
		return errors.New("enter a non-zero number of days")
	}
	if n > app.MaxDayShift || n < -app.MaxDayShift {
		return fmt.Errorf("move at most %d days either way", app.MaxDayShift)
	}
	return nil
}

// adjustItemOptions lists the schedule's items in day order, keyed by their
// stable item key.
func adjustItemOptions(s *domain.Schedule) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(s.Items))
	for _, it := range s.Items {
		label := fmt.Sprintf("day %-3d %-10s %s", it.DayOffset+1, it.Kind, it.Title)
		if it.UserAdjusted {
			label += " (moved)"
		}
		opts = append(opts, huh.NewOption(label, it.Key))
	}
	return opts
}

// newAdjustForm asks for the item (unless one was given), the shift and the
// reason.
func newAdjustForm(s *domain.Schedule, f *adjustFields) *huh.Form {
	var groups []*huh.Group
	if f.itemKey == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Item to move").
				Options(adjustItemOptions(s)...).
				Value(&f.itemKey),
		))
	}
	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Days (negative pulls the item earlier)").
			Placeholder("2").
			Value(&f.days).
			Validate(validateDayShift),
		huh.NewInput().
			Title("Reason (optional)").
			Value(&f.reason),
	))
	return huh.NewForm(groups...).WithTheme(arcadiaHuhTheme()).WithShowHelp(false)
}

package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  lipgloss.Style
	StyleYellow lipgloss.Style
	StyleRed    lipgloss.Style
	StyleBlue   lipgloss.Style
	StylePurple lipgloss.Style
	StyleDim    lipgloss.Style
	StyleFg     lipgloss.Style
	StyleHeader lipgloss.Style
	StyleBold   lipgloss.Style
)

func init() {
	UseColor(true)
}

// UseColor switches every style between the palette and plain text. Plain
// output keeps bold headers so piped output stays readable.
func UseColor(on bool) {
	fg := func(c lipgloss.Color) lipgloss.Style {
		if !on {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(c)
	}
	StyleGreen = fg(ColorGreen)
	StyleYellow = fg(ColorYellow)
	StyleRed = fg(ColorRed)
	StyleBlue = fg(ColorBlue)
	StylePurple = fg(ColorPurple)
	StyleDim = fg(ColorDim)
	StyleFg = fg(ColorFg)
	StyleHeader = fg(ColorHeader).Bold(on)
	StyleBold = fg(ColorFg).Bold(on)
}

func EffortColor(level domain.EffortLevel) lipgloss.Style {
	switch level {
	case domain.EffortFocus:
		return StyleRed
	case domain.EffortModerate:
		return StyleYellow
	case domain.EffortLight:
		return StyleGreen
	default:
		return StyleDim
	}
}

// PressureIndicator returns a colored deferral pressure badge such as "● HIGH".
func PressureIndicator(p domain.DeferralPressure) string {
	switch p {
	case domain.PressureHigh:
		return StyleRed.Render("● HIGH")
	case domain.PressureMedium:
		return StyleYellow.Render("● MEDIUM")
	case domain.PressureLow:
		return StyleGreen.Render("● LOW")
	default:
		return StyleDim.Render("● --")
	}
}

// KindBadge labels an item kind with a fixed-width glyph.
func KindBadge(kind domain.ItemKind) string {
	switch kind {
	case domain.KindLesson:
		return StyleBlue.Render("◆ lesson")
	case domain.KindQuiz:
		return StylePurple.Render("? quiz")
	case domain.KindMilestone:
		return StyleHeader.Render("★ milestone")
	case domain.KindRefresher:
		return StyleDim.Render("↺ refresher")
	default:
		return StyleDim.Render(string(kind))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

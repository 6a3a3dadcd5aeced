package cli

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/cli/formatter"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

// helpHeight is the line the key hints take below the viewport.
const helpHeight = 2

type pagerKeyMap struct {
	Next key.Binding
	Prev key.Binding
	Quit key.Binding
}

func (k pagerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Quit}
}

func (k pagerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultPagerKeys() pagerKeyMap {
	return pagerKeyMap{
		Next: key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next days")),
		Prev: key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "previous")),
		Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// sliceLoadedMsg carries one page fetched from the slice use case.
type sliceLoadedMsg struct {
	slice *domain.ScheduleSlice
	err   error
}

// slicePager walks a schedule one slice at a time. Forward pages follow the
// page token of the current slice; going back pops the pages already seen.
type slicePager struct {
	ctx      context.Context
	plan     app.SliceUseCase
	first    app.SliceRequest
	pages    []*domain.ScheduleSlice
	loading  bool
	err      error
	keys     pagerKeyMap
	help     help.Model
	viewport viewport.Model
}

func newSlicePager(ctx context.Context, plan app.SliceUseCase, first app.SliceRequest) *slicePager {
	return &slicePager{
		ctx:      ctx,
		plan:     plan,
		first:    first,
		loading:  true,
		keys:     defaultPagerKeys(),
		help:     help.New(),
		viewport: viewport.New(100, 24),
	}
}

func (p *slicePager) Init() tea.Cmd {
	return p.load(p.first)
}

func (p *slicePager) load(req app.SliceRequest) tea.Cmd {
	ctx, plan := p.ctx, p.plan
	return func() tea.Msg {
		slice, err := plan.Slice(ctx, req)
		return sliceLoadedMsg{slice: slice, err: err}
	}
}

func (p *slicePager) current() *domain.ScheduleSlice {
	if len(p.pages) == 0 {
		return nil
	}
	return p.pages[len(p.pages)-1]
}

func (p *slicePager) show() {
	p.viewport.SetContent(formatter.FormatSlice(p.current()))
	p.viewport.GotoTop()
}

func (p *slicePager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sliceLoadedMsg:
		p.loading = false
		p.err = msg.err
		if msg.err != nil {
			if len(p.pages) == 0 {
				return p, tea.Quit
			}
			return p, nil
		}
		p.pages = append(p.pages, msg.slice)
		p.show()
		return p, nil

	case tea.WindowSizeMsg:
		p.viewport.Width = msg.Width
		p.viewport.Height = max(1, msg.Height-helpHeight)
		p.help.Width = msg.Width
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return p, tea.Quit
		case key.Matches(msg, p.keys.Next):
			cur := p.current()
			if p.loading || cur == nil || cur.Slice.PageToken == "" {
				return p, nil
			}
			p.loading = true
			req := p.first
			req.PageToken = cur.Slice.PageToken
			return p, p.load(req)
		case key.Matches(msg, p.keys.Prev):
			if !p.loading && len(p.pages) > 1 {
				p.pages = p.pages[:len(p.pages)-1]
				p.err = nil
				p.show()
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *slicePager) View() string {
	if len(p.pages) == 0 {
		if p.err != nil {
			return formatter.StyleRed.Render(p.err.Error()) + "\n"
		}
		return formatter.Dim("Loading…") + "\n"
	}
	footer := p.help.View(p.keys)
	if p.err != nil {
		footer = formatter.StyleRed.Render(p.err.Error()) + "  " + footer
	}
	return p.viewport.View() + "\n" + footer
}

// failure is the error the command exits with: only a failed first page
// counts, later ones were shown inline.
func (p *slicePager) failure() error {
	if len(p.pages) == 0 {
		return p.err
	}
	return nil
}

func runSlicePager(cmd *cobra.Command, plan app.SliceUseCase, req app.SliceRequest) error {
	pager := newSlicePager(cmd.Context(), plan, req)
	final, err := tea.NewProgram(pager,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	).Run()
	if err != nil {
		return err
	}
	return final.(*slicePager).failure()
}

package intelligence

import (
	"context"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/scheduler"
)

// BriefAuthor writes the milestone brief for the anchor category of a run.
type BriefAuthor interface {
	Author(ctx context.Context, snap *domain.SignalSnapshot, anchor string, ranking []scheduler.CategoryScore) (domain.MilestoneBrief, error)
}

// TemplateAuthor is the deterministic author. It never fails.
type TemplateAuthor struct{}

func (TemplateAuthor) Author(_ context.Context, snap *domain.SignalSnapshot, anchor string, ranking []scheduler.CategoryScore) (domain.MilestoneBrief, error) {
	return scheduler.TemplateBrief(snap, anchor, ranking), nil
}

// AuthorFunc adapts a plain function to BriefAuthor.
type AuthorFunc func(ctx context.Context, snap *domain.SignalSnapshot, anchor string, ranking []scheduler.CategoryScore) (domain.MilestoneBrief, error)

func (f AuthorFunc) Author(ctx context.Context, snap *domain.SignalSnapshot, anchor string, ranking []scheduler.CategoryScore) (domain.MilestoneBrief, error) {
	return f(ctx, snap, anchor, ranking)
}

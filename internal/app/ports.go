package app

import (
	"context"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/importer"
)

type GenerateUseCase interface {
	Generate(ctx context.Context, req GenerateRequest) (*domain.Schedule, error)
}

type SliceUseCase interface {
	Slice(ctx context.Context, req SliceRequest) (*domain.ScheduleSlice, error)
}

type AdjustUseCase interface {
	Adjust(ctx context.Context, req AdjustRequest) (*domain.Schedule, error)
}

type CompleteItemUseCase interface {
	CompleteItem(ctx context.Context, req CompleteRequest) (*domain.Schedule, error)
}

// PlanUseCase is the full schedule surface shared by the CLI and HTTP API.
type PlanUseCase interface {
	GenerateUseCase
	SliceUseCase
	AdjustUseCase
	CompleteItemUseCase
}

type ImportResult struct {
	Learner        *domain.Learner
	CategoryCount  int
	ModuleCount    int
	OutcomeCount   int
	MilestoneCount int
}

type ImportLearnerUseCase interface {
	ImportLearner(ctx context.Context, filePath string) (*ImportResult, error)
	ImportLearnerFromSchema(ctx context.Context, schema *importer.LearnerSchema) (*ImportResult, error)
}

package service

import (
	"context"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/repository"
)

type PlanService interface {
	app.PlanUseCase
}

type ImportService interface {
	app.ImportLearnerUseCase
}

// SnapshotSource supplies the immutable input of one planning run.
type SnapshotSource interface {
	Snapshot(ctx context.Context, learnerID string) (*domain.SignalSnapshot, error)
}

type uowSnapshotSource struct {
	uow db.UnitOfWork
}

// NewSnapshotSource reads snapshots from the profile store inside a single
// transaction, so one run never mixes two revisions.
func NewSnapshotSource(uow db.UnitOfWork) SnapshotSource {
	return &uowSnapshotSource{uow: uow}
}

func (s *uowSnapshotSource) Snapshot(ctx context.Context, learnerID string) (*domain.SignalSnapshot, error) {
	var snap *domain.SignalSnapshot
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		snap, err = repository.NewSQLiteSignalStore(tx).Snapshot(ctx, learnerID)
		return err
	})
	return snap, err
}

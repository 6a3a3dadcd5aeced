package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
)

// FailOnNthExecUoW fails the FailOn-th write of a transaction with Err so
// tests can check that a multi-write step rolls back as a whole. Writes are
// counted from 1 per transaction; reads are never counted.
//
// A planning run opens several transactions (the write itself, the snapshot
// read, the rationale append). FailInTx picks which one to break, counted
// from 1; zero breaks every transaction that reaches FailOn writes.
type FailOnNthExecUoW struct {
	DB       *sql.DB
	FailOn   int32
	FailInTx int32
	Err      error

	txCount atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	n := u.txCount.Add(1)

	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	var conn db.DBTX = tx
	if u.FailInTx == 0 || u.FailInTx == n {
		conn = &execFaultInjector{DBTX: tx, failOn: u.FailOn, err: u.Err}
	}
	if err := fn(ctx, conn); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Transactions reports how many transactions were opened so far.
func (u *FailOnNthExecUoW) Transactions() int {
	return int(u.txCount.Load())
}

type execFaultInjector struct {
	db.DBTX
	writes atomic.Int32
	failOn int32
	err    error
}

func (f *execFaultInjector) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.writes.Add(1) == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

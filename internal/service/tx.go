// internal/service/tx.go
package service

import (
	"context"
	"fmt"

	"fintrack/internal/repository"
	"fintrack/pkg/db"
)

// TxRunner opens, commits and rolls back units of work. The begin, commit and
// rollback functions are injected so tests can observe them.
type TxRunner struct {
	dbBeginner db.DBTxBeginner
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewTxRunner creates a TxRunner.
func NewTxRunner(dbBeginner db.DBTxBeginner, beginTx db.BeginTxFunc, commitTx db.CommitTxFunc, rollbackTx db.RollbackTxFunc) *TxRunner {
	return &TxRunner{
		dbBeginner: dbBeginner,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// WithTx runs fn inside one transaction. Any error from fn, or from commit,
// leaves the transaction rolled back and is returned unchanged apart from
// the op prefix on begin/commit failures.
func (r *TxRunner) WithTx(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := r.beginTx(ctx, r.dbBeginner)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer r.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := r.commitTx(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}

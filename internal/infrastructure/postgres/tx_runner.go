package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// NewRepos construye el conjunto de repositorios sobre un Querier (pool o tx).
func NewRepos(q Querier) ports.Repos {
	return ports.Repos{
		Transactions: NewTransactionRepository(q),
		Lots:         NewStockLotRepository(q),
		Orders:       NewOrderRepository(q),
		Requisitions: NewRequisitionRepository(q),
		Approvals:    NewApprovalRepository(q),
		Periods:      NewPeriodRepository(q),
		Locations:    NewLocationRepository(q),
		Items:        NewItemRepository(q),
		NCRs:         NewNCRRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con los repos atados a la tx y hace
// Commit o Rollback según el resultado.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/resto-inventario/internal/application/batch"
	"github.com/tu-usuario/resto-inventario/internal/application/ledger"
	"github.com/tu-usuario/resto-inventario/internal/application/order"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner, order.TxRunner and batch.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ order.TxRunner = (*TxRunner)(nil)
var _ batch.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del ledger atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	itemRepo repository.ItemRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movRepo := NewStockMovementRepository(tx)
	itemRepo := NewItemRepository(tx)

	if err := fn(movRepo, itemRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunOrder inicia una transacción con los repos que necesita el motor de
// órdenes (creación, transición de estado y reversa de stock).
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	itemRepo repository.ItemRepository,
	movRepo repository.StockMovementRepository,
	discRepo repository.DiscrepancyRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderRepo := NewOrderRepository(tx)
	itemRepo := NewItemRepository(tx)
	movRepo := NewStockMovementRepository(tx)
	discRepo := NewDiscrepancyRepository(tx)

	if err := fn(orderRepo, itemRepo, movRepo, discRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunBatch inicia una transacción con el repo de lotes atado a la tx.
func (r *TxRunner) RunBatch(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batchRepo := NewBatchRepository(tx)

	if err := fn(batchRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

package order

import (
	"context"
	"time"

	"github.com/tu-usuario/resto-inventario/internal/application/ledger"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios que necesita el motor de órdenes. Efecto de stock y
// persistencia de la orden son una sola unidad lógica: o ambos o ninguno.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.StockMovementRepository,
		discRepo repository.DiscrepancyRepository,
	) error) error
}

// StockApplier aplica un movimiento de stock sobre un item ya bloqueado,
// dentro de la transacción del caller. Lo implementa el Stock Ledger: el
// motor de órdenes nunca escribe Item.CurrentStock por su cuenta.
type StockApplier interface {
	ApplyInTx(
		movRepo repository.StockMovementRepository,
		itemRepo repository.ItemRepository,
		item *entity.Item,
		input ledger.MovementInput,
		now time.Time,
	) (*entity.StockMovement, error)
}

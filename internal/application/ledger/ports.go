package ledger

import (
	"context"

	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el movimiento y la
// actualización de stock del item se persistan juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		itemRepo repository.ItemRepository,
	) error) error
}

package batch

import (
	"context"

	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con el
// repositorio de lotes atado a esa tx. Serializa los ajustes por lote igual
// que el ledger serializa por item.
type TxRunner interface {
	RunBatch(ctx context.Context, fn func(batchRepo repository.BatchRepository) error) error
}

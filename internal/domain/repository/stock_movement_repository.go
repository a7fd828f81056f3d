package repository

import (
	"time"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el ledger de
// movimientos. Solo inserta y lee: los movimientos son inmutables.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(reference string) ([]*entity.StockMovement, error)
}

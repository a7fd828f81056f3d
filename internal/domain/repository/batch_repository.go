package repository

import "github.com/tu-usuario/resto-inventario/internal/domain/entity"

// BatchRepository define el puerto de persistencia para ProductBatch (DIP).
type BatchRepository interface {
	Create(batch *entity.ProductBatch) error
	GetByID(id string) (*entity.ProductBatch, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) para
	// serializar los ajustes por lote.
	GetForUpdate(id string) (*entity.ProductBatch, error)
	// Update persiste currentQuantity, notes y updatedAt.
	Update(batch *entity.ProductBatch) error
	// ListByItem devuelve los lotes en orden FEFO: vencimiento ascendente,
	// lotes sin vencimiento al final. itemID vacío lista todo el tenant.
	ListByItem(scope entity.TenantScope, itemID string, limit, offset int) ([]*entity.ProductBatch, error)
	// CountNonEmptyByItem cuenta lotes con cantidad restante > 0
	// (guard de borrado del catálogo).
	CountNonEmptyByItem(itemID string) (int, error)
}

package repository

import "github.com/tu-usuario/resto-inventario/internal/domain/entity"

// ItemFilter filtros para listar items del catálogo.
type ItemFilter struct {
	Scope       entity.TenantScope
	StockStatus string // in-stock, low-stock, out-of-stock (vacío = todos)
	Active      *bool
	Limit       int
	Offset      int
}

// ItemRepository define el puerto de persistencia para Item (DIP).
// UpdateStock es la única vía de escritura de CurrentStock y pertenece en
// exclusiva al Stock Ledger.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetBySKU(scope entity.TenantScope, sku string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del item (SELECT FOR UPDATE) para
	// serializar las mutaciones de stock por item.
	GetForUpdate(id string) (*entity.Item, error)
	UpdateStock(itemID string, currentStock int64) error
	Update(item *entity.Item) error
	List(filter ItemFilter) ([]*entity.Item, int, error)
	Delete(id string) error
}

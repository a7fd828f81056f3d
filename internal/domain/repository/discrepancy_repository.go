package repository

import "github.com/tu-usuario/resto-inventario/internal/domain/entity"

// DiscrepancyFilter filtros para listar discrepancias de recepción.
type DiscrepancyFilter struct {
	Scope           entity.TenantScope
	Status          string
	PurchaseOrderID string
	Limit           int
	Offset          int
}

// DiscrepancyRepository define el puerto de persistencia para
// ReceivingDiscrepancy (DIP).
type DiscrepancyRepository interface {
	Create(d *entity.ReceivingDiscrepancy) error
	GetByID(id string) (*entity.ReceivingDiscrepancy, error)
	// Update persiste status, resolution y los campos de resolución.
	Update(d *entity.ReceivingDiscrepancy) error
	// List devuelve las discrepancias ordenadas por fecha de reporte
	// descendente (más recientes primero).
	List(filter DiscrepancyFilter) ([]*entity.ReceivingDiscrepancy, int, error)
}

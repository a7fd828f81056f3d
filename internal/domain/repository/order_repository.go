package repository

import (
	"time"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// OrderFilter filtros para listar órdenes.
type OrderFilter struct {
	Scope    entity.TenantScope
	Type     string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// OrderRepository define el puerto de persistencia para Order (DIP).
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila de la orden para serializar las
	// transiciones de estado.
	GetForUpdate(id string) (*entity.Order, error)
	// UpdateStatus persiste status, actualDeliveryDate y updatedAt.
	// Las líneas y montos de una orden son inmutables tras la creación.
	UpdateStatus(order *entity.Order) error
	Delete(id string) error
	List(filter OrderFilter) ([]*entity.Order, int, error)
	// CountOpenByItem cuenta órdenes no terminales que referencian un item
	// (guard de borrado del catálogo).
	CountOpenByItem(itemID string) (int, error)
}

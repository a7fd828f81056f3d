package repository

import (
	"time"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// AuditFilter filtros para consultar el audit trail.
type AuditFilter struct {
	Scope      entity.TenantScope
	EntityType string
	EntityID   string
	UserID     string
	Action     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AuditLogRepository define el puerto de persistencia del audit trail.
// Append-only: no hay Update ni Delete.
type AuditLogRepository interface {
	Create(entry *entity.AuditLogEntry) error
	// List devuelve entradas ordenadas por timestamp descendente.
	List(filter AuditFilter) ([]*entity.AuditLogEntry, int, error)
}

package batch

import (
	"time"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// Estados derivados de un lote (no se persisten).
const (
	StatusActive       = "active"
	StatusExpiringSoon = "expiring-soon"
	StatusExpired      = "expired"
	StatusDepleted     = "depleted"
)

// ExpiringSoonWindow es el umbral para marcar un lote como próximo a vencer.
const ExpiringSoonWindow = 30 * 24 * time.Hour

// Status deriva el estado de un lote en un instante dado (servicio de dominio).
// Precedencia: agotado > vencido > próximo a vencer > activo.
func Status(b *entity.ProductBatch, now time.Time) string {
	if b.CurrentQuantity <= 0 {
		return StatusDepleted
	}
	if b.ExpirationDate != nil {
		if b.ExpirationDate.Before(now) {
			return StatusExpired
		}
		if b.ExpirationDate.Sub(now) <= ExpiringSoonWindow {
			return StatusExpiringSoon
		}
	}
	return StatusActive
}

// Less es el comparador FEFO: vencimiento ascendente, lotes sin fecha de
// vencimiento al final. Es la base de la política first-expiry-first-out
// que esperan los consumidores de ListBatches.
func Less(a, b *entity.ProductBatch) bool {
	if a.ExpirationDate == nil {
		return false
	}
	if b.ExpirationDate == nil {
		return true
	}
	return a.ExpirationDate.Before(*b.ExpirationDate)
}

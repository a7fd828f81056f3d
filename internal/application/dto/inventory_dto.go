package dto

import (
	"time"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ItemID    string `json:"item_id" validate:"required"`
	Type      string `json:"type" validate:"required"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason"`
	Reference string `json:"reference,omitempty"`
	BatchID   string `json:"batch_id,omitempty"`
}

// AdjustStockRequest body para POST /api/inventory/items/:id/adjust.
// Delta con signo: positivo registra una entrada, negativo una salida.
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" validate:"required"`
	Reason string `json:"reason"`
}

// MovementResponse salida de un movimiento de stock.
type MovementResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
	Reason    string    `json:"reason,omitempty"`
	Reference string    `json:"reference,omitempty"`
	BatchID   string    `json:"batch_id,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// MovementListResponse lista de movimientos de un item.
type MovementListResponse struct {
	Movements []MovementResponse `json:"movements"`
	Page      PageResponse       `json:"page"`
}

// ToMovementResponse mapea la entidad a su DTO de salida.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:        m.ID,
		ItemID:    m.ItemID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Reason:    m.Reason,
		Reference: m.Reference,
		BatchID:   m.BatchID,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

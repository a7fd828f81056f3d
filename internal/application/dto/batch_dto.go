package dto

import (
	"time"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// CreateBatchRequest body para POST /api/batches.
type CreateBatchRequest struct {
	ItemID           string     `json:"item_id" validate:"required"`
	BatchNumber      string     `json:"batch_number" validate:"required"`
	LotNumber        string     `json:"lot_number,omitempty"`
	ReceivedQuantity int64      `json:"received_quantity" validate:"required,min=1"`
	ExpirationDate   *time.Time `json:"expiration_date,omitempty"`
	ManufactureDate  *time.Time `json:"manufacture_date,omitempty"`
	SupplierBatchID  string     `json:"supplier_batch_id,omitempty"`
}

// AdjustBatchRequest body para POST /api/batches/:id/adjust.
type AdjustBatchRequest struct {
	Delta  int64  `json:"delta" validate:"required"`
	Reason string `json:"reason"`
}

// BatchNoteResponse entrada del log de ajustes de un lote.
type BatchNoteResponse struct {
	At     time.Time `json:"at"`
	Reason string    `json:"reason"`
	Delta  int64     `json:"delta"`
}

// BatchResponse salida de un lote, con su estado derivado.
type BatchResponse struct {
	ID               string              `json:"id"`
	ItemID           string              `json:"item_id"`
	BatchNumber      string              `json:"batch_number"`
	LotNumber        string              `json:"lot_number,omitempty"`
	ExpirationDate   *time.Time          `json:"expiration_date,omitempty"`
	ManufactureDate  *time.Time          `json:"manufacture_date,omitempty"`
	ReceivedQuantity int64               `json:"received_quantity"`
	CurrentQuantity  int64               `json:"current_quantity"`
	SupplierBatchID  string              `json:"supplier_batch_id,omitempty"`
	Status           string              `json:"status"`
	Notes            []BatchNoteResponse `json:"notes,omitempty"`
	Country          string              `json:"country"`
	Restaurant       string              `json:"restaurant"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// BatchListResponse lista de lotes en orden FEFO.
type BatchListResponse struct {
	Batches []BatchResponse `json:"batches"`
	Page    PageResponse    `json:"page"`
}

// ToBatchResponse mapea la entidad a su DTO de salida. El estado se
// calcula aparte porque depende del reloj.
func ToBatchResponse(b *entity.ProductBatch, status string) BatchResponse {
	notes := make([]BatchNoteResponse, 0, len(b.Notes))
	for _, n := range b.Notes {
		notes = append(notes, BatchNoteResponse{At: n.At, Reason: n.Reason, Delta: n.Delta})
	}
	return BatchResponse{
		ID:               b.ID,
		ItemID:           b.ItemID,
		BatchNumber:      b.BatchNumber,
		LotNumber:        b.LotNumber,
		ExpirationDate:   b.ExpirationDate,
		ManufactureDate:  b.ManufactureDate,
		ReceivedQuantity: b.ReceivedQuantity,
		CurrentQuantity:  b.CurrentQuantity,
		SupplierBatchID:  b.SupplierBatchID,
		Status:           status,
		Notes:            notes,
		Country:          b.Country,
		Restaurant:       b.Restaurant,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

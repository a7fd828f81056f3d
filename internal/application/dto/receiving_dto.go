package dto

import (
	"encoding/json"
	"time"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// ReportDiscrepancyRequest body para POST /api/receiving/discrepancies.
type ReportDiscrepancyRequest struct {
	PurchaseOrderID string          `json:"purchase_order_id" validate:"required"`
	ItemID          string          `json:"item_id" validate:"required"`
	Type            string          `json:"type" validate:"required"`
	ExpectedValue   json.RawMessage `json:"expected_value,omitempty"`
	ActualValue     json.RawMessage `json:"actual_value,omitempty"`
	Description     string          `json:"description"`
}

// ResolveDiscrepancyRequest body para POST /api/receiving/discrepancies/:id/resolve.
type ResolveDiscrepancyRequest struct {
	Resolution string `json:"resolution" validate:"required"`
}

// SetDiscrepancyStatusRequest body para PATCH /api/receiving/discrepancies/:id/status.
type SetDiscrepancyStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DiscrepancyResponse salida de una discrepancia de recepción.
type DiscrepancyResponse struct {
	ID              string          `json:"id"`
	PurchaseOrderID string          `json:"purchase_order_id"`
	ItemID          string          `json:"item_id"`
	Type            string          `json:"type"`
	ExpectedValue   json.RawMessage `json:"expected_value,omitempty"`
	ActualValue     json.RawMessage `json:"actual_value,omitempty"`
	Description     string          `json:"description,omitempty"`
	Status          string          `json:"status"`
	Resolution      string          `json:"resolution,omitempty"`
	ReportedBy      string          `json:"reported_by"`
	ReportedAt      time.Time       `json:"reported_at"`
	ResolvedBy      string          `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
	Country         string          `json:"country"`
	Restaurant      string          `json:"restaurant"`
}

// DiscrepancyListResponse lista paginada de discrepancias.
type DiscrepancyListResponse struct {
	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
	Page          PageResponse          `json:"page"`
}

// ToDiscrepancyResponse mapea la entidad a su DTO de salida.
func ToDiscrepancyResponse(d *entity.ReceivingDiscrepancy) DiscrepancyResponse {
	return DiscrepancyResponse{
		ID:              d.ID,
		PurchaseOrderID: d.PurchaseOrderID,
		ItemID:          d.ItemID,
		Type:            d.Type,
		ExpectedValue:   d.ExpectedValue,
		ActualValue:     d.ActualValue,
		Description:     d.Description,
		Status:          d.Status,
		Resolution:      d.Resolution,
		ReportedBy:      d.ReportedBy,
		ReportedAt:      d.ReportedAt,
		ResolvedBy:      d.ResolvedBy,
		ResolvedAt:      d.ResolvedAt,
		Country:         d.Country,
		Restaurant:      d.Restaurant,
	}
}

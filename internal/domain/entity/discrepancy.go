package entity

import (
	"encoding/json"
	"time"
)

// Tipos de discrepancia de recepción.
const (
	DiscrepancyTypeQuantity    = "quantity"
	DiscrepancyTypePrice       = "price"
	DiscrepancyTypeQuality     = "quality"
	DiscrepancyTypeMissingItem = "missing_item"
	DiscrepancyTypeExtraItem   = "extra_item"
)

// ValidDiscrepancyType valida el tipo de discrepancia.
func ValidDiscrepancyType(t string) bool {
	switch t {
	case DiscrepancyTypeQuantity, DiscrepancyTypePrice, DiscrepancyTypeQuality,
		DiscrepancyTypeMissingItem, DiscrepancyTypeExtraItem:
		return true
	}
	return false
}

// Estados de discrepancia. resolved y cancelled son terminales.
const (
	DiscrepancyStatusOpen          = "open"
	DiscrepancyStatusInvestigating = "investigating"
	DiscrepancyStatusResolved      = "resolved"
	DiscrepancyStatusCancelled     = "cancelled"
)

// ReceivingDiscrepancy registra una diferencia entre lo esperado y lo
// recibido en una orden de compra. No muta stock: alimenta el flujo humano
// de remediación.
// ExpectedValue/ActualValue son JSON libre porque la forma difiere por tipo.
type ReceivingDiscrepancy struct {
	ID              string
	PurchaseOrderID string
	ItemID          string
	Type            string
	ExpectedValue   json.RawMessage
	ActualValue     json.RawMessage
	Description     string
	Status          string
	Resolution      string
	ReportedBy      string
	ReportedAt      time.Time
	ResolvedBy      string
	ResolvedAt      *time.Time
	Country         string
	Restaurant      string
}

package dto

import (
	"encoding/json"
	"time"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// AuditLogResponse salida de una entrada de auditoría.
type AuditLogResponse struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	UserID     string          `json:"user_id"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	Country    string          `json:"country"`
	Restaurant string          `json:"restaurant"`
	Timestamp  time.Time       `json:"timestamp"`
}

// AuditLogListResponse lista paginada de auditoría.
type AuditLogListResponse struct {
	Entries []AuditLogResponse `json:"entries"`
	Page    PageResponse       `json:"page"`
}

// ToAuditLogResponse mapea la entidad a su DTO de salida.
func ToAuditLogResponse(e *entity.AuditLogEntry) AuditLogResponse {
	return AuditLogResponse{
		ID:         e.ID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		UserID:     e.UserID,
		Changes:    e.Changes,
		Country:    e.Country,
		Restaurant: e.Restaurant,
		Timestamp:  e.Timestamp,
	}
}

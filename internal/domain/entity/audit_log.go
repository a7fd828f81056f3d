package entity

import (
	"encoding/json"
	"time"
)

// AuditLogEntry registra quién hizo qué mutación y con qué antes/después.
// Append-only: el core nunca lo edita ni lo borra (la retención/exportación
// es responsabilidad de un colaborador externo).
type AuditLogEntry struct {
	ID         string
	Action     string // ej. "order.create", "stock.movement"
	EntityType string // ej. "Order", "Item"
	EntityID   string
	UserID     string
	Changes    json.RawMessage // payload estructurado antes/después o delta
	Country    string
	Restaurant string
	Timestamp  time.Time
}

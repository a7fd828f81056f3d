package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
	"github.com/tu-usuario/resto-inventario/pkg/logger"
)

// Recorder escribe el audit trail en modo best-effort: un fallo al persistir
// una entrada jamás falla ni revierte la operación de negocio que la originó.
type Recorder struct {
	repo repository.AuditLogRepository
	log  *logger.Logger
}

// NewRecorder construye el recorder.
func NewRecorder(repo repository.AuditLogRepository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Changes arma un payload antes/después para el campo Changes.
type Changes struct {
	Before any `json:"before,omitempty"`
	After  any `json:"after,omitempty"`
}

// Record registra una mutación. Fire-and-forget: los errores se loguean y se
// descartan, no se propagan al caller.
func (r *Recorder) Record(action, entityType, entityID, actor string, scope entity.TenantScope, changes any) {
	payload, err := json.Marshal(changes)
	if err != nil {
		r.log.Warn().Err(err).Str("action", action).Msg("audit: no se pudo serializar changes")
		payload = nil
	}
	entry := &entity.AuditLogEntry{
		ID:         uuid.New().String(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     actor,
		Changes:    payload,
		Country:    scope.Country,
		Restaurant: scope.Restaurant,
		Timestamp:  time.Now(),
	}
	if err := r.repo.Create(entry); err != nil {
		r.log.Warn().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("audit: fallo al escribir entrada (descartado)")
	}
}

// Query consulta el audit trail con filtros y paginación, más reciente primero.
func (r *Recorder) Query(filter repository.AuditFilter) ([]*entity.AuditLogEntry, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return r.repo.List(filter)
}

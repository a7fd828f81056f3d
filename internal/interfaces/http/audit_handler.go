package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/application/dto"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// AuditHandler maneja las consultas del audit trail (protegido).
type AuditHandler struct {
	recorder *audit.Recorder
}

// NewAuditHandler construye el handler.
func NewAuditHandler(recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// List godoc
// @Summary      Consultar audit trail
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  false  "Ej. Order, Item"
// @Param        entity_id    query  string  false  "ID de la entidad"
// @Param        user_id      query  string  false  "Filtrar por usuario"
// @Param        action       query  string  false  "Ej. order.create"
// @Param        from         query  string  false  "Fecha inicial (RFC3339)"
// @Param        to           query  string  false  "Fecha final (RFC3339)"
// @Param        limit        query  int     false  "Límite"   default(20)
// @Param        offset       query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.AuditLogListResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	scope := GetScope(c)
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	filter := repository.AuditFilter{
		Scope:      scope,
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		UserID:     c.Query("user_id"),
		Action:     c.Query("action"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		filter.To = &t
	}
	entries, total, err := h.recorder.Query(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.AuditLogListResponse{
		Entries: make([]dto.AuditLogResponse, 0, len(entries)),
		Page:    dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, dto.ToAuditLogResponse(e))
	}
	return c.JSON(out)
}

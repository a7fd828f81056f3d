package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/resto-inventario/internal/application/dto"
	"github.com/tu-usuario/resto-inventario/internal/application/receiving"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// ReceivingHandler maneja las peticiones HTTP de discrepancias de recepción (protegido).
type ReceivingHandler struct {
	uc *receiving.DiscrepancyUseCase
}

// NewReceivingHandler construye el handler.
func NewReceivingHandler(uc *receiving.DiscrepancyUseCase) *ReceivingHandler {
	return &ReceivingHandler{uc: uc}
}

// Report godoc
// @Summary      Reportar discrepancia de recepción
// @Tags         receiving
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReportDiscrepancyRequest  true  "Datos de la discrepancia"
// @Success      201   {object}  dto.DiscrepancyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receiving/discrepancies [post]
func (h *ReceivingHandler) Report(c *fiber.Ctx) error {
	scope := GetScope(c)
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReportDiscrepancyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	d, err := h.uc.Report(c.Context(), receiving.ReportInput{
		Scope:           scope,
		Actor:           userID,
		PurchaseOrderID: in.PurchaseOrderID,
		ItemID:          in.ItemID,
		Type:            in.Type,
		ExpectedValue:   in.ExpectedValue,
		ActualValue:     in.ActualValue,
		Description:     in.Description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden o item no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToDiscrepancyResponse(d))
}

// List godoc
// @Summary      Listar discrepancias de recepción
// @Tags         receiving
// @Security     Bearer
// @Produce      json
// @Param        status             query  string  false  "open, investigating, resolved o cancelled"
// @Param        purchase_order_id  query  string  false  "Filtrar por orden de compra"
// @Param        limit              query  int     false  "Límite"   default(20)
// @Param        offset             query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.DiscrepancyListResponse
// @Router       /api/receiving/discrepancies [get]
func (h *ReceivingHandler) List(c *fiber.Ctx) error {
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
	list, total, err := h.uc.List(repository.DiscrepancyFilter{
		Scope:           scope,
		Status:          c.Query("status"),
		PurchaseOrderID: c.Query("purchase_order_id"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.DiscrepancyListResponse{
		Discrepancies: make([]dto.DiscrepancyResponse, 0, len(list)),
		Page:          dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for _, d := range list {
		out.Discrepancies = append(out.Discrepancies, dto.ToDiscrepancyResponse(d))
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary      Resolver discrepancia
// @Description  Idempotente: resolver una discrepancia ya resuelta re-estampa
//               resolución y resolutor.
// @Tags         receiving
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID de la discrepancia"
// @Param        body  body  dto.ResolveDiscrepancyRequest  true  "Texto de resolución"
// @Success      200   {object}  dto.DiscrepancyResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receiving/discrepancies/{id}/resolve [post]
func (h *ReceivingHandler) Resolve(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.ResolveDiscrepancyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	d, err := h.uc.Resolve(c.Context(), GetScope(c), GetUserID(c), id, in.Resolution)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "resolution es requerido"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "discrepancia no encontrada"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "la discrepancia está cancelada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToDiscrepancyResponse(d))
}

// SetStatus godoc
// @Summary      Cambiar estado de una discrepancia
// @Description  investigating o cancelled, solo desde estados no terminales.
// @Tags         receiving
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID de la discrepancia"
// @Param        body  body  dto.SetDiscrepancyStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.DiscrepancyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receiving/discrepancies/{id}/status [patch]
func (h *ReceivingHandler) SetStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.SetDiscrepancyStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	d, err := h.uc.SetStatus(c.Context(), GetScope(c), GetUserID(c), id, in.Status)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "estado inválido"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "discrepancia no encontrada"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "transición de estado no permitida"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToDiscrepancyResponse(d))
}

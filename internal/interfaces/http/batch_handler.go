package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/resto-inventario/internal/application/batch"
	"github.com/tu-usuario/resto-inventario/internal/application/dto"
	"github.com/tu-usuario/resto-inventario/internal/domain"
)

// BatchHandler maneja las peticiones HTTP de lotes (protegido).
type BatchHandler struct {
	uc *batch.TrackerUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *batch.TrackerUseCase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar lote recibido
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Datos del lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	scope := GetScope(c)
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	b, err := h.uc.CreateBatch(c.Context(), batch.CreateBatchInput{
		Scope:            scope,
		Actor:            userID,
		ItemID:           in.ItemID,
		BatchNumber:      in.BatchNumber,
		LotNumber:        in.LotNumber,
		ReceivedQuantity: in.ReceivedQuantity,
		ExpirationDate:   in.ExpirationDate,
		ManufactureDate:  in.ManufactureDate,
		SupplierBatchID:  in.SupplierBatchID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "número de lote ya existe para este item"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBatchResponse(b, h.uc.BatchStatus(b)))
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	b, err := h.uc.GetBatch(GetScope(c), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToBatchResponse(b, h.uc.BatchStatus(b)))
}

// List godoc
// @Summary      Listar lotes en orden FEFO
// @Description  Vencimiento ascendente, lotes sin vencimiento al final.
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        item_id  query  string  false  "Filtrar por item"
// @Param        limit    query  int     false  "Límite"   default(20)
// @Param        offset   query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.BatchListResponse
// @Router       /api/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
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
	batches, err := h.uc.ListBatches(scope, c.Query("item_id"), limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.BatchListResponse{
		Batches: make([]dto.BatchResponse, 0, len(batches)),
		Page:    dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, b := range batches {
		out.Batches = append(out.Batches, dto.ToBatchResponse(b, h.uc.BatchStatus(b)))
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajustar cantidad restante de un lote
// @Description  Delta con signo. Rechazado si dejaría la cantidad fuera de
//               [0, received_quantity].
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.AdjustBatchRequest  true  "delta y reason"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/adjust [post]
func (h *BatchHandler) Adjust(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AdjustBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	b, err := h.uc.AdjustQuantity(c.Context(), GetScope(c), GetUserID(c), id, in.Delta, in.Reason)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "lote no encontrado"})
		}
		if errors.Is(err, domain.ErrInvalidBatchAdjustment) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_ADJUSTMENT", Message: "el ajuste dejaría la cantidad fuera de rango"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToBatchResponse(b, h.uc.BatchStatus(b)))
}

package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/resto-inventario/internal/application/dto"
	"github.com/tu-usuario/resto-inventario/internal/application/ledger"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del Stock Ledger (protegido).
type InventoryHandler struct {
	uc *ledger.StockLedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *ledger.StockLedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "item_id, type (IN/OUT/ADJUSTMENT/TRANSFER), quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	scope := GetScope(c)
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.RecordMovement(c.Context(), ledger.MovementInput{
		Scope:     scope,
		Actor:     userID,
		ItemID:    in.ItemID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Reference: in.Reference,
		BatchID:   in.BatchID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// AdjustStock godoc
// @Summary      Ajustar stock por delta con signo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del item"
// @Param        body  body  dto.AdjustStockRequest  true  "delta y reason"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.AdjustStock(c.Context(), GetScope(c), GetUserID(c), id, in.Delta, in.Reason)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
		}
		if errors.Is(err, domain.ErrInvalidAdjustment) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_ADJUSTMENT", Message: "el ajuste dejaría el stock en negativo"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToItemResponse(item))
}

// GetStockLevels godoc
// @Summary      Consultar niveles de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        stock_status  query  string  false  "in-stock, low-stock o out-of-stock"
// @Param        limit         query  int     false  "Límite"   default(20)
// @Param        offset        query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStockLevels(c *fiber.Ctx) error {
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
	items, total, err := h.uc.GetStockLevels(repository.ItemFilter{
		Scope:       scope,
		StockStatus: c.Query("stock_status"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.ItemListResponse{
		Items: make([]dto.ItemResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.ToItemResponse(it))
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos de un item
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del item"
// @Param        from    query  string  false  "Fecha inicial (RFC3339)"
// @Param        to      query  string  false  "Fecha final (RFC3339)"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
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
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		to = &t
	}
	movements, err := h.uc.ListMovements(GetScope(c), id, from, to, limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.MovementListResponse{
		Movements: make([]dto.MovementResponse, 0, len(movements)),
		Page:      dto.PageResponse{Limit: limit, Offset: offset},
	}
	for _, m := range movements {
		out.Movements = append(out.Movements, dto.ToMovementResponse(m))
	}
	return c.JSON(out)
}

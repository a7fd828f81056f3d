package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/resto-inventario/internal/application/catalog"
	"github.com/tu-usuario/resto-inventario/internal/application/dto"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// ItemHandler maneja las peticiones HTTP del catálogo de items (protegido).
type ItemHandler struct {
	uc *catalog.ItemUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *catalog.ItemUseCase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

// Create godoc
// @Summary      Crear item del catálogo
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del item"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	scope := GetScope(c)
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.CreateItem(c.Context(), catalog.CreateItemInput{
		Scope:        scope,
		Actor:        userID,
		SKU:          in.SKU,
		Name:         in.Name,
		Description:  in.Description,
		Unit:         in.Unit,
		Price:        in.Price,
		Cost:         in.Cost,
		CurrentStock: in.CurrentStock,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "SKU ya existe en este restaurante"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToItemResponse(item))
}

// GetByID godoc
// @Summary      Obtener item por ID
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del item"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	item, err := h.uc.GetItem(GetScope(c), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToItemResponse(item))
}

// List godoc
// @Summary      Listar items del catálogo
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        stock_status  query  string  false  "in-stock, low-stock o out-of-stock"
// @Param        active        query  bool    false  "Filtrar por activo/inactivo"
// @Param        limit         query  int     false  "Límite"   default(20)
// @Param        offset        query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
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
	filter := repository.ItemFilter{
		Scope:       scope,
		StockStatus: c.Query("stock_status"),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := c.Query("active"); raw != "" {
		active := c.QueryBool("active")
		filter.Active = &active
	}
	items, total, err := h.uc.ListItems(filter)
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

// Update godoc
// @Summary      Actualizar item (nunca su stock)
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del item"
// @Param        body  body  dto.UpdateItemRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.UpdateItem(c.Context(), catalog.UpdateItemInput{
		Scope:       GetScope(c),
		Actor:       GetUserID(c),
		ItemID:      id,
		Name:        in.Name,
		Description: in.Description,
		Unit:        in.Unit,
		Price:       in.Price,
		Cost:        in.Cost,
		MinStock:    in.MinStock,
		MaxStock:    in.MaxStock,
		IsActive:    in.IsActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.ToItemResponse(item))
}

// Delete godoc
// @Summary      Eliminar item del catálogo
// @Description  Rechazado si el item tiene órdenes abiertas o lotes con cantidad restante.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del item"
// @Success      204  "Sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	err := h.uc.DeleteItem(c.Context(), GetScope(c), GetUserID(c), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item no encontrado"})
		}
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "item con órdenes abiertas o lotes con stock"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

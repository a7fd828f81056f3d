package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// CreateItemRequest entrada para crear un item del catálogo.
type CreateItemRequest struct {
	SKU          string          `json:"sku" validate:"required,min=1,max=100"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	CurrentStock int64           `json:"current_stock"`
	MinStock     int64           `json:"min_stock"`
	MaxStock     *int64          `json:"max_stock,omitempty"`
}

// UpdateItemRequest entrada para actualizar un item (nunca su stock).
type UpdateItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit"`
	Price       *decimal.Decimal `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	MinStock    *int64           `json:"min_stock"`
	MaxStock    *int64           `json:"max_stock"`
	IsActive    *bool            `json:"is_active"`
}

// ItemResponse salida de un item, con su estado de stock derivado.
type ItemResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	CurrentStock int64           `json:"current_stock"`
	MinStock     int64           `json:"min_stock"`
	MaxStock     *int64          `json:"max_stock,omitempty"`
	StockStatus  string          `json:"stock_status"`
	IsActive     bool            `json:"is_active"`
	Country      string          `json:"country"`
	Restaurant   string          `json:"restaurant"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ToItemResponse mapea la entidad a su DTO de salida.
func ToItemResponse(i *entity.Item) ItemResponse {
	return ItemResponse{
		ID:           i.ID,
		SKU:          i.SKU,
		Name:         i.Name,
		Description:  i.Description,
		Unit:         i.Unit,
		Price:        i.Price,
		Cost:         i.Cost,
		CurrentStock: i.CurrentStock,
		MinStock:     i.MinStock,
		MaxStock:     i.MaxStock,
		StockStatus:  i.StockStatus(),
		IsActive:     i.IsActive,
		Country:      i.Country,
		Restaurant:   i.Restaurant,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

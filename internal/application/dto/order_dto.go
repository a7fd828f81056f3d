package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// OrderLineRequest línea de una orden entrante. El total por línea se
// recalcula siempre en el servidor.
type OrderLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Type                 string             `json:"type" validate:"required"`
	OrderNumber          string             `json:"order_number,omitempty"`
	Items                []OrderLineRequest `json:"items" validate:"required,min=1"`
	Supplier             *entity.Party      `json:"supplier,omitempty"`
	Customer             *entity.Party      `json:"customer,omitempty"`
	Notes                string             `json:"notes"`
	ExpectedDeliveryDate *time.Time         `json:"expected_delivery_date,omitempty"`
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderLineResponse línea de orden en respuestas.
type OrderLineResponse struct {
	ProductID  string          `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID                   string              `json:"id"`
	OrderNumber          string              `json:"order_number"`
	Type                 string              `json:"type"`
	Status               string              `json:"status"`
	Items                []OrderLineResponse `json:"items"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	Supplier             *entity.Party       `json:"supplier,omitempty"`
	Customer             *entity.Party       `json:"customer,omitempty"`
	Notes                string              `json:"notes,omitempty"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time          `json:"actual_delivery_date,omitempty"`
	CreatedBy            string              `json:"created_by"`
	Country              string              `json:"country"`
	Restaurant           string              `json:"restaurant"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Page   PageResponse    `json:"page"`
}

// ToOrderResponse mapea la entidad a su DTO de salida.
func ToOrderResponse(o *entity.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, OrderLineResponse{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		Type:                 o.Type,
		Status:               o.Status,
		Items:                lines,
		TotalAmount:          o.TotalAmount,
		Supplier:             o.Supplier,
		Customer:             o.Customer,
		Notes:                o.Notes,
		OrderDate:            o.OrderDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		ActualDeliveryDate:   o.ActualDeliveryDate,
		CreatedBy:            o.CreatedBy,
		Country:              o.Country,
		Restaurant:           o.Restaurant,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de orden.
const (
	OrderTypePurchase = "purchase"
	OrderTypeSale     = "sale"
	OrderTypeTransfer = "transfer"
)

// Estados de orden. delivered y cancelled son terminales.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderType valida el tipo de orden.
func ValidOrderType(t string) bool {
	switch t {
	case OrderTypePurchase, OrderTypeSale, OrderTypeTransfer:
		return true
	}
	return false
}

// ValidOrderStatus valida el estado de orden.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// statusRank ordena la cadena pending → confirmed → shipped → delivered.
func statusRank(s string) int {
	switch s {
	case OrderStatusPending:
		return 0
	case OrderStatusConfirmed:
		return 1
	case OrderStatusShipped:
		return 2
	case OrderStatusDelivered:
		return 3
	}
	return -1
}

// IsTerminalStatus indica si un estado no admite más transiciones.
func IsTerminalStatus(s string) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition decide si la transición from → to es válida:
// avances en la cadena pending → confirmed → shipped → delivered,
// y cancelled alcanzable desde cualquier estado no terminal.
func CanTransition(from, to string) bool {
	if IsTerminalStatus(from) {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return statusRank(to) > statusRank(from)
}

// OrderItem es una línea de orden. TotalPrice siempre se recalcula
// (Quantity × UnitPrice), nunca se confía en el valor del caller.
type OrderItem struct {
	ProductID  string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Party son los datos opacos de proveedor o cliente de una orden.
type Party struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Order es una orden de compra, venta o transferencia. Tras su creación la
// única mutación permitida es la transición de estado: las líneas quedan
// fijas.
type Order struct {
	ID                   string
	OrderNumber          string // único; se genera de type+timestamp si no se suministra
	Type                 string
	Status               string
	Items                []OrderItem
	TotalAmount          decimal.Decimal // siempre = suma de Items[].TotalPrice
	Supplier             *Party
	Customer             *Party
	Notes                string
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time // se estampa al entrar en delivered
	CreatedBy            string
	Country              string
	Restaurant           string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ComputeTotals recalcula TotalPrice por línea y TotalAmount desde las
// entradas autoritativas (cantidad y precio unitario), preservando el
// invariante de suma en cada persistencia.
func (o *Order) ComputeTotals() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].TotalPrice = decimal.NewFromInt(o.Items[i].Quantity).Mul(o.Items[i].UnitPrice)
		total = total.Add(o.Items[i].TotalPrice)
	}
	o.TotalAmount = total
}

// GenerateOrderNumber genera el número de orden como
// {3 primeras letras del tipo en mayúsculas}-{últimos 6 dígitos del timestamp en ms}.
func GenerateOrderNumber(orderType string, at time.Time) string {
	prefix := strings.ToUpper(orderType)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	ms := strconv.FormatInt(at.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("%s-%s", prefix, ms)
}

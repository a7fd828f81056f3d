package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// GenerateOrderNumber
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerateOrderNumber_Formato(t *testing.T) {
	// 1700000000123 ms -> últimos 6 dígitos: 000123
	at := time.UnixMilli(1700000000123)

	assert.Equal(t, "SAL-000123", entity.GenerateOrderNumber("sale", at),
		"venta debe usar prefijo SAL con los últimos 6 dígitos del timestamp")
	assert.Equal(t, "PUR-000123", entity.GenerateOrderNumber("purchase", at))
	assert.Equal(t, "TRA-000123", entity.GenerateOrderNumber("transfer", at))
}

func TestGenerateOrderNumber_MismoInstanteMismoNumero(t *testing.T) {
	at := time.UnixMilli(1699999987654)
	n1 := entity.GenerateOrderNumber("sale", at)
	n2 := entity.GenerateOrderNumber("sale", at)
	assert.Equal(t, n1, n2, "el número es determinista para el mismo instante")
}

// ──────────────────────────────────────────────────────────────────────────────
// ComputeTotals
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeTotals_RecalculaLineasYTotal(t *testing.T) {
	o := &entity.Order{
		Items: []entity.OrderItem{
			// TotalPrice del caller se ignora siempre
			{ProductID: "a", Quantity: 3, UnitPrice: decimal.NewFromFloat(2.50), TotalPrice: decimal.NewFromInt(999)},
			{ProductID: "b", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		},
	}
	o.ComputeTotals()

	assert.True(t, decimal.NewFromFloat(7.50).Equal(o.Items[0].TotalPrice),
		"la línea debe recalcularse como cantidad × precio unitario")
	assert.True(t, decimal.NewFromInt(20).Equal(o.Items[1].TotalPrice))
	assert.True(t, decimal.NewFromFloat(27.50).Equal(o.TotalAmount),
		"el total debe ser la suma de las líneas recalculadas")
}

func TestComputeTotals_SinLineas(t *testing.T) {
	o := &entity.Order{}
	o.ComputeTotals()
	assert.True(t, o.TotalAmount.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// CanTransition
// ──────────────────────────────────────────────────────────────────────────────

func TestCanTransition_AvancesValidos(t *testing.T) {
	casos := []struct{ from, to string }{
		{entity.OrderStatusPending, entity.OrderStatusConfirmed},
		{entity.OrderStatusPending, entity.OrderStatusShipped},
		{entity.OrderStatusPending, entity.OrderStatusDelivered},
		{entity.OrderStatusConfirmed, entity.OrderStatusShipped},
		{entity.OrderStatusConfirmed, entity.OrderStatusDelivered},
		{entity.OrderStatusShipped, entity.OrderStatusDelivered},
	}
	for _, c := range casos {
		assert.True(t, entity.CanTransition(c.from, c.to), "%s -> %s debe ser válido", c.from, c.to)
	}
}

func TestCanTransition_RetrocesosInvalidos(t *testing.T) {
	casos := []struct{ from, to string }{
		{entity.OrderStatusConfirmed, entity.OrderStatusPending},
		{entity.OrderStatusShipped, entity.OrderStatusConfirmed},
		{entity.OrderStatusDelivered, entity.OrderStatusShipped},
	}
	for _, c := range casos {
		assert.False(t, entity.CanTransition(c.from, c.to), "%s -> %s debe ser inválido", c.from, c.to)
	}
}

func TestCanTransition_CancelledDesdeNoTerminales(t *testing.T) {
	assert.True(t, entity.CanTransition(entity.OrderStatusPending, entity.OrderStatusCancelled))
	assert.True(t, entity.CanTransition(entity.OrderStatusConfirmed, entity.OrderStatusCancelled))
	assert.True(t, entity.CanTransition(entity.OrderStatusShipped, entity.OrderStatusCancelled))
}

func TestCanTransition_TerminalesNoTransicionan(t *testing.T) {
	assert.False(t, entity.CanTransition(entity.OrderStatusDelivered, entity.OrderStatusCancelled),
		"delivered es terminal: ni siquiera admite cancelación")
	assert.False(t, entity.CanTransition(entity.OrderStatusCancelled, entity.OrderStatusPending))
	assert.False(t, entity.CanTransition(entity.OrderStatusCancelled, entity.OrderStatusDelivered))
}

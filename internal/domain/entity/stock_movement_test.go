package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
)

func TestApplyMovement(t *testing.T) {
	casos := []struct {
		nombre   string
		current  int64
		tipo     string
		quantity int64
		want     int64
	}{
		{"IN suma", 10, entity.MovementTypeIN, 5, 15},
		{"OUT resta", 10, entity.MovementTypeOUT, 4, 6},
		{"OUT puede proyectar negativo (el caller valida)", 3, entity.MovementTypeOUT, 5, -2},
		{"ADJUSTMENT fija el valor absoluto", 10, entity.MovementTypeADJUSTMENT, 42, 42},
		{"ADJUSTMENT a cero (conteo físico)", 10, entity.MovementTypeADJUSTMENT, 0, 0},
		{"TRANSFER no altera el stock local", 10, entity.MovementTypeTRANSFER, 99, 10},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			got := entity.ApplyMovement(c.current, c.tipo, c.quantity)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestValidMovementType(t *testing.T) {
	assert.True(t, entity.ValidMovementType("IN"))
	assert.True(t, entity.ValidMovementType("OUT"))
	assert.True(t, entity.ValidMovementType("ADJUSTMENT"))
	assert.True(t, entity.ValidMovementType("TRANSFER"))
	assert.False(t, entity.ValidMovementType("in"), "los tipos son sensibles a mayúsculas")
	assert.False(t, entity.ValidMovementType(""))
	assert.False(t, entity.ValidMovementType("MERMA"))
}

func TestItemStockStatus(t *testing.T) {
	item := &entity.Item{MinStock: 5}

	item.CurrentStock = 0
	assert.Equal(t, entity.StockStatusOutOfStock, item.StockStatus())

	item.CurrentStock = -2
	assert.Equal(t, entity.StockStatusOutOfStock, item.StockStatus())

	item.CurrentStock = 5
	assert.Equal(t, entity.StockStatusLowStock, item.StockStatus(),
		"stock igual al punto de reorden es low-stock")

	item.CurrentStock = 6
	assert.Equal(t, entity.StockStatusInStock, item.StockStatus())
}

func TestValidUnit(t *testing.T) {
	for _, u := range []string{"piece", "kg", "liter", "gram", "ml", "box", "pack"} {
		assert.True(t, entity.ValidUnit(u), "unidad %s debe ser válida", u)
	}
	assert.False(t, entity.ValidUnit("galon"))
	assert.False(t, entity.ValidUnit(""))
}

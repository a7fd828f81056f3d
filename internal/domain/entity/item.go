package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida permitidas para un Item.
const (
	UnitPiece = "piece"
	UnitKg    = "kg"
	UnitLiter = "liter"
	UnitGram  = "gram"
	UnitMl    = "ml"
	UnitBox   = "box"
	UnitPack  = "pack"
)

// ValidUnit valida la unidad de medida.
func ValidUnit(u string) bool {
	switch u {
	case UnitPiece, UnitKg, UnitLiter, UnitGram, UnitMl, UnitBox, UnitPack:
		return true
	}
	return false
}

// Estado de stock derivado (no se persiste).
const (
	StockStatusInStock    = "in-stock"
	StockStatusLowStock   = "low-stock"
	StockStatusOutOfStock = "out-of-stock"
)

// Item representa un SKU del catálogo de un restaurante.
// CurrentStock es una proyección materializada de la suma de movimientos:
// solo el Stock Ledger puede escribirlo.
type Item struct {
	ID           string
	SKU          string // único por tenant, siempre en mayúsculas
	Name         string
	Description  string
	Unit         string
	Price        decimal.Decimal
	Cost         decimal.Decimal
	CurrentStock int64
	MinStock     int64  // punto de reorden
	MaxStock     *int64 // opcional, debe ser >= MinStock
	IsActive     bool
	Country      string
	Restaurant   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockStatus deriva el estado de stock actual contra el punto de reorden.
func (i *Item) StockStatus() string {
	if i.CurrentStock <= 0 {
		return StockStatusOutOfStock
	}
	if i.CurrentStock <= i.MinStock {
		return StockStatusLowStock
	}
	return StockStatusInStock
}

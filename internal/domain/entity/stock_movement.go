package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeADJUSTMENT = "ADJUSTMENT" // fija el stock en un valor absoluto (conteo físico)
	MovementTypeTRANSFER   = "TRANSFER"   // trazabilidad entre ubicaciones; neto cero en el modelo de una sola ubicación
)

// ValidMovementType valida el tipo de movimiento.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT, MovementTypeTRANSFER:
		return true
	}
	return false
}

// StockMovement es el registro inmutable de un cambio de stock de un Item.
// Quantity se guarda como magnitud no negativa; el signo lo da Type.
// Las correcciones se hacen con un movimiento nuevo en sentido contrario,
// nunca editando uno existente.
type StockMovement struct {
	ID         string
	ItemID     string
	Type       string
	Quantity   int64
	Reason     string
	Reference  string // orden o evento de recepción asociado (opcional)
	BatchID    string // lote afectado (opcional)
	Country    string
	Restaurant string
	CreatedBy  string // UserID
	CreatedAt  time.Time
}

// ApplyMovement calcula el stock resultante de aplicar un movimiento sobre
// el stock actual. Es la única aritmética de stock del sistema:
// IN suma, OUT resta, ADJUSTMENT fija el valor absoluto y TRANSFER no altera
// el stock local (solo deja traza).
func ApplyMovement(current int64, movementType string, quantity int64) int64 {
	switch movementType {
	case MovementTypeIN:
		return current + quantity
	case MovementTypeOUT:
		return current - quantity
	case MovementTypeADJUSTMENT:
		return quantity
	case MovementTypeTRANSFER:
		return current
	}
	return current
}

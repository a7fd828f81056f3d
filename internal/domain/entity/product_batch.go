package entity

import "time"

// BatchNote es una entrada del log append-only de un lote.
type BatchNote struct {
	At     time.Time `json:"at"`
	Reason string    `json:"reason"`
	Delta  int64     `json:"delta"`
}

// ProductBatch es un lote recibido de un Item, con contador de cantidad
// restante que se decrementa de forma independiente al stock del Item.
// Invariante: 0 <= CurrentQuantity <= ReceivedQuantity. Un lote nunca se
// elimina, solo se agota a cero.
type ProductBatch struct {
	ID               string
	ItemID           string
	BatchNumber      string
	LotNumber        string     // opcional
	ExpirationDate   *time.Time // opcional; base del orden FEFO
	ManufactureDate  *time.Time // opcional
	ReceivedQuantity int64      // fijo desde la creación
	CurrentQuantity  int64
	SupplierBatchID  string // opcional
	Notes            []BatchNote
	Country          string
	Restaurant       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot representa la existencia actual de un ítem en una locación:
// cantidad en mano y costo promedio ponderado (WAC). Se crea perezosamente
// en cero la primera vez que se referencia el par (locación, ítem) y nunca
// se destruye de forma independiente.
// Invariante: Quantity >= 0 en todo momento; UnitCost no cambia en operaciones
// que solo retiran cantidad.
type StockLot struct {
	LocationID string
	ItemID     string
	Quantity   decimal.Decimal // en mano, 4 decimales internos
	UnitCost   decimal.Decimal // costo promedio ponderado (WAC)
	MinQty     decimal.Decimal
	MaxQty     decimal.Decimal
	UpdatedAt  time.Time
}

// NewZeroLot construye el lote en cero para el par (locación, ítem).
func NewZeroLot(locationID, itemID string) *StockLot {
	return &StockLot{
		LocationID: locationID,
		ItemID:     itemID,
		Quantity:   decimal.Zero,
		UnitCost:   decimal.Zero,
	}
}

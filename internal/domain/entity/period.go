package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un período contable.
const (
	PeriodStatusDraft  = "DRAFT"
	PeriodStatusOpen   = "OPEN"
	PeriodStatusClosed = "CLOSED"
)

// Tipos de snapshot de existencias.
const (
	SnapshotOpening = "OPENING"
	SnapshotClosing = "CLOSING"
)

// Period es la ventana contable que acota toda transacción y requisición.
// Cerrarlo es la única operación que cruza todas las locaciones a la vez:
// toma snapshot de cada StockLot y siembra el estado de apertura del siguiente.
type Period struct {
	ID        string
	Name      string // ej. 2026-08
	StartDate time.Time
	EndDate   time.Time
	Status    string
	ClosedBy  *string
	ClosedAt  *time.Time
	CreatedAt time.Time
}

// PeriodLocation es el estado de una locación dentro de un período: lista
// para cierre cuando todas sus transacciones están contabilizadas y la
// conciliación guardada. Una vez Ready, la locación no admite más registros.
type PeriodLocation struct {
	PeriodID              string
	LocationID            string
	Ready                 bool
	ReadyAt               *time.Time
	ReconciliationSavedAt *time.Time
}

// StockSnapshot es la foto de cantidad y costo de un lote al abrir o cerrar
// un período, una fila por (locación, ítem).
type StockSnapshot struct {
	ID         string
	PeriodID   string
	LocationID string
	ItemID     string
	Kind       string // OPENING | CLOSING
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	CreatedAt  time.Time
}

// ReconciliationTotal acumula los ajustes de conciliación del período por
// locación. Ajusta la cifra de consumo derivada para reportes; nunca la
// cantidad en mano de los lotes.
type ReconciliationTotal struct {
	PeriodID     string
	LocationID   string
	BackCharges  decimal.Decimal
	Credits      decimal.Decimal
	Condemnation decimal.Decimal
	UpdatedAt    time.Time
}

// Net devuelve el ajuste neto del período para la locación.
func (r *ReconciliationTotal) Net() decimal.Decimal {
	return r.BackCharges.Add(r.Credits).Add(r.Condemnation)
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// NCR (non-conformance report) es el registro satélite generado cuando el
// costo unitario de una entrega difiere del precio bloqueado del período.
// Es un efecto colateral de la contabilización, nunca una mutación del ledger.
type NCR struct {
	ID                string
	TransactionLineID string
	PeriodID          string
	LocationID        string
	ItemID            string
	LockedPrice       decimal.Decimal
	ActualPrice       decimal.Decimal
	Variance          decimal.Decimal // actual - bloqueado
	CreatedAt         time.Time
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
)

// PeriodResponse período en respuestas.
type PeriodResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Status    string     `json:"status"`
	ClosedBy  *string    `json:"closed_by,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// FromPeriod convierte la entidad a su representación HTTP.
func FromPeriod(p *entity.Period) PeriodResponse {
	return PeriodResponse{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    p.Status,
		ClosedBy:  p.ClosedBy,
		ClosedAt:  p.ClosedAt,
	}
}

// ClosePeriodResponse respuesta del cierre: período cerrado y siguiente abierto.
type ClosePeriodResponse struct {
	Closed PeriodResponse `json:"closed"`
	Next   PeriodResponse `json:"next"`
}

// StockLotResponse lote en respuestas de consulta de existencias.
type StockLotResponse struct {
	LocationID string          `json:"location_id"`
	ItemID     string          `json:"item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Value      decimal.Decimal `json:"value"`
}

// NCRResponse reporte de no conformidad por variación de precio.
type NCRResponse struct {
	ID                string          `json:"id"`
	TransactionLineID string          `json:"transaction_line_id"`
	ItemID            string          `json:"item_id"`
	LockedPrice       decimal.Decimal `json:"locked_price"`
	ActualPrice       decimal.Decimal `json:"actual_price"`
	Variance          decimal.Decimal `json:"variance"`
	CreatedAt         time.Time       `json:"created_at"`
}

// FromNCR convierte la entidad a su representación HTTP.
func FromNCR(n *entity.NCR) NCRResponse {
	return NCRResponse{
		ID:                n.ID,
		TransactionLineID: n.TransactionLineID,
		ItemID:            n.ItemID,
		LockedPrice:       n.LockedPrice,
		ActualPrice:       n.ActualPrice,
		Variance:          n.Variance,
		CreatedAt:         n.CreatedAt,
	}
}

// ReconciliationResponse totales de conciliación de la locación en el período.
type ReconciliationResponse struct {
	PeriodID     string          `json:"period_id"`
	LocationID   string          `json:"location_id"`
	BackCharges  decimal.Decimal `json:"back_charges"`
	Credits      decimal.Decimal `json:"credits"`
	Condemnation decimal.Decimal `json:"condemnation"`
	Net          decimal.Decimal `json:"net"`
}

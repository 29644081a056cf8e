package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
)

// DeliveryLineRequest línea de entrega en el cuerpo de la petición.
type DeliveryLineRequest struct {
	ItemID      string          `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	OrderLineID string          `json:"order_line_id,omitempty"`
}

// PostDeliveryRequest cuerpo para registrar o contabilizar una entrega.
// Con transaction_id se contabiliza una existente; sin él se crea desde lines.
type PostDeliveryRequest struct {
	LocationID    string                `json:"location_id"`
	PeriodID      string                `json:"period_id"`
	TransactionID string                `json:"transaction_id,omitempty"`
	Draft         bool                  `json:"draft,omitempty"`
	InvoiceNumber string                `json:"invoice_number,omitempty"`
	Date          time.Time             `json:"date"`
	Lines         []DeliveryLineRequest `json:"lines"`
}

// IssueLineRequest línea de salida o de traslado.
type IssueLineRequest struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// PostIssueRequest cuerpo para contabilizar una salida.
type PostIssueRequest struct {
	LocationID string             `json:"location_id"`
	PeriodID   string             `json:"period_id"`
	Date       time.Time          `json:"date"`
	Lines      []IssueLineRequest `json:"lines"`
}

// RequestTransferRequest cuerpo para solicitar un traslado entre locaciones.
type RequestTransferRequest struct {
	FromLocationID string             `json:"from_location_id"`
	ToLocationID   string             `json:"to_location_id"`
	PeriodID       string             `json:"period_id"`
	Date           time.Time          `json:"date"`
	Lines          []IssueLineRequest `json:"lines"`
}

// ReconciliationLineRequest línea de ajuste de conciliación.
type ReconciliationLineRequest struct {
	ItemID string          `json:"item_id"`
	Kind   string          `json:"kind"` // BACKCHARGE | CREDIT | CONDEMNATION
	Amount decimal.Decimal `json:"amount"`
}

// SaveReconciliationRequest cuerpo para guardar la conciliación del período.
type SaveReconciliationRequest struct {
	LocationID string                      `json:"location_id"`
	PeriodID   string                      `json:"period_id"`
	Date       time.Time                   `json:"date"`
	Lines      []ReconciliationLineRequest `json:"lines"`
}

// DecisionRequest cuerpo para aprobar o rechazar (motivo obligatorio al rechazar).
type DecisionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ReviewLinesRequest cuerpo para decidir líneas de sobre-entrega.
type ReviewLinesRequest struct {
	LineIDs []string `json:"line_ids"`
	Reason  string   `json:"reason,omitempty"`
}

// TransactionLineResponse línea de transacción en respuestas.
type TransactionLineResponse struct {
	ID           string           `json:"id"`
	ItemID       string           `json:"item_id"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCost     decimal.Decimal  `json:"unit_cost"`
	LineValue    decimal.Decimal  `json:"line_value"`
	OrderLineID  string           `json:"order_line_id,omitempty"`
	CostAtIssue  *decimal.Decimal `json:"cost_at_issue,omitempty"`
	OverDelivery bool             `json:"over_delivery,omitempty"`
	Adjustment   string           `json:"adjustment,omitempty"`
	Amount       decimal.Decimal  `json:"amount,omitempty"`
}

// TransactionResponse cabecera de transacción en respuestas.
type TransactionResponse struct {
	ID            string                    `json:"id"`
	Number        string                    `json:"number"`
	Kind          string                    `json:"kind"`
	LocationID    string                    `json:"location_id"`
	ToLocationID  string                    `json:"to_location_id,omitempty"`
	PeriodID      string                    `json:"period_id"`
	Date          time.Time                 `json:"date"`
	Status        string                    `json:"status"`
	InvoiceNumber string                    `json:"invoice_number,omitempty"`
	TotalValue    decimal.Decimal           `json:"total_value"`
	Lines         []TransactionLineResponse `json:"lines"`
}

// FromTransaction convierte la entidad a su representación HTTP.
func FromTransaction(t *entity.Transaction) TransactionResponse {
	out := TransactionResponse{
		ID:            t.ID,
		Number:        t.Number,
		Kind:          t.Kind,
		LocationID:    t.LocationID,
		ToLocationID:  t.ToLocationID,
		PeriodID:      t.PeriodID,
		Date:          t.Date,
		Status:        t.Status,
		InvoiceNumber: t.InvoiceNumber,
		TotalValue:    t.TotalValue,
	}
	for _, l := range t.Lines {
		out.Lines = append(out.Lines, TransactionLineResponse{
			ID:           l.ID,
			ItemID:       l.ItemID,
			Quantity:     l.Quantity,
			UnitCost:     l.UnitCost,
			LineValue:    l.LineValue,
			OrderLineID:  l.OrderLineID,
			CostAtIssue:  l.CostAtIssue,
			OverDelivery: l.OverDelivery,
			Adjustment:   l.Adjustment,
			Amount:       l.Amount,
		})
	}
	return out
}

// PostDeliveryResponse respuesta de postDelivery con los efectos colaterales.
type PostDeliveryResponse struct {
	Transaction           TransactionResponse `json:"transaction"`
	NCRsCreated           []string            `json:"ncrs_created,omitempty"`
	OrderAutoClosed       bool                `json:"order_auto_closed,omitempty"`
	RequisitionAutoClosed bool                `json:"requisition_auto_closed,omitempty"`
}

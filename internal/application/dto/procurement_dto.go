package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
)

// RequisitionLineRequest línea de requisición: ítem del catálogo o descripción libre.
type RequisitionLineRequest struct {
	ItemID         string          `json:"item_id,omitempty"`
	Description    string          `json:"description,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
}

// CreateRequisitionRequest cuerpo para crear un borrador de requisición.
type CreateRequisitionRequest struct {
	LocationID string                   `json:"location_id"`
	PeriodID   string                   `json:"period_id"`
	Lines      []RequisitionLineRequest `json:"lines"`
}

// RequisitionLineResponse línea de requisición en respuestas.
type RequisitionLineResponse struct {
	ID             string          `json:"id"`
	ItemID         string          `json:"item_id,omitempty"`
	Description    string          `json:"description,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
}

// RequisitionResponse requisición en respuestas.
type RequisitionResponse struct {
	ID         string                    `json:"id"`
	Number     string                    `json:"number"`
	LocationID string                    `json:"location_id"`
	PeriodID   string                    `json:"period_id"`
	Status     string                    `json:"status"`
	CreatedBy  string                    `json:"created_by"`
	ClosedAt   *time.Time                `json:"closed_at,omitempty"`
	Lines      []RequisitionLineResponse `json:"lines"`
}

// FromRequisition convierte la entidad a su representación HTTP.
func FromRequisition(r *entity.Requisition) RequisitionResponse {
	out := RequisitionResponse{
		ID:         r.ID,
		Number:     r.Number,
		LocationID: r.LocationID,
		PeriodID:   r.PeriodID,
		Status:     r.Status,
		CreatedBy:  r.CreatedBy,
		ClosedAt:   r.ClosedAt,
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, RequisitionLineResponse{
			ID:             l.ID,
			ItemID:         l.ItemID,
			Description:    l.Description,
			Quantity:       l.Quantity,
			EstimatedPrice: l.EstimatedPrice,
		})
	}
	return out
}

// OrderLineRequest línea de orden con precio negociado, descuento e IVA.
type OrderLineRequest struct {
	ItemID      string          `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	VATPct      decimal.Decimal `json:"vat_pct"`
}

// CreateOrderRequest cuerpo para crear la orden desde su requisición aprobada.
type CreateOrderRequest struct {
	RequisitionID string             `json:"requisition_id"`
	SupplierName  string             `json:"supplier_name"`
	Lines         []OrderLineRequest `json:"lines"`
}

// CloseOrderRequest cuerpo del cierre manual. El motivo es obligatorio si la
// orden aún tiene entregas pendientes.
type CloseOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// OrderLineResponse línea de orden en respuestas.
type OrderLineResponse struct {
	ID           string          `json:"id"`
	ItemID       string          `json:"item_id"`
	QtyOrdered   decimal.Decimal `json:"qty_ordered"`
	QtyDelivered decimal.Decimal `json:"qty_delivered"`
	Remaining    decimal.Decimal `json:"remaining"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountPct  decimal.Decimal `json:"discount_pct"`
	VATPct       decimal.Decimal `json:"vat_pct"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// OrderResponse orden en respuestas.
type OrderResponse struct {
	ID            string              `json:"id"`
	Number        string              `json:"number"`
	RequisitionID string              `json:"requisition_id"`
	SupplierName  string              `json:"supplier_name"`
	Status        string              `json:"status"`
	CloseReason   string              `json:"close_reason,omitempty"`
	ClosedBy      *string             `json:"closed_by,omitempty"`
	ClosedAt      *time.Time          `json:"closed_at,omitempty"`
	Lines         []OrderLineResponse `json:"lines"`
}

// FromOrder convierte la entidad a su representación HTTP.
func FromOrder(o *entity.Order) OrderResponse {
	out := OrderResponse{
		ID:            o.ID,
		Number:        o.Number,
		RequisitionID: o.RequisitionID,
		SupplierName:  o.SupplierName,
		Status:        o.Status,
		CloseReason:   o.CloseReason,
		ClosedBy:      o.ClosedBy,
		ClosedAt:      o.ClosedAt,
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		out.Lines = append(out.Lines, OrderLineResponse{
			ID:           l.ID,
			ItemID:       l.ItemID,
			QtyOrdered:   l.QtyOrdered,
			QtyDelivered: l.QtyDelivered,
			Remaining:    l.Remaining(),
			UnitPrice:    l.UnitPrice,
			DiscountPct:  l.DiscountPct,
			VATPct:       l.VATPct,
			LineTotal:    l.LineTotal,
		})
	}
	return out
}

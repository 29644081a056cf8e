package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra (PO).
const (
	OrderStatusOpen   = "OPEN"
	OrderStatusClosed = "CLOSED"
)

// Order es la cabecera de una orden de compra. Nace de una requisición
// aprobada (relación 1:1) y es la fuente autoritativa para el seguimiento
// de cumplimiento: sus líneas llevan la cantidad entregada acumulada.
type Order struct {
	ID            string
	Number        string // ej. PO-000015
	RequisitionID string
	SupplierName  string
	Status        string
	CloseReason   string // cierre manual corto de entrega: texto libre obligatorio (auditoría, sin taxonomía)
	ClosedBy      *string
	ClosedAt      *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []OrderLine
}

// OrderLine es una línea de orden: cantidad pedida, entregada acumulada,
// precio unitario, descuento e IVA con totales calculados.
type OrderLine struct {
	ID           string
	OrderID      string
	ItemID       string
	QtyOrdered   decimal.Decimal
	QtyDelivered decimal.Decimal // acumulado sobre todas las entregas contabilizadas
	UnitPrice    decimal.Decimal
	DiscountPct  decimal.Decimal
	VATPct       decimal.Decimal
	LineTotal    decimal.Decimal
}

// Remaining devuelve max(0, pedido - entregado).
func (l *OrderLine) Remaining() decimal.Decimal {
	rem := l.QtyOrdered.Sub(l.QtyDelivered)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// FullyDelivered indica si la línea ya recibió todo lo pedido.
func (l *OrderLine) FullyDelivered() bool {
	return l.QtyDelivered.GreaterThanOrEqual(l.QtyOrdered)
}

// FullyDelivered indica si todas las líneas de la orden están completas:
// condición de cierre automático.
func (o *Order) FullyDelivered() bool {
	for i := range o.Lines {
		if !o.Lines[i].FullyDelivered() {
			return false
		}
	}
	return len(o.Lines) > 0
}

// Line busca una línea por ID; nil si no pertenece a la orden.
func (o *Order) Line(lineID string) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

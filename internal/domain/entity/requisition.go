package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una requisición (PRF).
const (
	ReqStatusDraft    = "DRAFT"
	ReqStatusPending  = "PENDING"
	ReqStatusApproved = "APPROVED"
	ReqStatusRejected = "REJECTED"
	ReqStatusClosed   = "CLOSED"
)

// Requisition es la solicitud de compra (PRF). Una requisición genera a lo
// sumo una orden de compra (1:1). REJECTED es terminal: se puede clonar a un
// nuevo borrador, nunca resucitar.
type Requisition struct {
	ID         string
	Number     string // ej. PRF-000031
	LocationID string
	PeriodID   string
	Status     string
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ClosedAt   *time.Time
	Lines      []RequisitionLine
}

// RequisitionLine es una línea de requisición: ítem del catálogo o descripción
// libre, cantidad y precio estimado.
type RequisitionLine struct {
	ID             string
	RequisitionID  string
	ItemID         string // vacío si es descripción libre
	Description    string
	Quantity       decimal.Decimal
	EstimatedPrice decimal.Decimal
}

package entity

import "time"

// Clases de entidad sujetas a aprobación. OVER_DELIVERY_LINE es la variante
// estrecha: aplica a líneas individuales de una entrega, no a la entidad completa.
const (
	ApprovalKindRequisition      = "REQUISITION"
	ApprovalKindOrder            = "ORDER"
	ApprovalKindTransfer         = "TRANSFER"
	ApprovalKindOverDeliveryLine = "OVER_DELIVERY_LINE"
)

// Decisiones de un registro de aprobación.
const (
	DecisionPending  = "PENDING"
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)

// ApprovalRecord es el registro polimórfico de una revisión: un registro por
// entidad por ciclo de aprobación, creado implícitamente cuando la entidad
// entra a un estado que requiere revisión. El motivo es obligatorio al rechazar.
type ApprovalRecord struct {
	ID          string
	EntityKind  string
	EntityID    string
	RequestedBy string
	ReviewedBy  *string
	Decision    string
	Reason      string
	RequestedAt time.Time
	DecidedAt   *time.Time
}

// Decided indica si el registro ya fue resuelto.
func (a *ApprovalRecord) Decided() bool { return a.Decision != DecisionPending }

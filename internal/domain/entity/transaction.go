package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de inventario.
const (
	TxKindDelivery       = "DELIVERY"       // recepción contra orden de compra
	TxKindIssue          = "ISSUE"          // salida/consumo
	TxKindTransfer       = "TRANSFER"       // traslado entre locaciones
	TxKindReconciliation = "RECONCILIATION" // ajuste de conciliación del período
)

// Estados de una transacción.
const (
	TxStatusDraft           = "DRAFT"            // mutable, sin efecto en el ledger
	TxStatusPendingApproval = "PENDING_APPROVAL" // bloqueada a la espera de revisión
	TxStatusPosted          = "POSTED"           // inmutable, afectó el ledger
	TxStatusCompleted       = "COMPLETED"        // traslado aprobado y aplicado
	TxStatusRejected        = "REJECTED"         // terminal; no se puede editar ni contabilizar
)

// Clases de ajuste de conciliación.
const (
	AdjustmentBackCharge   = "BACKCHARGE"
	AdjustmentCredit       = "CREDIT"
	AdjustmentCondemnation = "CONDEMNATION"
)

// Transaction es la cabecera de una transacción de inventario: número secuencial
// legible, locación(es), período, estado y valor total calculado. Posee una
// lista ordenada de líneas. Una vez POSTED es inmutable salvo anotaciones de
// aprobación; solo en DRAFT se permite borrar.
type Transaction struct {
	ID            string
	Number        string // ej. DLV-000042, ISS-000007
	Kind          string
	LocationID    string
	ToLocationID  string // solo TRANSFER: locación destino
	PeriodID      string
	Date          time.Time
	Status        string
	InvoiceNumber string // DELIVERY: obligatorio al contabilizar, no en borrador
	TotalValue    decimal.Decimal
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []TransactionLine
}

// TransactionLine es una línea de transacción. Para DELIVERY puede llevar una
// referencia débil (no propietaria) a la línea de orden que satisface, resuelta
// por lookup. Para ISSUE congela el WAC usado al momento de la salida (auditoría).
type TransactionLine struct {
	ID            string
	TransactionID string
	ItemID        string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	LineValue     decimal.Decimal
	OrderLineID   string           // DELIVERY: línea de orden que satisface (débil)
	CostAtIssue   *decimal.Decimal // ISSUE: WAC congelado al momento de la salida
	OverDelivery  bool             // DELIVERY: cantidad excede el remanente de la orden
	Adjustment    string           // RECONCILIATION: BACKCHARGE | CREDIT | CONDEMNATION
	Amount        decimal.Decimal  // RECONCILIATION: monto firmado del ajuste
}

// Editable indica si la transacción admite edición o borrado.
func (t *Transaction) Editable() bool { return t.Status == TxStatusDraft }

// Posted indica si la transacción ya afectó el ledger.
func (t *Transaction) Posted() bool {
	return t.Status == TxStatusPosted || t.Status == TxStatusCompleted
}

// OverDeliveryLines devuelve las líneas marcadas como sobre-entrega.
func (t *Transaction) OverDeliveryLines() []TransactionLine {
	var out []TransactionLine
	for _, l := range t.Lines {
		if l.OverDelivery {
			out = append(out, l)
		}
	}
	return out
}

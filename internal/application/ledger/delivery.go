package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/fulfillment"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/valuation"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/workflow"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// DeliveryUseCase procesa entregas (recepciones contra orden de compra):
// valida, detecta sobre-entregas, aplica la recepción al ledger recalculando
// WAC, actualiza el cumplimiento de la orden y genera NCRs por variación de
// precio. Todo dentro de una sola transacción de BD.
type DeliveryUseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	log      *logger.Logger
}

// NewDeliveryUseCase construye el caso de uso.
func NewDeliveryUseCase(txRunner ports.TxRunner, notifier ports.Notifier, log *logger.Logger) *DeliveryUseCase {
	return &DeliveryUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// DeliveryLineInput es una línea de entrega. OrderLineID es la referencia
// débil a la línea de orden que satisface (vacío si es entrega suelta).
type DeliveryLineInput struct {
	ItemID      string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	OrderLineID string
}

// PostDeliveryInput entrada para registrar o contabilizar una entrega.
// Con TransactionID se contabiliza una entrega existente (borrador o una
// aprobada tras revisión de sobre-entrega); sin él se crea desde Lines.
type PostDeliveryInput struct {
	LocationID    string
	PeriodID      string
	ActorID       string
	ActorRole     string
	TransactionID string
	Draft         bool
	InvoiceNumber string
	Date          time.Time
	Lines         []DeliveryLineInput
}

// PostDeliveryResult resultado de la operación. Si la entrega quedó en
// PENDING_APPROVAL el ledger no fue tocado y NCRsCreated está vacío.
type PostDeliveryResult struct {
	Transaction           *entity.Transaction
	NCRsCreated           []string
	OrderAutoClosed       bool
	RequisitionAutoClosed bool
}

// PostDelivery ejecuta el procesador de entregas. Cualquier violación de
// restricción aborta la unidad atómica completa: sin líneas parciales, sin
// actualización parcial del ledger.
func (uc *DeliveryUseCase) PostDelivery(ctx context.Context, input PostDeliveryInput) (*PostDeliveryResult, error) {
	if err := uc.validate(input); err != nil {
		return nil, err
	}

	now := time.Now()
	result := &PostDeliveryResult{}

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if input.TransactionID != "" {
			return uc.postExisting(r, input, now, result)
		}
		return uc.createAndMaybePost(r, input, now, result)
	})
	if err != nil {
		return nil, err
	}

	if result.Transaction.Status == entity.TxStatusPosted {
		notify(uc.log, uc.notifier, ports.Notification{
			Event:      "DELIVERY_POSTED",
			EntityKind: entity.TxKindDelivery,
			EntityID:   result.Transaction.ID,
			Actor:      input.ActorID,
			Message:    "entrega " + result.Transaction.Number + " contabilizada",
		})
	}
	return result, nil
}

// validate acumula todos los campos inválidos antes de cualquier efecto.
func (uc *DeliveryUseCase) validate(input PostDeliveryInput) error {
	ve := &domain.ValidationError{}
	if input.ActorID == "" {
		ve.Add("actor", "requerido")
	}
	if input.TransactionID == "" {
		if input.LocationID == "" {
			ve.Add("location_id", "requerido")
		}
		if input.PeriodID == "" {
			ve.Add("period_id", "requerido")
		}
		if len(input.Lines) == 0 {
			ve.Add("lines", "se requiere al menos una línea")
		}
		for i, l := range input.Lines {
			if l.ItemID == "" {
				ve.Add(lineField(i, "item_id"), "requerido")
			}
			if !l.Quantity.IsPositive() {
				ve.Add(lineField(i, "quantity"), "debe ser mayor que cero")
			}
			if l.UnitCost.IsNegative() {
				ve.Add(lineField(i, "unit_cost"), "no puede ser negativo")
			}
		}
		// Factura obligatoria solo al contabilizar, no al guardar borrador.
		if !input.Draft && strings.TrimSpace(input.InvoiceNumber) == "" {
			ve.Add("invoice_number", "obligatorio al contabilizar")
		}
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// createAndMaybePost crea la entrega desde el payload y, según el caso, la
// deja en borrador, la estaciona en PENDING_APPROVAL o la contabiliza.
func (uc *DeliveryUseCase) createAndMaybePost(r ports.Repos, input PostDeliveryInput, now time.Time, result *PostDeliveryResult) error {
	if _, err := guardPeriod(r, input.PeriodID, input.LocationID); err != nil {
		return err
	}

	number, err := r.Transactions.NextNumber(entity.TxKindDelivery)
	if err != nil {
		return err
	}
	tx := &entity.Transaction{
		ID:            uuid.New().String(),
		Number:        number,
		Kind:          entity.TxKindDelivery,
		LocationID:    input.LocationID,
		PeriodID:      input.PeriodID,
		Date:          input.Date,
		InvoiceNumber: input.InvoiceNumber,
		CreatedBy:     input.ActorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	anyOver := false
	for _, in := range input.Lines {
		line := entity.TransactionLine{
			ID:            uuid.New().String(),
			TransactionID: tx.ID,
			ItemID:        in.ItemID,
			Quantity:      valuation.RoundQty(in.Quantity),
			UnitCost:      in.UnitCost,
			LineValue:     valuation.RoundMoney(in.Quantity.Mul(in.UnitCost)),
			OrderLineID:   in.OrderLineID,
		}
		if in.OrderLineID != "" {
			ol, err := r.Orders.GetLine(in.OrderLineID)
			if err != nil {
				return err
			}
			if ol == nil {
				return domain.ErrNotFound
			}
			line.OverDelivery = in.Quantity.GreaterThan(ol.Remaining())
			anyOver = anyOver || line.OverDelivery
		}
		tx.Lines = append(tx.Lines, line)
	}

	switch {
	case input.Draft:
		tx.Status = entity.TxStatusDraft
	case anyOver && !workflow.HasImplicitApproval(input.ActorRole):
		// Se estaciona antes de tocar el ledger: estado terminal legítimo a
		// la espera de revisión humana, no un fallo duro.
		tx.Status = entity.TxStatusPendingApproval
	default:
		tx.Status = entity.TxStatusPosted
	}

	if err := r.Transactions.Create(tx); err != nil {
		return err
	}
	for i := range tx.Lines {
		if err := r.Transactions.CreateLine(&tx.Lines[i]); err != nil {
			return err
		}
	}

	if tx.Status == entity.TxStatusPendingApproval {
		for _, l := range tx.OverDeliveryLines() {
			rec := &entity.ApprovalRecord{
				ID:          uuid.New().String(),
				EntityKind:  entity.ApprovalKindOverDeliveryLine,
				EntityID:    l.ID,
				RequestedBy: input.ActorID,
				Decision:    entity.DecisionPending,
				RequestedAt: now,
			}
			if err := r.Approvals.Create(rec); err != nil {
				return err
			}
		}
	}

	if tx.Status == entity.TxStatusPosted {
		if err := uc.postLines(r, tx, input.ActorID, now, result); err != nil {
			return err
		}
	}
	result.Transaction = tx
	return nil
}

// postExisting contabiliza una entrega ya registrada (borrador, o estacionada
// y luego aprobada línea a línea). La sobre-entrega se recomputa aquí contra
// lo realmente pendiente de cada línea de orden: lo que otros entregaron desde
// que se guardó el borrador cuenta.
func (uc *DeliveryUseCase) postExisting(r ports.Repos, input PostDeliveryInput, now time.Time, result *PostDeliveryResult) error {
	tx, err := r.Transactions.GetByID(input.TransactionID)
	if err != nil {
		return err
	}
	if tx == nil {
		return domain.ErrNotFound
	}
	if tx.Kind != entity.TxKindDelivery {
		return domain.ErrInvalidInput
	}

	lineIDs := make([]string, 0, len(tx.Lines))
	for _, l := range tx.Lines {
		lineIDs = append(lineIDs, l.ID)
	}
	approvals, err := r.Approvals.ListByEntities(entity.ApprovalKindOverDeliveryLine, lineIDs)
	if err != nil {
		return err
	}
	if tx.Status == entity.TxStatusRejected || tx.Posted() {
		return domain.ErrInvalidStateTransition
	}

	if _, err := guardPeriod(r, tx.PeriodID, tx.LocationID); err != nil {
		return err
	}

	fresh, err := refreshOverDelivery(r, tx, approvals)
	if err != nil {
		return err
	}
	if len(fresh) > 0 && !workflow.HasImplicitApproval(input.ActorRole) {
		// Misma regla que en la creación: se estaciona antes de tocar el
		// ledger, a la espera de revisión humana.
		tx.Status = entity.TxStatusPendingApproval
		tx.UpdatedAt = now
		if err := r.Transactions.Update(tx); err != nil {
			return err
		}
		for _, l := range fresh {
			rec := &entity.ApprovalRecord{
				ID:          uuid.New().String(),
				EntityKind:  entity.ApprovalKindOverDeliveryLine,
				EntityID:    l.ID,
				RequestedBy: input.ActorID,
				Decision:    entity.DecisionPending,
				RequestedAt: now,
			}
			if err := r.Approvals.Create(rec); err != nil {
				return err
			}
		}
		result.Transaction = tx
		return nil
	}

	// Toda sobre-entrega restante debe estar aprobada (o venir de un revisor).
	if err := workflow.EnsureDeliveryPostable(tx, approvals, input.ActorRole); err != nil {
		return err
	}

	if input.InvoiceNumber != "" {
		tx.InvoiceNumber = input.InvoiceNumber
	}
	if strings.TrimSpace(tx.InvoiceNumber) == "" {
		ve := &domain.ValidationError{}
		ve.Add("invoice_number", "obligatorio al contabilizar")
		return ve
	}

	tx.Status = entity.TxStatusPosted
	if err := uc.postLines(r, tx, input.ActorID, now, result); err != nil {
		return err
	}
	result.Transaction = tx
	return nil
}

// refreshOverDelivery recalcula la bandera de sobre-entrega de cada línea
// vinculada a orden que aún no tiene registro de revisión, persistiendo el
// cambio. Devuelve las líneas que exceden lo pendiente y carecen de registro.
func refreshOverDelivery(r ports.Repos, tx *entity.Transaction, approvals []*entity.ApprovalRecord) ([]*entity.TransactionLine, error) {
	byLine := make(map[string]*entity.ApprovalRecord, len(approvals))
	for _, a := range approvals {
		byLine[a.EntityID] = a
	}
	var fresh []*entity.TransactionLine
	for i := range tx.Lines {
		line := &tx.Lines[i]
		if line.OrderLineID == "" {
			continue
		}
		if byLine[line.ID] != nil {
			// Ya hay revisión en curso o decidida: la bandera no se toca.
			continue
		}
		ol, err := r.Orders.GetLine(line.OrderLineID)
		if err != nil {
			return nil, err
		}
		if ol == nil {
			return nil, domain.ErrNotFound
		}
		over := line.Quantity.GreaterThan(ol.Remaining())
		if over != line.OverDelivery {
			line.OverDelivery = over
			if err := r.Transactions.UpdateLine(line); err != nil {
				return nil, err
			}
		}
		if over {
			fresh = append(fresh, line)
		}
	}
	return fresh, nil
}

// postLines aplica el efecto de la entrega: recepción al ledger línea a línea,
// seguimiento de cumplimiento y NCR por variación de precio. Las filas de lote
// se bloquean en orden de ítem para evitar interbloqueos entre workers.
func (uc *DeliveryUseCase) postLines(r ports.Repos, tx *entity.Transaction, actorID string, now time.Time, result *PostDeliveryResult) error {
	idx := make([]int, len(tx.Lines))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return tx.Lines[idx[a]].ItemID < tx.Lines[idx[b]].ItemID })

	total := decimal.Zero
	orderIDs := make(map[string]struct{})
	for _, i := range idx {
		line := &tx.Lines[i]
		if _, err := applyReceipt(r, tx.LocationID, line.ItemID, line.Quantity, line.UnitCost, now); err != nil {
			return err
		}
		total = total.Add(line.LineValue)

		if line.OrderLineID != "" {
			ol, err := fulfillment.ApplyDeliveredLine(r.Orders, line.OrderLineID, line.Quantity)
			if err != nil {
				return err
			}
			orderIDs[ol.OrderID] = struct{}{}
		}

		locked, err := r.Periods.GetLockedPrice(tx.PeriodID, line.ItemID)
		if err != nil {
			return err
		}
		if locked != nil && !line.UnitCost.Equal(*locked) {
			ncr := &entity.NCR{
				ID:                uuid.New().String(),
				TransactionLineID: line.ID,
				PeriodID:          tx.PeriodID,
				LocationID:        tx.LocationID,
				ItemID:            line.ItemID,
				LockedPrice:       *locked,
				ActualPrice:       line.UnitCost,
				Variance:          valuation.RoundMoney(line.UnitCost.Sub(*locked)),
				CreatedAt:         now,
			}
			if err := r.NCRs.Create(ncr); err != nil {
				return err
			}
			result.NCRsCreated = append(result.NCRsCreated, ncr.ID)
		}
	}

	for orderID := range orderIDs {
		orderClosed, reqClosed, err := fulfillment.CloseIfFulfilled(r.Orders, r.Requisitions, orderID, actorID, now)
		if err != nil {
			return err
		}
		result.OrderAutoClosed = result.OrderAutoClosed || orderClosed
		result.RequisitionAutoClosed = result.RequisitionAutoClosed || reqClosed
	}

	tx.TotalValue = valuation.RoundMoney(total)
	tx.UpdatedAt = now
	return r.Transactions.Update(tx)
}

// UpdateDraft reemplaza las líneas y la factura de un borrador de entrega.
// Solo los borradores admiten edición; las banderas de sobre-entrega se
// recalculan contra lo pendiente de cada línea de orden.
func (uc *DeliveryUseCase) UpdateDraft(ctx context.Context, input PostDeliveryInput) (*entity.Transaction, error) {
	ve := &domain.ValidationError{}
	if input.TransactionID == "" {
		ve.Add("transaction_id", "requerido")
	}
	if input.ActorID == "" {
		ve.Add("actor", "requerido")
	}
	if len(input.Lines) == 0 {
		ve.Add("lines", "se requiere al menos una línea")
	}
	for i, l := range input.Lines {
		if l.ItemID == "" {
			ve.Add(lineField(i, "item_id"), "requerido")
		}
		if !l.Quantity.IsPositive() {
			ve.Add(lineField(i, "quantity"), "debe ser mayor que cero")
		}
		if l.UnitCost.IsNegative() {
			ve.Add(lineField(i, "unit_cost"), "no puede ser negativo")
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	now := time.Now()
	var updated *entity.Transaction

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		tx, err := r.Transactions.GetByID(input.TransactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		if tx.Kind != entity.TxKindDelivery {
			return domain.ErrInvalidInput
		}
		if !tx.Editable() {
			return domain.ErrInvalidStateTransition
		}
		if _, err := guardPeriod(r, tx.PeriodID, tx.LocationID); err != nil {
			return err
		}

		if err := r.Transactions.DeleteLines(tx.ID); err != nil {
			return err
		}
		tx.Lines = nil
		total := decimal.Zero
		for _, in := range input.Lines {
			line := entity.TransactionLine{
				ID:            uuid.New().String(),
				TransactionID: tx.ID,
				ItemID:        in.ItemID,
				Quantity:      valuation.RoundQty(in.Quantity),
				UnitCost:      in.UnitCost,
				LineValue:     valuation.RoundMoney(in.Quantity.Mul(in.UnitCost)),
				OrderLineID:   in.OrderLineID,
			}
			if in.OrderLineID != "" {
				ol, err := r.Orders.GetLine(in.OrderLineID)
				if err != nil {
					return err
				}
				if ol == nil {
					return domain.ErrNotFound
				}
				line.OverDelivery = in.Quantity.GreaterThan(ol.Remaining())
			}
			total = total.Add(line.LineValue)
			tx.Lines = append(tx.Lines, line)
		}
		for i := range tx.Lines {
			if err := r.Transactions.CreateLine(&tx.Lines[i]); err != nil {
				return err
			}
		}

		if input.InvoiceNumber != "" {
			tx.InvoiceNumber = input.InvoiceNumber
		}
		tx.TotalValue = valuation.RoundMoney(total)
		tx.UpdatedAt = now
		if err := r.Transactions.Update(tx); err != nil {
			return err
		}
		updated = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDraft borra un borrador de entrega. Solo los borradores admiten
// borrado: una entrega contabilizada, estacionada o rechazada es inmutable.
func (uc *DeliveryUseCase) DeleteDraft(ctx context.Context, transactionID, actorID string) error {
	if transactionID == "" || actorID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		tx, err := r.Transactions.GetByID(transactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		if tx.Kind != entity.TxKindDelivery {
			return domain.ErrInvalidInput
		}
		if !tx.Editable() {
			return domain.ErrInvalidStateTransition
		}
		return r.Transactions.Delete(tx.ID)
	})
}

// GetDelivery devuelve la entrega junto con su estado visible, derivado de la
// cabecera y los registros de aprobación por línea.
func (uc *DeliveryUseCase) GetDelivery(ctx context.Context, transactionID string) (*entity.Transaction, string, error) {
	if transactionID == "" {
		return nil, "", domain.ErrInvalidInput
	}
	var (
		found  *entity.Transaction
		status string
	)
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		tx, err := r.Transactions.GetByID(transactionID)
		if err != nil {
			return err
		}
		if tx == nil || tx.Kind != entity.TxKindDelivery {
			return domain.ErrNotFound
		}
		lineIDs := make([]string, 0, len(tx.Lines))
		for _, l := range tx.Lines {
			lineIDs = append(lineIDs, l.ID)
		}
		approvals, err := r.Approvals.ListByEntities(entity.ApprovalKindOverDeliveryLine, lineIDs)
		if err != nil {
			return err
		}
		found = tx
		status = workflow.DeliveryStatus(tx, approvals)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return found, status, nil
}

func lineField(i int, name string) string {
	return fmt.Sprintf("lines[%d].%s", i, name)
}

package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/stock"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/valuation"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/workflow"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// TransferUseCase procesa traslados entre locaciones. Un traslado requiere
// aprobación antes de completarse: la solicitud valida suficiencia de forma
// consultiva y queda PENDING_APPROVAL; al aprobarla se revalida bajo bloqueo
// (autoritativo) y se aplican ambas piernas atómicamente, o ninguna.
type TransferUseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	log      *logger.Logger
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(txRunner ports.TxRunner, notifier ports.Notifier, log *logger.Logger) *TransferUseCase {
	return &TransferUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// RequestTransferInput entrada para solicitar un traslado.
type RequestTransferInput struct {
	FromLocationID string
	ToLocationID   string
	PeriodID       string
	ActorID        string
	Date           time.Time
	Lines          []IssueLineInput
}

// RequestTransfer registra la solicitud en PENDING_APPROVAL con su registro
// de aprobación. La suficiencia se chequea aquí solo de forma consultiva:
// el stock puede cambiar antes de la aprobación.
func (uc *TransferUseCase) RequestTransfer(ctx context.Context, input RequestTransferInput) (*entity.Transaction, error) {
	ve := &domain.ValidationError{}
	if input.FromLocationID == "" {
		ve.Add("from_location_id", "requerido")
	}
	if input.ToLocationID == "" {
		ve.Add("to_location_id", "requerido")
	}
	if input.FromLocationID != "" && input.FromLocationID == input.ToLocationID {
		ve.Add("to_location_id", "debe ser distinta a la locación origen")
	}
	if input.PeriodID == "" {
		ve.Add("period_id", "requerido")
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
	}
	if ve.HasErrors() {
		return nil, ve
	}

	now := time.Now()
	var created *entity.Transaction

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if _, err := guardPeriod(r, input.PeriodID, input.FromLocationID); err != nil {
			return err
		}
		if _, err := guardPeriod(r, input.PeriodID, input.ToLocationID); err != nil {
			return err
		}

		// Chequeo consultivo (sin bloqueo): reporta todos los faltantes.
		available := make(map[string]decimal.Decimal)
		requests := make([]stock.LineRequest, 0, len(input.Lines))
		for _, l := range input.Lines {
			requests = append(requests, stock.LineRequest{ItemID: l.ItemID, Requested: l.Quantity})
			if _, ok := available[l.ItemID]; !ok {
				lot, err := r.Lots.Get(input.FromLocationID, l.ItemID)
				if err != nil {
					return err
				}
				available[l.ItemID] = lot.Quantity
			}
		}
		if err := stock.CheckBulk(available, requests); err != nil {
			return err
		}

		number, err := r.Transactions.NextNumber(entity.TxKindTransfer)
		if err != nil {
			return err
		}
		tx := &entity.Transaction{
			ID:           uuid.New().String(),
			Number:       number,
			Kind:         entity.TxKindTransfer,
			LocationID:   input.FromLocationID,
			ToLocationID: input.ToLocationID,
			PeriodID:     input.PeriodID,
			Date:         input.Date,
			Status:       entity.TxStatusPendingApproval,
			CreatedBy:    input.ActorID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		for _, in := range input.Lines {
			tx.Lines = append(tx.Lines, entity.TransactionLine{
				ID:            uuid.New().String(),
				TransactionID: tx.ID,
				ItemID:        in.ItemID,
				Quantity:      valuation.RoundQty(in.Quantity),
			})
		}
		if err := r.Transactions.Create(tx); err != nil {
			return err
		}
		for i := range tx.Lines {
			if err := r.Transactions.CreateLine(&tx.Lines[i]); err != nil {
				return err
			}
		}
		rec := &entity.ApprovalRecord{
			ID:          uuid.New().String(),
			EntityKind:  entity.ApprovalKindTransfer,
			EntityID:    tx.ID,
			RequestedBy: input.ActorID,
			Decision:    entity.DecisionPending,
			RequestedAt: now,
		}
		if err := r.Approvals.Create(rec); err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(uc.log, uc.notifier, ports.Notification{
		Event:      "TRANSFER_REQUESTED",
		EntityKind: entity.ApprovalKindTransfer,
		EntityID:   created.ID,
		Actor:      input.ActorID,
		Message:    "traslado " + created.Number + " pendiente de aprobación",
	})
	return created, nil
}

// Approve resuelve la aprobación y aplica el traslado: consumo en origen al
// WAC vigente y recepción en destino con ese mismo costo, ambas piernas en la
// misma transacción de BD. El costo de recepción en destino es siempre el WAC
// del origen al momento del traslado.
func (uc *TransferUseCase) Approve(ctx context.Context, transferID, reviewerID, role string) (*entity.Transaction, error) {
	now := time.Now()
	var approved *entity.Transaction

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		tx, err := r.Transactions.GetByID(transferID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		if tx.Kind != entity.TxKindTransfer || tx.Status != entity.TxStatusPendingApproval {
			return domain.ErrInvalidStateTransition
		}
		rec, err := r.Approvals.GetOpenByEntity(entity.ApprovalKindTransfer, tx.ID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrInvalidStateTransition
		}
		if err := workflow.Decide(rec, reviewerID, role, entity.DecisionApproved, "", now); err != nil {
			return err
		}
		if err := r.Approvals.Update(rec); err != nil {
			return err
		}

		if _, err := guardPeriod(r, tx.PeriodID, tx.LocationID); err != nil {
			return err
		}
		if _, err := guardPeriod(r, tx.PeriodID, tx.ToLocationID); err != nil {
			return err
		}

		// Bloquea todos los lotes de origen en orden de ítem y revalida en
		// bloque: si el stock bajó desde la solicitud, el error lleva el
		// detalle completo de faltantes, no solo el primero.
		items := make([]string, 0, len(tx.Lines))
		seen := make(map[string]struct{})
		requests := make([]stock.LineRequest, 0, len(tx.Lines))
		for _, l := range tx.Lines {
			requests = append(requests, stock.LineRequest{ItemID: l.ItemID, Requested: l.Quantity})
			if _, ok := seen[l.ItemID]; !ok {
				seen[l.ItemID] = struct{}{}
				items = append(items, l.ItemID)
			}
		}
		sort.Strings(items)

		available := make(map[string]decimal.Decimal, len(items))
		for _, itemID := range items {
			lot, err := r.Lots.GetForUpdate(tx.LocationID, itemID)
			if err != nil {
				return err
			}
			available[itemID] = lot.Quantity
		}
		if err := stock.CheckBulk(available, requests); err != nil {
			return err
		}

		idx := make([]int, len(tx.Lines))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool { return tx.Lines[idx[a]].ItemID < tx.Lines[idx[b]].ItemID })

		total := decimal.Zero
		for _, i := range idx {
			line := &tx.Lines[i]
			wac, err := applyTransfer(r, tx.LocationID, tx.ToLocationID, line.ItemID, line.Quantity, now)
			if err != nil {
				return err
			}
			line.UnitCost = wac
			line.LineValue = valuation.RoundMoney(line.Quantity.Mul(wac))
			if err := r.Transactions.UpdateLine(line); err != nil {
				return err
			}
			total = total.Add(line.LineValue)
		}

		tx.Status = entity.TxStatusCompleted
		tx.TotalValue = valuation.RoundMoney(total)
		tx.UpdatedAt = now
		if err := r.Transactions.Update(tx); err != nil {
			return err
		}
		approved = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(uc.log, uc.notifier, ports.Notification{
		Event:      "TRANSFER_APPROVED",
		EntityKind: entity.ApprovalKindTransfer,
		EntityID:   approved.ID,
		Actor:      reviewerID,
		Message:    "traslado " + approved.Number + " aprobado y aplicado",
	})
	return approved, nil
}

// Reject rechaza el traslado. El motivo es obligatorio; el rechazo es
// terminal y el ledger nunca fue tocado.
func (uc *TransferUseCase) Reject(ctx context.Context, transferID, reviewerID, role, reason string) (*entity.Transaction, error) {
	now := time.Now()
	var rejected *entity.Transaction

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		tx, err := r.Transactions.GetByID(transferID)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.ErrNotFound
		}
		if tx.Kind != entity.TxKindTransfer || tx.Status != entity.TxStatusPendingApproval {
			return domain.ErrInvalidStateTransition
		}
		rec, err := r.Approvals.GetOpenByEntity(entity.ApprovalKindTransfer, tx.ID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrInvalidStateTransition
		}
		if err := workflow.Decide(rec, reviewerID, role, entity.DecisionRejected, reason, now); err != nil {
			return err
		}
		if err := r.Approvals.Update(rec); err != nil {
			return err
		}
		tx.Status = entity.TxStatusRejected
		tx.UpdatedAt = now
		if err := r.Transactions.Update(tx); err != nil {
			return err
		}
		rejected = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(uc.log, uc.notifier, ports.Notification{
		Event:      "TRANSFER_REJECTED",
		EntityKind: entity.ApprovalKindTransfer,
		EntityID:   rejected.ID,
		Actor:      reviewerID,
		Message:    "traslado " + rejected.Number + " rechazado: " + reason,
	})
	return rejected, nil
}

package approval

import (
	"context"
	"time"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/workflow"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// OverDeliveryUseCase resuelve revisiones de sobre-entrega línea a línea.
// La entrega estacionada no toca el ledger hasta que todas sus líneas de
// sobre-entrega estén aprobadas; el rechazo de cualquiera es terminal para
// la entrega completa.
type OverDeliveryUseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	log      *logger.Logger
}

// NewOverDeliveryUseCase construye el caso de uso.
func NewOverDeliveryUseCase(txRunner ports.TxRunner, notifier ports.Notifier, log *logger.Logger) *OverDeliveryUseCase {
	return &OverDeliveryUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// Approve aprueba las líneas indicadas. Cada línea debe tener un registro de
// aprobación PENDING; aprobar una línea ya decidida es una transición inválida.
// Aprobar no contabiliza: la entrega sigue estacionada hasta postDelivery.
func (uc *OverDeliveryUseCase) Approve(ctx context.Context, lineIDs []string, reviewerID, role string) error {
	if err := validateReview(lineIDs, reviewerID); err != nil {
		return err
	}

	now := time.Now()
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		for _, lineID := range lineIDs {
			rec, err := r.Approvals.GetOpenByEntity(entity.ApprovalKindOverDeliveryLine, lineID)
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
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.notify("OVER_DELIVERY_APPROVED", lineIDs, reviewerID, "líneas de sobre-entrega aprobadas")
	return nil
}

// Reject rechaza las líneas indicadas con motivo obligatorio y marca la
// entrega padre REJECTED. El rechazo es terminal: la entrega no puede
// contabilizarse ni editarse después.
func (uc *OverDeliveryUseCase) Reject(ctx context.Context, lineIDs []string, reviewerID, role, reason string) error {
	if err := validateReview(lineIDs, reviewerID); err != nil {
		return err
	}

	now := time.Now()
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		parents := make(map[string]struct{})
		for _, lineID := range lineIDs {
			rec, err := r.Approvals.GetOpenByEntity(entity.ApprovalKindOverDeliveryLine, lineID)
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

			line, err := r.Transactions.GetLine(lineID)
			if err != nil {
				return err
			}
			if line == nil {
				return domain.ErrNotFound
			}
			parents[line.TransactionID] = struct{}{}
		}

		for txID := range parents {
			tx, err := r.Transactions.GetByID(txID)
			if err != nil {
				return err
			}
			if tx == nil {
				return domain.ErrNotFound
			}
			tx.Status = entity.TxStatusRejected
			tx.UpdatedAt = now
			if err := r.Transactions.Update(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.notify("OVER_DELIVERY_REJECTED", lineIDs, reviewerID, "líneas de sobre-entrega rechazadas: "+reason)
	return nil
}

func validateReview(lineIDs []string, reviewerID string) error {
	ve := &domain.ValidationError{}
	if len(lineIDs) == 0 {
		ve.Add("line_ids", "se requiere al menos una línea")
	}
	if reviewerID == "" {
		ve.Add("reviewer", "requerido")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (uc *OverDeliveryUseCase) notify(event string, lineIDs []string, actor, msg string) {
	if uc.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n := ports.Notification{
			Event:      event,
			EntityKind: entity.ApprovalKindOverDeliveryLine,
			EntityID:   lineIDs[0],
			Actor:      actor,
			Message:    msg,
		}
		if err := uc.notifier.Send(ctx, n); err != nil && uc.log != nil {
			uc.log.Error().Err(err).Str("event", event).Msg("notificación fallida (no bloqueante)")
		}
	}()
}

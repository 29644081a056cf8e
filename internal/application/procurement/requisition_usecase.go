package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/workflow"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// RequisitionUseCase gestiona el ciclo de vida de las requisiciones (PRF):
// borrador, envío a revisión, decisión, clonado de rechazadas y borrado de
// borradores.
type RequisitionUseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	log      *logger.Logger
}

// NewRequisitionUseCase construye el caso de uso.
func NewRequisitionUseCase(txRunner ports.TxRunner, notifier ports.Notifier, log *logger.Logger) *RequisitionUseCase {
	return &RequisitionUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// RequisitionLineInput línea de requisición: ítem del catálogo o descripción
// libre (exactamente uno de los dos).
type RequisitionLineInput struct {
	ItemID         string
	Description    string
	Quantity       decimal.Decimal
	EstimatedPrice decimal.Decimal
}

// CreateRequisitionInput entrada para crear un borrador de requisición.
type CreateRequisitionInput struct {
	LocationID string
	PeriodID   string
	ActorID    string
	Lines      []RequisitionLineInput
}

// Create crea la requisición en DRAFT con número PRF secuencial.
func (uc *RequisitionUseCase) Create(ctx context.Context, input CreateRequisitionInput) (*entity.Requisition, error) {
	ve := &domain.ValidationError{}
	if input.LocationID == "" {
		ve.Add("location_id", "requerido")
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
		if l.ItemID == "" && l.Description == "" {
			ve.Add(fmt.Sprintf("lines[%d]", i), "se requiere ítem o descripción")
		}
		if !l.Quantity.IsPositive() {
			ve.Add(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		if l.EstimatedPrice.IsNegative() {
			ve.Add(fmt.Sprintf("lines[%d].estimated_price", i), "no puede ser negativo")
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	now := time.Now()
	var req *entity.Requisition

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		period, err := r.Periods.GetByID(input.PeriodID)
		if err != nil {
			return err
		}
		if period == nil {
			return domain.ErrNotFound
		}
		if period.Status != entity.PeriodStatusOpen {
			return domain.ErrPeriodClosed
		}

		number, err := r.Requisitions.NextNumber()
		if err != nil {
			return err
		}
		req = &entity.Requisition{
			ID:         uuid.New().String(),
			Number:     number,
			LocationID: input.LocationID,
			PeriodID:   input.PeriodID,
			Status:     entity.ReqStatusDraft,
			CreatedBy:  input.ActorID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Requisitions.Create(req); err != nil {
			return err
		}
		for _, in := range input.Lines {
			line := entity.RequisitionLine{
				ID:             uuid.New().String(),
				RequisitionID:  req.ID,
				ItemID:         in.ItemID,
				Description:    in.Description,
				Quantity:       in.Quantity,
				EstimatedPrice: in.EstimatedPrice,
			}
			if err := r.Requisitions.CreateLine(&line); err != nil {
				return err
			}
			req.Lines = append(req.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Submit envía el borrador a revisión. Solo el creador puede enviar; el envío
// crea implícitamente el registro de aprobación PENDING.
func (uc *RequisitionUseCase) Submit(ctx context.Context, requisitionID, actorID string) (*entity.Requisition, error) {
	now := time.Now()
	var req *entity.Requisition

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		req, err = r.Requisitions.GetByID(requisitionID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.CreatedBy != actorID {
			return domain.ErrForbidden
		}
		if req.Status != entity.ReqStatusDraft {
			return domain.ErrInvalidStateTransition
		}

		req.Status = entity.ReqStatusPending
		req.UpdatedAt = now
		if err := r.Requisitions.UpdateStatus(req); err != nil {
			return err
		}
		return r.Approvals.Create(&entity.ApprovalRecord{
			ID:          uuid.New().String(),
			EntityKind:  entity.ApprovalKindRequisition,
			EntityID:    req.ID,
			RequestedBy: actorID,
			Decision:    entity.DecisionPending,
			RequestedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.notifyEvent("REQUISITION_SUBMITTED", req, actorID, "requisición "+req.Number+" enviada a revisión")
	return req, nil
}

// Approve aprueba la requisición pendiente.
func (uc *RequisitionUseCase) Approve(ctx context.Context, requisitionID, reviewerID, role string) (*entity.Requisition, error) {
	return uc.decide(ctx, requisitionID, reviewerID, role, entity.DecisionApproved, "")
}

// Reject rechaza la requisición pendiente. El motivo es obligatorio y el
// rechazo es terminal: la requisición solo puede clonarse a un nuevo borrador.
func (uc *RequisitionUseCase) Reject(ctx context.Context, requisitionID, reviewerID, role, reason string) (*entity.Requisition, error) {
	return uc.decide(ctx, requisitionID, reviewerID, role, entity.DecisionRejected, reason)
}

func (uc *RequisitionUseCase) decide(ctx context.Context, requisitionID, reviewerID, role, decision, reason string) (*entity.Requisition, error) {
	now := time.Now()
	var req *entity.Requisition

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		req, err = r.Requisitions.GetByID(requisitionID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.Status != entity.ReqStatusPending {
			return domain.ErrInvalidStateTransition
		}

		rec, err := r.Approvals.GetOpenByEntity(entity.ApprovalKindRequisition, req.ID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrInvalidStateTransition
		}
		if err := workflow.Decide(rec, reviewerID, role, decision, reason, now); err != nil {
			return err
		}
		if err := r.Approvals.Update(rec); err != nil {
			return err
		}

		if decision == entity.DecisionApproved {
			req.Status = entity.ReqStatusApproved
		} else {
			req.Status = entity.ReqStatusRejected
		}
		req.UpdatedAt = now
		return r.Requisitions.UpdateStatus(req)
	})
	if err != nil {
		return nil, err
	}

	event := "REQUISITION_APPROVED"
	msg := "requisición " + req.Number + " aprobada"
	if decision == entity.DecisionRejected {
		event = "REQUISITION_REJECTED"
		msg = "requisición " + req.Number + " rechazada: " + reason
	}
	uc.notifyEvent(event, req, reviewerID, msg)
	return req, nil
}

// Clone crea un nuevo borrador a partir de una requisición rechazada,
// copiando sus líneas. El original queda intacto: REJECTED es terminal.
func (uc *RequisitionUseCase) Clone(ctx context.Context, requisitionID, actorID string) (*entity.Requisition, error) {
	now := time.Now()
	var clone *entity.Requisition

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		orig, err := r.Requisitions.GetByID(requisitionID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		if orig.Status != entity.ReqStatusRejected {
			return domain.ErrInvalidStateTransition
		}

		number, err := r.Requisitions.NextNumber()
		if err != nil {
			return err
		}
		clone = &entity.Requisition{
			ID:         uuid.New().String(),
			Number:     number,
			LocationID: orig.LocationID,
			PeriodID:   orig.PeriodID,
			Status:     entity.ReqStatusDraft,
			CreatedBy:  actorID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Requisitions.Create(clone); err != nil {
			return err
		}
		for _, l := range orig.Lines {
			line := entity.RequisitionLine{
				ID:             uuid.New().String(),
				RequisitionID:  clone.ID,
				ItemID:         l.ItemID,
				Description:    l.Description,
				Quantity:       l.Quantity,
				EstimatedPrice: l.EstimatedPrice,
			}
			if err := r.Requisitions.CreateLine(&line); err != nil {
				return err
			}
			clone.Lines = append(clone.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// Delete borra la requisición. Solo borradores, solo el creador.
func (uc *RequisitionUseCase) Delete(ctx context.Context, requisitionID, actorID string) error {
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		req, err := r.Requisitions.GetByID(requisitionID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.CreatedBy != actorID {
			return domain.ErrForbidden
		}
		if req.Status != entity.ReqStatusDraft {
			return domain.ErrInvalidStateTransition
		}
		return r.Requisitions.Delete(req.ID)
	})
}

func (uc *RequisitionUseCase) notifyEvent(event string, req *entity.Requisition, actor, msg string) {
	if uc.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n := ports.Notification{
			Event:      event,
			EntityKind: entity.ApprovalKindRequisition,
			EntityID:   req.ID,
			Actor:      actor,
			Message:    msg,
		}
		if err := uc.notifier.Send(ctx, n); err != nil && uc.log != nil {
			uc.log.Error().Err(err).Str("event", event).Msg("notificación fallida (no bloqueante)")
		}
	}()
}

package fulfillment

import (
	"context"
	"strings"
	"time"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// CloseOrderUseCase cierra una orden manualmente. Si la orden está corta de
// entrega, el motivo es obligatorio: queda como texto libre para auditoría.
type CloseOrderUseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	log      *logger.Logger
}

// NewCloseOrderUseCase construye el caso de uso.
func NewCloseOrderUseCase(txRunner ports.TxRunner, notifier ports.Notifier, log *logger.Logger) *CloseOrderUseCase {
	return &CloseOrderUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// CloseOrderResult resultado del cierre manual.
type CloseOrderResult struct {
	Order                 *entity.Order
	RequisitionAutoClosed bool
}

// Close cierra la orden indicada. Solo órdenes OPEN son cerrables; repetir el
// cierre es una transición inválida, no un no-op silencioso.
func (uc *CloseOrderUseCase) Close(ctx context.Context, orderID, actorID, reason string) (*CloseOrderResult, error) {
	if orderID == "" || actorID == "" {
		ve := &domain.ValidationError{}
		if orderID == "" {
			ve.Add("order_id", "requerido")
		}
		if actorID == "" {
			ve.Add("actor", "requerido")
		}
		return nil, ve
	}

	now := time.Now()
	result := &CloseOrderResult{}

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		o, err := r.Orders.GetByID(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if o.Status != entity.OrderStatusOpen {
			return domain.ErrInvalidStateTransition
		}

		// Cierre corto: hay cantidades pendientes y alguien decide no esperarlas.
		if !o.FullyDelivered() && strings.TrimSpace(reason) == "" {
			ve := &domain.ValidationError{}
			ve.Add("reason", "obligatorio al cerrar una orden con entregas pendientes")
			return ve
		}

		o.Status = entity.OrderStatusClosed
		o.CloseReason = strings.TrimSpace(reason)
		o.ClosedBy = &actorID
		o.ClosedAt = &now
		o.UpdatedAt = now
		if err := r.Orders.Close(o); err != nil {
			return err
		}

		reqClosed, err := closeSourceRequisition(r.Requisitions, o.RequisitionID, now)
		if err != nil {
			return err
		}
		result.Order = o
		result.RequisitionAutoClosed = reqClosed
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifyClose(uc.log, uc.notifier, result.Order, actorID)
	return result, nil
}

// notifyClose envía la notificación de cierre en background; un fallo jamás
// revierte el cierre ya confirmado.
func notifyClose(log *logger.Logger, notifier ports.Notifier, o *entity.Order, actorID string) {
	if notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n := ports.Notification{
			Event:      "ORDER_CLOSED",
			EntityKind: entity.ApprovalKindOrder,
			EntityID:   o.ID,
			Actor:      actorID,
			Message:    "orden " + o.Number + " cerrada",
		}
		if err := notifier.Send(ctx, n); err != nil && log != nil {
			log.Error().Err(err).
				Str("event", n.Event).
				Str("entity_id", n.EntityID).
				Msg("notificación fallida (no bloqueante)")
		}
	}()
}

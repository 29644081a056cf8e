package fulfillment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

// Seguimiento de cumplimiento: acumulado entregado vs pedido sobre las líneas
// de orden. Las líneas de la orden son la fuente autoritativa; las líneas de
// entrega solo las referencian por lookup.

// ApplyDeliveredLine acumula la cantidad entregada sobre la línea de orden,
// bajo bloqueo de fila. Se invoca dentro de la misma transacción de BD que
// contabiliza la entrega.
func ApplyDeliveredLine(orders repository.OrderRepository, orderLineID string, qty decimal.Decimal) (*entity.OrderLine, error) {
	line, err := orders.GetLineForUpdate(orderLineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, domain.ErrNotFound
	}
	line.QtyDelivered = line.QtyDelivered.Add(qty)
	if err := orders.UpdateLineDelivered(line.ID, line.QtyDelivered); err != nil {
		return nil, err
	}
	return line, nil
}

// CloseIfFulfilled cierra la orden automáticamente si y solo si todas sus
// líneas satisfacen entregado >= pedido. Si la requisición origen está
// APPROVED, también la cierra. Devuelve qué se cerró.
func CloseIfFulfilled(orders repository.OrderRepository, reqs repository.RequisitionRepository, orderID, actorID string, now time.Time) (orderClosed, requisitionClosed bool, err error) {
	o, err := orders.GetByID(orderID)
	if err != nil {
		return false, false, err
	}
	if o == nil || o.Status != entity.OrderStatusOpen || !o.FullyDelivered() {
		return false, false, nil
	}

	o.Status = entity.OrderStatusClosed
	o.ClosedBy = &actorID
	o.ClosedAt = &now
	o.UpdatedAt = now
	if err := orders.Close(o); err != nil {
		return false, false, err
	}

	reqClosed, err := closeSourceRequisition(reqs, o.RequisitionID, now)
	if err != nil {
		return false, false, err
	}
	return true, reqClosed, nil
}

// closeSourceRequisition cierra la requisición origen solo si está APPROVED.
func closeSourceRequisition(reqs repository.RequisitionRepository, requisitionID string, now time.Time) (bool, error) {
	if requisitionID == "" {
		return false, nil
	}
	req, err := reqs.GetByID(requisitionID)
	if err != nil {
		return false, err
	}
	if req == nil || req.Status != entity.ReqStatusApproved {
		return false, nil
	}
	req.Status = entity.ReqStatusClosed
	req.ClosedAt = &now
	req.UpdatedAt = now
	if err := reqs.UpdateStatus(req); err != nil {
		return false, err
	}
	return true, nil
}

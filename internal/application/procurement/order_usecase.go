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
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/valuation"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// OrderUseCase crea órdenes de compra a partir de requisiciones aprobadas.
// La relación requisición-orden es 1:1 estricta.
type OrderUseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	log      *logger.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(txRunner ports.TxRunner, notifier ports.Notifier, log *logger.Logger) *OrderUseCase {
	return &OrderUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// OrderLineInput línea de orden con precio negociado, descuento e IVA.
type OrderLineInput struct {
	ItemID      string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	VATPct      decimal.Decimal
}

// CreateOrderInput entrada para crear la orden desde su requisición.
type CreateOrderInput struct {
	RequisitionID string
	SupplierName  string
	ActorID       string
	Lines         []OrderLineInput
}

// CreateFromRequisition crea la orden OPEN con número PO secuencial. La
// requisición debe estar APPROVED y no tener ya una orden.
func (uc *OrderUseCase) CreateFromRequisition(ctx context.Context, input CreateOrderInput) (*entity.Order, error) {
	ve := &domain.ValidationError{}
	if input.RequisitionID == "" {
		ve.Add("requisition_id", "requerido")
	}
	if input.SupplierName == "" {
		ve.Add("supplier_name", "requerido")
	}
	if input.ActorID == "" {
		ve.Add("actor", "requerido")
	}
	if len(input.Lines) == 0 {
		ve.Add("lines", "se requiere al menos una línea")
	}
	for i, l := range input.Lines {
		if l.ItemID == "" {
			ve.Add(fmt.Sprintf("lines[%d].item_id", i), "requerido")
		}
		if !l.Quantity.IsPositive() {
			ve.Add(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
		}
		if l.UnitPrice.IsNegative() {
			ve.Add(fmt.Sprintf("lines[%d].unit_price", i), "no puede ser negativo")
		}
		if l.DiscountPct.IsNegative() || l.DiscountPct.GreaterThan(decimal.NewFromInt(100)) {
			ve.Add(fmt.Sprintf("lines[%d].discount_pct", i), "debe estar entre 0 y 100")
		}
		if l.VATPct.IsNegative() {
			ve.Add(fmt.Sprintf("lines[%d].vat_pct", i), "no puede ser negativo")
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	now := time.Now()
	var order *entity.Order

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		req, err := r.Requisitions.GetByID(input.RequisitionID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.Status != entity.ReqStatusApproved {
			return domain.ErrInvalidStateTransition
		}

		existing, err := r.Orders.GetByRequisition(req.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("la requisición %s ya tiene orden %s: %w", req.Number, existing.Number, domain.ErrConflict)
		}

		number, err := r.Orders.NextNumber()
		if err != nil {
			return err
		}
		order = &entity.Order{
			ID:            uuid.New().String(),
			Number:        number,
			RequisitionID: req.ID,
			SupplierName:  input.SupplierName,
			Status:        entity.OrderStatusOpen,
			CreatedBy:     input.ActorID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := r.Orders.Create(order); err != nil {
			return err
		}
		for _, in := range input.Lines {
			line := entity.OrderLine{
				ID:          uuid.New().String(),
				OrderID:     order.ID,
				ItemID:      in.ItemID,
				QtyOrdered:  valuation.RoundQty(in.Quantity),
				UnitPrice:   in.UnitPrice,
				DiscountPct: in.DiscountPct,
				VATPct:      in.VATPct,
				LineTotal:   lineTotal(in),
			}
			if err := r.Orders.CreateLine(&line); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.notifier != nil {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			n := ports.Notification{
				Event:      "ORDER_CREATED",
				EntityKind: entity.ApprovalKindOrder,
				EntityID:   order.ID,
				Actor:      input.ActorID,
				Message:    "orden " + order.Number + " creada",
			}
			if err := uc.notifier.Send(nctx, n); err != nil && uc.log != nil {
				uc.log.Error().Err(err).Str("event", n.Event).Msg("notificación fallida (no bloqueante)")
			}
		}()
	}
	return order, nil
}

var hundred = decimal.NewFromInt(100)

// lineTotal = qty * precio * (1 - desc/100) * (1 + iva/100), redondeado a moneda.
func lineTotal(l OrderLineInput) decimal.Decimal {
	net := l.Quantity.Mul(l.UnitPrice).
		Mul(decimal.NewFromInt(1).Sub(l.DiscountPct.Div(hundred)))
	gross := net.Mul(decimal.NewFromInt(1).Add(l.VATPct.Div(hundred)))
	return valuation.RoundMoney(gross)
}

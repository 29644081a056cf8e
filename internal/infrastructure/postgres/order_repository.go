package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera de la orden. La relación con la requisición es
// 1:1: el índice único sobre requisition_id la hace cumplir en BD.
func (r *OrderRepo) Create(o *entity.Order) error {
	query := `
		INSERT INTO orders (id, number, requisition_id, supplier_name, status, close_reason, closed_by, closed_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		o.ID, o.Number, o.RequisitionID, o.SupplierName, o.Status,
		o.CloseReason, o.ClosedBy, o.ClosedAt, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de orden.
func (r *OrderRepo) CreateLine(l *entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, item_id, qty_ordered, qty_delivered, unit_price, discount_pct, vat_pct, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.OrderID, l.ItemID, l.QtyOrdered, l.QtyDelivered, l.UnitPrice, l.DiscountPct, l.VATPct, l.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

const orderColumns = `id, number, requisition_id, supplier_name, status, close_reason, closed_by, closed_at, created_by, created_at, updated_at`

// GetByID obtiene la orden con sus líneas; nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.getBy(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByRequisition obtiene la orden de la requisición (1:1); nil si no hay.
func (r *OrderRepo) GetByRequisition(requisitionID string) (*entity.Order, error) {
	return r.getBy(`SELECT `+orderColumns+` FROM orders WHERE requisition_id = $1`, requisitionID)
}

func (r *OrderRepo) getBy(query, arg string) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&o.ID, &o.Number, &o.RequisitionID, &o.SupplierName, &o.Status,
		&o.CloseReason, &o.ClosedBy, &o.ClosedAt, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.q.Query(context.Background(),
		`SELECT `+orderLineColumns+` FROM order_lines WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		if err := scanOrderLine(rows, &l); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

const orderLineColumns = `id, order_id, item_id, qty_ordered, qty_delivered, unit_price, discount_pct, vat_pct, line_total`

func scanOrderLine(row pgx.Row, l *entity.OrderLine) error {
	if err := row.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.QtyOrdered, &l.QtyDelivered,
		&l.UnitPrice, &l.DiscountPct, &l.VATPct, &l.LineTotal); err != nil {
		return fmt.Errorf("scan order line: %w", err)
	}
	return nil
}

// GetLine obtiene una línea de orden por ID; nil si no existe.
func (r *OrderRepo) GetLine(lineID string) (*entity.OrderLine, error) {
	return r.getLine(`SELECT `+orderLineColumns+` FROM order_lines WHERE id = $1`, lineID)
}

// GetLineForUpdate obtiene la línea y bloquea la fila para acumular la
// cantidad entregada sin carreras entre entregas concurrentes.
func (r *OrderRepo) GetLineForUpdate(lineID string) (*entity.OrderLine, error) {
	return r.getLine(`SELECT `+orderLineColumns+` FROM order_lines WHERE id = $1 FOR UPDATE`, lineID)
}

func (r *OrderRepo) getLine(query, lineID string) (*entity.OrderLine, error) {
	var l entity.OrderLine
	err := scanOrderLine(r.q.QueryRow(context.Background(), query, lineID), &l)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// UpdateLineDelivered fija el acumulado entregado de la línea.
func (r *OrderRepo) UpdateLineDelivered(lineID string, delivered decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE order_lines SET qty_delivered = $2 WHERE id = $1`, lineID, delivered)
	if err != nil {
		return fmt.Errorf("update order line delivered: %w", err)
	}
	return nil
}

// Close marca la orden CLOSED con motivo, actor y fecha.
func (r *OrderRepo) Close(o *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, close_reason = $3, closed_by = $4, closed_at = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		o.ID, o.Status, o.CloseReason, o.ClosedBy, o.ClosedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("close order: %w", err)
	}
	return nil
}

// NextNumber obtiene el siguiente número PO secuencial.
func (r *OrderRepo) NextNumber() (string, error) {
	return nextSequence(r.q, "order", "PO")
}

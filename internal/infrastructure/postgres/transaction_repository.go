package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación de TransactionRepository sobre PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador de transacciones. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Prefijos de numeración por tipo de transacción.
var numberPrefixes = map[string]string{
	entity.TxKindDelivery:       "DLV",
	entity.TxKindIssue:          "ISS",
	entity.TxKindTransfer:       "TRF",
	entity.TxKindReconciliation: "RCN",
}

// Create persiste la cabecera de la transacción.
func (r *TransactionRepo) Create(tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, number, kind, location_id, to_location_id, period_id, date, status, invoice_number, total_value, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.Number, tx.Kind, tx.LocationID, tx.ToLocationID, tx.PeriodID,
		tx.Date, tx.Status, tx.InvoiceNumber, tx.TotalValue, tx.CreatedBy, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de transacción.
func (r *TransactionRepo) CreateLine(line *entity.TransactionLine) error {
	query := `
		INSERT INTO transaction_lines (id, transaction_id, item_id, quantity, unit_cost, line_value, order_line_id, cost_at_issue, over_delivery, adjustment, amount)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, NULLIF($10, ''), $11)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.TransactionID, line.ItemID, line.Quantity, line.UnitCost, line.LineValue,
		line.OrderLineID, line.CostAtIssue, line.OverDelivery, line.Adjustment, line.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert transaction line: %w", err)
	}
	return nil
}

const txColumns = `id, number, kind, location_id, COALESCE(to_location_id, ''), period_id, date, status, invoice_number, total_value, created_by, created_at, updated_at`

// GetByID obtiene la transacción con sus líneas; nil si no existe.
func (r *TransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`
	var t entity.Transaction
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.Number, &t.Kind, &t.LocationID, &t.ToLocationID, &t.PeriodID,
		&t.Date, &t.Status, &t.InvoiceNumber, &t.TotalValue, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	lines, err := r.linesByTransaction(t.ID)
	if err != nil {
		return nil, err
	}
	t.Lines = lines
	return &t, nil
}

const lineColumns = `id, transaction_id, item_id, quantity, unit_cost, line_value, COALESCE(order_line_id, ''), cost_at_issue, over_delivery, COALESCE(adjustment, ''), amount`

func (r *TransactionRepo) linesByTransaction(txID string) ([]entity.TransactionLine, error) {
	query := `SELECT ` + lineColumns + ` FROM transaction_lines WHERE transaction_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, txID)
	if err != nil {
		return nil, fmt.Errorf("list transaction lines: %w", err)
	}
	defer rows.Close()

	var lines []entity.TransactionLine
	for rows.Next() {
		var l entity.TransactionLine
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.ItemID, &l.Quantity, &l.UnitCost, &l.LineValue,
			&l.OrderLineID, &l.CostAtIssue, &l.OverDelivery, &l.Adjustment, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan transaction line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// GetLine obtiene una línea por ID; nil si no existe.
func (r *TransactionRepo) GetLine(lineID string) (*entity.TransactionLine, error) {
	query := `SELECT ` + lineColumns + ` FROM transaction_lines WHERE id = $1`
	var l entity.TransactionLine
	err := r.q.QueryRow(context.Background(), query, lineID).Scan(
		&l.ID, &l.TransactionID, &l.ItemID, &l.Quantity, &l.UnitCost, &l.LineValue,
		&l.OrderLineID, &l.CostAtIssue, &l.OverDelivery, &l.Adjustment, &l.Amount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction line: %w", err)
	}
	return &l, nil
}

// UpdateLine actualiza costo, valor y bandera de sobre-entrega de una línea.
func (r *TransactionRepo) UpdateLine(line *entity.TransactionLine) error {
	query := `UPDATE transaction_lines SET unit_cost = $2, line_value = $3, over_delivery = $4 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, line.ID, line.UnitCost, line.LineValue, line.OverDelivery)
	if err != nil {
		return fmt.Errorf("update transaction line: %w", err)
	}
	return nil
}

// Update actualiza estado, total, factura y fecha de modificación de la cabecera.
func (r *TransactionRepo) Update(tx *entity.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $2, total_value = $3, invoice_number = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, tx.ID, tx.Status, tx.TotalValue, tx.InvoiceNumber, tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Delete borra la transacción y sus líneas (cascada en el esquema).
func (r *TransactionRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// DeleteLines borra todas las líneas de la transacción.
func (r *TransactionRepo) DeleteLines(transactionID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM transaction_lines WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("delete transaction lines: %w", err)
	}
	return nil
}

// NextNumber obtiene el siguiente número secuencial legible del tipo.
func (r *TransactionRepo) NextNumber(kind string) (string, error) {
	prefix, ok := numberPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("tipo de transacción desconocido: %s", kind)
	}
	return nextSequence(r.q, "tx_"+kind, prefix)
}

// CountUnposted cuenta transacciones en DRAFT o PENDING_APPROVAL de la
// locación en el período.
func (r *TransactionRepo) CountUnposted(periodID, locationID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM transactions
		WHERE period_id = $1 AND (location_id = $2 OR to_location_id = $2)
		AND status IN ($3, $4)`
	var n int
	err := r.q.QueryRow(context.Background(), query, periodID, locationID,
		entity.TxStatusDraft, entity.TxStatusPendingApproval).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unposted: %w", err)
	}
	return n, nil
}

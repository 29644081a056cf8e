package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

var _ repository.RequisitionRepository = (*RequisitionRepo)(nil)

// RequisitionRepo implementación de RequisitionRepository sobre PostgreSQL (usable con pool o tx).
type RequisitionRepo struct {
	q Querier
}

// NewRequisitionRepository construye el adaptador de requisiciones. Pasar pool o tx (Querier).
func NewRequisitionRepository(q Querier) *RequisitionRepo {
	return &RequisitionRepo{q: q}
}

// Create persiste la cabecera de la requisición.
func (r *RequisitionRepo) Create(req *entity.Requisition) error {
	query := `
		INSERT INTO requisitions (id, number, location_id, period_id, status, created_by, created_at, updated_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		req.ID, req.Number, req.LocationID, req.PeriodID, req.Status,
		req.CreatedBy, req.CreatedAt, req.UpdatedAt, req.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("insert requisition: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de requisición.
func (r *RequisitionRepo) CreateLine(l *entity.RequisitionLine) error {
	query := `
		INSERT INTO requisition_lines (id, requisition_id, item_id, description, quantity, estimated_price)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.RequisitionID, l.ItemID, l.Description, l.Quantity, l.EstimatedPrice,
	)
	if err != nil {
		return fmt.Errorf("insert requisition line: %w", err)
	}
	return nil
}

// GetByID obtiene la requisición con sus líneas; nil si no existe.
func (r *RequisitionRepo) GetByID(id string) (*entity.Requisition, error) {
	query := `
		SELECT id, number, location_id, period_id, status, created_by, created_at, updated_at, closed_at
		FROM requisitions WHERE id = $1`
	var req entity.Requisition
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&req.ID, &req.Number, &req.LocationID, &req.PeriodID, &req.Status,
		&req.CreatedBy, &req.CreatedAt, &req.UpdatedAt, &req.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get requisition: %w", err)
	}

	rows, err := r.q.Query(context.Background(), `
		SELECT id, requisition_id, COALESCE(item_id, ''), description, quantity, estimated_price
		FROM requisition_lines WHERE requisition_id = $1 ORDER BY id`, req.ID)
	if err != nil {
		return nil, fmt.Errorf("list requisition lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.RequisitionLine
		if err := rows.Scan(&l.ID, &l.RequisitionID, &l.ItemID, &l.Description, &l.Quantity, &l.EstimatedPrice); err != nil {
			return nil, fmt.Errorf("scan requisition line: %w", err)
		}
		req.Lines = append(req.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus cambia el estado y ClosedAt de la requisición.
func (r *RequisitionRepo) UpdateStatus(req *entity.Requisition) error {
	query := `UPDATE requisitions SET status = $2, updated_at = $3, closed_at = $4 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, req.ID, req.Status, req.UpdatedAt, req.ClosedAt)
	if err != nil {
		return fmt.Errorf("update requisition status: %w", err)
	}
	return nil
}

// Delete borra la requisición y sus líneas (cascada en el esquema).
func (r *RequisitionRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM requisitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete requisition: %w", err)
	}
	return nil
}

// NextNumber obtiene el siguiente número PRF secuencial.
func (r *RequisitionRepo) NextNumber() (string, error) {
	return nextSequence(r.q, "requisition", "PRF")
}

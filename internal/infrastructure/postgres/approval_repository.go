package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

var _ repository.ApprovalRepository = (*ApprovalRepo)(nil)

// ApprovalRepo implementación de ApprovalRepository sobre PostgreSQL (usable con pool o tx).
type ApprovalRepo struct {
	q Querier
}

// NewApprovalRepository construye el adaptador de aprobaciones. Pasar pool o tx (Querier).
func NewApprovalRepository(q Querier) *ApprovalRepo {
	return &ApprovalRepo{q: q}
}

const approvalColumns = `id, entity_kind, entity_id, requested_by, reviewed_by, decision, reason, requested_at, decided_at`

// Create persiste un registro de aprobación.
func (r *ApprovalRepo) Create(a *entity.ApprovalRecord) error {
	query := `
		INSERT INTO approvals (id, entity_kind, entity_id, requested_by, reviewed_by, decision, reason, requested_at, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.EntityKind, a.EntityID, a.RequestedBy, a.ReviewedBy, a.Decision, a.Reason, a.RequestedAt, a.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func scanApproval(row pgx.Row, a *entity.ApprovalRecord) error {
	return row.Scan(&a.ID, &a.EntityKind, &a.EntityID, &a.RequestedBy, &a.ReviewedBy,
		&a.Decision, &a.Reason, &a.RequestedAt, &a.DecidedAt)
}

// GetByID obtiene un registro por ID; nil si no existe.
func (r *ApprovalRepo) GetByID(id string) (*entity.ApprovalRecord, error) {
	var a entity.ApprovalRecord
	err := scanApproval(r.q.QueryRow(context.Background(),
		`SELECT `+approvalColumns+` FROM approvals WHERE id = $1`, id), &a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get approval: %w", err)
	}
	return &a, nil
}

// GetOpenByEntity obtiene el registro PENDING de la entidad; nil si no hay.
func (r *ApprovalRepo) GetOpenByEntity(kind, entityID string) (*entity.ApprovalRecord, error) {
	query := `
		SELECT ` + approvalColumns + ` FROM approvals
		WHERE entity_kind = $1 AND entity_id = $2 AND decision = $3
		ORDER BY requested_at DESC LIMIT 1`
	var a entity.ApprovalRecord
	err := scanApproval(r.q.QueryRow(context.Background(), query, kind, entityID, entity.DecisionPending), &a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open approval: %w", err)
	}
	return &a, nil
}

// ListByEntities obtiene los registros de un conjunto de entidades de la misma clase.
func (r *ApprovalRepo) ListByEntities(kind string, entityIDs []string) ([]*entity.ApprovalRecord, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE entity_kind = $1 AND entity_id = ANY($2)`
	rows, err := r.q.Query(context.Background(), query, kind, entityIDs)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []*entity.ApprovalRecord
	for rows.Next() {
		var a entity.ApprovalRecord
		if err := scanApproval(rows, &a); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Update persiste la decisión del registro.
func (r *ApprovalRepo) Update(a *entity.ApprovalRecord) error {
	query := `
		UPDATE approvals
		SET reviewed_by = $2, decision = $3, reason = $4, decided_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, a.ID, a.ReviewedBy, a.Decision, a.Reason, a.DecidedAt)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	return nil
}

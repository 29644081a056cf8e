package postgres

import (
	"context"
	"fmt"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

var _ repository.NCRRepository = (*NCRRepo)(nil)

// NCRRepo implementación de NCRRepository sobre PostgreSQL (usable con pool o tx).
type NCRRepo struct {
	q Querier
}

// NewNCRRepository construye el adaptador de NCRs. Pasar pool o tx (Querier).
func NewNCRRepository(q Querier) *NCRRepo {
	return &NCRRepo{q: q}
}

// Create persiste un NCR.
func (r *NCRRepo) Create(n *entity.NCR) error {
	query := `
		INSERT INTO ncrs (id, transaction_line_id, period_id, location_id, item_id, locked_price, actual_price, variance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		n.ID, n.TransactionLineID, n.PeriodID, n.LocationID, n.ItemID,
		n.LockedPrice, n.ActualPrice, n.Variance, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ncr: %w", err)
	}
	return nil
}

// ListByPeriodLocation lista los NCRs de la locación en el período.
func (r *NCRRepo) ListByPeriodLocation(periodID, locationID string) ([]*entity.NCR, error) {
	query := `
		SELECT id, transaction_line_id, period_id, location_id, item_id, locked_price, actual_price, variance, created_at
		FROM ncrs WHERE period_id = $1 AND location_id = $2 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, periodID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list ncrs: %w", err)
	}
	defer rows.Close()

	var out []*entity.NCR
	for rows.Next() {
		var n entity.NCR
		if err := rows.Scan(&n.ID, &n.TransactionLineID, &n.PeriodID, &n.LocationID, &n.ItemID,
			&n.LockedPrice, &n.ActualPrice, &n.Variance, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ncr: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

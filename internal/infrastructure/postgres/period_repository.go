package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

var _ repository.PeriodRepository = (*PeriodRepo)(nil)

// PeriodRepo implementación de PeriodRepository sobre PostgreSQL (usable con pool o tx).
type PeriodRepo struct {
	q Querier
}

// NewPeriodRepository construye el adaptador de períodos. Pasar pool o tx (Querier).
func NewPeriodRepository(q Querier) *PeriodRepo {
	return &PeriodRepo{q: q}
}

const periodColumns = `id, name, start_date, end_date, status, closed_by, closed_at, created_at`

// Create persiste un período.
func (r *PeriodRepo) Create(p *entity.Period) error {
	query := `
		INSERT INTO periods (id, name, start_date, end_date, status, closed_by, closed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.StartDate, p.EndDate, p.Status, p.ClosedBy, p.ClosedAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert period: %w", err)
	}
	return nil
}

func (r *PeriodRepo) getPeriod(query, id string) (*entity.Period, error) {
	var p entity.Period
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedBy, &p.ClosedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get period: %w", err)
	}
	return &p, nil
}

// GetByID obtiene el período; nil si no existe.
func (r *PeriodRepo) GetByID(id string) (*entity.Period, error) {
	return r.getPeriod(`SELECT `+periodColumns+` FROM periods WHERE id = $1`, id)
}

// GetForUpdate obtiene el período y bloquea la fila: dos cierres concurrentes
// se serializan aquí.
func (r *PeriodRepo) GetForUpdate(id string) (*entity.Period, error) {
	return r.getPeriod(`SELECT `+periodColumns+` FROM periods WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza estado y datos de cierre del período.
func (r *PeriodRepo) Update(p *entity.Period) error {
	query := `UPDATE periods SET status = $2, closed_by = $3, closed_at = $4 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, p.ID, p.Status, p.ClosedBy, p.ClosedAt)
	if err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	return nil
}

// GetLocationStatus obtiene el estado de la locación en el período; nil si
// aún no tiene fila.
func (r *PeriodRepo) GetLocationStatus(periodID, locationID string) (*entity.PeriodLocation, error) {
	query := `
		SELECT period_id, location_id, ready, ready_at, reconciliation_saved_at
		FROM period_locations WHERE period_id = $1 AND location_id = $2`
	return r.getLocationStatus(query, periodID, locationID)
}

// GetLocationStatusForUpdate obtiene el estado de la locación bloqueando la
// fila: contabilizar y marcar lista se serializan sobre ella.
func (r *PeriodRepo) GetLocationStatusForUpdate(periodID, locationID string) (*entity.PeriodLocation, error) {
	query := `
		SELECT period_id, location_id, ready, ready_at, reconciliation_saved_at
		FROM period_locations WHERE period_id = $1 AND location_id = $2 FOR UPDATE`
	return r.getLocationStatus(query, periodID, locationID)
}

func (r *PeriodRepo) getLocationStatus(query, periodID, locationID string) (*entity.PeriodLocation, error) {
	var pl entity.PeriodLocation
	err := r.q.QueryRow(context.Background(), query, periodID, locationID).Scan(
		&pl.PeriodID, &pl.LocationID, &pl.Ready, &pl.ReadyAt, &pl.ReconciliationSavedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get period location: %w", err)
	}
	return &pl, nil
}

// UpsertLocationStatus inserta o actualiza el estado de la locación en el período.
func (r *PeriodRepo) UpsertLocationStatus(pl *entity.PeriodLocation) error {
	query := `
		INSERT INTO period_locations (period_id, location_id, ready, ready_at, reconciliation_saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (period_id, location_id)
		DO UPDATE SET ready = EXCLUDED.ready, ready_at = EXCLUDED.ready_at,
		              reconciliation_saved_at = EXCLUDED.reconciliation_saved_at`
	_, err := r.q.Exec(context.Background(), query,
		pl.PeriodID, pl.LocationID, pl.Ready, pl.ReadyAt, pl.ReconciliationSavedAt)
	if err != nil {
		return fmt.Errorf("upsert period location: %w", err)
	}
	return nil
}

// ListLocationStatuses lista el estado de todas las locaciones del período.
func (r *PeriodRepo) ListLocationStatuses(periodID string) ([]*entity.PeriodLocation, error) {
	query := `
		SELECT period_id, location_id, ready, ready_at, reconciliation_saved_at
		FROM period_locations WHERE period_id = $1 ORDER BY location_id`
	rows, err := r.q.Query(context.Background(), query, periodID)
	if err != nil {
		return nil, fmt.Errorf("list period locations: %w", err)
	}
	defer rows.Close()

	var out []*entity.PeriodLocation
	for rows.Next() {
		var pl entity.PeriodLocation
		if err := rows.Scan(&pl.PeriodID, &pl.LocationID, &pl.Ready, &pl.ReadyAt, &pl.ReconciliationSavedAt); err != nil {
			return nil, fmt.Errorf("scan period location: %w", err)
		}
		out = append(out, &pl)
	}
	return out, rows.Err()
}

// SaveSnapshot persiste un snapshot de lote (OPENING o CLOSING).
func (r *PeriodRepo) SaveSnapshot(s *entity.StockSnapshot) error {
	query := `
		INSERT INTO stock_snapshots (id, period_id, location_id, item_id, kind, quantity, unit_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.PeriodID, s.LocationID, s.ItemID, s.Kind, s.Quantity, s.UnitCost, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetLockedPrice obtiene el precio bloqueado del ítem en el período; nil si
// el período no fija precio para ese ítem.
func (r *PeriodRepo) GetLockedPrice(periodID, itemID string) (*decimal.Decimal, error) {
	query := `SELECT price FROM locked_prices WHERE period_id = $1 AND item_id = $2`
	var price decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, periodID, itemID).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get locked price: %w", err)
	}
	return &price, nil
}

// AddReconciliation acumula un monto firmado en el total de conciliación de la
// clase indicada. El UPSERT suma sobre el acumulado existente.
func (r *PeriodRepo) AddReconciliation(periodID, locationID, kind string, amount decimal.Decimal) error {
	column, ok := map[string]string{
		entity.AdjustmentBackCharge:   "back_charges",
		entity.AdjustmentCredit:       "credits",
		entity.AdjustmentCondemnation: "condemnation",
	}[kind]
	if !ok {
		return fmt.Errorf("clase de ajuste desconocida: %s", kind)
	}
	query := fmt.Sprintf(`
		INSERT INTO reconciliation_totals (period_id, location_id, %s, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (period_id, location_id)
		DO UPDATE SET %s = reconciliation_totals.%s + EXCLUDED.%s, updated_at = now()`,
		column, column, column, column)
	_, err := r.q.Exec(context.Background(), query, periodID, locationID, amount)
	if err != nil {
		return fmt.Errorf("add reconciliation: %w", err)
	}
	return nil
}

// GetReconciliation obtiene los totales de conciliación de la locación en el
// período; totales en cero si aún no hay fila.
func (r *PeriodRepo) GetReconciliation(periodID, locationID string) (*entity.ReconciliationTotal, error) {
	query := `
		SELECT period_id, location_id, back_charges, credits, condemnation, updated_at
		FROM reconciliation_totals WHERE period_id = $1 AND location_id = $2`
	var t entity.ReconciliationTotal
	err := r.q.QueryRow(context.Background(), query, periodID, locationID).Scan(
		&t.PeriodID, &t.LocationID, &t.BackCharges, &t.Credits, &t.Condemnation, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.ReconciliationTotal{
				PeriodID:     periodID,
				LocationID:   locationID,
				BackCharges:  decimal.Zero,
				Credits:      decimal.Zero,
				Condemnation: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get reconciliation: %w", err)
	}
	return &t, nil
}

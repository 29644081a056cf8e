package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

var _ repository.StockLotRepository = (*StockLotRepo)(nil)

// StockLotRepo implementación de StockLotRepository sobre PostgreSQL (usable con pool o tx).
type StockLotRepo struct {
	q Querier
}

// NewStockLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewStockLotRepository(q Querier) *StockLotRepo {
	return &StockLotRepo{q: q}
}

const lotColumns = `location_id, item_id, quantity, unit_cost, min_qty, max_qty, updated_at`

// Get obtiene el lote por (locación, ítem). Si no existe aún, devuelve un
// lote en cero: la fila se materializa en el primer Upsert (creación perezosa).
func (r *StockLotRepo) Get(locationID, itemID string) (*entity.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lots WHERE location_id = $1 AND item_id = $2`
	var lot entity.StockLot
	err := r.q.QueryRow(context.Background(), query, locationID, itemID).Scan(
		&lot.LocationID, &lot.ItemID, &lot.Quantity, &lot.UnitCost, &lot.MinQty, &lot.MaxQty, &lot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewZeroLot(locationID, itemID), nil
		}
		return nil, fmt.Errorf("get stock lot: %w", err)
	}
	return &lot, nil
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
// Si la fila no existe todavía, devuelve un lote en cero; no hay fila que
// bloquear pero el Upsert posterior con ON CONFLICT sigue siendo seguro.
func (r *StockLotRepo) GetForUpdate(locationID, itemID string) (*entity.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lots WHERE location_id = $1 AND item_id = $2 FOR UPDATE`
	var lot entity.StockLot
	err := r.q.QueryRow(context.Background(), query, locationID, itemID).Scan(
		&lot.LocationID, &lot.ItemID, &lot.Quantity, &lot.UnitCost, &lot.MinQty, &lot.MaxQty, &lot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewZeroLot(locationID, itemID), nil
		}
		return nil, fmt.Errorf("get stock lot for update: %w", err)
	}
	return &lot, nil
}

// Upsert inserta o actualiza cantidad y costo del lote.
func (r *StockLotRepo) Upsert(lot *entity.StockLot) error {
	query := `
		INSERT INTO stock_lots (location_id, item_id, quantity, unit_cost, min_qty, max_qty, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (location_id, item_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, unit_cost = EXCLUDED.unit_cost, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		lot.LocationID, lot.ItemID, lot.Quantity, lot.UnitCost, lot.MinQty, lot.MaxQty, lot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock lot: %w", err)
	}
	return nil
}

// ListByLocation lista los lotes de una locación ordenados por ítem.
func (r *StockLotRepo) ListByLocation(locationID string) ([]*entity.StockLot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lots WHERE location_id = $1 ORDER BY item_id`
	rows, err := r.q.Query(context.Background(), query, locationID)
	if err != nil {
		return nil, fmt.Errorf("list stock lots: %w", err)
	}
	defer rows.Close()

	var lots []*entity.StockLot
	for rows.Next() {
		var lot entity.StockLot
		if err := rows.Scan(&lot.LocationID, &lot.ItemID, &lot.Quantity, &lot.UnitCost, &lot.MinQty, &lot.MaxQty, &lot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock lot: %w", err)
		}
		lots = append(lots, &lot)
	}
	return lots, rows.Err()
}

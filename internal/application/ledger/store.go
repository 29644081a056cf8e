package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/stock"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/valuation"
)

// Primitivas del Ledger Store. Todas bloquean la fila del lote
// (SELECT FOR UPDATE) y deben ejecutarse dentro de la misma unidad atómica
// que la cabecera y las líneas que las acompañan.

// applyReceipt suma cantidad al lote recalculando el costo promedio ponderado.
func applyReceipt(r ports.Repos, locationID, itemID string, qty, unitCost decimal.Decimal, now time.Time) (*entity.StockLot, error) {
	lot, err := r.Lots.GetForUpdate(locationID, itemID)
	if err != nil {
		return nil, err
	}
	newQty, newCost := valuation.NewWAC(lot.Quantity, lot.UnitCost, qty, unitCost)
	lot.Quantity = valuation.RoundQty(newQty)
	lot.UnitCost = newCost
	lot.UpdatedAt = now
	if err := r.Lots.Upsert(lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// applyConsumption resta cantidad del lote sin tocar el costo. Falla con
// InsufficientStock si qty excede lo disponible (chequeo autoritativo: la
// fila ya está bloqueada, nadie más puede pasar validación contra una
// cantidad obsoleta).
func applyConsumption(r ports.Repos, locationID, itemID string, qty decimal.Decimal, now time.Time) (*entity.StockLot, error) {
	lot, err := r.Lots.GetForUpdate(locationID, itemID)
	if err != nil {
		return nil, err
	}
	if err := stock.CheckSufficiency(itemID, lot.Quantity, qty); err != nil {
		return nil, err
	}
	lot.Quantity = valuation.RoundQty(lot.Quantity.Sub(qty))
	lot.UpdatedAt = now
	if err := r.Lots.Upsert(lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// applyTransfer ejecuta las dos piernas de un traslado: consumo en origen al
// WAC vigente y recepción en destino usando ese mismo WAC como costo recibido.
// El costo viaja con la mercancía. Devuelve el WAC aplicado.
func applyTransfer(r ports.Repos, fromLoc, toLoc, itemID string, qty decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	src, err := r.Lots.GetForUpdate(fromLoc, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	wac := src.UnitCost
	if _, err := applyConsumption(r, fromLoc, itemID, qty, now); err != nil {
		return decimal.Zero, err
	}
	if _, err := applyReceipt(r, toLoc, itemID, qty, wac, now); err != nil {
		return decimal.Zero, err
	}
	return wac, nil
}

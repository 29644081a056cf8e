package repository

import "github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"

// StockLotRepository define el puerto para consultar/actualizar el lote por
// (locación, ítem). Usado dentro de transacciones para garantizar consistencia.
type StockLotRepository interface {
	// Get devuelve el lote; si no existe aún, un lote en cero (creación perezosa).
	Get(locationID, itemID string) (*entity.StockLot, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(locationID, itemID string) (*entity.StockLot, error)
	Upsert(lot *entity.StockLot) error
	ListByLocation(locationID string) ([]*entity.StockLot, error)
}

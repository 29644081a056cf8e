package repository

import (
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
)

// PeriodRepository define el puerto de persistencia de períodos, estados por
// locación, snapshots de existencias, precios bloqueados y totales de
// conciliación.
type PeriodRepository interface {
	Create(p *entity.Period) error
	// GetByID devuelve el período; nil si no existe.
	GetByID(id string) (*entity.Period, error)
	// GetForUpdate bloquea la fila del período (exclusividad del cierre).
	GetForUpdate(id string) (*entity.Period, error)
	Update(p *entity.Period) error

	// GetLocationStatus devuelve el estado de la locación en el período;
	// nil si aún no tiene fila.
	GetLocationStatus(periodID, locationID string) (*entity.PeriodLocation, error)
	// GetLocationStatusForUpdate bloquea la fila de estado: contabilizar y
	// marcar lista se serializan sobre ella.
	GetLocationStatusForUpdate(periodID, locationID string) (*entity.PeriodLocation, error)
	UpsertLocationStatus(pl *entity.PeriodLocation) error
	ListLocationStatuses(periodID string) ([]*entity.PeriodLocation, error)

	SaveSnapshot(s *entity.StockSnapshot) error

	// GetLockedPrice devuelve el precio bloqueado del ítem en el período;
	// nil si el período no fija precio para ese ítem.
	GetLockedPrice(periodID, itemID string) (*decimal.Decimal, error)

	// AddReconciliation acumula un monto firmado en el total de conciliación
	// de la clase indicada (BACKCHARGE | CREDIT | CONDEMNATION).
	AddReconciliation(periodID, locationID, kind string, amount decimal.Decimal) error
	GetReconciliation(periodID, locationID string) (*entity.ReconciliationTotal, error)
}

package ports

import (
	"context"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
// Todo procesador recibe este conjunto dentro del callback de TxRunner.
type Repos struct {
	Transactions repository.TransactionRepository
	Lots         repository.StockLotRepository
	Orders       repository.OrderRepository
	Requisitions repository.RequisitionRepository
	Approvals    repository.ApprovalRepository
	Periods      repository.PeriodRepository
	Locations    repository.LocationRepository
	Items        repository.ItemRepository
	NCRs         repository.NCRRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor del ledger:
// cabecera + líneas + lote se confirman o revierten como una sola unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

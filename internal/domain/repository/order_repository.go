package repository

import (
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia de órdenes de compra.
// Las líneas de entrega referencian líneas de orden por lookup (referencia
// débil), nunca por embebido.
type OrderRepository interface {
	Create(o *entity.Order) error
	CreateLine(l *entity.OrderLine) error
	// GetByID devuelve la orden con sus líneas; nil si no existe.
	GetByID(id string) (*entity.Order, error)
	// GetByRequisition devuelve la orden de la requisición (1:1); nil si no hay.
	GetByRequisition(requisitionID string) (*entity.Order, error)
	GetLine(lineID string) (*entity.OrderLine, error)
	// GetLineForUpdate bloquea la línea para acumular cantidad entregada.
	GetLineForUpdate(lineID string) (*entity.OrderLine, error)
	UpdateLineDelivered(lineID string, delivered decimal.Decimal) error
	// Close marca la orden CLOSED con motivo/actor/fecha.
	Close(o *entity.Order) error
	NextNumber() (string, error)
}

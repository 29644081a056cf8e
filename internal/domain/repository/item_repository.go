package repository

import "github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"

// ItemRepository define el puerto de consulta del catálogo de ítems.
type ItemRepository interface {
	// GetByID devuelve el ítem; nil si no existe.
	GetByID(id string) (*entity.Item, error)
	List() ([]*entity.Item, error)
}

package repository

import "github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"

// LocationRepository define el puerto de consulta de locaciones.
type LocationRepository interface {
	// GetByID devuelve la locación; nil si no existe.
	GetByID(id string) (*entity.Location, error)
	List() ([]*entity.Location, error)
}

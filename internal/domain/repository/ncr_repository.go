package repository

import "github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"

// NCRRepository define el puerto de persistencia de reportes de no
// conformidad por variación de precio.
type NCRRepository interface {
	Create(n *entity.NCR) error
	ListByPeriodLocation(periodID, locationID string) ([]*entity.NCR, error)
}

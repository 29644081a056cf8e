package repository

import "github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"

// ApprovalRepository define el puerto de persistencia de registros de aprobación.
type ApprovalRepository interface {
	Create(a *entity.ApprovalRecord) error
	GetByID(id string) (*entity.ApprovalRecord, error)
	// GetOpenByEntity devuelve el registro PENDING de la entidad; nil si no hay.
	GetOpenByEntity(kind, entityID string) (*entity.ApprovalRecord, error)
	// ListByEntities devuelve todos los registros de un conjunto de entidades
	// de la misma clase (p. ej. todas las líneas de una entrega).
	ListByEntities(kind string, entityIDs []string) ([]*entity.ApprovalRecord, error)
	Update(a *entity.ApprovalRecord) error
}

package repository

import "github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"

// RequisitionRepository define el puerto de persistencia de requisiciones (PRF).
type RequisitionRepository interface {
	Create(r *entity.Requisition) error
	CreateLine(l *entity.RequisitionLine) error
	// GetByID devuelve la requisición con sus líneas; nil si no existe.
	GetByID(id string) (*entity.Requisition, error)
	// UpdateStatus cambia el estado (y ClosedAt cuando aplica).
	UpdateStatus(r *entity.Requisition) error
	// Delete borra la requisición y sus líneas. Solo permitido en DRAFT.
	Delete(id string) error
	NextNumber() (string, error)
}

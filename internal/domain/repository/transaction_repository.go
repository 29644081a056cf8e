package repository

import "github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"

// TransactionRepository define el puerto de persistencia de cabeceras y
// líneas de transacción.
type TransactionRepository interface {
	Create(tx *entity.Transaction) error
	CreateLine(line *entity.TransactionLine) error
	// GetByID devuelve la transacción con sus líneas; nil si no existe.
	GetByID(id string) (*entity.Transaction, error)
	GetLine(lineID string) (*entity.TransactionLine, error)
	// UpdateLine actualiza costo, valor y bandera de sobre-entrega de una
	// línea (traslados fijan el costo al aplicar; las entregas recomputan la
	// bandera al contabilizar).
	UpdateLine(line *entity.TransactionLine) error
	// Update actualiza estado, total, factura y fecha de modificación de la cabecera.
	Update(tx *entity.Transaction) error
	Delete(id string) error
	// DeleteLines borra todas las líneas de la transacción (edición de borrador).
	DeleteLines(transactionID string) error
	// NextNumber obtiene el siguiente número secuencial legible para el tipo
	// (DLV-000042, ISS-000007...). Debe ser seguro bajo concurrencia.
	NextNumber(kind string) (string, error)
	// CountUnposted cuenta transacciones en DRAFT o PENDING_APPROVAL de una
	// locación en un período (precondición de "lista para cierre").
	CountUnposted(periodID, locationID string) (int, error)
}

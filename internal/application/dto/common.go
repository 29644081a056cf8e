package dto

import "github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"

// ErrorResponse cuerpo de error HTTP. Details lleva el detalle estructurado
// cuando existe: lista completa de campos inválidos o de ítems insuficientes.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ValidationDetails construye el detalle de un error de validación.
func ValidationDetails(ve *domain.ValidationError) []domain.FieldError {
	return ve.Fields
}

// ShortfallDetails construye el detalle de un error de stock insuficiente.
func ShortfallDetails(e *domain.InsufficientStockError) []domain.Shortfall {
	return e.Shortfalls
}

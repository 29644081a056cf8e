package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrPeriodClosed           = errors.New("período cerrado o bloqueado para registro")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrApprovalRequired       = errors.New("aprobación pendiente")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
)

// FieldError describe un campo inválido dentro de un ValidationError.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError acumula todos los campos inválidos de una petición.
// El caller recibe la lista completa en un solo round trip, nunca solo el primero.
type ValidationError struct {
	Fields []FieldError
}

// Add agrega un campo inválido.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors indica si se acumuló al menos un campo inválido.
func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// Error implementa error enumerando todos los campos.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validación: " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Shortfall detalla un ítem con stock insuficiente.
type Shortfall struct {
	ItemID    string          `json:"item_id"`
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

// InsufficientStockError lleva el detalle completo de todos los ítems insuficientes
// (no se detiene en el primero: la UI necesita la lista completa para remediar).
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

// Error implementa error enumerando cada ítem con su faltante.
func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s: solicitado=%s disponible=%s",
			s.ItemID, s.Requested.String(), s.Available.String()))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

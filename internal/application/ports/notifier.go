package ports

import "context"

// Notification es el evento que se comunica a los interesados tras una
// aprobación, rechazo o cierre.
type Notification struct {
	Event      string // ej. TRANSFER_APPROVED, ORDER_CLOSED
	EntityKind string
	EntityID   string
	Actor      string
	Message    string
}

// Notifier envía notificaciones fire-and-forget. Un fallo aquí jamás debe
// revertir la transacción del ledger que lo originó: el caller lo registra
// en el log y continúa.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

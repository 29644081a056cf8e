package entity

import "time"

// Location es una bodega/locación con inventario propio. Todo procesador de
// transacciones opera sobre una sola locación (o un par, en traslados).
type Location struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
}

package entity

import "time"

// Item es un artículo del catálogo de inventario.
type Item struct {
	ID        string
	Code      string
	Name      string
	Unit      string // unidad de medida: KG, UND, LT...
	CreatedAt time.Time
}

package valuation

import "github.com/shopspring/decimal"

// NewWAC implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((CantLote * CostoLote) + (CantRecibida * CostoRecibido)) / (CantLote + CantRecibida)
// Si la cantidad resultante es <= 0, el nuevo costo es el costo recibido.
// Nunca se invoca en salidas ni en el lado origen de un traslado: ahí el costo
// se lee, no se recalcula.
func NewWAC(lotQty, lotCost, recvQty, recvCost decimal.Decimal) (newQty, newCost decimal.Decimal) {
	newQty = lotQty.Add(recvQty)
	if newQty.LessThanOrEqual(decimal.Zero) {
		return newQty, recvCost
	}
	num := lotQty.Mul(lotCost).Add(recvQty.Mul(recvCost))
	return newQty, num.Div(newQty)
}

// RoundMoney redondea un valor monetario a 2 decimales (half-up) en el punto
// de persistencia o presentación. La precisión interna nunca se trunca antes.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundQty redondea una cantidad a los 4 decimales que mantiene el sistema.
func RoundQty(d decimal.Decimal) decimal.Decimal {
	return d.Round(4)
}

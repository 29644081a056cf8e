package stock

import (
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
)

// LineRequest es un par (ítem, cantidad solicitada) a validar contra las
// existencias de una locación.
type LineRequest struct {
	ItemID    string
	Requested decimal.Decimal
}

// CheckSufficiency valida disponible vs solicitado para un solo ítem.
// Devuelve nil o un InsufficientStockError con el faltante.
func CheckSufficiency(itemID string, available, requested decimal.Decimal) error {
	if available.GreaterThanOrEqual(requested) {
		return nil
	}
	return &domain.InsufficientStockError{
		Shortfalls: []domain.Shortfall{{ItemID: itemID, Requested: requested, Available: available}},
	}
}

// CheckBulk valida una lista de solicitudes contra las existencias en un solo
// paso. Las solicitudes del mismo ítem se agregan antes de comparar. Nunca se
// detiene en el primer fallo: devuelve la lista completa de insuficientes,
// porque el caller necesita el cuadro entero para un error útil.
// La llamada autoritativa es la que ocurre dentro de la misma unidad atómica
// que mutará el ledger, con las filas bloqueadas; cualquier chequeo anterior
// es solo consultivo.
func CheckBulk(available map[string]decimal.Decimal, requests []LineRequest) error {
	totals := make(map[string]decimal.Decimal, len(requests))
	order := make([]string, 0, len(requests))
	for _, req := range requests {
		if _, ok := totals[req.ItemID]; !ok {
			order = append(order, req.ItemID)
		}
		totals[req.ItemID] = totals[req.ItemID].Add(req.Requested)
	}

	var shortfalls []domain.Shortfall
	for _, itemID := range order {
		avail := available[itemID]
		if avail.LessThan(totals[itemID]) {
			shortfalls = append(shortfalls, domain.Shortfall{
				ItemID:    itemID,
				Requested: totals[itemID],
				Available: avail,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &domain.InsufficientStockError{Shortfalls: shortfalls}
	}
	return nil
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/dto"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/valuation"
)

// StockHandler consultas de solo lectura: existencias, conciliación y NCRs.
// Usa repos atados al pool; no requiere unidad atómica.
type StockHandler struct {
	lots    repository.StockLotRepository
	periods repository.PeriodRepository
	ncrs    repository.NCRRepository
}

// NewStockHandler construye el handler.
func NewStockHandler(lots repository.StockLotRepository, periods repository.PeriodRepository, ncrs repository.NCRRepository) *StockHandler {
	return &StockHandler{lots: lots, periods: periods, ncrs: ncrs}
}

// ListLots godoc
// @Summary      Existencias de una locación (cantidad, WAC y valor)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        locationId  path  string  true  "ID de la locación"
// @Success      200  {array}   dto.StockLotResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/locations/{locationId}/stock [get]
func (h *StockHandler) ListLots(c *fiber.Ctx) error {
	lots, err := h.lots.ListByLocation(c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockLotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, dto.StockLotResponse{
			LocationID: lot.LocationID,
			ItemID:     lot.ItemID,
			Quantity:   lot.Quantity,
			UnitCost:   lot.UnitCost,
			Value:      valuation.RoundMoney(lot.Quantity.Mul(lot.UnitCost)),
		})
	}
	return c.JSON(out)
}

// GetReconciliation godoc
// @Summary      Totales de conciliación de la locación en el período
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id          path  string  true  "ID del período"
// @Param        locationId  path  string  true  "ID de la locación"
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/periods/{id}/locations/{locationId}/reconciliation [get]
func (h *StockHandler) GetReconciliation(c *fiber.Ctx) error {
	t, err := h.periods.GetReconciliation(c.Params("id"), c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReconciliationResponse{
		PeriodID:     t.PeriodID,
		LocationID:   t.LocationID,
		BackCharges:  t.BackCharges,
		Credits:      t.Credits,
		Condemnation: t.Condemnation,
		Net:          t.Net(),
	})
}

// ListNCRs godoc
// @Summary      NCRs por variación de precio de la locación en el período
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id          path  string  true  "ID del período"
// @Param        locationId  path  string  true  "ID de la locación"
// @Success      200  {array}  dto.NCRResponse
// @Router       /api/periods/{id}/locations/{locationId}/ncrs [get]
func (h *StockHandler) ListNCRs(c *fiber.Ctx) error {
	ncrs, err := h.ncrs.ListByPeriodLocation(c.Params("id"), c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.NCRResponse, 0, len(ncrs))
	for _, n := range ncrs {
		out = append(out, dto.FromNCR(n))
	}
	return c.JSON(out)
}

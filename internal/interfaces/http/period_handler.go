package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/dto"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/period"
)

// PeriodHandler maneja la coordinación del cierre de período (protegido).
type PeriodHandler struct {
	uc *period.PeriodUseCase
}

// NewPeriodHandler construye el handler.
func NewPeriodHandler(uc *period.PeriodUseCase) *PeriodHandler {
	return &PeriodHandler{uc: uc}
}

// MarkLocationReady godoc
// @Summary      Marcar locación lista para cierre
// @Description  Requiere cero transacciones sin contabilizar y conciliación guardada.
// @Tags         periods
// @Security     Bearer
// @Produce      json
// @Param        id          path  string  true  "ID del período"
// @Param        locationId  path  string  true  "ID de la locación"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/locations/{locationId}/ready [post]
func (h *PeriodHandler) MarkLocationReady(c *fiber.Ctx) error {
	err := h.uc.MarkLocationReady(c.Context(), c.Params("id"), c.Params("locationId"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "locación lista para cierre"})
}

// ClosePeriod godoc
// @Summary      Cerrar el período y abrir el siguiente
// @Description  Falla enumerando todas las locaciones no listas, no solo la primera.
// @Tags         periods
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del período"
// @Success      200  {object}  dto.ClosePeriodResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/periods/{id}/close [post]
func (h *PeriodHandler) ClosePeriod(c *fiber.Ctx) error {
	result, err := h.uc.ClosePeriod(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ClosePeriodResponse{
		Closed: dto.FromPeriod(result.Closed),
		Next:   dto.FromPeriod(result.Next),
	})
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/approval"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/dto"
)

// ApprovalHandler maneja revisiones de líneas de sobre-entrega (protegido,
// solo revisores).
type ApprovalHandler struct {
	overDelivery *approval.OverDeliveryUseCase
}

// NewApprovalHandler construye el handler.
func NewApprovalHandler(overDelivery *approval.OverDeliveryUseCase) *ApprovalHandler {
	return &ApprovalHandler{overDelivery: overDelivery}
}

// ApproveOverDeliveries godoc
// @Summary      Aprobar líneas de sobre-entrega
// @Description  Aprobar no contabiliza: la entrega sigue estacionada hasta postDelivery.
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReviewLinesRequest  true  "line_ids"
// @Success      200   {object}  map[string]string
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/over-deliveries/approve [post]
func (h *ApprovalHandler) ApproveOverDeliveries(c *fiber.Ctx) error {
	var in dto.ReviewLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.overDelivery.Approve(c.Context(), in.LineIDs, GetUserID(c), GetRole(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "líneas aprobadas"})
}

// RejectOverDeliveries godoc
// @Summary      Rechazar líneas de sobre-entrega (motivo obligatorio)
// @Description  El rechazo es terminal: la entrega padre queda REJECTED.
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReviewLinesRequest  true  "line_ids, reason"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/over-deliveries/reject [post]
func (h *ApprovalHandler) RejectOverDeliveries(c *fiber.Ctx) error {
	var in dto.ReviewLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.overDelivery.Reject(c.Context(), in.LineIDs, GetUserID(c), GetRole(c), in.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "líneas rechazadas"})
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/dto"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/fulfillment"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/procurement"
)

// ProcurementHandler maneja requisiciones y órdenes de compra (protegido).
type ProcurementHandler struct {
	requisitions *procurement.RequisitionUseCase
	orders       *procurement.OrderUseCase
	closeOrder   *fulfillment.CloseOrderUseCase
}

// NewProcurementHandler construye el handler.
func NewProcurementHandler(requisitions *procurement.RequisitionUseCase, orders *procurement.OrderUseCase, closeOrder *fulfillment.CloseOrderUseCase) *ProcurementHandler {
	return &ProcurementHandler{requisitions: requisitions, orders: orders, closeOrder: closeOrder}
}

// CreateRequisition godoc
// @Summary      Crear borrador de requisición (PRF)
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequisitionRequest  true  "location_id, period_id, lines"
// @Success      201   {object}  dto.RequisitionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requisitions [post]
func (h *ProcurementHandler) CreateRequisition(c *fiber.Ctx) error {
	var in dto.CreateRequisitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := procurement.CreateRequisitionInput{
		LocationID: in.LocationID,
		PeriodID:   in.PeriodID,
		ActorID:    GetUserID(c),
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, procurement.RequisitionLineInput{
			ItemID:         l.ItemID,
			Description:    l.Description,
			Quantity:       l.Quantity,
			EstimatedPrice: l.EstimatedPrice,
		})
	}
	req, err := h.requisitions.Create(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromRequisition(req))
}

// SubmitRequisition godoc
// @Summary      Enviar requisición a revisión (solo el creador)
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la requisición"
// @Success      200  {object}  dto.RequisitionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/submit [post]
func (h *ProcurementHandler) SubmitRequisition(c *fiber.Ctx) error {
	req, err := h.requisitions.Submit(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromRequisition(req))
}

// ApproveRequisition godoc
// @Summary      Aprobar requisición pendiente
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la requisición"
// @Success      200  {object}  dto.RequisitionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/approve [post]
func (h *ProcurementHandler) ApproveRequisition(c *fiber.Ctx) error {
	req, err := h.requisitions.Approve(c.Context(), c.Params("id"), GetUserID(c), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromRequisition(req))
}

// RejectRequisition godoc
// @Summary      Rechazar requisición pendiente (motivo obligatorio)
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la requisición"
// @Param        body  body  dto.DecisionRequest  true  "reason"
// @Success      200   {object}  dto.RequisitionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/reject [post]
func (h *ProcurementHandler) RejectRequisition(c *fiber.Ctx) error {
	var in dto.DecisionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.requisitions.Reject(c.Context(), c.Params("id"), GetUserID(c), GetRole(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromRequisition(req))
}

// CloneRequisition godoc
// @Summary      Clonar requisición rechazada a un nuevo borrador
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la requisición rechazada"
// @Success      201  {object}  dto.RequisitionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id}/clone [post]
func (h *ProcurementHandler) CloneRequisition(c *fiber.Ctx) error {
	req, err := h.requisitions.Clone(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromRequisition(req))
}

// DeleteRequisition godoc
// @Summary      Borrar requisición (solo borradores, solo el creador)
// @Tags         procurement
// @Security     Bearer
// @Param        id  path  string  true  "ID de la requisición"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requisitions/{id} [delete]
func (h *ProcurementHandler) DeleteRequisition(c *fiber.Ctx) error {
	if err := h.requisitions.Delete(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateOrder godoc
// @Summary      Crear orden de compra desde requisición aprobada (1:1)
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "requisition_id, supplier_name, lines"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "CONFLICT si la requisición ya tiene orden"
// @Router       /api/orders [post]
func (h *ProcurementHandler) CreateOrder(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := procurement.CreateOrderInput{
		RequisitionID: in.RequisitionID,
		SupplierName:  in.SupplierName,
		ActorID:       GetUserID(c),
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, procurement.OrderLineInput{
			ItemID:      l.ItemID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			VATPct:      l.VATPct,
		})
	}
	order, err := h.orders.CreateFromRequisition(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrder(order))
}

// CloseOrder godoc
// @Summary      Cerrar orden manualmente
// @Description  Si la orden está corta de entrega el motivo es obligatorio.
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la orden"
// @Param        body  body  dto.CloseOrderRequest  true  "reason (si hay entregas pendientes)"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/close [post]
func (h *ProcurementHandler) CloseOrder(c *fiber.Ctx) error {
	var in dto.CloseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.closeOrder.Close(c.Context(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(result.Order))
}

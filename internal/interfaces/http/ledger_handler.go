package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/dto"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ledger"
)

// LedgerHandler maneja entregas, salidas y conciliaciones (protegido).
type LedgerHandler struct {
	delivery       *ledger.DeliveryUseCase
	issue          *ledger.IssueUseCase
	reconciliation *ledger.ReconciliationUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(delivery *ledger.DeliveryUseCase, issue *ledger.IssueUseCase, reconciliation *ledger.ReconciliationUseCase) *LedgerHandler {
	return &LedgerHandler{delivery: delivery, issue: issue, reconciliation: reconciliation}
}

// PostDelivery godoc
// @Summary      Registrar o contabilizar una entrega
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostDeliveryRequest  true  "lines para crear; transaction_id para contabilizar una existente"
// @Success      201   {object}  dto.PostDeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *LedgerHandler) PostDelivery(c *fiber.Ctx) error {
	var in dto.PostDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := ledger.PostDeliveryInput{
		LocationID:    in.LocationID,
		PeriodID:      in.PeriodID,
		ActorID:       GetUserID(c),
		ActorRole:     GetRole(c),
		TransactionID: in.TransactionID,
		Draft:         in.Draft,
		InvoiceNumber: in.InvoiceNumber,
		Date:          in.Date,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, ledger.DeliveryLineInput{
			ItemID:      l.ItemID,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			OrderLineID: l.OrderLineID,
		})
	}

	result, err := h.delivery.PostDelivery(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PostDeliveryResponse{
		Transaction:           dto.FromTransaction(result.Transaction),
		NCRsCreated:           result.NCRsCreated,
		OrderAutoClosed:       result.OrderAutoClosed,
		RequisitionAutoClosed: result.RequisitionAutoClosed,
	})
}

// GetDelivery godoc
// @Summary      Consultar una entrega con su estado visible
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [get]
func (h *LedgerHandler) GetDelivery(c *fiber.Ctx) error {
	tx, status, err := h.delivery.GetDelivery(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.FromTransaction(tx)
	resp.Status = status
	return c.JSON(resp)
}

// UpdateDraft godoc
// @Summary      Editar un borrador de entrega
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la transacción"
// @Param        body  body  dto.PostDeliveryRequest  true  "lines e invoice_number a reemplazar"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [put]
func (h *LedgerHandler) UpdateDraft(c *fiber.Ctx) error {
	var in dto.PostDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := ledger.PostDeliveryInput{
		TransactionID: c.Params("id"),
		ActorID:       GetUserID(c),
		ActorRole:     GetRole(c),
		InvoiceNumber: in.InvoiceNumber,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, ledger.DeliveryLineInput{
			ItemID:      l.ItemID,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			OrderLineID: l.OrderLineID,
		})
	}

	tx, err := h.delivery.UpdateDraft(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransaction(tx))
}

// DeleteDraft godoc
// @Summary      Borrar un borrador de entrega
// @Tags         ledger
// @Security     Bearer
// @Param        id   path  string  true  "ID de la transacción"
// @Success      204  "sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [delete]
func (h *LedgerHandler) DeleteDraft(c *fiber.Ctx) error {
	if err := h.delivery.DeleteDraft(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PostIssue godoc
// @Summary      Contabilizar una salida de inventario
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostIssueRequest  true  "location_id, period_id, lines"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK con el detalle completo de faltantes"
// @Router       /api/issues [post]
func (h *LedgerHandler) PostIssue(c *fiber.Ctx) error {
	var in dto.PostIssueRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := ledger.PostIssueInput{
		LocationID: in.LocationID,
		PeriodID:   in.PeriodID,
		ActorID:    GetUserID(c),
		Date:       in.Date,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, ledger.IssueLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	result, err := h.issue.PostIssue(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransaction(result.Transaction))
}

// SaveReconciliation godoc
// @Summary      Guardar la conciliación de una locación en el período
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveReconciliationRequest  true  "lines con kind y monto firmado"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reconciliations [post]
func (h *LedgerHandler) SaveReconciliation(c *fiber.Ctx) error {
	var in dto.SaveReconciliationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := ledger.SaveReconciliationInput{
		LocationID: in.LocationID,
		PeriodID:   in.PeriodID,
		ActorID:    GetUserID(c),
		Date:       in.Date,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, ledger.ReconciliationLineInput{
			ItemID: l.ItemID,
			Kind:   l.Kind,
			Amount: l.Amount,
		})
	}

	tx, err := h.reconciliation.SaveReconciliation(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransaction(tx))
}

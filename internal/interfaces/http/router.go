package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/approval"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/fulfillment"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ledger"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/period"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/procurement"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Delivery       *ledger.DeliveryUseCase
	Issue          *ledger.IssueUseCase
	Transfer       *ledger.TransferUseCase
	Reconciliation *ledger.ReconciliationUseCase
	OverDelivery   *approval.OverDeliveryUseCase
	Requisitions   *procurement.RequisitionUseCase
	Orders         *procurement.OrderUseCase
	CloseOrder     *fulfillment.CloseOrderUseCase
	Periods        *period.PeriodUseCase

	LotRepo    repository.StockLotRepository
	PeriodRepo repository.PeriodRepository
	NCRRepo    repository.NCRRepository

	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	reviewers := RequireRole(entity.RoleSupervisor, entity.RoleAdmin)

	// Ledger: entregas, salidas, conciliación
	ledgerHandler := NewLedgerHandler(deps.Delivery, deps.Issue, deps.Reconciliation)
	api.Post("/deliveries", ledgerHandler.PostDelivery)
	api.Get("/deliveries/:id", ledgerHandler.GetDelivery)
	api.Put("/deliveries/:id", ledgerHandler.UpdateDraft)
	api.Delete("/deliveries/:id", ledgerHandler.DeleteDraft)
	api.Post("/issues", ledgerHandler.PostIssue)
	api.Post("/reconciliations", ledgerHandler.SaveReconciliation)

	// Traslados: solicitud abierta a todos, decisión solo revisores
	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfer)
	transfers.Post("/", transferHandler.Request)
	transfers.Post("/:id/approve", reviewers, transferHandler.Approve)
	transfers.Post("/:id/reject", reviewers, transferHandler.Reject)

	// Sobre-entregas: solo revisores
	approvalHandler := NewApprovalHandler(deps.OverDelivery)
	api.Post("/over-deliveries/approve", reviewers, approvalHandler.ApproveOverDeliveries)
	api.Post("/over-deliveries/reject", reviewers, approvalHandler.RejectOverDeliveries)

	// Procura: requisiciones y órdenes
	procurementHandler := NewProcurementHandler(deps.Requisitions, deps.Orders, deps.CloseOrder)
	requisitions := api.Group("/requisitions")
	requisitions.Post("/", procurementHandler.CreateRequisition)
	requisitions.Post("/:id/submit", procurementHandler.SubmitRequisition)
	requisitions.Post("/:id/approve", reviewers, procurementHandler.ApproveRequisition)
	requisitions.Post("/:id/reject", reviewers, procurementHandler.RejectRequisition)
	requisitions.Post("/:id/clone", procurementHandler.CloneRequisition)
	requisitions.Delete("/:id", procurementHandler.DeleteRequisition)

	orders := api.Group("/orders")
	orders.Post("/", procurementHandler.CreateOrder)
	orders.Post("/:id/close", procurementHandler.CloseOrder)

	// Cierre de período: solo revisores
	periods := api.Group("/periods")
	periodHandler := NewPeriodHandler(deps.Periods)
	periods.Post("/:id/locations/:locationId/ready", periodHandler.MarkLocationReady)
	periods.Post("/:id/close", reviewers, periodHandler.ClosePeriod)

	// Consultas de solo lectura
	stockHandler := NewStockHandler(deps.LotRepo, deps.PeriodRepo, deps.NCRRepo)
	api.Get("/locations/:locationId/stock", stockHandler.ListLots)
	periods.Get("/:id/locations/:locationId/reconciliation", stockHandler.GetReconciliation)
	periods.Get("/:id/locations/:locationId/ncrs", stockHandler.ListNCRs)
}

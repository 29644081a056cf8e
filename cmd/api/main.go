package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/approval"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/fulfillment"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ledger"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/period"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/procurement"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/infrastructure/notify"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/infrastructure/postgres"
	httpRouter "github.com/alkholigroup2020/stock-management-system-sub010/internal/interfaces/http"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/config"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)
	poolRepos := postgres.NewRepos(pool)

	var notifier ports.Notifier
	switch {
	case cfg.Notify.WebhookURL != "":
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, 5*time.Second)
		log.Info().Str("url", cfg.Notify.WebhookURL).Msg("notificaciones por webhook")
	case cfg.Notify.SMTPHost != "":
		notifier = notify.NewSMTPNotifier(
			cfg.Notify.SMTPHost, cfg.Notify.SMTPPort,
			cfg.Notify.SMTPUser, cfg.Notify.SMTPPassword,
			cfg.Notify.SMTPFrom, cfg.Notify.SMTPTo,
		)
		log.Info().Str("host", cfg.Notify.SMTPHost).Msg("notificaciones por correo")
	default:
		log.Warn().Msg("sin notificador configurado, los eventos se descartan")
	}

	deliveryUC := ledger.NewDeliveryUseCase(txRunner, notifier, log)
	issueUC := ledger.NewIssueUseCase(txRunner, notifier, log)
	transferUC := ledger.NewTransferUseCase(txRunner, notifier, log)
	reconciliationUC := ledger.NewReconciliationUseCase(txRunner, log)
	overDeliveryUC := approval.NewOverDeliveryUseCase(txRunner, notifier, log)
	requisitionUC := procurement.NewRequisitionUseCase(txRunner, notifier, log)
	orderUC := procurement.NewOrderUseCase(txRunner, notifier, log)
	closeOrderUC := fulfillment.NewCloseOrderUseCase(txRunner, notifier, log)
	periodUC := period.NewPeriodUseCase(txRunner, notifier, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Management API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Delivery:       deliveryUC,
		Issue:          issueUC,
		Transfer:       transferUC,
		Reconciliation: reconciliationUC,
		OverDelivery:   overDeliveryUC,
		Requisitions:   requisitionUC,
		Orders:         orderUC,
		CloseOrder:     closeOrderUC,
		Periods:        periodUC,
		LotRepo:        poolRepos.Lots,
		PeriodRepo:     poolRepos.Periods,
		NCRRepo:        poolRepos.NCRs,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/application/batch"
	"github.com/tu-usuario/resto-inventario/internal/application/catalog"
	"github.com/tu-usuario/resto-inventario/internal/application/ledger"
	"github.com/tu-usuario/resto-inventario/internal/application/order"
	"github.com/tu-usuario/resto-inventario/internal/application/receiving"
	"github.com/tu-usuario/resto-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/resto-inventario/internal/interfaces/http"
	"github.com/tu-usuario/resto-inventario/pkg/config"
	"github.com/tu-usuario/resto-inventario/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	discRepo := postgres.NewDiscrepancyRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	auditRecorder := audit.NewRecorder(auditRepo, log)
	ledgerUC := ledger.NewStockLedgerUseCase(txRunner, itemRepo, movRepo, auditRecorder)
	fulfillmentUC := order.NewFulfillmentUseCase(txRunner, orderRepo, itemRepo, ledgerUC, auditRecorder)
	batchUC := batch.NewTrackerUseCase(txRunner, batchRepo, itemRepo, auditRecorder)
	receivingUC := receiving.NewDiscrepancyUseCase(discRepo, itemRepo, orderRepo, auditRecorder)
	itemUC := catalog.NewItemUseCase(itemRepo, orderRepo, batchRepo, auditRecorder)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:        itemUC,
		LedgerUC:      ledgerUC,
		FulfillmentUC: fulfillmentUC,
		BatchUC:       batchUC,
		ReceivingUC:   receivingUC,
		AuditRecorder: auditRecorder,
		JWTSecret:     cfg.JWT.Secret,
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

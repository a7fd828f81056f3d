package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/application/batch"
	"github.com/tu-usuario/resto-inventario/internal/application/catalog"
	"github.com/tu-usuario/resto-inventario/internal/application/ledger"
	"github.com/tu-usuario/resto-inventario/internal/application/order"
	"github.com/tu-usuario/resto-inventario/internal/application/receiving"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC        *catalog.ItemUseCase
	LedgerUC      *ledger.StockLedgerUseCase
	FulfillmentUC *order.FulfillmentUseCase
	BatchUC       *batch.TrackerUseCase
	ReceivingUC   *receiving.DiscrepancyUseCase
	AuditRecorder *audit.Recorder
	JWTSecret     string
}

// Router registra las rutas de la API. Todo el API de negocio requiere
// Bearer Token; el tenant sale de los claims, nunca del body.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Catálogo
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Delete)

	// Stock Ledger
	inventory := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	inventory.Post("/movements", inventoryHandler.RegisterMovement)
	inventory.Get("/stock", inventoryHandler.GetStockLevels)
	inventory.Post("/items/:id/adjust", inventoryHandler.AdjustStock)
	inventory.Get("/items/:id/movements", inventoryHandler.ListMovements)

	// Órdenes
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.FulfillmentUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)
	orders.Delete("/:id", orderHandler.Delete)

	// Lotes
	batches := api.Group("/batches")
	batchHandler := NewBatchHandler(deps.BatchUC)
	batches.Post("/", batchHandler.Create)
	batches.Get("/", batchHandler.List)
	batches.Get("/:id", batchHandler.GetByID)
	batches.Post("/:id/adjust", batchHandler.Adjust)

	// Discrepancias de recepción
	recv := api.Group("/receiving/discrepancies")
	receivingHandler := NewReceivingHandler(deps.ReceivingUC)
	recv.Post("/", receivingHandler.Report)
	recv.Get("/", receivingHandler.List)
	recv.Post("/:id/resolve", receivingHandler.Resolve)
	recv.Patch("/:id/status", receivingHandler.SetStatus)

	// Audit trail
	auditHandler := NewAuditHandler(deps.AuditRecorder)
	api.Get("/audit", auditHandler.List)
}

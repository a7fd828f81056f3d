package order

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/application/ledger"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// InsufficientStockError detalla el producto ofensor y el faltante cuando
// una venta excede el stock disponible. Envuelve domain.ErrInsufficientStock
// para que errors.Is siga funcionando en los handlers.
type InsufficientStockError struct {
	ProductID string
	SKU       string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d (faltan %d)",
		e.SKU, e.Available, e.Requested, e.Requested-e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return domain.ErrInsufficientStock }

// FulfillmentUseCase lleva una orden (compra/venta/transferencia) por su
// ciclo de estados y aplica en cada transición exactamente un delta de stock
// vía el Stock Ledger: aplicar al crear, revertir al cancelar, guard de
// re-aplicación en re-cancelaciones.
type FulfillmentUseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	itemRepo  repository.ItemRepository
	stock     StockApplier
	audit     *audit.Recorder
}

// NewFulfillmentUseCase construye el caso de uso.
func NewFulfillmentUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	itemRepo repository.ItemRepository,
	stock StockApplier,
	auditRec *audit.Recorder,
) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		stock:     stock,
		audit:     auditRec,
	}
}

// LineInput es una línea de orden de entrada. TotalPrice nunca se acepta del
// caller: se recalcula siempre.
type LineInput struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// CreateOrderInput entrada para crear una orden.
type CreateOrderInput struct {
	Scope                entity.TenantScope
	Actor                string
	Type                 string
	OrderNumber          string // opcional; se genera de type+timestamp si falta
	Items                []LineInput
	Supplier             *entity.Party
	Customer             *entity.Party
	Notes                string
	ExpectedDeliveryDate *time.Time
}

func (in CreateOrderInput) validate() error {
	if !entity.ValidOrderType(in.Type) || in.Actor == "" {
		return domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	for _, line := range in.Items {
		if line.ProductID == "" || line.Quantity <= 0 || line.UnitPrice.IsNegative() {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// movementTypeFor mapea el tipo de orden al tipo de movimiento que aplica su
// creación: venta descuenta (OUT), compra ingresa (IN), transferencia solo
// deja traza (TRANSFER).
func movementTypeFor(orderType string) string {
	switch orderType {
	case entity.OrderTypeSale:
		return entity.MovementTypeOUT
	case entity.OrderTypePurchase:
		return entity.MovementTypeIN
	}
	return entity.MovementTypeTRANSFER
}

// CreateOrder valida toda la lista de líneas antes de mutar nada
// (todo-o-nada), crea la orden en pending y aplica de inmediato su efecto de
// stock línea por línea en la misma transacción.
func (uc *FulfillmentUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*entity.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	o := &entity.Order{
		ID:                   uuid.New().String(),
		OrderNumber:          input.OrderNumber,
		Type:                 input.Type,
		Status:               entity.OrderStatusPending,
		Supplier:             input.Supplier,
		Customer:             input.Customer,
		Notes:                input.Notes,
		OrderDate:            now,
		ExpectedDeliveryDate: input.ExpectedDeliveryDate,
		CreatedBy:            input.Actor,
		Country:              input.Scope.Country,
		Restaurant:           input.Scope.Restaurant,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if o.OrderNumber == "" {
		o.OrderNumber = entity.GenerateOrderNumber(input.Type, now)
	}
	for _, line := range input.Items {
		o.Items = append(o.Items, entity.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	o.ComputeTotals()

	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.StockMovementRepository,
		_ repository.DiscrepancyRepository,
	) error {
		locked, err := uc.lockLineItems(itemRepo, input.Scope, o.Items)
		if err != nil {
			return err
		}

		// Validación completa antes de cualquier mutación: para ventas, cada
		// línea contra el stock proyectado (cubre líneas repetidas del mismo
		// producto).
		if o.Type == entity.OrderTypeSale {
			projected := make(map[string]int64, len(locked))
			for id, item := range locked {
				projected[id] = item.CurrentStock
			}
			for _, line := range o.Items {
				if line.Quantity > projected[line.ProductID] {
					return &InsufficientStockError{
						ProductID: line.ProductID,
						SKU:       locked[line.ProductID].SKU,
						Available: projected[line.ProductID],
						Requested: line.Quantity,
					}
				}
				projected[line.ProductID] -= line.Quantity
			}
		}

		if err := orderRepo.Create(o); err != nil {
			return err
		}

		movType := movementTypeFor(o.Type)
		for _, line := range o.Items {
			_, err := uc.stock.ApplyInTx(movRepo, itemRepo, locked[line.ProductID], ledger.MovementInput{
				Scope:     input.Scope,
				Actor:     input.Actor,
				ItemID:    line.ProductID,
				Type:      movType,
				Quantity:  line.Quantity,
				Reason:    fmt.Sprintf("orden %s", o.OrderNumber),
				Reference: o.ID,
			}, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record("order.create", "Order", o.ID, input.Actor, input.Scope, audit.Changes{
		After: map[string]any{"order_number": o.OrderNumber, "type": o.Type, "status": o.Status, "total_amount": o.TotalAmount},
	})
	return o, nil
}

// lockLineItems bloquea los items de las líneas en orden determinista de ID
// (evita deadlocks entre órdenes concurrentes) y valida que existan, estén
// activos y pertenezcan al tenant.
func (uc *FulfillmentUseCase) lockLineItems(itemRepo repository.ItemRepository, scope entity.TenantScope, lines []entity.OrderItem) (map[string]*entity.Item, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	sort.Strings(ids)

	locked := make(map[string]*entity.Item, len(ids))
	for _, id := range ids {
		item, err := itemRepo.GetForUpdate(id)
		if err != nil {
			return nil, err
		}
		if item == nil || !scope.Matches(item.Country, item.Restaurant) || !item.IsActive {
			return nil, domain.ErrNotFound
		}
		locked[id] = item
	}
	return locked, nil
}

// UpdateStatus transiciona una orden de estado. Solo el status puede cambiar
// en una orden existente: entrar en delivered estampa actualDeliveryDate y
// entrar en cancelled revierte el efecto de stock exactamente una vez.
func (uc *FulfillmentUseCase) UpdateStatus(ctx context.Context, scope entity.TenantScope, actor, orderID, newStatus string) (*entity.Order, error) {
	if !entity.ValidOrderStatus(newStatus) || actor == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var result *entity.Order
	var oldStatus string

	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.StockMovementRepository,
		discRepo repository.DiscrepancyRepository,
	) error {
		o, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil || !scope.Matches(o.Country, o.Restaurant) {
			return domain.ErrNotFound
		}
		oldStatus = o.Status

		// Re-cancelar una orden cancelada es no-op (idempotente): el guard
		// evita re-aplicar el reverso de stock.
		if newStatus == o.Status {
			result = o
			return nil
		}
		if !entity.CanTransition(o.Status, newStatus) {
			return domain.ErrConflict
		}

		if newStatus == entity.OrderStatusDelivered && o.ActualDeliveryDate == nil {
			o.ActualDeliveryDate = &now
		}
		if newStatus == entity.OrderStatusCancelled {
			if err := uc.reverseStockInTx(itemRepo, movRepo, discRepo, o, actor, now); err != nil {
				return err
			}
		}

		o.Status = newStatus
		o.UpdatedAt = now
		if err := orderRepo.UpdateStatus(o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldStatus != result.Status {
		uc.audit.Record("order.status", "Order", result.ID, actor, scope, audit.Changes{
			Before: map[string]any{"status": oldStatus},
			After:  map[string]any{"status": result.Status},
		})
	}
	return result, nil
}

// Cancel transiciona la orden a cancelled (idempotente).
func (uc *FulfillmentUseCase) Cancel(ctx context.Context, scope entity.TenantScope, actor, orderID string) (*entity.Order, error) {
	return uc.UpdateStatus(ctx, scope, actor, orderID, entity.OrderStatusCancelled)
}

// reverseStockInTx revierte el efecto de stock original de una orden:
// las ventas restauran sus salidas, las compras descuentan sus entradas.
// Si revertir una línea de compra dejaría stock negativo, la línea se salta
// sin fallar la cancelación, pero el salto ya no es silencioso: se registra
// una ReceivingDiscrepancy para que remediación lo vea.
func (uc *FulfillmentUseCase) reverseStockInTx(
	itemRepo repository.ItemRepository,
	movRepo repository.StockMovementRepository,
	discRepo repository.DiscrepancyRepository,
	o *entity.Order,
	actor string,
	now time.Time,
) error {
	scope := entity.TenantScope{Country: o.Country, Restaurant: o.Restaurant}
	reason := fmt.Sprintf("reverso por cancelación de orden %s", o.OrderNumber)

	if o.Type == entity.OrderTypeTransfer {
		// TRANSFER netea cero sobre el stock local: no hay nada que revertir.
		return nil
	}

	// Mismo orden de bloqueo que la creación (IDs únicos, ordenados) para no
	// deadlockear contra creaciones o cancelaciones concurrentes. A diferencia
	// de la creación, un item desactivado sí se revierte.
	ids := make([]string, 0, len(o.Items))
	seen := make(map[string]bool, len(o.Items))
	for _, line := range o.Items {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	sort.Strings(ids)

	locked := make(map[string]*entity.Item, len(ids))
	for _, id := range ids {
		item, err := itemRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		locked[id] = item
	}

	switch o.Type {
	case entity.OrderTypeSale:
		for _, line := range o.Items {
			_, err := uc.stock.ApplyInTx(movRepo, itemRepo, locked[line.ProductID], ledger.MovementInput{
				Scope:     scope,
				Actor:     actor,
				ItemID:    line.ProductID,
				Type:      entity.MovementTypeIN,
				Quantity:  line.Quantity,
				Reason:    reason,
				Reference: o.ID,
			}, now)
			if err != nil {
				return err
			}
		}
	case entity.OrderTypePurchase:
		for _, line := range o.Items {
			item := locked[line.ProductID]
			if item.CurrentStock-line.Quantity < 0 {
				// La línea ya se consumió (total o parcialmente): saltar el
				// reverso y dejar constancia de la sub-reversión.
				expected, _ := json.Marshal(map[string]int64{"reversal_quantity": line.Quantity})
				actual, _ := json.Marshal(map[string]int64{"reversed_quantity": 0, "current_stock": item.CurrentStock})
				if err := discRepo.Create(&entity.ReceivingDiscrepancy{
					ID:              uuid.New().String(),
					PurchaseOrderID: o.ID,
					ItemID:          line.ProductID,
					Type:            entity.DiscrepancyTypeQuantity,
					ExpectedValue:   expected,
					ActualValue:     actual,
					Description:     fmt.Sprintf("reverso omitido al cancelar %s: dejaría stock negativo", o.OrderNumber),
					Status:          entity.DiscrepancyStatusOpen,
					ReportedBy:      actor,
					ReportedAt:      now,
					Country:         o.Country,
					Restaurant:      o.Restaurant,
				}); err != nil {
					return err
				}
				continue
			}
			_, err := uc.stock.ApplyInTx(movRepo, itemRepo, item, ledger.MovementInput{
				Scope:     scope,
				Actor:     actor,
				ItemID:    line.ProductID,
				Type:      entity.MovementTypeOUT,
				Quantity:  line.Quantity,
				Reason:    reason,
				Reference: o.ID,
			}, now)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteOrder elimina una orden solo en pending o cancelled; cualquier otro
// estado falla con ErrOrderLocked. Si la orden no estaba cancelada, primero
// revierte su efecto de stock con la misma lógica de la cancelación.
func (uc *FulfillmentUseCase) DeleteOrder(ctx context.Context, scope entity.TenantScope, actor, orderID string) error {
	if actor == "" {
		return domain.ErrInvalidInput
	}
	now := time.Now()
	var deleted *entity.Order

	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.StockMovementRepository,
		discRepo repository.DiscrepancyRepository,
	) error {
		o, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil || !scope.Matches(o.Country, o.Restaurant) {
			return domain.ErrNotFound
		}
		if o.Status != entity.OrderStatusPending && o.Status != entity.OrderStatusCancelled {
			return domain.ErrOrderLocked
		}
		if o.Status != entity.OrderStatusCancelled {
			if err := uc.reverseStockInTx(itemRepo, movRepo, discRepo, o, actor, now); err != nil {
				return err
			}
		}
		deleted = o
		return orderRepo.Delete(o.ID)
	})
	if err != nil {
		return err
	}

	uc.audit.Record("order.delete", "Order", deleted.ID, actor, scope, audit.Changes{
		Before: map[string]any{"order_number": deleted.OrderNumber, "status": deleted.Status},
	})
	return nil
}

// GetOrder obtiene una orden del tenant.
func (uc *FulfillmentUseCase) GetOrder(scope entity.TenantScope, orderID string) (*entity.Order, error) {
	o, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || !scope.Matches(o.Country, o.Restaurant) {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// ListOrders lista órdenes del tenant con filtros y paginación.
func (uc *FulfillmentUseCase) ListOrders(filter repository.OrderFilter) ([]*entity.Order, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.orderRepo.List(filter)
}

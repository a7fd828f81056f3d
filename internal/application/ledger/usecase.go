package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// StockLedgerUseCase registra movimientos de stock de forma transaccional
// (IN, OUT, ADJUSTMENT, TRANSFER) con bloqueo de fila (SELECT FOR UPDATE).
// Es el único componente que escribe Item.CurrentStock.
type StockLedgerUseCase struct {
	txRunner TxRunner
	itemRepo repository.ItemRepository
	movRepo  repository.StockMovementRepository
	audit    *audit.Recorder
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	movRepo repository.StockMovementRepository,
	auditRec *audit.Recorder,
) *StockLedgerUseCase {
	return &StockLedgerUseCase{
		txRunner: txRunner,
		itemRepo: itemRepo,
		movRepo:  movRepo,
		audit:    auditRec,
	}
}

// MovementInput entrada para registrar un movimiento de stock.
// Quantity es una magnitud no negativa; para ADJUSTMENT es el valor absoluto
// al que se fija el stock (conteo físico).
type MovementInput struct {
	Scope     entity.TenantScope
	Actor     string
	ItemID    string
	Type      string
	Quantity  int64
	Reason    string
	Reference string
	BatchID   string
}

func (in MovementInput) validate() error {
	if !entity.ValidMovementType(in.Type) {
		return domain.ErrInvalidInput
	}
	if in.ItemID == "" || in.Actor == "" {
		return domain.ErrInvalidInput
	}
	// ADJUSTMENT admite cero (conteo físico a cero); el resto exige positivo.
	if in.Type == entity.MovementTypeADJUSTMENT {
		if in.Quantity < 0 {
			return domain.ErrInvalidInput
		}
		return nil
	}
	if in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// RecordMovement valida la entrada, inicia una transacción, bloquea la fila
// del item y aplica el movimiento: movimiento y stock actualizado se
// persisten atómicamente o ninguno de los dos.
func (uc *StockLedgerUseCase) RecordMovement(ctx context.Context, input MovementInput) (*entity.StockMovement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	// Validación previa fuera de la tx: el item existe, está activo y es del tenant.
	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !input.Scope.Matches(item.Country, item.Restaurant) {
		return nil, domain.ErrNotFound
	}
	if !item.IsActive {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var mov *entity.StockMovement
	var stockBefore, stockAfter int64

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		itemRepo repository.ItemRepository,
	) error {
		locked, err := itemRepo.GetForUpdate(input.ItemID)
		if err != nil {
			return err
		}
		// Re-validar sobre la fila bloqueada: el item pudo desactivarse o
		// cambiar entre la pre-validación y el lock.
		if locked == nil || !input.Scope.Matches(locked.Country, locked.Restaurant) {
			return domain.ErrNotFound
		}
		if !locked.IsActive {
			return domain.ErrInvalidInput
		}
		stockBefore = locked.CurrentStock
		mov, err = uc.ApplyInTx(movRepo, itemRepo, locked, input, now)
		if err != nil {
			return err
		}
		stockAfter = locked.CurrentStock
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record("stock.movement", "StockMovement", mov.ID, input.Actor, input.Scope, audit.Changes{
		Before: map[string]any{"item_id": input.ItemID, "current_stock": stockBefore},
		After:  map[string]any{"item_id": input.ItemID, "current_stock": stockAfter},
	})
	return mov, nil
}

// ApplyInTx aplica un movimiento sobre un item ya bloqueado por el caller
// (GetForUpdate), usando los repositorios de la transacción del caller.
// Lo usa el motor de órdenes para integrar su efecto de stock en su propia
// transacción. Muta item.CurrentStock al valor resultante.
func (uc *StockLedgerUseCase) ApplyInTx(
	movRepo repository.StockMovementRepository,
	itemRepo repository.ItemRepository,
	item *entity.Item,
	input MovementInput,
	now time.Time,
) (*entity.StockMovement, error) {
	newStock := entity.ApplyMovement(item.CurrentStock, input.Type, input.Quantity)
	if newStock < 0 {
		return nil, domain.ErrInsufficientStock
	}
	if err := itemRepo.UpdateStock(item.ID, newStock); err != nil {
		return nil, err
	}
	item.CurrentStock = newStock

	mov := &entity.StockMovement{
		ID:         uuid.New().String(),
		ItemID:     item.ID,
		Type:       input.Type,
		Quantity:   input.Quantity,
		Reason:     input.Reason,
		Reference:  input.Reference,
		BatchID:    input.BatchID,
		Country:    item.Country,
		Restaurant: item.Restaurant,
		CreatedBy:  input.Actor,
		CreatedAt:  now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// AdjustStock es el wrapper de conveniencia: un delta con signo se traduce en
// un movimiento IN/OUT de magnitud |delta|. Falla con ErrInvalidAdjustment si
// el stock resultante sería negativo.
func (uc *StockLedgerUseCase) AdjustStock(ctx context.Context, scope entity.TenantScope, actor, itemID string, delta int64, reason string) (*entity.Item, error) {
	if delta == 0 || itemID == "" || actor == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !scope.Matches(item.Country, item.Restaurant) {
		return nil, domain.ErrNotFound
	}
	if !item.IsActive {
		return nil, domain.ErrInvalidInput
	}

	movementType := entity.MovementTypeIN
	quantity := delta
	if delta < 0 {
		movementType = entity.MovementTypeOUT
		quantity = -delta
	}

	now := time.Now()
	var result *entity.Item
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		itemRepo repository.ItemRepository,
	) error {
		locked, err := itemRepo.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if locked == nil || !scope.Matches(locked.Country, locked.Restaurant) {
			return domain.ErrNotFound
		}
		if !locked.IsActive {
			return domain.ErrInvalidInput
		}
		if locked.CurrentStock+delta < 0 {
			return domain.ErrInvalidAdjustment
		}
		input := MovementInput{
			Scope:    scope,
			Actor:    actor,
			ItemID:   itemID,
			Type:     movementType,
			Quantity: quantity,
			Reason:   reason,
		}
		if _, err := uc.ApplyInTx(movRepo, itemRepo, locked, input, now); err != nil {
			return err
		}
		result = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record("stock.adjust", "Item", itemID, actor, scope, audit.Changes{
		Before: map[string]any{"current_stock": result.CurrentStock - delta},
		After:  map[string]any{"current_stock": result.CurrentStock},
	})
	return result, nil
}

// GetStockLevels devuelve la proyección de niveles de stock del catálogo
// (solo lectura, sin mutación).
func (uc *StockLedgerUseCase) GetStockLevels(filter repository.ItemFilter) ([]*entity.Item, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.itemRepo.List(filter)
}

// ListMovements lista los movimientos de un item del tenant en un rango de fechas.
func (uc *StockLedgerUseCase) ListMovements(scope entity.TenantScope, itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !scope.Matches(item.Country, item.Restaurant) {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movRepo.ListByItem(itemID, from, to, limit, offset)
}

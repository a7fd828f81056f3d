package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	domainbatch "github.com/tu-usuario/resto-inventario/internal/domain/batch"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// TrackerUseCase administra lotes recibidos de un item: alta en recepción,
// ajustes de cantidad restante con log append-only y listado FEFO.
type TrackerUseCase struct {
	txRunner  TxRunner
	batchRepo repository.BatchRepository
	itemRepo  repository.ItemRepository
	audit     *audit.Recorder
}

// NewTrackerUseCase construye el caso de uso.
func NewTrackerUseCase(
	txRunner TxRunner,
	batchRepo repository.BatchRepository,
	itemRepo repository.ItemRepository,
	auditRec *audit.Recorder,
) *TrackerUseCase {
	return &TrackerUseCase{
		txRunner:  txRunner,
		batchRepo: batchRepo,
		itemRepo:  itemRepo,
		audit:     auditRec,
	}
}

// CreateBatchInput entrada para registrar un lote recibido.
type CreateBatchInput struct {
	Scope            entity.TenantScope
	Actor            string
	ItemID           string
	BatchNumber      string
	LotNumber        string
	ReceivedQuantity int64
	ExpirationDate   *time.Time
	ManufactureDate  *time.Time
	SupplierBatchID  string
}

// CreateBatch registra un lote. CurrentQuantity arranca igual a
// ReceivedQuantity.
func (uc *TrackerUseCase) CreateBatch(ctx context.Context, input CreateBatchInput) (*entity.ProductBatch, error) {
	if input.ItemID == "" || input.BatchNumber == "" || input.Actor == "" || input.ReceivedQuantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !input.Scope.Matches(item.Country, item.Restaurant) {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	b := &entity.ProductBatch{
		ID:               uuid.New().String(),
		ItemID:           input.ItemID,
		BatchNumber:      input.BatchNumber,
		LotNumber:        input.LotNumber,
		ExpirationDate:   input.ExpirationDate,
		ManufactureDate:  input.ManufactureDate,
		ReceivedQuantity: input.ReceivedQuantity,
		CurrentQuantity:  input.ReceivedQuantity,
		SupplierBatchID:  input.SupplierBatchID,
		Country:          input.Scope.Country,
		Restaurant:       input.Scope.Restaurant,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.batchRepo.Create(b); err != nil {
		return nil, err
	}

	uc.audit.Record("batch.create", "ProductBatch", b.ID, input.Actor, input.Scope, audit.Changes{
		After: map[string]any{"batch_number": b.BatchNumber, "item_id": b.ItemID, "received_quantity": b.ReceivedQuantity},
	})
	return b, nil
}

// AdjustQuantity aplica un delta a la cantidad restante de un lote (negativo
// para consumo, positivo para corrección) y agrega una nota con timestamp y
// motivo. Falla con ErrInvalidBatchAdjustment si el resultado violaría
// 0 <= currentQuantity <= receivedQuantity.
func (uc *TrackerUseCase) AdjustQuantity(ctx context.Context, scope entity.TenantScope, actor, batchID string, delta int64, reason string) (*entity.ProductBatch, error) {
	if batchID == "" || actor == "" || delta == 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var result *entity.ProductBatch
	var before int64

	err := uc.txRunner.RunBatch(ctx, func(batchRepo repository.BatchRepository) error {
		b, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if b == nil || !scope.Matches(b.Country, b.Restaurant) {
			return domain.ErrNotFound
		}
		newQty := b.CurrentQuantity + delta
		if newQty < 0 || newQty > b.ReceivedQuantity {
			return domain.ErrInvalidBatchAdjustment
		}
		before = b.CurrentQuantity
		b.CurrentQuantity = newQty
		b.Notes = append(b.Notes, entity.BatchNote{At: now, Reason: reason, Delta: delta})
		b.UpdatedAt = now
		if err := batchRepo.Update(b); err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record("batch.adjust", "ProductBatch", batchID, actor, scope, audit.Changes{
		Before: map[string]any{"current_quantity": before},
		After:  map[string]any{"current_quantity": result.CurrentQuantity},
	})
	return result, nil
}

// GetBatch obtiene un lote del tenant.
func (uc *TrackerUseCase) GetBatch(scope entity.TenantScope, batchID string) (*entity.ProductBatch, error) {
	b, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if b == nil || !scope.Matches(b.Country, b.Restaurant) {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// ListBatches lista lotes en orden FEFO (vencimiento ascendente, sin fecha al
// final). itemID vacío lista todos los lotes del tenant.
func (uc *TrackerUseCase) ListBatches(scope entity.TenantScope, itemID string, limit, offset int) ([]*entity.ProductBatch, error) {
	if itemID != "" {
		item, err := uc.itemRepo.GetByID(itemID)
		if err != nil {
			return nil, err
		}
		if item == nil || !scope.Matches(item.Country, item.Restaurant) {
			return nil, domain.ErrNotFound
		}
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.batchRepo.ListByItem(scope, itemID, limit, offset)
}

// BatchStatus deriva el estado de un lote ahora mismo (no se persiste).
func (uc *TrackerUseCase) BatchStatus(b *entity.ProductBatch) string {
	return domainbatch.Status(b, time.Now())
}

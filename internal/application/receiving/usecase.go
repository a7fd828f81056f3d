package receiving

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// DiscrepancyUseCase registra y resuelve diferencias detectadas en la
// recepción de mercadería. Puramente observacional: nunca muta stock; el
// flujo humano de remediación llama al Stock Ledger por fuera si corresponde.
type DiscrepancyUseCase struct {
	discRepo  repository.DiscrepancyRepository
	itemRepo  repository.ItemRepository
	orderRepo repository.OrderRepository
	audit     *audit.Recorder
}

// NewDiscrepancyUseCase construye el caso de uso.
func NewDiscrepancyUseCase(
	discRepo repository.DiscrepancyRepository,
	itemRepo repository.ItemRepository,
	orderRepo repository.OrderRepository,
	auditRec *audit.Recorder,
) *DiscrepancyUseCase {
	return &DiscrepancyUseCase{
		discRepo:  discRepo,
		itemRepo:  itemRepo,
		orderRepo: orderRepo,
		audit:     auditRec,
	}
}

// ReportInput entrada para reportar una discrepancia de recepción.
// ExpectedValue/ActualValue son JSON libre: la forma difiere por tipo.
type ReportInput struct {
	Scope           entity.TenantScope
	Actor           string
	PurchaseOrderID string
	ItemID          string
	Type            string
	ExpectedValue   json.RawMessage
	ActualValue     json.RawMessage
	Description     string
}

// Report crea una discrepancia en estado open.
func (uc *DiscrepancyUseCase) Report(ctx context.Context, input ReportInput) (*entity.ReceivingDiscrepancy, error) {
	if input.Actor == "" || input.PurchaseOrderID == "" || input.ItemID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidDiscrepancyType(input.Type) {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !input.Scope.Matches(item.Country, item.Restaurant) {
		return nil, domain.ErrNotFound
	}
	o, err := uc.orderRepo.GetByID(input.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if o == nil || !input.Scope.Matches(o.Country, o.Restaurant) {
		return nil, domain.ErrNotFound
	}

	d := &entity.ReceivingDiscrepancy{
		ID:              uuid.New().String(),
		PurchaseOrderID: input.PurchaseOrderID,
		ItemID:          input.ItemID,
		Type:            input.Type,
		ExpectedValue:   input.ExpectedValue,
		ActualValue:     input.ActualValue,
		Description:     input.Description,
		Status:          entity.DiscrepancyStatusOpen,
		ReportedBy:      input.Actor,
		ReportedAt:      time.Now(),
		Country:         input.Scope.Country,
		Restaurant:      input.Scope.Restaurant,
	}
	if err := uc.discRepo.Create(d); err != nil {
		return nil, err
	}

	uc.audit.Record("discrepancy.report", "ReceivingDiscrepancy", d.ID, input.Actor, input.Scope, audit.Changes{
		After: map[string]any{"type": d.Type, "purchase_order_id": d.PurchaseOrderID, "status": d.Status},
	})
	return d, nil
}

// Resolve transiciona a resolved y estampa resolvedBy/resolvedAt. Resolver
// una discrepancia ya resuelta es permitido e idempotente: re-estampa
// resolutor y fecha. Una discrepancia cancelada no puede resolverse.
func (uc *DiscrepancyUseCase) Resolve(ctx context.Context, scope entity.TenantScope, actor, id, resolution string) (*entity.ReceivingDiscrepancy, error) {
	if actor == "" || id == "" {
		return nil, domain.ErrInvalidInput
	}
	d, err := uc.discRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d == nil || !scope.Matches(d.Country, d.Restaurant) {
		return nil, domain.ErrNotFound
	}
	if d.Status == entity.DiscrepancyStatusCancelled {
		return nil, domain.ErrConflict
	}

	now := time.Now()
	before := d.Status
	d.Status = entity.DiscrepancyStatusResolved
	d.Resolution = resolution
	d.ResolvedBy = actor
	d.ResolvedAt = &now
	if err := uc.discRepo.Update(d); err != nil {
		return nil, err
	}

	uc.audit.Record("discrepancy.resolve", "ReceivingDiscrepancy", d.ID, actor, scope, audit.Changes{
		Before: map[string]any{"status": before},
		After:  map[string]any{"status": d.Status, "resolution": resolution},
	})
	return d, nil
}

// SetStatus mueve una discrepancia a investigating o cancelled desde un
// estado no terminal.
func (uc *DiscrepancyUseCase) SetStatus(ctx context.Context, scope entity.TenantScope, actor, id, status string) (*entity.ReceivingDiscrepancy, error) {
	if actor == "" || id == "" {
		return nil, domain.ErrInvalidInput
	}
	if status != entity.DiscrepancyStatusInvestigating && status != entity.DiscrepancyStatusCancelled {
		return nil, domain.ErrInvalidInput
	}
	d, err := uc.discRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d == nil || !scope.Matches(d.Country, d.Restaurant) {
		return nil, domain.ErrNotFound
	}
	if d.Status == entity.DiscrepancyStatusResolved || d.Status == entity.DiscrepancyStatusCancelled {
		return nil, domain.ErrConflict
	}
	if d.Status == status {
		return d, nil
	}

	before := d.Status
	d.Status = status
	if err := uc.discRepo.Update(d); err != nil {
		return nil, err
	}

	uc.audit.Record("discrepancy.status", "ReceivingDiscrepancy", d.ID, actor, scope, audit.Changes{
		Before: map[string]any{"status": before},
		After:  map[string]any{"status": d.Status},
	})
	return d, nil
}

// List lista discrepancias del tenant, más recientes primero.
func (uc *DiscrepancyUseCase) List(filter repository.DiscrepancyFilter) ([]*entity.ReceivingDiscrepancy, int, error) {
	if filter.Status != "" {
		switch filter.Status {
		case entity.DiscrepancyStatusOpen, entity.DiscrepancyStatusInvestigating,
			entity.DiscrepancyStatusResolved, entity.DiscrepancyStatusCancelled:
		default:
			return nil, 0, domain.ErrInvalidInput
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.discRepo.List(filter)
}

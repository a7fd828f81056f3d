package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

// ItemUseCase administra la identidad de los items del catálogo. El stock
// actual no se toca aquí: CurrentStock solo lo escribe el Stock Ledger.
type ItemUseCase struct {
	itemRepo  repository.ItemRepository
	orderRepo repository.OrderRepository
	batchRepo repository.BatchRepository
	audit     *audit.Recorder
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	itemRepo repository.ItemRepository,
	orderRepo repository.OrderRepository,
	batchRepo repository.BatchRepository,
	auditRec *audit.Recorder,
) *ItemUseCase {
	return &ItemUseCase{
		itemRepo:  itemRepo,
		orderRepo: orderRepo,
		batchRepo: batchRepo,
		audit:     auditRec,
	}
}

// CreateItemInput entrada para dar de alta un item.
type CreateItemInput struct {
	Scope        entity.TenantScope
	Actor        string
	SKU          string
	Name         string
	Description  string
	Unit         string
	Price        decimal.Decimal
	Cost         decimal.Decimal
	CurrentStock int64 // stock inicial; movimientos posteriores solo vía ledger
	MinStock     int64
	MaxStock     *int64
}

func (in CreateItemInput) validate() error {
	if in.SKU == "" || in.Name == "" || in.Actor == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidUnit(in.Unit) {
		return domain.ErrInvalidInput
	}
	if in.CurrentStock < 0 || in.MinStock < 0 {
		return domain.ErrInvalidInput
	}
	if in.MaxStock != nil && *in.MaxStock < in.MinStock {
		return domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// CreateItem da de alta un item. El SKU se normaliza a mayúsculas y es único
// por tenant.
func (uc *ItemUseCase) CreateItem(ctx context.Context, input CreateItemInput) (*entity.Item, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	existing, err := uc.itemRepo.GetBySKU(input.Scope, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	item := &entity.Item{
		ID:           uuid.New().String(),
		SKU:          sku,
		Name:         input.Name,
		Description:  input.Description,
		Unit:         input.Unit,
		Price:        input.Price,
		Cost:         input.Cost,
		CurrentStock: input.CurrentStock,
		MinStock:     input.MinStock,
		MaxStock:     input.MaxStock,
		IsActive:     true,
		Country:      input.Scope.Country,
		Restaurant:   input.Scope.Restaurant,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.itemRepo.Create(item); err != nil {
		return nil, err
	}

	uc.audit.Record("item.create", "Item", item.ID, input.Actor, input.Scope, audit.Changes{
		After: map[string]any{"sku": item.SKU, "name": item.Name, "current_stock": item.CurrentStock},
	})
	return item, nil
}

// UpdateItemInput campos de identidad editables de un item. Nil = sin cambio.
// CurrentStock no está acá a propósito.
type UpdateItemInput struct {
	Scope       entity.TenantScope
	Actor       string
	ItemID      string
	Name        *string
	Description *string
	Unit        *string
	Price       *decimal.Decimal
	Cost        *decimal.Decimal
	MinStock    *int64
	MaxStock    *int64
	IsActive    *bool
}

// UpdateItem edita la identidad de un item (nunca su stock).
func (uc *ItemUseCase) UpdateItem(ctx context.Context, input UpdateItemInput) (*entity.Item, error) {
	if input.ItemID == "" || input.Actor == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !input.Scope.Matches(item.Country, item.Restaurant) {
		return nil, domain.ErrNotFound
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Unit != nil {
		if !entity.ValidUnit(*input.Unit) {
			return nil, domain.ErrInvalidInput
		}
		item.Unit = *input.Unit
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		item.Price = *input.Price
	}
	if input.Cost != nil {
		if input.Cost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		item.Cost = *input.Cost
	}
	if input.MinStock != nil {
		if *input.MinStock < 0 {
			return nil, domain.ErrInvalidInput
		}
		item.MinStock = *input.MinStock
	}
	if input.MaxStock != nil {
		if *input.MaxStock < item.MinStock {
			return nil, domain.ErrInvalidInput
		}
		item.MaxStock = input.MaxStock
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	item.UpdatedAt = time.Now()

	if err := uc.itemRepo.Update(item); err != nil {
		return nil, err
	}

	uc.audit.Record("item.update", "Item", item.ID, input.Actor, input.Scope, audit.Changes{
		After: map[string]any{"sku": item.SKU, "name": item.Name, "is_active": item.IsActive},
	})
	return item, nil
}

// GetItem obtiene un item del tenant.
func (uc *ItemUseCase) GetItem(scope entity.TenantScope, itemID string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !scope.Matches(item.Country, item.Restaurant) {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// ListItems lista items del tenant con filtros y paginación.
func (uc *ItemUseCase) ListItems(filter repository.ItemFilter) ([]*entity.Item, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.itemRepo.List(filter)
}

// DeleteItem elimina un item solo si nada lo referencia: sin órdenes abiertas
// y sin lotes con cantidad restante.
func (uc *ItemUseCase) DeleteItem(ctx context.Context, scope entity.TenantScope, actor, itemID string) error {
	if itemID == "" || actor == "" {
		return domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return err
	}
	if item == nil || !scope.Matches(item.Country, item.Restaurant) {
		return domain.ErrNotFound
	}

	openOrders, err := uc.orderRepo.CountOpenByItem(itemID)
	if err != nil {
		return err
	}
	if openOrders > 0 {
		return domain.ErrConflict
	}
	nonEmpty, err := uc.batchRepo.CountNonEmptyByItem(itemID)
	if err != nil {
		return err
	}
	if nonEmpty > 0 {
		return domain.ErrConflict
	}

	if err := uc.itemRepo.Delete(itemID); err != nil {
		return err
	}
	uc.audit.Record("item.delete", "Item", itemID, actor, scope, audit.Changes{
		Before: map[string]any{"sku": item.SKU, "name": item.Name},
	})
	return nil
}

package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/application/ledger"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
	"github.com/tu-usuario/resto-inventario/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Item
}

func newFakeItemRepo(items ...*entity.Item) *fakeItemRepo {
	r := &fakeItemRepo{items: make(map[string]*entity.Item)}
	for _, it := range items {
		copia := *it
		r.items[it.ID] = &copia
	}
	return r
}

func (r *fakeItemRepo) Create(item *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *item
	r.items[item.ID] = &copia
	return nil
}

func (r *fakeItemRepo) GetByID(id string) (*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copia := *it
	return &copia, nil
}

func (r *fakeItemRepo) GetBySKU(scope entity.TenantScope, sku string) (*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.SKU == sku && scope.Matches(it.Country, it.Restaurant) {
			copia := *it
			return &copia, nil
		}
	}
	return nil, nil
}

// GetForUpdate devuelve una copia: el "bloqueo" lo modela el TxRunner fake,
// que serializa las transacciones con un mutex.
func (r *fakeItemRepo) GetForUpdate(id string) (*entity.Item, error) {
	return r.GetByID(id)
}

func (r *fakeItemRepo) UpdateStock(itemID string, currentStock int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[itemID]; ok {
		it.CurrentStock = currentStock
	}
	return nil
}

func (r *fakeItemRepo) Update(item *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *item
	r.items[item.ID] = &copia
	return nil
}

func (r *fakeItemRepo) List(filter repository.ItemFilter) ([]*entity.Item, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Item
	for _, it := range r.items {
		if !filter.Scope.Matches(it.Country, it.Restaurant) {
			continue
		}
		if filter.StockStatus != "" && it.StockStatus() != filter.StockStatus {
			continue
		}
		copia := *it
		out = append(out, &copia)
	}
	return out, len(out), nil
}

func (r *fakeItemRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []*entity.StockMovement
}

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *m
	r.movements = append(r.movements, &copia)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movements {
		if m.ID == id {
			copia := *m
			return &copia, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.movements {
		if m.ItemID != itemID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		copia := *m
		out = append(out, &copia)
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByReference(reference string) ([]*entity.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.movements {
		if m.Reference == reference {
			copia := *m
			out = append(out, &copia)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditLogEntry
}

func (r *fakeAuditRepo) Create(e *entity.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *e
	r.entries = append(r.entries, &copia)
	return nil
}

func (r *fakeAuditRepo) List(filter repository.AuditFilter) ([]*entity.AuditLogEntry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, len(r.entries), nil
}

// fakeTxRunner serializa las "transacciones" con un mutex: modela el efecto
// del SELECT FOR UPDATE por item sin una base de datos real. El hook antesDeTx
// permite simular una mutación concurrente que gana la carrera contra la
// pre-validación.
type fakeTxRunner struct {
	mu        sync.Mutex
	itemRepo  *fakeItemRepo
	movRepo   *fakeMovementRepo
	antesDeTx func()
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	itemRepo repository.ItemRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.antesDeTx != nil {
		r.antesDeTx()
	}
	return fn(r.movRepo, r.itemRepo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Setup
// ──────────────────────────────────────────────────────────────────────────────

var testScope = entity.TenantScope{Country: "MX", Restaurant: "sucursal-centro"}

func buildLedger(items ...*entity.Item) (*ledger.StockLedgerUseCase, *fakeItemRepo, *fakeMovementRepo, *fakeAuditRepo) {
	itemRepo := newFakeItemRepo(items...)
	movRepo := &fakeMovementRepo{}
	auditRepo := &fakeAuditRepo{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	recorder := audit.NewRecorder(auditRepo, log)
	runner := &fakeTxRunner{itemRepo: itemRepo, movRepo: movRepo}
	uc := ledger.NewStockLedgerUseCase(runner, itemRepo, movRepo, recorder)
	return uc, itemRepo, movRepo, auditRepo
}

func testItem(id string, stock int64) *entity.Item {
	return &entity.Item{
		ID:           id,
		SKU:          "SKU-" + id,
		Name:         "item " + id,
		Unit:         entity.UnitPiece,
		CurrentStock: stock,
		MinStock:     2,
		IsActive:     true,
		Country:      testScope.Country,
		Restaurant:   testScope.Restaurant,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_INSumaStock(t *testing.T) {
	uc, itemRepo, movRepo, auditRepo := buildLedger(testItem("i1", 10))

	mov, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "i1",
		Type: entity.MovementTypeIN, Quantity: 5, Reason: "recepción",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIN, mov.Type)

	it, _ := itemRepo.GetByID("i1")
	assert.Equal(t, int64(15), it.CurrentStock, "IN debe sumar al stock")
	assert.Len(t, movRepo.movements, 1, "debe quedar exactamente un movimiento")
	assert.Len(t, auditRepo.entries, 1, "el movimiento debe auditarse")
}

func TestRecordMovement_OUTQueDejaNegativo_Rechazado(t *testing.T) {
	uc, itemRepo, movRepo, _ := buildLedger(testItem("i1", 3))

	_, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "i1",
		Type: entity.MovementTypeOUT, Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	it, _ := itemRepo.GetByID("i1")
	assert.Equal(t, int64(3), it.CurrentStock, "el stock no debe cambiar en un rechazo")
	assert.Empty(t, movRepo.movements, "no debe persistirse movimiento alguno")
}

func TestRecordMovement_OUTExactoACero(t *testing.T) {
	uc, itemRepo, _, _ := buildLedger(testItem("i1", 5))

	_, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "i1",
		Type: entity.MovementTypeOUT, Quantity: 5,
	})
	require.NoError(t, err, "consumir exactamente el stock disponible es válido")

	it, _ := itemRepo.GetByID("i1")
	assert.Equal(t, int64(0), it.CurrentStock)
}

func TestRecordMovement_ADJUSTMENTFijaValorAbsoluto(t *testing.T) {
	uc, itemRepo, _, _ := buildLedger(testItem("i1", 17))

	_, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "i1",
		Type: entity.MovementTypeADJUSTMENT, Quantity: 0, Reason: "conteo físico",
	})
	require.NoError(t, err, "ADJUSTMENT a cero es un conteo físico válido")

	it, _ := itemRepo.GetByID("i1")
	assert.Equal(t, int64(0), it.CurrentStock)
}

func TestRecordMovement_TRANSFERNoAlteraStock(t *testing.T) {
	uc, itemRepo, movRepo, _ := buildLedger(testItem("i1", 10))

	_, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "i1",
		Type: entity.MovementTypeTRANSFER, Quantity: 4,
	})
	require.NoError(t, err)

	it, _ := itemRepo.GetByID("i1")
	assert.Equal(t, int64(10), it.CurrentStock, "TRANSFER solo deja traza")
	assert.Len(t, movRepo.movements, 1)
}

func TestRecordMovement_Validaciones(t *testing.T) {
	uc, _, _, _ := buildLedger(testItem("i1", 10))
	ctx := context.Background()

	_, err := uc.RecordMovement(ctx, ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "i1", Type: "MERMA", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo desconocido")

	_, err = uc.RecordMovement(ctx, ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "i1", Type: entity.MovementTypeIN, Quantity: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "IN exige cantidad positiva")

	_, err = uc.RecordMovement(ctx, ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "no-existe", Type: entity.MovementTypeIN, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordMovement_ItemDeOtroTenant_NotFound(t *testing.T) {
	uc, _, _, _ := buildLedger(testItem("i1", 10))

	otro := entity.TenantScope{Country: "CO", Restaurant: "bogota-norte"}
	_, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		Scope: otro, Actor: "u1", ItemID: "i1", Type: entity.MovementTypeIN, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"un item fuera del tenant se responde como inexistente, no como prohibido")
}

func TestRecordMovement_DesactivadoEntreValidacionYLock_Rechazado(t *testing.T) {
	itemRepo := newFakeItemRepo(testItem("i1", 10))
	movRepo := &fakeMovementRepo{}
	auditRepo := &fakeAuditRepo{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	runner := &fakeTxRunner{itemRepo: itemRepo, movRepo: movRepo}
	uc := ledger.NewStockLedgerUseCase(runner, itemRepo, movRepo, audit.NewRecorder(auditRepo, log))

	// Otro actor desactiva el item después de la pre-validación pero antes
	// del lock: la fila bloqueada debe re-validarse.
	runner.antesDeTx = func() {
		it, err := itemRepo.GetByID("i1")
		require.NoError(t, err)
		it.IsActive = false
		require.NoError(t, itemRepo.Update(it))
	}

	_, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "i1",
		Type: entity.MovementTypeIN, Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, movRepo.movements, "no debe persistirse movimiento alguno")
}

func TestAdjustStock_DesactivadoEntreValidacionYLock_Rechazado(t *testing.T) {
	itemRepo := newFakeItemRepo(testItem("i1", 10))
	movRepo := &fakeMovementRepo{}
	auditRepo := &fakeAuditRepo{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	runner := &fakeTxRunner{itemRepo: itemRepo, movRepo: movRepo}
	uc := ledger.NewStockLedgerUseCase(runner, itemRepo, movRepo, audit.NewRecorder(auditRepo, log))

	runner.antesDeTx = func() {
		it, err := itemRepo.GetByID("i1")
		require.NoError(t, err)
		it.IsActive = false
		require.NoError(t, itemRepo.Update(it))
	}

	_, err := uc.AdjustStock(context.Background(), testScope, "u1", "i1", 5, "recuento")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	it, _ := itemRepo.GetByID("i1")
	assert.Equal(t, int64(10), it.CurrentStock)
}

func TestRecordMovement_ItemInactivo_Rechazado(t *testing.T) {
	it := testItem("i1", 10)
	it.IsActive = false
	uc, _, _, _ := buildLedger(it)

	_, err := uc.RecordMovement(context.Background(), ledger.MovementInput{
		Scope: testScope, Actor: "u1", ItemID: "i1", Type: entity.MovementTypeIN, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustStock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_DeltaPositivo(t *testing.T) {
	uc, _, movRepo, _ := buildLedger(testItem("i1", 10))

	it, err := uc.AdjustStock(context.Background(), testScope, "u1", "i1", 7, "inventario recibido")
	require.NoError(t, err)
	assert.Equal(t, int64(17), it.CurrentStock)
	require.Len(t, movRepo.movements, 1)
	assert.Equal(t, entity.MovementTypeIN, movRepo.movements[0].Type)
	assert.Equal(t, int64(7), movRepo.movements[0].Quantity, "la magnitud se guarda sin signo")
}

func TestAdjustStock_DeltaNegativo(t *testing.T) {
	uc, _, movRepo, _ := buildLedger(testItem("i1", 10))

	it, err := uc.AdjustStock(context.Background(), testScope, "u1", "i1", -4, "merma")
	require.NoError(t, err)
	assert.Equal(t, int64(6), it.CurrentStock)
	require.Len(t, movRepo.movements, 1)
	assert.Equal(t, entity.MovementTypeOUT, movRepo.movements[0].Type)
}

func TestAdjustStock_DeltaQueDejaNegativo_Rechazado(t *testing.T) {
	uc, itemRepo, _, _ := buildLedger(testItem("i1", 3))

	_, err := uc.AdjustStock(context.Background(), testScope, "u1", "i1", -5, "merma")
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)

	it, _ := itemRepo.GetByID("i1")
	assert.Equal(t, int64(3), it.CurrentStock)
}

func TestAdjustStock_DeltaCero_Invalido(t *testing.T) {
	uc, _, _, _ := buildLedger(testItem("i1", 3))
	_, err := uc.AdjustStock(context.Background(), testScope, "u1", "i1", 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: dos OUT simultáneos sobre el mismo item
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_OUTConcurrentes_SoloUnoGana(t *testing.T) {
	uc, itemRepo, movRepo, _ := buildLedger(testItem("i1", 5))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.RecordMovement(context.Background(), ledger.MovementInput{
				Scope: testScope, Actor: "u1", ItemID: "i1",
				Type: entity.MovementTypeOUT, Quantity: 4,
			})
		}(i)
	}
	wg.Wait()

	exitos := 0
	for _, err := range errs {
		if err == nil {
			exitos++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, exitos, "exactamente una de las dos salidas debe ganar")

	it, _ := itemRepo.GetByID("i1")
	assert.Equal(t, int64(1), it.CurrentStock, "5 - 4 = 1; nunca negativo")
	assert.Len(t, movRepo.movements, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// ListMovements
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_FiltraPorItemDelTenant(t *testing.T) {
	uc, _, _, _ := buildLedger(testItem("i1", 10))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := uc.RecordMovement(ctx, ledger.MovementInput{
			Scope: testScope, Actor: "u1", ItemID: "i1",
			Type: entity.MovementTypeIN, Quantity: 1,
		})
		require.NoError(t, err)
	}

	movs, err := uc.ListMovements(testScope, "i1", nil, nil, 20, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 3)

	_, err = uc.ListMovements(testScope, "no-existe", nil, nil, 20, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

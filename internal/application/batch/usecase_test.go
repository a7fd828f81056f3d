package batch_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/resto-inventario/internal/application/audit"
	"github.com/tu-usuario/resto-inventario/internal/application/batch"
	"github.com/tu-usuario/resto-inventario/internal/domain"
	domainbatch "github.com/tu-usuario/resto-inventario/internal/domain/batch"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
	"github.com/tu-usuario/resto-inventario/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeBatchRepo struct {
	mu      sync.Mutex
	batches map[string]*entity.ProductBatch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[string]*entity.ProductBatch)}
}

func copiaLote(b *entity.ProductBatch) *entity.ProductBatch {
	copia := *b
	copia.Notes = append([]entity.BatchNote(nil), b.Notes...)
	return &copia
}

func (r *fakeBatchRepo) Create(b *entity.ProductBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.batches {
		if existing.ItemID == b.ItemID && existing.BatchNumber == b.BatchNumber {
			return domain.ErrDuplicate
		}
	}
	r.batches[b.ID] = copiaLote(b)
	return nil
}

func (r *fakeBatchRepo) GetByID(id string) (*entity.ProductBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	return copiaLote(b), nil
}

func (r *fakeBatchRepo) GetForUpdate(id string) (*entity.ProductBatch, error) { return r.GetByID(id) }

func (r *fakeBatchRepo) Update(b *entity.ProductBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.ID] = copiaLote(b)
	return nil
}

func (r *fakeBatchRepo) ListByItem(scope entity.TenantScope, itemID string, limit, offset int) ([]*entity.ProductBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ProductBatch
	for _, b := range r.batches {
		if !scope.Matches(b.Country, b.Restaurant) {
			continue
		}
		if itemID != "" && b.ItemID != itemID {
			continue
		}
		out = append(out, copiaLote(b))
	}
	sort.SliceStable(out, func(i, j int) bool { return domainbatch.Less(out[i], out[j]) })
	return out, nil
}

func (r *fakeBatchRepo) CountNonEmptyByItem(itemID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		if b.ItemID == itemID && b.CurrentQuantity > 0 {
			n++
		}
	}
	return n, nil
}

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

func (r *fakeItemRepo) Create(item *entity.Item) error { return nil }

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
	return nil, nil
}
func (r *fakeItemRepo) GetForUpdate(id string) (*entity.Item, error)       { return r.GetByID(id) }
func (r *fakeItemRepo) UpdateStock(itemID string, currentStock int64) error { return nil }
func (r *fakeItemRepo) Update(item *entity.Item) error                      { return nil }
func (r *fakeItemRepo) List(filter repository.ItemFilter) ([]*entity.Item, int, error) {
	return nil, 0, nil
}
func (r *fakeItemRepo) Delete(id string) error { return nil }

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
	return r.entries, len(r.entries), nil
}

type fakeTxRunner struct {
	mu        sync.Mutex
	batchRepo *fakeBatchRepo
}

func (r *fakeTxRunner) RunBatch(ctx context.Context, fn func(batchRepo repository.BatchRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.batchRepo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Setup
// ──────────────────────────────────────────────────────────────────────────────

var testScope = entity.TenantScope{Country: "MX", Restaurant: "sucursal-centro"}

func buildTracker() (*batch.TrackerUseCase, *fakeBatchRepo, *fakeAuditRepo) {
	batchRepo := newFakeBatchRepo()
	itemRepo := newFakeItemRepo(&entity.Item{
		ID: "i1", SKU: "SKU-i1", Name: "harina", Unit: entity.UnitKg,
		IsActive: true, Country: testScope.Country, Restaurant: testScope.Restaurant,
	})
	auditRepo := &fakeAuditRepo{}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	recorder := audit.NewRecorder(auditRepo, log)
	runner := &fakeTxRunner{batchRepo: batchRepo}
	return batch.NewTrackerUseCase(runner, batchRepo, itemRepo, recorder), batchRepo, auditRepo
}

func crearLote(t *testing.T, uc *batch.TrackerUseCase, batchNumber string, qty int64, exp *time.Time) *entity.ProductBatch {
	t.Helper()
	b, err := uc.CreateBatch(context.Background(), batch.CreateBatchInput{
		Scope: testScope, Actor: "u1", ItemID: "i1",
		BatchNumber: batchNumber, ReceivedQuantity: qty, ExpirationDate: exp,
	})
	require.NoError(t, err)
	return b
}

func tp(t time.Time) *time.Time { return &t }

// ──────────────────────────────────────────────────────────────────────────────
// CreateBatch
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateBatch_CantidadActualIgualARecibida(t *testing.T) {
	uc, _, auditRepo := buildTracker()

	b := crearLote(t, uc, "L-001", 100, nil)
	assert.Equal(t, int64(100), b.ReceivedQuantity)
	assert.Equal(t, int64(100), b.CurrentQuantity, "el lote arranca lleno")
	assert.Empty(t, b.Notes)
	assert.Len(t, auditRepo.entries, 1)
}

func TestCreateBatch_NumeroDuplicadoPorItem(t *testing.T) {
	uc, _, _ := buildTracker()

	crearLote(t, uc, "L-001", 100, nil)
	_, err := uc.CreateBatch(context.Background(), batch.CreateBatchInput{
		Scope: testScope, Actor: "u1", ItemID: "i1",
		BatchNumber: "L-001", ReceivedQuantity: 50,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateBatch_Validaciones(t *testing.T) {
	uc, _, _ := buildTracker()
	ctx := context.Background()

	_, err := uc.CreateBatch(ctx, batch.CreateBatchInput{
		Scope: testScope, Actor: "u1", ItemID: "i1", BatchNumber: "L-1", ReceivedQuantity: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad recibida positiva")

	_, err = uc.CreateBatch(ctx, batch.CreateBatchInput{
		Scope: testScope, Actor: "u1", ItemID: "no-existe", BatchNumber: "L-1", ReceivedQuantity: 10,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	otro := entity.TenantScope{Country: "CO", Restaurant: "bogota-norte"}
	_, err = uc.CreateBatch(ctx, batch.CreateBatchInput{
		Scope: otro, Actor: "u1", ItemID: "i1", BatchNumber: "L-1", ReceivedQuantity: 10,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustQuantity
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustQuantity_ConsumoYNota(t *testing.T) {
	uc, _, _ := buildTracker()
	b := crearLote(t, uc, "L-001", 100, nil)

	b2, err := uc.AdjustQuantity(context.Background(), testScope, "u1", b.ID, -30, "servicio de cena")
	require.NoError(t, err)
	assert.Equal(t, int64(70), b2.CurrentQuantity)
	require.Len(t, b2.Notes, 1, "cada ajuste agrega una nota")
	assert.Equal(t, int64(-30), b2.Notes[0].Delta)
	assert.Equal(t, "servicio de cena", b2.Notes[0].Reason)
}

func TestAdjustQuantity_NoBajaDeCero(t *testing.T) {
	uc, batchRepo, _ := buildTracker()
	b := crearLote(t, uc, "L-001", 100, nil)

	_, err := uc.AdjustQuantity(context.Background(), testScope, "u1", b.ID, -30, "cena")
	require.NoError(t, err)

	_, err = uc.AdjustQuantity(context.Background(), testScope, "u1", b.ID, -80, "cena")
	assert.ErrorIs(t, err, domain.ErrInvalidBatchAdjustment, "70 - 80 < 0")

	got, _ := batchRepo.GetByID(b.ID)
	assert.Equal(t, int64(70), got.CurrentQuantity, "el rechazo no muta el lote")
	assert.Len(t, got.Notes, 1, "tampoco deja nota")
}

func TestAdjustQuantity_NoSuperaLoRecibido(t *testing.T) {
	uc, _, _ := buildTracker()
	b := crearLote(t, uc, "L-001", 100, nil)

	_, err := uc.AdjustQuantity(context.Background(), testScope, "u1", b.ID, 1, "corrección")
	assert.ErrorIs(t, err, domain.ErrInvalidBatchAdjustment, "100 + 1 > recibido")
}

func TestAdjustQuantity_CorreccionPositivaTrasConsumo(t *testing.T) {
	uc, _, _ := buildTracker()
	b := crearLote(t, uc, "L-001", 100, nil)

	_, err := uc.AdjustQuantity(context.Background(), testScope, "u1", b.ID, -40, "cena")
	require.NoError(t, err)
	b2, err := uc.AdjustQuantity(context.Background(), testScope, "u1", b.ID, 10, "conteo corregido")
	require.NoError(t, err)
	assert.Equal(t, int64(70), b2.CurrentQuantity)
	assert.Len(t, b2.Notes, 2, "el log de notas es append-only")
}

func TestAdjustQuantity_DeltaCeroInvalido(t *testing.T) {
	uc, _, _ := buildTracker()
	b := crearLote(t, uc, "L-001", 100, nil)

	_, err := uc.AdjustQuantity(context.Background(), testScope, "u1", b.ID, 0, "nada")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustQuantity_OtroTenant_NotFound(t *testing.T) {
	uc, _, _ := buildTracker()
	b := crearLote(t, uc, "L-001", 100, nil)

	otro := entity.TenantScope{Country: "CO", Restaurant: "bogota-norte"}
	_, err := uc.AdjustQuantity(context.Background(), otro, "u1", b.ID, -10, "cena")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ListBatches y estado derivado
// ──────────────────────────────────────────────────────────────────────────────

func TestListBatches_OrdenFEFO(t *testing.T) {
	uc, _, _ := buildTracker()
	now := time.Now()

	sinFecha := crearLote(t, uc, "L-SIN", 10, nil)
	tarde := crearLote(t, uc, "L-TARDE", 10, tp(now.Add(90*24*time.Hour)))
	pronto := crearLote(t, uc, "L-PRONTO", 10, tp(now.Add(3*24*time.Hour)))

	lotes, err := uc.ListBatches(testScope, "i1", 50, 0)
	require.NoError(t, err)
	require.Len(t, lotes, 3)
	assert.Equal(t, pronto.ID, lotes[0].ID, "vence primero, sale primero")
	assert.Equal(t, tarde.ID, lotes[1].ID)
	assert.Equal(t, sinFecha.ID, lotes[2].ID, "sin vencimiento al final")
}

func TestListBatches_ItemInexistente_NotFound(t *testing.T) {
	uc, _, _ := buildTracker()
	_, err := uc.ListBatches(testScope, "no-existe", 50, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBatchStatus_Derivado(t *testing.T) {
	uc, _, _ := buildTracker()
	now := time.Now()

	vencido := crearLote(t, uc, "L-VENCIDO", 10, tp(now.Add(-24*time.Hour)))
	assert.Equal(t, domainbatch.StatusExpired, uc.BatchStatus(vencido))

	agotado := crearLote(t, uc, "L-AGOTADO", 10, tp(now.Add(-24*time.Hour)))
	agotado2, err := uc.AdjustQuantity(context.Background(), testScope, "u1", agotado.ID, -10, "consumo total")
	require.NoError(t, err)
	assert.Equal(t, domainbatch.StatusDepleted, uc.BatchStatus(agotado2), "agotado gana sobre vencido")

	activo := crearLote(t, uc, "L-ACTIVO", 10, tp(now.Add(90*24*time.Hour)))
	assert.Equal(t, domainbatch.StatusActive, uc.BatchStatus(activo))
}

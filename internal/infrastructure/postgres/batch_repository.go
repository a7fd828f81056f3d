package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, item_id, batch_number, lot_number, expiration_date, manufacture_date, received_quantity, current_quantity, supplier_batch_id, notes, country, restaurant, created_at, updated_at`

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL
// (usable con pool o tx). Notes se guarda como JSONB append-only.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(batch *entity.ProductBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	notes, err := json.Marshal(batch.Notes)
	if err != nil {
		return fmt.Errorf("marshal batch notes: %w", err)
	}
	query := `
		INSERT INTO product_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(context.Background(), query,
		batch.ID, batch.ItemID, batch.BatchNumber, batch.LotNumber,
		batch.ExpirationDate, batch.ManufactureDate,
		batch.ReceivedQuantity, batch.CurrentQuantity, batch.SupplierBatchID,
		notes, batch.Country, batch.Restaurant, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func scanBatch(row pgx.Row) (*entity.ProductBatch, error) {
	var b entity.ProductBatch
	var notes []byte
	err := row.Scan(
		&b.ID, &b.ItemID, &b.BatchNumber, &b.LotNumber,
		&b.ExpirationDate, &b.ManufactureDate,
		&b.ReceivedQuantity, &b.CurrentQuantity, &b.SupplierBatchID,
		&notes, &b.Country, &b.Restaurant, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &b.Notes); err != nil {
			return nil, fmt.Errorf("unmarshal batch notes: %w", err)
		}
	}
	return &b, nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(id string) (*entity.ProductBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM product_batches WHERE id = $1`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene el lote y bloquea su fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(id string) (*entity.ProductBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM product_batches WHERE id = $1 FOR UPDATE`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch for update: %w", err)
	}
	return b, nil
}

// Update persiste current_quantity, notes y updated_at. El resto del lote es
// inmutable tras la creación.
func (r *BatchRepo) Update(batch *entity.ProductBatch) error {
	notes, err := json.Marshal(batch.Notes)
	if err != nil {
		return fmt.Errorf("marshal batch notes: %w", err)
	}
	_, err = r.q.Exec(context.Background(), `
		UPDATE product_batches SET current_quantity = $2, notes = $3, updated_at = $4
		WHERE id = $1`,
		batch.ID, batch.CurrentQuantity, notes, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// ListByItem lista lotes en orden FEFO: vencimiento ascendente con los lotes
// sin vencimiento al final. itemID vacío lista todo el tenant.
func (r *BatchRepo) ListByItem(scope entity.TenantScope, itemID string, limit, offset int) ([]*entity.ProductBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM product_batches WHERE country = $1 AND restaurant = $2`
	args := []any{scope.Country, scope.Restaurant}
	pos := 3
	if itemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, itemID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY expiration_date ASC NULLS LAST, created_at ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// CountNonEmptyByItem cuenta lotes de un item con cantidad restante > 0.
func (r *BatchRepo) CountNonEmptyByItem(itemID string) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM product_batches WHERE item_id = $1 AND current_quantity > 0`,
		itemID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count batches by item: %w", err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/resto-inventario/internal/domain"
	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, sku, name, description, unit, price, cost, current_stock, min_stock, max_stock, is_active, country, restaurant, created_at, updated_at`

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para items. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo item del catálogo.
func (r *ItemRepo) Create(item *entity.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SKU, item.Name, item.Description, item.Unit,
		item.Price, item.Cost, item.CurrentStock, item.MinStock, item.MaxStock,
		item.IsActive, item.Country, item.Restaurant, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepo) scanItem(row pgx.Row) (*entity.Item, error) {
	var i entity.Item
	err := row.Scan(
		&i.ID, &i.SKU, &i.Name, &i.Description, &i.Unit, &i.Price, &i.Cost,
		&i.CurrentStock, &i.MinStock, &i.MaxStock, &i.IsActive,
		&i.Country, &i.Restaurant, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// GetByID obtiene un item por ID.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	i, err := r.scanItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return i, nil
}

// GetBySKU obtiene un item por SKU dentro del tenant.
func (r *ItemRepo) GetBySKU(scope entity.TenantScope, sku string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE country = $1 AND restaurant = $2 AND sku = $3`
	i, err := r.scanItem(r.q.QueryRow(context.Background(), query, scope.Country, scope.Restaurant, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item by sku: %w", err)
	}
	return i, nil
}

// GetForUpdate obtiene el item y bloquea la fila (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	i, err := r.scanItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item for update: %w", err)
	}
	return i, nil
}

// UpdateStock persiste solo current_stock (vía exclusiva del Stock Ledger).
func (r *ItemRepo) UpdateStock(itemID string, currentStock int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE items SET current_stock = $2, updated_at = now() WHERE id = $1`,
		itemID, currentStock,
	)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	return nil
}

// Update actualiza la identidad de un item. No toca current_stock (se maneja vía movimientos).
func (r *ItemRepo) Update(item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, description = $3, unit = $4, price = $5, cost = $6,
			min_stock = $7, max_stock = $8, is_active = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.Description, item.Unit, item.Price, item.Cost,
		item.MinStock, item.MaxStock, item.IsActive, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// List lista items del tenant con filtros opcionales y total para paginación.
func (r *ItemRepo) List(filter repository.ItemFilter) ([]*entity.Item, int, error) {
	where := ` WHERE country = $1 AND restaurant = $2`
	args := []any{filter.Scope.Country, filter.Scope.Restaurant}
	pos := 3
	if filter.Active != nil {
		where += fmt.Sprintf(" AND is_active = $%d", pos)
		args = append(args, *filter.Active)
		pos++
	}
	switch filter.StockStatus {
	case entity.StockStatusOutOfStock:
		where += " AND current_stock <= 0"
	case entity.StockStatusLowStock:
		where += " AND current_stock > 0 AND current_stock <= min_stock"
	case entity.StockStatusInStock:
		where += " AND current_stock > min_stock"
	}

	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	query := `SELECT ` + itemColumns + ` FROM items` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		i, err := r.scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, i)
	}
	return list, total, rows.Err()
}

// Delete elimina un item por ID.
func (r *ItemRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

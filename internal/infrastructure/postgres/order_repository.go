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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, type, status, total_amount, supplier, customer, notes, order_date, expected_delivery_date, actual_delivery_date, created_by, country, restaurant, created_at, updated_at`

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL
// (usable con pool o tx). Las líneas viven en order_items y se cargan con
// cada orden.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la orden y sus líneas. Las líneas son inmutables tras la
// creación: no hay Update de líneas.
func (r *OrderRepo) Create(order *entity.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	supplier, err := marshalParty(order.Supplier)
	if err != nil {
		return fmt.Errorf("marshal supplier: %w", err)
	}
	customer, err := marshalParty(order.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(context.Background(), query,
		order.ID, order.OrderNumber, order.Type, order.Status, order.TotalAmount,
		supplier, customer, order.Notes, order.OrderDate,
		order.ExpectedDeliveryDate, order.ActualDeliveryDate,
		order.CreatedBy, order.Country, order.Restaurant, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	for i, line := range order.Items {
		_, err = r.q.Exec(context.Background(), `
			INSERT INTO order_items (order_id, position, product_id, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, i, line.ProductID, line.Quantity, line.UnitPrice, line.TotalPrice,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func marshalParty(p *entity.Party) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func unmarshalParty(raw []byte) (*entity.Party, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var p entity.Party
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *OrderRepo) scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var supplier, customer []byte
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Type, &o.Status, &o.TotalAmount,
		&supplier, &customer, &o.Notes, &o.OrderDate,
		&o.ExpectedDeliveryDate, &o.ActualDeliveryDate,
		&o.CreatedBy, &o.Country, &o.Restaurant, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if o.Supplier, err = unmarshalParty(supplier); err != nil {
		return nil, fmt.Errorf("unmarshal supplier: %w", err)
	}
	if o.Customer, err = unmarshalParty(customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	return &o, nil
}

func (r *OrderRepo) loadItems(order *entity.Order) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT product_id, quantity, unit_price, total_price
		FROM order_items WHERE order_id = $1 ORDER BY position ASC`, order.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line entity.OrderItem
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UnitPrice, &line.TotalPrice); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, line)
	}
	return rows.Err()
}

// GetByID obtiene una orden con sus líneas.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := r.scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetForUpdate obtiene la orden y bloquea su fila (SELECT FOR UPDATE) para
// serializar las transiciones de estado.
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	o, err := r.scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order for update: %w", err)
	}
	if err := r.loadItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus persiste status, actual_delivery_date y updated_at. El resto
// de la orden es inmutable.
func (r *OrderRepo) UpdateStatus(order *entity.Order) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE orders SET status = $2, actual_delivery_date = $3, updated_at = $4
		WHERE id = $1`,
		order.ID, order.Status, order.ActualDeliveryDate, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// Delete elimina la orden y sus líneas (ON DELETE CASCADE en order_items).
func (r *OrderRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// List lista órdenes del tenant con filtros opcionales y total para paginación.
func (r *OrderRepo) List(filter repository.OrderFilter) ([]*entity.Order, int, error) {
	where := ` WHERE country = $1 AND restaurant = $2`
	args := []any{filter.Scope.Country, filter.Scope.Restaurant}
	pos := 3
	if filter.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.DateFrom != nil {
		where += fmt.Sprintf(" AND order_date >= $%d", pos)
		args = append(args, *filter.DateFrom)
		pos++
	}
	if filter.DateTo != nil {
		where += fmt.Sprintf(" AND order_date <= $%d", pos)
		args = append(args, *filter.DateTo)
		pos++
	}

	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(" ORDER BY order_date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, o := range list {
		if err := r.loadItems(o); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// CountOpenByItem cuenta órdenes no terminales que referencian un item.
func (r *OrderRepo) CountOpenByItem(itemID string) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(), `
		SELECT count(DISTINCT o.id)
		FROM orders o JOIN order_items oi ON oi.order_id = o.id
		WHERE oi.product_id = $1 AND o.status NOT IN ($2, $3)`,
		itemID, entity.OrderStatusDelivered, entity.OrderStatusCancelled,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open orders by item: %w", err)
	}
	return n, nil
}

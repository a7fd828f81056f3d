package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

var _ repository.DiscrepancyRepository = (*DiscrepancyRepo)(nil)

const discrepancyColumns = `id, purchase_order_id, item_id, type, expected_value, actual_value, description, status, resolution, reported_by, reported_at, resolved_by, resolved_at, country, restaurant`

// DiscrepancyRepo implementación del puerto DiscrepancyRepository sobre
// PostgreSQL (usable con pool o tx).
type DiscrepancyRepo struct {
	q Querier
}

// NewDiscrepancyRepository construye el adaptador de discrepancias. Pasar pool o tx (Querier).
func NewDiscrepancyRepository(q Querier) *DiscrepancyRepo {
	return &DiscrepancyRepo{q: q}
}

// Create persiste una discrepancia de recepción.
func (r *DiscrepancyRepo) Create(d *entity.ReceivingDiscrepancy) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := `
		INSERT INTO receiving_discrepancies (` + discrepancyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.PurchaseOrderID, d.ItemID, d.Type, d.ExpectedValue, d.ActualValue,
		d.Description, d.Status, d.Resolution, d.ReportedBy, d.ReportedAt,
		d.ResolvedBy, d.ResolvedAt, d.Country, d.Restaurant,
	)
	if err != nil {
		return fmt.Errorf("insert discrepancy: %w", err)
	}
	return nil
}

func scanDiscrepancy(row pgx.Row) (*entity.ReceivingDiscrepancy, error) {
	var d entity.ReceivingDiscrepancy
	err := row.Scan(
		&d.ID, &d.PurchaseOrderID, &d.ItemID, &d.Type, &d.ExpectedValue, &d.ActualValue,
		&d.Description, &d.Status, &d.Resolution, &d.ReportedBy, &d.ReportedAt,
		&d.ResolvedBy, &d.ResolvedAt, &d.Country, &d.Restaurant,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID obtiene una discrepancia por ID.
func (r *DiscrepancyRepo) GetByID(id string) (*entity.ReceivingDiscrepancy, error) {
	query := `SELECT ` + discrepancyColumns + ` FROM receiving_discrepancies WHERE id = $1`
	d, err := scanDiscrepancy(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get discrepancy: %w", err)
	}
	return d, nil
}

// Update persiste status, resolution y los campos de resolución.
func (r *DiscrepancyRepo) Update(d *entity.ReceivingDiscrepancy) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE receiving_discrepancies
		SET status = $2, resolution = $3, resolved_by = $4, resolved_at = $5
		WHERE id = $1`,
		d.ID, d.Status, d.Resolution, d.ResolvedBy, d.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update discrepancy: %w", err)
	}
	return nil
}

// List lista discrepancias del tenant, más recientes primero, con total para
// paginación.
func (r *DiscrepancyRepo) List(filter repository.DiscrepancyFilter) ([]*entity.ReceivingDiscrepancy, int, error) {
	where := ` WHERE country = $1 AND restaurant = $2`
	args := []any{filter.Scope.Country, filter.Scope.Restaurant}
	pos := 3
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.PurchaseOrderID != "" {
		where += fmt.Sprintf(" AND purchase_order_id = $%d", pos)
		args = append(args, filter.PurchaseOrderID)
		pos++
	}

	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM receiving_discrepancies`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count discrepancies: %w", err)
	}

	query := `SELECT ` + discrepancyColumns + ` FROM receiving_discrepancies` + where +
		fmt.Sprintf(" ORDER BY reported_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list discrepancies: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReceivingDiscrepancy
	for rows.Next() {
		d, err := scanDiscrepancy(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan discrepancy: %w", err)
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tu-usuario/resto-inventario/internal/domain/entity"
	"github.com/tu-usuario/resto-inventario/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

const auditColumns = `id, action, entity_type, entity_id, user_id, changes, country, restaurant, occurred_at`

// AuditLogRepo implementación del puerto AuditLogRepository sobre PostgreSQL.
// Append-only: solo inserta y lee.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador del audit trail. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create persiste una entrada de auditoría.
func (r *AuditLogRepo) Create(entry *entity.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO audit_log (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.Action, entry.EntityType, entry.EntityID, entry.UserID,
		entry.Changes, entry.Country, entry.Restaurant, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List consulta el audit trail, más recientes primero, con total para
// paginación.
func (r *AuditLogRepo) List(filter repository.AuditFilter) ([]*entity.AuditLogEntry, int, error) {
	where := ` WHERE country = $1 AND restaurant = $2`
	args := []any{filter.Scope.Country, filter.Scope.Restaurant}
	pos := 3
	if filter.EntityType != "" {
		where += fmt.Sprintf(" AND entity_type = $%d", pos)
		args = append(args, filter.EntityType)
		pos++
	}
	if filter.EntityID != "" {
		where += fmt.Sprintf(" AND entity_id = $%d", pos)
		args = append(args, filter.EntityID)
		pos++
	}
	if filter.UserID != "" {
		where += fmt.Sprintf(" AND user_id = $%d", pos)
		args = append(args, filter.UserID)
		pos++
	}
	if filter.Action != "" {
		where += fmt.Sprintf(" AND action = $%d", pos)
		args = append(args, filter.Action)
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}

	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM audit_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	query := `SELECT ` + auditColumns + ` FROM audit_log` + where +
		fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLogEntry
	for rows.Next() {
		var e entity.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.UserID,
			&e.Changes, &e.Country, &e.Restaurant, &e.Timestamp); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, total, rows.Err()
}

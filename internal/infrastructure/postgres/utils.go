package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reporta si err es una violación de unique constraint
// (23505). pgx siempre devuelve *pgconn.PgError para errores del servidor,
// así que no hace falta inspeccionar el texto.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidAdjustment      = errors.New("ajuste de stock inválido")
	ErrInvalidBatchAdjustment = errors.New("ajuste de lote inválido")
	ErrOrderLocked            = errors.New("la orden no puede eliminarse en su estado actual")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
)

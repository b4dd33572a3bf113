package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los adaptadores envuelven la causa con %w para que errors.Is siga funcionando.
var (
	ErrValidation             = errors.New("entrada inválida")
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrNoActiveMovements      = errors.New("el documento no tiene movimientos activos")
	ErrStorage                = errors.New("error de almacenamiento")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
)

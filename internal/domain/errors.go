package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Recepciones
	ErrAlreadyProcessed       = errors.New("la recepción ya fue procesada")
	ErrConfirmationInProgress = errors.New("hay una confirmación en curso para este folio")
	ErrMissingCatalog         = errors.New("falta seed de estatus o tipo de movimiento")

	// API externa (ERP)
	ErrUpstreamUnavailable = errors.New("la API externa no está disponible")
	ErrUpstreamContract    = errors.New("respuesta inesperada de la API externa")

	// ErrPersistence se produce después de que el ERP aceptó la confirmación:
	// el estado externo y el local quedan divergentes hasta el replay.
	ErrPersistence = errors.New("error al guardar la recepción")
)

package entity

import "time"

// Tipos de movimiento (catálogo movement_types).
const (
	MovementTypeRecepcionTraslado   = "RECEPCION_TRASLADO"
	MovementTypeRecepcionProveedor  = "RECEPCION_PROVEEDOR"
	MovementTypeRecepcion3PL        = "RECEPCION_3PL"
	MovementTypeTrasladoInterno     = "TRASLADO_INTERNO"
	MovementTypeTrasladoCorporativo = "TRASLADO_CORPORATIVO"
	MovementTypeSalidaUsoInterno    = "SALIDA_USO_INTERNO"
	MovementTypeDevolucionExterna   = "DEVOLUCION_EXTERNA"
)

// Estatus de movimiento (catálogo movement_statuses).
const (
	MovementStatusEnPreparacion        = "EN_PREPARACION"
	MovementStatusEnTransito           = "EN_TRANSITO"
	MovementStatusRecibidoParcial      = "RECIBIDO_PARCIAL"
	MovementStatusCerrado              = "CERRADO"
	MovementStatusCancelado            = "CANCELADO"
	MovementStatusDesviado             = "DESVIADO"
	MovementStatusEnReasignacion       = "EN_REASIGNACION"
	MovementStatusCerradoConIncidencia = "CERRADO_CON_INCIDENCIA"
	MovementStatusPerdidoORobado       = "PERDIDO_O_ROBADO"
)

// Movement representa un traslado identificado por el folio del ERP (DocumentNumber).
type Movement struct {
	ID                 string
	DocumentNumber     string // FolioSAP
	TypeName           string
	StatusName         string
	OriginStoreID      string
	DestinationStoreID string
	Observations       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsPending indica si el movimiento sigue abierto a recepción.
func (m *Movement) IsPending() bool {
	return m.StatusName == MovementStatusEnPreparacion
}

// ProcessedMovement fila del listado de traslados ya procesados, con nombres de tienda.
type ProcessedMovement struct {
	ID                   string
	DocumentNumber       string
	StatusName           string
	OriginStoreName      string
	DestinationStoreName string
	UpdatedAt            time.Time
}

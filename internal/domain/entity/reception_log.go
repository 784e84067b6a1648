package entity

import "time"

// ReceptionLog conteo confirmado de una línea de un traslado (folio + linenum).
// El conjunto de un folio se reemplaza completo en cada confirmación.
type ReceptionLog struct {
	ID               string
	FolioSAP         string
	Linenum          int
	Articulo         string
	CantidadEsperada int64
	CantidadRecibida int64
	Diferencia       int64   // recibida - esperada
	Motivo           *string // código de motivo, opcional
	Observaciones    string
	CreatedAt        time.Time
}

package dto

import "time"

// IncomingTransferResponse traslado pendiente de recibir.
type IncomingTransferResponse struct {
	FolioSAP       string `json:"folioSAP"`
	Fecha          string `json:"fecha"`
	Memo           string `json:"memo"`
	NombreOrigen   string `json:"nombreOrigen"`
	AlmacenOrigen  string `json:"almacenOrigen"`
	AlmacenDestino string `json:"almacenDestino"`
}

// ReceptionLineResponse línea conciliada.
type ReceptionLineResponse struct {
	Linenum          int    `json:"linenum"`
	Articulo         string `json:"articulo"`
	Descripcion      string `json:"descripcion"`
	CodeBars         string `json:"codeBars"`
	CantidadEsperada int64  `json:"cantidadEsperada"`
	CantidadRecibida int64  `json:"cantidadRecibida"`
	Diferencia       int64  `json:"diferencia"`
	Status           string `json:"status"`
}

// ReceptionSummaryResponse contadores y totales de la conciliación.
type ReceptionSummaryResponse struct {
	Lines         int   `json:"lines"`
	Correctos     int   `json:"correctos"`
	Faltantes     int   `json:"faltantes"`
	Excedentes    int   `json:"excedentes"`
	ConDiferencia int   `json:"conDiferencia"`
	TotalEsperado int64 `json:"totalEsperado"`
	TotalRecibido int64 `json:"totalRecibido"`
}

// PreviewResponse vista conciliada de un traslado.
type PreviewResponse struct {
	FolioSAP       string                   `json:"folioSAP"`
	OriginName     string                   `json:"originName"`
	MovementStatus string                   `json:"movementStatus"`
	ReadOnly       bool                     `json:"readOnly"`
	Classification string                   `json:"classification"`
	Summary        ReceptionSummaryResponse `json:"summary"`
	Lines          []ReceptionLineResponse  `json:"lines"`
}

// ConfirmItemRequest línea capturada por el usuario. nil indica que el campo no se envió.
type ConfirmItemRequest struct {
	Linenum  *int    `json:"linenum"`
	Articulo *string `json:"articulo"`
	Esperado *int64  `json:"esperado"`
	Recibido *int64  `json:"recibido"`
	CodeBars *string `json:"codeBars"`
}

// Complete indica si la línea trae los cinco campos.
func (r ConfirmItemRequest) Complete() bool {
	return r.Linenum != nil && r.Articulo != nil && r.Esperado != nil && r.Recibido != nil && r.CodeBars != nil
}

// ConfirmReceptionRequest cuerpo JSON de la confirmación.
type ConfirmReceptionRequest struct {
	Observaciones string               `json:"observaciones"`
	Cancel        bool                 `json:"cancel"`
	Items         []ConfirmItemRequest `json:"items"`
}

// ConfirmReceptionResponse confirmación aceptada por el ERP y registrada.
type ConfirmReceptionResponse struct {
	FolioSAP          string `json:"folioSAP"`
	DocNum            string `json:"docNum"`
	TransactionNumber string `json:"transactionNumber"`
	Status            string `json:"status"`
	MovementStatus    string `json:"movementStatus"`
	Redirect          string `json:"redirect"`
}

// ProcessedMovementResponse movimiento ya conciliado.
type ProcessedMovementResponse struct {
	ID        string    `json:"id"`
	FolioSAP  string    `json:"folioSAP"`
	Status    string    `json:"status"`
	Origen    string    `json:"origen"`
	Destino   string    `json:"destino"`
	UpdatedAt time.Time `json:"updatedAt"`
}

package reception

import "encoding/json"

// EstatusAbierto estatus del ERP para un traslado aún no recibido.
const EstatusAbierto = "O"

// TransferHeader cabecera de un traslado en el ERP. NumAtCard y DocNum se
// conservan tal como llegan para devolverlos sin cambios en la confirmación.
type TransferHeader struct {
	FolioSAP       string          `json:"FolioSAP"`
	Fecha          string          `json:"Fecha"`
	Memo           string          `json:"Memo"`
	NombreOrigen   string          `json:"NombreOrigen"`
	AlmacenOrigen  string          `json:"AlmacenOrigen"`
	AlmacenDestino string          `json:"AlmacenDestino"`
	Estatus        string          `json:"Estatus"`
	NumAtCard      json.RawMessage `json:"NumAtCard,omitempty"`
	DocNum         json.RawMessage `json:"DocNum,omitempty"`
}

// IsOpen indica si el traslado sigue abierto en el ERP.
func (h TransferHeader) IsOpen() bool {
	return h.Estatus == EstatusAbierto
}

// Confirmation todo lo necesario para enviar ReceiptConfirm al ERP.
type Confirmation struct {
	Header            TransferHeader
	Memo              string
	TransactionNumber string
	Receipt           Receipt
}

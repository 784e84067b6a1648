package erp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recepciones-api/internal/domain/reception"
)

// flexString acepta string, número o null. Los números se conservan con su
// representación original (sin pasar por float64).
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("se esperaba texto o número: %s", data)
	}
	*s = flexString(n.String())
	return nil
}

// quantity cantidad entera del ERP; puede llegar como número, decimal o string.
type quantity int64

func (q *quantity) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*q = 0
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("cantidad inválida %s: %w", data, err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("cantidad no entera: %s", d.String())
	}
	*q = quantity(d.IntPart())
	return nil
}

type headerDTO struct {
	FolioSAP       flexString      `json:"FolioSAP"`
	Fecha          flexString      `json:"Fecha"`
	Memo           flexString      `json:"Memo"`
	NombreOrigen   flexString      `json:"NombreOrigen"`
	AlmacenOrigen  flexString      `json:"AlmacenOrigen"`
	AlmacenDestino flexString      `json:"AlmacenDestino"`
	Estatus        flexString      `json:"Estatus"`
	NumAtCard      json.RawMessage `json:"NumAtCard"`
	DocNum         json.RawMessage `json:"DocNum"`
}

func (h headerDTO) toDomain() reception.TransferHeader {
	return reception.TransferHeader{
		FolioSAP:       string(h.FolioSAP),
		Fecha:          string(h.Fecha),
		Memo:           string(h.Memo),
		NombreOrigen:   string(h.NombreOrigen),
		AlmacenOrigen:  string(h.AlmacenOrigen),
		AlmacenDestino: string(h.AlmacenDestino),
		Estatus:        string(h.Estatus),
		NumAtCard:      h.NumAtCard,
		DocNum:         h.DocNum,
	}
}

type detailDTO struct {
	Linenum     quantity   `json:"Linenum"`
	Articulo    flexString `json:"Articulo"`
	Descripcion flexString `json:"Descripcion"`
	Cantidad    quantity   `json:"Cantidad"`
	CodeBars    flexString `json:"CodeBars"`
}

func (d detailDTO) toDomain() reception.ExternalLine {
	return reception.ExternalLine{
		Linenum:     int(d.Linenum),
		Articulo:    string(d.Articulo),
		Descripcion: string(d.Descripcion),
		Cantidad:    int64(d.Cantidad),
		CodeBars:    string(d.CodeBars),
	}
}

// ── Payload de ReceiptConfirm ────────────────────────────────────────────────

type receiptConfirmRequest struct {
	ReceiptConfirm receiptConfirmHeader `json:"ReceiptConfirm"`
	ControlValues  controlValues        `json:"ControlValues"`
	Lines          []receiptLine        `json:"Lines"`
	Excedentes     lineGroup            `json:"Excedentes"`
}

type receiptConfirmHeader struct {
	NumAtCard         json.RawMessage `json:"NumAtCard"`
	DocDate           string          `json:"DocDate"`
	Memo              string          `json:"Memo"`
	DocNum            json.RawMessage `json:"DocNum"`
	TransactionNumber string          `json:"TransactionNumber"`
	Status            string          `json:"Status"`
}

type controlValues struct {
	TotalLines    int   `json:"TotalLines"`
	TotalQuantity int64 `json:"TotalQuantity"`
}

type receiptLine struct {
	Quantity int64  `json:"Quantity"`
	ItemCode string `json:"ItemCode"`
	LineNum  string `json:"LineNum"`
	BarCode  string `json:"BarCode"`
}

type lineGroup struct {
	ControlValues controlValues `json:"ControlValues"`
	Lines         []receiptLine `json:"Lines"`
}

func newReceiptConfirmRequest(c reception.Confirmation) receiptConfirmRequest {
	return receiptConfirmRequest{
		ReceiptConfirm: receiptConfirmHeader{
			NumAtCard:         rawOrNull(c.Header.NumAtCard),
			DocDate:           c.Header.Fecha,
			Memo:              c.Memo,
			DocNum:            rawOrNull(c.Header.DocNum),
			TransactionNumber: c.TransactionNumber,
			Status:            string(c.Receipt.Status),
		},
		ControlValues: toControlValues(c.Receipt.Lines.ControlValues),
		Lines:         toReceiptLines(c.Receipt.Lines.Lines),
		Excedentes: lineGroup{
			ControlValues: toControlValues(c.Receipt.Excedentes.ControlValues),
			Lines:         toReceiptLines(c.Receipt.Excedentes.Lines),
		},
	}
}

func toControlValues(cv reception.ControlValues) controlValues {
	return controlValues{TotalLines: cv.TotalLines, TotalQuantity: cv.TotalQuantity}
}

func toReceiptLines(lines []reception.ReceiptLine) []receiptLine {
	out := make([]receiptLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, receiptLine{Quantity: l.Quantity, ItemCode: l.ItemCode, LineNum: l.LineNum, BarCode: l.BarCode})
	}
	return out
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

// receiptConfirmResponse primer elemento de la respuesta del ERP.
type receiptConfirmResponse struct {
	DocNum flexString `json:"DocNum"`
}

package reception

import (
	"strconv"
	"time"

	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
)

// CountedLine línea capturada por el usuario al confirmar.
type CountedLine struct {
	Linenum  int
	Articulo string
	Esperado int64
	Recibido int64
	CodeBars string
}

// ReceiptLine línea del payload de confirmación.
type ReceiptLine struct {
	Quantity int64
	ItemCode string
	LineNum  string
	BarCode  string
}

// ControlValues totales de control de un grupo de líneas.
type ControlValues struct {
	TotalLines    int
	TotalQuantity int64
}

// LineGroup grupo de líneas con sus totales de control.
type LineGroup struct {
	ControlValues ControlValues
	Lines         []ReceiptLine
}

// Receipt resultado de conciliar las líneas capturadas: la porción recibida
// hasta lo esperado (Lines) y el sobrante reportado aparte (Excedentes).
type Receipt struct {
	Lines      LineGroup
	Excedentes LineGroup
	Status     Classification
	// Counted son las líneas finales (ya con la cancelación aplicada).
	Counted []CountedLine
}

// ApplyCancel devuelve una copia con recibido = esperado en cada línea.
func ApplyCancel(lines []CountedLine) []CountedLine {
	out := make([]CountedLine, len(lines))
	for i, l := range lines {
		l.Recibido = l.Esperado
		out[i] = l
	}
	return out
}

// BuildReceipt arma los grupos Lines/Excedentes y la etiqueta de estatus.
func BuildReceipt(lines []CountedLine, cancel bool) Receipt {
	if cancel {
		lines = ApplyCancel(lines)
	} else {
		lines = append([]CountedLine(nil), lines...)
	}

	matched := make([]ReceiptLine, 0, len(lines))
	surplus := make([]ReceiptLine, 0)
	var matchedQty, surplusQty, expectedQty int64
	for _, l := range lines {
		q := min(l.Recibido, l.Esperado)
		matched = append(matched, ReceiptLine{
			Quantity: q,
			ItemCode: l.Articulo,
			LineNum:  strconv.Itoa(l.Linenum),
			BarCode:  l.CodeBars,
		})
		matchedQty += q
		expectedQty += l.Esperado

		if l.Recibido > l.Esperado {
			extra := l.Recibido - l.Esperado
			surplus = append(surplus, ReceiptLine{
				Quantity: extra,
				ItemCode: l.Articulo,
				LineNum:  strconv.Itoa(l.Linenum),
				BarCode:  l.CodeBars,
			})
			surplusQty += extra
		}
	}

	return Receipt{
		Lines: LineGroup{
			ControlValues: ControlValues{TotalLines: len(matched), TotalQuantity: matchedQty},
			Lines:         matched,
		},
		Excedentes: LineGroup{
			ControlValues: ControlValues{TotalLines: len(surplus), TotalQuantity: surplusQty},
			Lines:         surplus,
		},
		Status:  StatusLabel(matchedQty, expectedQty, surplusQty, cancel),
		Counted: lines,
	}
}

// StatusLabel etiqueta por totales: Parcial si lo recibido hasta lo esperado no
// cubre lo esperado o si hay excedentes. Coincide con Aggregate línea a línea.
func StatusLabel(matchedQty, expectedQty, surplusQty int64, cancel bool) Classification {
	switch {
	case cancel:
		return ClassificationCancelado
	case matchedQty < expectedQty || surplusQty > 0:
		return ClassificationParcial
	default:
		return ClassificationTotal
	}
}

// ReceptionLogs convierte las líneas finales en filas de bitácora del folio.
func (r Receipt) ReceptionLogs(folioSAP, memo string, now time.Time) []*entity.ReceptionLog {
	logs := make([]*entity.ReceptionLog, 0, len(r.Counted))
	for _, l := range r.Counted {
		logs = append(logs, &entity.ReceptionLog{
			FolioSAP:         folioSAP,
			Linenum:          l.Linenum,
			Articulo:         l.Articulo,
			CantidadEsperada: l.Esperado,
			CantidadRecibida: l.Recibido,
			Diferencia:       l.Recibido - l.Esperado,
			Motivo:           nil,
			Observaciones:    memo,
			CreatedAt:        now,
		})
	}
	return logs
}

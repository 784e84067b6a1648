// Package reception contiene la lógica pura de conciliación de recepciones:
// comparación esperado vs. recibido por línea, clasificación del documento y
// armado de los grupos de líneas que se confirman al ERP. No hace I/O.
package reception

import "github.com/jhoicas/Recepciones-api/internal/domain/entity"

// LineStatus clasificación de una línea según su diferencia.
type LineStatus string

const (
	LineCorrecto  LineStatus = "CORRECTO"
	LineFaltante  LineStatus = "FALTANTE"
	LineExcedente LineStatus = "EXCEDENTE"
)

// Classification clasificación agregada del documento. Los valores son las
// etiquetas que espera el ERP en ReceiptConfirm.Status.
type Classification string

const (
	ClassificationTotal     Classification = "Total"
	ClassificationParcial   Classification = "Parcial"
	ClassificationCancelado Classification = "Cancelado"
)

// MovementStatus estatus final del Movement para la clasificación.
func (c Classification) MovementStatus() string {
	switch c {
	case ClassificationCancelado:
		return entity.MovementStatusCancelado
	case ClassificationParcial:
		return entity.MovementStatusRecibidoParcial
	default:
		return entity.MovementStatusCerrado
	}
}

// ExternalLine línea de detalle del traslado tal como la entrega el ERP.
type ExternalLine struct {
	Linenum     int
	Articulo    string
	Descripcion string
	Cantidad    int64
	CodeBars    string
}

// LineResult línea conciliada.
type LineResult struct {
	Linenum          int        `json:"linenum"`
	Articulo         string     `json:"articulo"`
	Descripcion      string     `json:"descripcion"`
	CodeBars         string     `json:"codeBars"`
	CantidadEsperada int64      `json:"cantidadEsperada"`
	CantidadRecibida int64      `json:"cantidadRecibida"`
	Diferencia       int64      `json:"diferencia"`
	Status           LineStatus `json:"status"`
}

// Summary contadores por pestaña de la vista previa.
type Summary struct {
	Lines         int   `json:"lines"`
	Correctos     int   `json:"correctos"`
	Faltantes     int   `json:"faltantes"`
	Excedentes    int   `json:"excedentes"`
	ConDiferencia int   `json:"conDiferencia"`
	TotalEsperado int64 `json:"totalEsperado"`
	TotalRecibido int64 `json:"totalRecibido"`
}

// Result salida del motor de conciliación.
type Result struct {
	Lines          []LineResult   `json:"lines"`
	Classification Classification `json:"classification"`
	Summary        Summary        `json:"summary"`
}

// Classify clasifica una línea por su diferencia (recibida - esperada).
func Classify(diferencia int64) LineStatus {
	switch {
	case diferencia < 0:
		return LineFaltante
	case diferencia > 0:
		return LineExcedente
	default:
		return LineCorrecto
	}
}

// Reconcile combina las líneas externas con las cantidades recibidas conocidas.
// overrides va por número de línea; una línea sin override se asume recibida completa.
// Con cancel toda línea se concilia a diferencia cero y el documento queda Cancelado.
func Reconcile(lines []ExternalLine, overrides map[int]int64, cancel bool) Result {
	results := make([]LineResult, 0, len(lines))
	var sum Summary
	for _, l := range lines {
		recibida := l.Cantidad
		if v, ok := overrides[l.Linenum]; ok {
			recibida = v
		}
		if cancel {
			recibida = l.Cantidad
		}
		dif := recibida - l.Cantidad
		st := Classify(dif)
		results = append(results, LineResult{
			Linenum:          l.Linenum,
			Articulo:         l.Articulo,
			Descripcion:      l.Descripcion,
			CodeBars:         l.CodeBars,
			CantidadEsperada: l.Cantidad,
			CantidadRecibida: recibida,
			Diferencia:       dif,
			Status:           st,
		})

		sum.Lines++
		sum.TotalEsperado += l.Cantidad
		sum.TotalRecibido += recibida
		switch st {
		case LineCorrecto:
			sum.Correctos++
		case LineFaltante:
			sum.Faltantes++
			sum.ConDiferencia++
		case LineExcedente:
			sum.Excedentes++
			sum.ConDiferencia++
		}
	}
	return Result{
		Lines:          results,
		Classification: Aggregate(results, cancel),
		Summary:        sum,
	}
}

// Aggregate clasifica el documento: Cancelado si cancel, Parcial si alguna línea
// tiene diferencia, Total en otro caso.
func Aggregate(lines []LineResult, cancel bool) Classification {
	if cancel {
		return ClassificationCancelado
	}
	for _, l := range lines {
		if l.Diferencia != 0 {
			return ClassificationParcial
		}
	}
	return ClassificationTotal
}

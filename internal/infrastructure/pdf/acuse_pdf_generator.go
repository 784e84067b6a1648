// Package pdf genera el acuse de recepción de un traslado.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Acuse de recepción  │  Folio + Estatus + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN / DESTINO / Observaciones                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Línea | Artículo | Esperado | Recibido | Dif | Est.  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: contadores y totales   │  QR del folio             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appreception "github.com/jhoicas/Recepciones-api/internal/application/reception"
	"github.com/jhoicas/Recepciones-api/internal/domain/reception"
)

var _ appreception.AcusePDFGenerator = (*MarotoAcuseGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 60}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoAcuseGenerator implementa reception.AcusePDFGenerator usando Maroto v2.
type MarotoAcuseGenerator struct {
	printer  *message.Printer
	location *time.Location
}

// NewMarotoAcuseGenerator construye el generador. Cantidades y fechas en formato es-MX.
func NewMarotoAcuseGenerator() *MarotoAcuseGenerator {
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		loc = time.UTC
	}
	return &MarotoAcuseGenerator{
		printer:  message.NewPrinter(language.MustParse("es-MX")),
		location: loc,
	}
}

// GenerateAcusePDF genera el PDF y devuelve sus bytes.
func (g *MarotoAcuseGenerator) GenerateAcusePDF(_ context.Context, a appreception.Acuse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acuse de recepción "+a.FolioSAP, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(a))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(storesRow(a))
	if a.Observaciones != "" {
		m.AddRows(observacionesRow(a.Observaciones))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.tableDetailRows(a.Result.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.summaryRow(a))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar acuse: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoAcuseGenerator) headerRow(a appreception.Acuse) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New("ACUSE DE RECEPCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Traslado entre tiendas", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Folio SAP "+a.FolioSAP, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New(statusLabel(a), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 8, Color: statusColor(a.Result.Classification),
			}),
			text.New("Procesado: "+g.formatDate(a.ProcessedAt), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func storesRow(a appreception.Acuse) core.Row {
	return row.New(12).Add(
		col.New(6).Add(
			text.New("ORIGEN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(a.OriginName, "—"), props.Text{Size: 10, Top: 6}),
		),
		col.New(6).Add(
			text.New("DESTINO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(a.DestinationName, "—"), props.Text{Size: 10, Top: 6}),
		),
	)
}

func observacionesRow(obs string) core.Row {
	return row.New(12).Add(col.New(12).Add(
		text.New("OBSERVACIONES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(obs, props.Text{Size: 8, Top: 6, Color: colorGray}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Línea", 1, align.Center),
		h("Artículo", 4, align.Left),
		h("Esperado", 2, align.Right),
		h("Recibido", 2, align.Right),
		h("Dif.", 1, align.Right),
		h("Estatus", 2, align.Center),
	)
}

func (g *MarotoAcuseGenerator) tableDetailRows(lines []reception.LineResult) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		articulo := l.Articulo
		if l.Descripcion != "" {
			articulo += " · " + l.Descripcion
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(l.Linenum), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(articulo, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.qty(l.CantidadEsperada), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.qty(l.CantidadRecibida), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(g.signed(l.Diferencia), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1, Color: diffColor(l.Diferencia),
			})),
			col.New(2).Add(text.New(string(l.Status), props.Text{Size: 7, Align: align.Center, Top: 1.5})),
		))
	}
	return result
}

func (g *MarotoAcuseGenerator) summaryRow(a appreception.Acuse) core.Row {
	s := a.Result.Summary
	label := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Right: 2})
	}
	value := func(v string) core.Component {
		return text.New(v, props.Text{Size: 8, Align: align.Right, Right: 1})
	}

	qrData := fmt.Sprintf("FOLIO:%s|ESTATUS:%s|ESPERADO:%d|RECIBIDO:%d",
		a.FolioSAP, a.MovementStatus, s.TotalEsperado, s.TotalRecibido)

	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qrData, props.Rect{Percent: 90, Center: true})),
		col.New(2),
		col.New(4).Add(
			label("Líneas:"),
			label("Correctas:"),
			label("Faltantes:"),
			label("Excedentes:"),
			label("Total esperado:"),
			label("Total recibido:"),
		),
		col.New(3).Add(
			value(g.qty(int64(s.Lines))),
			value(g.qty(int64(s.Correctos))),
			value(g.qty(int64(s.Faltantes))),
			value(g.qty(int64(s.Excedentes))),
			value(g.qty(s.TotalEsperado)),
			value(g.qty(s.TotalRecibido)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (g *MarotoAcuseGenerator) qty(n int64) string {
	return g.printer.Sprintf("%d", n)
}

func (g *MarotoAcuseGenerator) signed(n int64) string {
	if n > 0 {
		return "+" + g.qty(n)
	}
	return g.qty(n)
}

func (g *MarotoAcuseGenerator) formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.In(g.location).Format("02/01/2006 15:04")
}

func statusLabel(a appreception.Acuse) string {
	return fmt.Sprintf("%s (%s)", a.MovementStatus, a.Result.Classification)
}

func statusColor(c reception.Classification) *props.Color {
	switch c {
	case reception.ClassificationTotal:
		return colorGreen
	case reception.ClassificationParcial:
		return colorRed
	default:
		return colorGray
	}
}

func diffColor(d int64) *props.Color {
	switch {
	case d < 0:
		return colorRed
	case d > 0:
		return colorPrimary
	default:
		return colorGray
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// Package pdf genera la guía de remisión (representación imprimible de un documento).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa              │  Tipo + N° + Fecha + Estado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Producto | Unidad | Cantidad | Precio | Importe  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: kilos / importe total                             │
//	│  FIRMAS: Entregó / Recibió                                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
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
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/money"
)

var _ document.WaybillPDFGenerator = (*WaybillGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// WaybillGenerator implementa document.WaybillPDFGenerator usando Maroto v2.
type WaybillGenerator struct {
	printer *message.Printer
	upper   cases.Caser
}

// NewWaybillGenerator construye el generador; las cifras salen con formato es-CO.
func NewWaybillGenerator() *WaybillGenerator {
	tag := language.MustParse("es-CO")
	return &WaybillGenerator{
		printer: message.NewPrinter(tag),
		upper:   cases.Upper(tag),
	}
}

// GenerateWaybillPDF genera el PDF y devuelve sus bytes.
func (g *WaybillGenerator) GenerateWaybillPDF(
	_ context.Context,
	companyName string,
	doc *entity.Document,
	lines []document.WaybillLine,
) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("pdf: documento nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de remisión "+doc.Number, true).
		WithAuthor(companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(companyName, doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(doc, lines))

	if strings.TrimSpace(doc.Notes) != "" {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Observaciones: "+doc.Notes, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}

	m.AddRows(line.NewRow(12))
	m.AddRows(signaturesRow())

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar guía: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *WaybillGenerator) headerRow(companyName string, doc *entity.Document) core.Row {
	return row.New(22).Add(
		col.New(7).Add(
			text.New(companyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Comercio mayorista", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(g.upper.String(docTypeLabel(doc.Type)), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+doc.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Fecha: "+doc.Date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Estado: "+statusLabel(doc.Status), props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Producto", 4, align.Left),
		h("Unidad", 1, align.Center),
		h("Cantidad", 2, align.Right),
		h("Precio", 2, align.Right),
		h("Importe", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *WaybillGenerator) tableDetailRows(lines []document.WaybillLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for i, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(unitLabel(l.Unit), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.formatQty(l.QtyKg), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(l.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+formatMoney(l.LineSum), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow usa el total guardado del documento; si no lo tiene, la suma de líneas.
func (g *WaybillGenerator) totalsRow(doc *entity.Document, lines []document.WaybillLine) core.Row {
	var kg float64
	sums := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		kg += l.QtyKg
		sums = append(sums, l.LineSum)
	}
	total := doc.TotalAmount
	if total.IsZero() {
		total = money.Sum(sums...)
	}

	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	grand := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 5,
		})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(
			label("Total kilos:"),
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 5,
			}),
		),
		col.New(3).Add(
			text.New(g.formatQty(kg), props.Text{Size: 9, Align: align.Right, Right: 1}),
			grand("$"+formatMoney(total)),
		),
	)
}

func signaturesRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(5).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 5, Color: colorGray}),
		)
	}
	return row.New(14).Add(sig("Entregó"), col.New(2), sig("Recibió"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func docTypeLabel(t entity.DocType) string {
	switch t {
	case entity.DocTypeSupply:
		return "entrada de proveedor"
	case entity.DocTypeSale:
		return "venta"
	case entity.DocTypeReturn:
		return "devolución"
	case entity.DocTypeTransfer:
		return "traslado"
	case entity.DocTypeWriteOff:
		return "baja de mercancía"
	}
	return string(t)
}

func statusLabel(s entity.DocStatus) string {
	switch s {
	case entity.StatusDraft:
		return "Borrador"
	case entity.StatusPosted:
		return "Contabilizado"
	case entity.StatusCancelled:
		return "Anulado"
	}
	return string(s)
}

// unitLabel la fuente helvetica no trae cirílico.
func unitLabel(u string) string {
	switch strings.TrimSpace(u) {
	case "", "кг":
		return "kg"
	case "шт":
		return "und"
	case "л":
		return "l"
	}
	return u
}

// formatQty tres decimales con separadores de la configuración regional.
func (g *WaybillGenerator) formatQty(kg float64) string {
	return g.printer.Sprintf("%.3f", kg)
}

// formatMoney importe exacto con puntos de miles y coma decimal.
// Ej: 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := money.Format(d)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}

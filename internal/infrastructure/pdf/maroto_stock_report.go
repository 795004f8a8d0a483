// Package pdf genera el relatório de posição de estoque en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título                    │  gerado em dd/mm/aaaa  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMO: produtos / itens / valor total / em alerta          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Produto | Categoria | Qtd | Mín | Lotes | Validade…  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda                                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
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

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/ports"
)

var _ ports.StockReportRenderer = (*MarotoStockReport)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 105, Blue: 92}
	colorAlert   = &props.Color{Red: 198, Green: 40, Blue: 40}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoStockReport implementa ports.StockReportRenderer usando Maroto v2.
type MarotoStockReport struct{}

// NewMarotoStockReport construye el renderer.
func NewMarotoStockReport() *MarotoStockReport { return &MarotoStockReport{} }

// RenderStockReport genera el PDF y devuelve sus bytes.
func (g *MarotoStockReport) RenderStockReport(report *dto.StockReportDTO) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(report.Titulo, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(report.Itens)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Quantidades derivadas dos lotes com saldo. Valor calculado pelo preço unitário cadastrado.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report *dto.StockReportDTO) core.Row {
	return row.New(14).Add(
		col.New(8).Add(text.New(report.Titulo, props.Text{
			Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2,
		})),
		col.New(4).Add(text.New("Gerado em "+report.GeradoEm.Format("02/01/2006 15:04"), props.Text{
			Size: 8, Align: align.Right, Top: 4, Color: colorGray,
		})),
	)
}

func summaryRow(report *dto.StockReportDTO) core.Row {
	cell := func(label, value string, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Color: c, Top: 6, Align: align.Center}),
		)
	}
	alert := colorPrimary
	if report.EmAlerta > 0 {
		alert = colorAlert
	}
	return row.New(14).Add(
		cell("Produtos", strconv.Itoa(len(report.Itens)), colorPrimary),
		cell("Total de itens", formatThousands(strconv.FormatInt(report.TotalItens, 10)), colorPrimary),
		cell("Valor em estoque", FormatBRL(report.ValorTotal), colorPrimary),
		cell("Estoque baixo", strconv.Itoa(report.EmAlerta), alert),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Produto", 3, align.Left),
		h("Categoria", 2, align.Left),
		h("Qtd.", 1, align.Right),
		h("Mín.", 1, align.Right),
		h("Lotes", 1, align.Center),
		h("Próx. validade", 2, align.Center),
		h("Valor", 2, align.Right),
	)
}

// tableRows una fila por producto; los que están en alerta van en rojo.
func tableRows(items []dto.StockReportItemDTO) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		c := &props.Color{}
		if it.Status != "normal" {
			c = colorAlert
		}
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Color: c}))
		}
		result = append(result, row.New(7).Add(
			cell(it.Produto, 3, align.Left),
			cell(nonEmpty(it.Categoria, "—"), 2, align.Left),
			cell(strconv.FormatInt(it.Quantidade, 10), 1, align.Right),
			cell(strconv.FormatInt(it.EstoqueMinimo, 10), 1, align.Right),
			cell(strconv.Itoa(it.Lotes), 1, align.Center),
			cell(nonEmpty(it.ProximaValidade, "—"), 2, align.Center),
			cell(FormatBRL(it.Valor), 2, align.Right),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatBRL formatea un valor en reales. Ej: 1234.5 → "R$ 1.234,50".
func FormatBRL(v decimal.Decimal) string {
	s := v.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + "R$ " + formatThousands(intPart) + "," + frac
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// Package pdf une los documentos de cada grupo y genera el reporte PDF de un lote.
//
// Layout del reporte (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + archivo de origen │ fecha + id del lote   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: grupos / registros / total / documentos incluidos │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Telefone | Cliente | Valor | Vencimento | Docs | Est│
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el id del lote + avisos de planilla         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/pkg/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 40, Blue: 40}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa consolidation.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	author string
}

var _ consolidation.ReportGenerator = (*MarotoReportGenerator)(nil)

// NewMarotoReportGenerator construye el generador; author va en los metadatos del PDF.
func NewMarotoReportGenerator(author string) *MarotoReportGenerator {
	return &MarotoReportGenerator{author: author}
}

// GenerateBatchReport genera el reporte del lote y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateBatchReport(
	_ context.Context,
	batch *entity.Batch,
	rows []consolidation.SummaryRow,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Relatório de cobrança", true).
		WithAuthor(nonEmpty(g.author, "Cobranzas"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(batch))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(batch))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(rows) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(batch))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + archivo (izq) y fecha + lote (der).
func headerRow(batch *entity.Batch) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("RELATÓRIO DE COBRANÇA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Arquivo: "+nonEmpty(batch.SourceName, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(batch.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Lote: "+batch.ID, props.Text{
				Size: 7, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// summaryRow: contadores del lote.
func summaryRow(batch *entity.Batch) core.Row {
	attempted, succeeded := batch.DocumentStats()
	holding := "não"
	if batch.HoldingMerge {
		holding = "sim"
	}
	item := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
		)
	}
	return row.New(13).Add(
		item("Clientes (grupos)", fmt.Sprintf("%d  (holding: %s)", len(batch.Groups), holding)),
		item("Registros", fmt.Sprintf("%d", batch.RecordCount)),
		item("Total", money.FormatBRL(batch.TotalAmount())),
		item("Documentos incluídos", fmt.Sprintf("%d de %d", succeeded, attempted)),
	)
}

// tableHeaderRow: cabecera de la tabla de grupos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Telefone", 2, align.Left),
		h("Cliente", 4, align.Left),
		h("Valor", 2, align.Right),
		h("Vencimento", 2, align.Center),
		h("Docs", 1, align.Center),
		h("Estado", 1, align.Center),
	)
}

// tableRows: una fila por grupo.
func tableRows(rows []consolidation.SummaryRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		docsColor := colorGray
		if r.State == entity.ConsolidationMergedPartial || r.State == entity.ConsolidationEmpty {
			docsColor = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(r.Phone, props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(4).Add(text.New(nonEmpty(r.Name, "-"), props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(2).Add(text.New(r.AmountText, props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(nonEmpty(r.DueDate, "-"), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(r.Documents, props.Text{Size: 7, Align: align.Center, Top: 1, Color: docsColor})),
			col.New(1).Add(text.New(stateLabel(r.State), props.Text{Size: 6, Align: align.Center, Top: 1, Color: docsColor})),
		))
	}
	return result
}

// footerRow: QR con el id del lote y cantidad de avisos de lectura.
func footerRow(batch *entity.Batch) core.Row {
	notice := "Nenhum aviso de leitura na planilha."
	if n := len(batch.Warnings); n > 0 {
		notice = fmt.Sprintf("%d campo(s) ilegível(is) na planilha foram tratados como vazios.", n)
	}
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(batch.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New(notice, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New("Documentos: incluídos de tentados por cliente. PARCIAL indica documentos não baixados ou corrompidos.", props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func stateLabel(s entity.ConsolidationState) string {
	switch s {
	case entity.ConsolidationMerged:
		return "OK"
	case entity.ConsolidationMergedPartial:
		return "PARCIAL"
	case entity.ConsolidationEmpty:
		return "SEM PDF"
	default:
		return string(s)
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

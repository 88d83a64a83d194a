package pdf

import (
	"context"
	"fmt"
	"os"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorFailed  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.ReportPDFGenerator = (*ReportGenerator)(nil)

// ReportGenerator implementa billing.ReportPDFGenerator usando Maroto v2.
type ReportGenerator struct {
	logoPath string
}

// NewReportGenerator construye el generador del informe diario.
func NewReportGenerator(logoPath string) *ReportGenerator {
	return &ReportGenerator{logoPath: logoPath}
}

// GenerateDailyReport genera el informe del lote y devuelve sus bytes.
// El logo es opcional en el informe: si falta, la cabecera va sin imagen.
func (g *ReportGenerator) GenerateDailyReport(_ context.Context, report *appbilling.DailyReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Verzendrapport "+FormatDate(report.Day), true).
		WithPageNumber(props.PageNumber{
			Pattern: "Pagina {current} van {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	logo, _ := os.ReadFile(g.logoPath)
	m.AddRows(reportHeaderRow(report, logo))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(reportSummaryRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(reportTableHeaderRow())
	for _, r := range reportTableRows(report.Entries) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar informe: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// reportHeaderRow: logo (izq) y título + fecha (der).
func reportHeaderRow(report *appbilling.DailyReport, logo []byte) core.Row {
	left := col.New(4)
	if len(logo) > 0 {
		left = image.NewFromBytesCol(4, logo, extension.Png, props.Rect{Percent: 80})
	}
	return row.New(22).Add(
		left,
		col.New(8).Add(
			text.New("VERZENDRAPPORT FACTUREN", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right,
				Color: colorPrimary, Top: 2,
			}),
			text.New("Datum: "+FormatDate(report.Day), props.Text{
				Size: 9, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

// reportSummaryRow: conteo de enviados y fallidos.
func reportSummaryRow(report *appbilling.DailyReport) core.Row {
	sent, failed := countByStatus(report.Entries)
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Zendingen: %d   |   Verzonden: %d   |   Mislukt: %d",
				len(report.Entries), sent, failed,
			), props.Text{Style: fontstyle.Bold, Size: 9, Top: 3}),
		),
	)
}

// reportTableHeaderRow: cabecera de la tabla.
func reportTableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Zending", 2, align.Left),
		h("Bestelling", 2, align.Left),
		h("Factuur", 2, align.Left),
		h("E-mail", 3, align.Left),
		h("Totaal", 2, align.Right),
		h("Status", 1, align.Center),
	)
}

// reportTableRows: una fila por envío; los fallidos llevan el error debajo.
func reportTableRows(entries []appbilling.DailyReportEntry) []core.Row {
	rows := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		statusColor := colorPrimary
		if e.Status != entity.DispatchStatusSent {
			statusColor = colorFailed
		}
		rows = append(rows, row.New(7).Add(
			col.New(2).Add(text.New(e.ShipmentID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(e.OrderID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(e.InvoiceNumber, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(nonEmpty(e.BuyerEmail, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(e.GrandTotal, "—"), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(e.Status, props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Center, Top: 1, Color: statusColor,
			})),
		))
		if e.Error != "" {
			for _, chunk := range splitEvery(e.Error, 120) {
				rows = append(rows, row.New(4).Add(col.New(12).Add(
					text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
				)))
			}
		}
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func countByStatus(entries []appbilling.DailyReportEntry) (sent, failed int) {
	for _, e := range entries {
		if e.Status == entity.DispatchStatusSent {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	r := []rune(s)
	for len(r) > n {
		parts = append(parts, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		parts = append(parts, string(r))
	}
	return parts
}

// Package pdf genera la factura del envío y el informe diario.
//
// La factura usa coordenadas absolutas (plantilla 600×750 pt) y se dibuja con gofpdf;
// el informe diario usa la rejilla de Maroto v2.
//
//	┌──────────────────────────────────────────────┐
//	│  LOGO                     Factuur 2026-1234   │
//	│  Comprador (empresa, nombre, dirección, país) │
//	│                         Vendedor (contacto)   │
//	│  Factuurnummer | Bestelnummer | BTW-nummer    │
//	│  Factuur Datum | Bestel Datum | KvK-nummer    │
//	│  Omschrijving  Aantal  BTW %  Prijs  Subtotal │
//	│  ... líneas (cursor hacia abajo) ...          │
//	│                 Totaal excl. / BTW / incl.    │
//	│  Bedrijfsgegevens                             │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/phpdave11/gofpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	appbilling "github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/domain"
)

const logoImageName = "logo"

var _ appbilling.InvoicePDFGenerator = (*InvoiceGenerator)(nil)

// InvoiceGenerator implementa billing.InvoicePDFGenerator con gofpdf.
// No guarda estado entre llamadas: cada factura crea y libera su propio documento.
type InvoiceGenerator struct {
	tpl        Template
	letterhead Letterhead
	logoPath   string
}

// NewInvoiceGenerator construye el generador. logoPath es el PNG del membrete.
func NewInvoiceGenerator(tpl Template, lh Letterhead, logoPath string) (*InvoiceGenerator, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &InvoiceGenerator{tpl: tpl, letterhead: lh, logoPath: logoPath}, nil
}

// GenerateInvoicePDF maqueta y serializa la factura. Sin logo no hay factura.
func (g *InvoiceGenerator) GenerateInvoicePDF(_ context.Context, inv *appbilling.InvoiceForPDF) ([]byte, error) {
	logo, err := os.ReadFile(g.logoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: logo %s: %v", domain.ErrAssetMissing, g.logoPath, err)
	}

	doc := Compose(g.tpl, g.letterhead, inv)

	out, err := g.render(doc, logo, inv.IssuedAt)
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out, nil
}

func (g *InvoiceGenerator) render(doc Document, logo []byte, created time.Time) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: g.tpl.PageWidth, Ht: g.tpl.PageHeight},
	})
	pdf.SetMargins(g.tpl.Margin, g.tpl.Margin, g.tpl.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(created)
	pdf.SetTitle("Factuur", true)
	pdf.SetTextColor(0, 0, 0)

	pdf.RegisterImageOptionsReader(logoImageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(logo))
	if pdf.Err() {
		return nil, fmt.Errorf("%w: logo ilegible: %v", domain.ErrAssetMissing, pdf.Error())
	}

	// Las fuentes core de gofpdf esperan CP1252 (€, ë). Lo que no cabe en CP1252
	// (emoji, CJK) sale como 0x1A; ReplaceUnsupported nunca devuelve error.
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			switch op.Kind {
			case OpImage:
				top := g.tpl.PageHeight - op.Y - op.Height
				pdf.ImageOptions(logoImageName, op.X, top, op.Width, op.Height, false,
					gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			case OpText:
				style := ""
				if op.Bold {
					style = "B"
				}
				pdf.SetFont(g.tpl.FontFamily, style, op.Size)
				s, _ := enc.String(op.Text)
				pdf.Text(op.X, g.tpl.PageHeight-op.Y, s)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

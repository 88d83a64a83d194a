package pdf_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/domain"
	"github.com/jhoicas/factuur-api/internal/domain/entity"
	"github.com/jhoicas/factuur-api/internal/domain/tax"
	"github.com/jhoicas/factuur-api/internal/infrastructure/pdf"
)

// writeLogo escribe un PNG pequeño en un directorio temporal y devuelve su ruta.
func writeLogo(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 26, 12))
	for x := 0; x < 26; x++ {
		for y := 0; y < 12; y++ {
			img.Set(x, y, color.RGBA{R: 0, G: 70, B: 127, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestInvoiceGenerator_GeneraPDF(t *testing.T) {
	gen, err := pdf.NewInvoiceGenerator(pdf.DefaultTemplate(), pdf.DefaultLetterhead(), writeLogo(t))
	require.NoError(t, err)

	inv := invoiceFixture(
		line("Boek", "21.00", tax.StandardRate, 2),
		line("Philips Sonicare ProtectiveClean 4300 elektrische tandenborstel wit", "54.95", tax.SecondaryReducedRate, 1),
	)
	inv.Buyer.CountryCode = "BE"

	out, err := gen.GenerateInvoicePDF(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "debe ser un PDF")
	assert.True(t, bytes.Contains(out, []byte("%%EOF")), "documento completo")
}

func TestInvoiceGenerator_TextoFueraDeCP1252_NoFalla(t *testing.T) {
	gen, err := pdf.NewInvoiceGenerator(pdf.DefaultTemplate(), pdf.DefaultLetterhead(), writeLogo(t))
	require.NoError(t, err)

	inv := invoiceFixture(line("Mok 😀 日本 café", "9.99", tax.StandardRate, 1))
	out, err := gen.GenerateInvoicePDF(context.Background(), inv)
	require.NoError(t, err, "los caracteres sin equivalente se sustituyen")
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestInvoiceGenerator_SinLogo_ErrorFatalSinBytes(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-existe.png")
	gen, err := pdf.NewInvoiceGenerator(pdf.DefaultTemplate(), pdf.DefaultLetterhead(), missing)
	require.NoError(t, err)

	out, err := gen.GenerateInvoicePDF(context.Background(), invoiceFixture(line("Boek", "21.00", tax.StandardRate, 1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAssetMissing))
	assert.Nil(t, out, "no se devuelve documento parcial")
}

func TestInvoiceGenerator_PlantillaInvalida(t *testing.T) {
	tpl := pdf.DefaultTemplate()
	tpl.PageHeight = 0
	_, err := pdf.NewInvoiceGenerator(tpl, pdf.DefaultLetterhead(), writeLogo(t))
	require.Error(t, err)
}

func TestReportGenerator_GeneraInforme(t *testing.T) {
	gen := pdf.NewReportGenerator(writeLogo(t))
	report := &appbilling.DailyReport{
		Day: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		Entries: []appbilling.DailyReportEntry{
			{ShipmentID: "914587795", OrderID: "1043946570", InvoiceNumber: "2024-1043946570",
				BuyerEmail: "jan@example.com", GrandTotal: "EUR 42.00", Status: entity.DispatchStatusSent},
			{ShipmentID: "914587796", OrderID: "1043946571", Status: entity.DispatchStatusFailed,
				Error: "entrada inválida: línea 0: offer.reference vacío"},
		},
	}

	out, err := gen.GenerateDailyReport(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestReportGenerator_SinLogoIgualGenera(t *testing.T) {
	gen := pdf.NewReportGenerator(filepath.Join(t.TempDir(), "no-existe.png"))
	out, err := gen.GenerateDailyReport(context.Background(), &appbilling.DailyReport{Day: time.Now()})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

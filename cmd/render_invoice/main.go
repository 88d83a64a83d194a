// render_invoice genera el PDF de una factura a partir de un envío en JSON (formato retailer v10),
// sin llamar a la API ni enviar correo. Útil para revisar la plantilla.
//
// Uso: go run ./cmd/render_invoice envio.json [salida.pdf]
// Por defecto escribe jouw-invoice-{orderId}.pdf en el directorio actual.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/domain/entity"
	infrapdf "github.com/jhoicas/factuur-api/internal/infrastructure/pdf"
	"github.com/jhoicas/factuur-api/pkg/clock"
	"github.com/jhoicas/factuur-api/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: render_invoice envio.json [salida.pdf]")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Zona horaria: %v\n", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer envío: %v\n", err)
		os.Exit(1)
	}
	var order entity.OrderRecord
	if err := json.Unmarshal(raw, &order); err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar envío: %v\n", err)
		os.Exit(1)
	}

	gen, err := infrapdf.NewInvoiceGenerator(infrapdf.DefaultTemplate(), infrapdf.Letterhead{
		Email:         cfg.Seller.Email,
		Street:        cfg.Seller.Street,
		ZipCity:       cfg.Seller.ZipCity,
		Country:       cfg.Seller.Country,
		KvKNumber:     cfg.Seller.KvKNumber,
		VATNumber:     cfg.Seller.VATNumber,
		PaymentMethod: cfg.Seller.PaymentMethod,
	}, cfg.Assets.LogoPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Plantilla: %v\n", err)
		os.Exit(1)
	}

	inv, err := billing.NewInvoiceUseCase(gen, clock.System{}, loc).Generate(context.Background(), &order)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar factura: %v\n", err)
		os.Exit(1)
	}

	out := inv.Filename
	if len(os.Args) > 2 {
		out = os.Args[2]
	}
	if err := os.WriteFile(out, inv.PDF, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir PDF: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Factura %s: %s (excl. %s, BTW %s, incl. %s)\n",
		inv.Number, out,
		inv.Totals.TotalExclusiveTax.StringFixed(2),
		inv.Totals.TotalTaxAmount.StringFixed(2),
		inv.Totals.TotalInclusiveTax().StringFixed(2))
}

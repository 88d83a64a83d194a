package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/factuur-api/internal/domain/entity"
	"github.com/jhoicas/factuur-api/internal/domain/tax"
	"github.com/jhoicas/factuur-api/pkg/clock"
)

// GeneratedInvoice resultado de una generación: el PDF y los datos para auditoría.
type GeneratedInvoice struct {
	Number   string
	Filename string
	PDF      []byte
	Totals   tax.Totals
}

// InvoiceUseCase convierte un envío en su factura PDF.
type InvoiceUseCase struct {
	generator InvoicePDFGenerator
	clock     clock.Clock
	location  *time.Location
}

// NewInvoiceUseCase construye el caso de uso. location fija el año del número de
// factura y las fechas impresas (Europe/Amsterdam en producción).
func NewInvoiceUseCase(generator InvoicePDFGenerator, clk clock.Clock, location *time.Location) *InvoiceUseCase {
	if location == nil {
		location = time.UTC
	}
	return &InvoiceUseCase{generator: generator, clock: clk, location: location}
}

// InvoiceNumber "{año de emisión}-{orderId}". El año es el de la fecha de emisión,
// no el del pedido.
func InvoiceNumber(issuedAt time.Time, orderID string) string {
	return fmt.Sprintf("%d-%s", issuedAt.Year(), orderID)
}

// InvoiceFilename nombre del adjunto.
func InvoiceFilename(orderID string) string {
	return "jouw-invoice-" + orderID + ".pdf"
}

// Generate valida el envío, calcula el IVA línea a línea y genera el PDF.
//
// Retorna:
//   - domain.ErrInvalidInput  si faltan campos o una referencia de categoría está vacía
//     (antes de cualquier trabajo de maquetación).
//   - domain.ErrAssetMissing  si falta el logo.
//
// Es todo o nada: con error no hay bytes.
func (uc *InvoiceUseCase) Generate(ctx context.Context, order *entity.OrderRecord) (*GeneratedInvoice, error) {
	inv, err := uc.Prepare(order)
	if err != nil {
		return nil, err
	}
	out, err := uc.generator.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("factura %s: %w", inv.Number, err)
	}
	return &GeneratedInvoice{
		Number:   inv.Number,
		Filename: InvoiceFilename(order.Order.OrderID),
		PDF:      out,
		Totals:   inv.Totals,
	}, nil
}

// Prepare construye los datos de la factura sin generar el PDF.
func (uc *InvoiceUseCase) Prepare(order *entity.OrderRecord) (*InvoiceForPDF, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	billing, shipping := order.BillingDetails, order.ShipmentDetails
	country := strings.ToUpper(strings.TrimSpace(billing.CountryCode))

	lines := make([]InvoiceLineForPDF, 0, len(order.Items))
	var totals tax.Totals
	for i, item := range order.Items {
		rate, err := tax.SelectTaxRate(item.CategoryReference(), country)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i, err)
		}
		b := tax.ComputeLineBreakdown(item.UnitPrice, rate, item.Quantity)
		totals = totals.Accumulate(b)
		lines = append(lines, InvoiceLineForPDF{Title: item.Title(), Breakdown: b})
	}

	issuedAt := uc.clock.Now().In(uc.location)
	return &InvoiceForPDF{
		Number:        InvoiceNumber(issuedAt, order.Order.OrderID),
		IssuedAt:      issuedAt,
		OrderID:       order.Order.OrderID,
		OrderPlacedAt: order.Order.OrderPlacedDateTime.In(uc.location),
		Buyer: BuyerForPDF{
			Company:     entity.ResolveField(billing.Company, shipping.Company, ""),
			Name:        billing.FullName(),
			Street:      billing.StreetLine(),
			ZipCode:     billing.ZipCode,
			City:        billing.City,
			CountryCode: country,
			VATNumber:   entity.ResolveField(billing.VATNumber, shipping.VATNumber, ""),
			KvKNumber:   entity.ResolveField(billing.KvKNumber, shipping.KvKNumber, ""),
		},
		Lines:  lines,
		Totals: totals,
	}, nil
}

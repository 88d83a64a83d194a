package billing

import (
	"context"
	"time"

	"github.com/jhoicas/factuur-api/internal/domain/entity"
)

// ShipmentSource puerto de lectura de envíos de la API del retailer.
type ShipmentSource interface {
	// ListShipmentIDs devuelve los ids de los envíos cuyo shipmentDateTime cae en el día natural de day.
	ListShipmentIDs(ctx context.Context, day time.Time) ([]string, error)
	GetShipment(ctx context.Context, shipmentID string) (*entity.OrderRecord, error)
}

// InvoicePDFGenerator genera los bytes del PDF de la factura.
// Debe ser todo o nada: si retorna error, no retorna bytes.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *InvoiceForPDF) ([]byte, error)
}

// ReportPDFGenerator genera el informe diario del lote.
type ReportPDFGenerator interface {
	GenerateDailyReport(ctx context.Context, report *DailyReport) ([]byte, error)
}

// Mailer puerto de salida hacia el transporte de correo.
type Mailer interface {
	SendInvoice(ctx context.Context, msg InvoiceMail) error
	SendReport(ctx context.Context, to string, day time.Time, pdf []byte) error
}

// InvoiceMail todo lo necesario para el correo al comprador.
type InvoiceMail struct {
	To            string
	FirstName     string
	ShipmentDate  time.Time
	TrackAndTrace string
	CountryCode   string
	ZipCode       string
	Filename      string
	PDF           []byte
}

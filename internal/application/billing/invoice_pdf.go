package billing

import (
	"time"

	"github.com/jhoicas/factuur-api/internal/domain/tax"
)

// InvoiceForPDF datos ya resueltos y calculados que el generador pinta tal cual.
type InvoiceForPDF struct {
	Number        string
	IssuedAt      time.Time
	OrderID       string
	OrderPlacedAt time.Time
	Buyer         BuyerForPDF
	Lines         []InvoiceLineForPDF
	Totals        tax.Totals
}

// BuyerForPDF bloque del comprador con los campos de respaldo ya aplicados.
type BuyerForPDF struct {
	Company     string
	Name        string
	Street      string
	ZipCode     string
	City        string
	CountryCode string
	VATNumber   string
	KvKNumber   string
}

// InvoiceLineForPDF una línea de la tabla, en el orden de entrada.
type InvoiceLineForPDF struct {
	Title     string
	Breakdown tax.LineBreakdown
}

// DailyReport resumen del lote diario para el operador.
type DailyReport struct {
	Day     time.Time
	Entries []DailyReportEntry
}

// DailyReportEntry una fila del informe.
type DailyReportEntry struct {
	ShipmentID    string
	OrderID       string
	InvoiceNumber string
	BuyerEmail    string
	GrandTotal    string
	Status        string
	Error         string
}

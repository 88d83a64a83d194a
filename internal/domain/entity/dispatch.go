package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del envío de una factura por correo.
const (
	DispatchStatusSent   = "SENT"
	DispatchStatusFailed = "FAILED"
)

// InvoiceDispatch registro de auditoría de una factura generada y enviada al comprador.
// Evita reenviar la misma factura si el lote diario se ejecuta más de una vez.
type InvoiceDispatch struct {
	ID            string
	ShipmentID    string
	OrderID       string
	InvoiceNumber string
	BuyerEmail    string
	NetTotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	Status        string
	Error         string
	CreatedAt     time.Time
}

// Sent indica si la factura llegó a entregarse al transporte de correo.
func (d *InvoiceDispatch) Sent() bool { return d.Status == DispatchStatusSent }

package dto

import (
	"time"

	"github.com/jhoicas/factuur-api/internal/domain/entity"
)

// DispatchResponse registro de envío de una factura.
type DispatchResponse struct {
	ID            string    `json:"id"`
	ShipmentID    string    `json:"shipment_id"`
	OrderID       string    `json:"order_id"`
	InvoiceNumber string    `json:"invoice_number"`
	BuyerEmail    string    `json:"buyer_email"`
	NetTotal      string    `json:"net_total"`
	TaxTotal      string    `json:"tax_total"`
	GrandTotal    string    `json:"grand_total"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewDispatchResponse mapea la entidad a la respuesta (importes con 2 decimales).
func NewDispatchResponse(d *entity.InvoiceDispatch) DispatchResponse {
	return DispatchResponse{
		ID:            d.ID,
		ShipmentID:    d.ShipmentID,
		OrderID:       d.OrderID,
		InvoiceNumber: d.InvoiceNumber,
		BuyerEmail:    d.BuyerEmail,
		NetTotal:      d.NetTotal.StringFixed(2),
		TaxTotal:      d.TaxTotal.StringFixed(2),
		GrandTotal:    d.GrandTotal.StringFixed(2),
		Status:        d.Status,
		Error:         d.Error,
		CreatedAt:     d.CreatedAt,
	}
}

// DispatchListResponse listado de un día.
type DispatchListResponse struct {
	Date  string             `json:"date"`
	Items []DispatchResponse `json:"items"`
	Total int                `json:"total"`
}

// BatchEntryResponse resultado de un envío dentro del lote.
type BatchEntryResponse struct {
	ShipmentID    string `json:"shipment_id"`
	OrderID       string `json:"order_id,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

// BatchResultResponse resumen del lote diario.
type BatchResultResponse struct {
	Date    string               `json:"date"`
	Total   int                  `json:"total"`
	Sent    int                  `json:"sent"`
	Failed  int                  `json:"failed"`
	Skipped int                  `json:"skipped"`
	Entries []BatchEntryResponse `json:"entries"`
}

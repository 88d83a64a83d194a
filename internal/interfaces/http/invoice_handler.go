package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/application/dto"
	"github.com/jhoicas/factuur-api/internal/domain/entity"
)

// InvoiceHandler vista previa de facturas en PDF (protegido).
type InvoiceHandler struct {
	dispatch *billing.DispatchUseCase
	invoices *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(dispatch *billing.DispatchUseCase, invoices *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{dispatch: dispatch, invoices: invoices}
}

// ShipmentInvoice PDF de la factura de un envío del retailer, sin enviarla.
// GET /api/shipments/:shipmentId/invoice
func (h *InvoiceHandler) ShipmentInvoice(c *fiber.Ctx) error {
	id := c.Params("shipmentId")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "shipmentId requerido"})
	}
	inv, err := h.dispatch.PreviewShipment(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, inv)
}

// Preview PDF a partir de un pedido enviado en el cuerpo.
// POST /api/invoices/preview
func (h *InvoiceHandler) Preview(c *fiber.Ctx) error {
	var order entity.OrderRecord
	if err := c.BodyParser(&order); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.invoices.Generate(c.UserContext(), &order)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, inv)
}

func sendPDF(c *fiber.Ctx, inv *billing.GeneratedInvoice) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, inv.Filename))
	c.Set("X-Invoice-Number", inv.Number)
	return c.Send(inv.PDF)
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/application/dto"
	"github.com/jhoicas/factuur-api/pkg/clock"
)

// DispatchHandler lote diario y registros de envío (protegido).
type DispatchHandler struct {
	uc    *billing.DispatchUseCase
	clock clock.Clock
	loc   *time.Location
}

// NewDispatchHandler construye el handler.
func NewDispatchHandler(uc *billing.DispatchUseCase, clk clock.Clock, loc *time.Location) *DispatchHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DispatchHandler{uc: uc, clock: clk, loc: loc}
}

// Run ejecuta el lote de hoy inmediatamente.
// POST /api/dispatch/run
func (h *DispatchHandler) Run(c *fiber.Ctx) error {
	result, err := h.uc.RunDaily(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := dto.BatchResultResponse{
		Date:    result.Day.Format(time.DateOnly),
		Total:   result.Total,
		Sent:    result.Sent,
		Failed:  result.Failed,
		Skipped: result.Skipped,
		Entries: make([]dto.BatchEntryResponse, 0, len(result.Entries)),
	}
	for _, e := range result.Entries {
		out.Entries = append(out.Entries, dto.BatchEntryResponse{
			ShipmentID:    e.ShipmentID,
			OrderID:       e.OrderID,
			InvoiceNumber: e.InvoiceNumber,
			Status:        e.Status,
			Error:         e.Error,
		})
	}
	return c.JSON(out)
}

// DispatchOne genera y envía la factura de un envío.
// POST /api/dispatch/:shipmentId
func (h *DispatchHandler) DispatchOne(c *fiber.Ctx) error {
	id := c.Params("shipmentId")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "shipmentId requerido"})
	}
	rec, err := h.uc.DispatchOne(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewDispatchResponse(rec))
}

// List registros de un día (?date=YYYY-MM-DD, por defecto hoy).
// GET /api/dispatches
func (h *DispatchHandler) List(c *fiber.Ctx) error {
	day := h.clock.Now().In(h.loc)
	if q := c.Query("date"); q != "" {
		d, err := time.ParseInLocation(time.DateOnly, q, h.loc)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe ser YYYY-MM-DD"})
		}
		day = d
	}
	list, err := h.uc.ListDispatches(c.UserContext(), day)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.DispatchListResponse{
		Date:  day.Format(time.DateOnly),
		Items: make([]dto.DispatchResponse, 0, len(list)),
		Total: len(list),
	}
	for _, d := range list {
		out.Items = append(out.Items, dto.NewDispatchResponse(d))
	}
	return c.JSON(out)
}

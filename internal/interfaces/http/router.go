package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factuur-api/internal/application/auth"
	"github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/pkg/clock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	DispatchUC *billing.DispatchUseCase
	InvoiceUC  *billing.InvoiceUseCase
	JWTSecret  string
	Clock      clock.Clock
	Location   *time.Location
	AppName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/token", authHandler.Token)

	// Rutas protegidas: Bearer Token con rol admin
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole(auth.RoleAdmin))

	dispatchHandler := NewDispatchHandler(deps.DispatchUC, deps.Clock, deps.Location)
	protected.Post("/dispatch/run", dispatchHandler.Run)
	protected.Post("/dispatch/:shipmentId", dispatchHandler.DispatchOne)
	protected.Get("/dispatches", dispatchHandler.List)

	invoiceHandler := NewInvoiceHandler(deps.DispatchUC, deps.InvoiceUC)
	protected.Get("/shipments/:shipmentId/invoice", invoiceHandler.ShipmentInvoice)
	protected.Post("/invoices/preview", invoiceHandler.Preview)
}

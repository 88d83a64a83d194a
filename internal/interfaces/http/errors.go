package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factuur-api/internal/application/dto"
	"github.com/jhoicas/factuur-api/internal/domain"
)

// writeError traduce los errores de dominio a HTTP.
// ErrUpstream va antes que ErrUnauthorized: un token rechazado por el retailer no es un 401 nuestro.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyDispatched):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_DISPATCHED", Message: err.Error()})
	case errors.Is(err, domain.ErrBatchInProgress):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BATCH_IN_PROGRESS", Message: err.Error()})
	case errors.Is(err, domain.ErrAssetMissing):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "ASSET_MISSING", Message: err.Error()})
	case errors.Is(err, domain.ErrUpstream):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "UPSTREAM", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factuur-api/internal/application/auth"
	"github.com/jhoicas/factuur-api/internal/application/dto"
)

// AuthHandler emite tokens para el operador.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Token POST /api/auth/token
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in dto.TokenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "password requerido"})
	}
	out, err := h.uc.IssueToken(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

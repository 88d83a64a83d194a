package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/factuur-api/internal/application/dto"
	"github.com/jhoicas/factuur-api/internal/domain"
	"github.com/jhoicas/factuur-api/pkg/jwt"
)

// RoleAdmin único rol de la API de administración.
const RoleAdmin = "admin"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase emite tokens para el operador tras comprobar la contraseña de administración.
type AuthUseCase struct {
	adminHash []byte
	jwtCfg    JWTConfig
}

// NewAuthUseCase construye el caso de uso. Con adminHash vacío el login queda deshabilitado.
func NewAuthUseCase(adminHash string, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{adminHash: []byte(adminHash), jwtCfg: jwtCfg}
}

// IssueToken compara la contraseña con el hash bcrypt y genera un JWT con rol admin.
func (uc *AuthUseCase) IssueToken(in dto.TokenRequest) (*dto.TokenResponse, error) {
	if len(uc.adminHash) == 0 || in.Password == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(uc.adminHash, []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, RoleAdmin, RoleAdmin, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("generar token: %w", err)
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   uc.jwtCfg.ExpMinutes * 60,
	}, nil
}

// ValidHash comprueba que s parece un hash bcrypt utilizable (para validar la configuración al arrancar).
func ValidHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

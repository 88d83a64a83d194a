package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/factuur-api/internal/application/auth"
	"github.com/jhoicas/factuur-api/internal/application/dto"
	"github.com/jhoicas/factuur-api/internal/domain"
	pkgjwt "github.com/jhoicas/factuur-api/pkg/jwt"
)

func newUC(t *testing.T, password string) *auth.AuthUseCase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return auth.NewAuthUseCase(string(hash), auth.JWTConfig{Secret: "s", ExpMinutes: 30, Issuer: "test"})
}

func TestIssueToken_PasswordCorrecta(t *testing.T) {
	uc := newUC(t, "correct horse")
	out, err := uc.IssueToken(dto.TokenRequest{Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, 1800, out.ExpiresIn)

	_, role, err := pkgjwt.Parse("s", out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, role)
}

func TestIssueToken_PasswordIncorrecta(t *testing.T) {
	uc := newUC(t, "correct horse")
	_, err := uc.IssueToken(dto.TokenRequest{Password: "battery staple"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestIssueToken_SinHashConfigurado(t *testing.T) {
	uc := auth.NewAuthUseCase("", auth.JWTConfig{Secret: "s"})
	_, err := uc.IssueToken(dto.TokenRequest{Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, auth.ValidHash(string(hash)))
	assert.False(t, auth.ValidHash("plaintext"))
}

package dto

// TokenRequest petición de token del operador.
type TokenRequest struct {
	Password string `json:"password"`
}

// TokenResponse token emitido.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // segundos
}

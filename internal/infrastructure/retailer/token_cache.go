package retailer

import (
	"context"
	"sync"
	"time"
)

// TokenFetcher pide un token nuevo al servidor de autorización.
type TokenFetcher func(ctx context.Context) (string, error)

// TokenCache cachea el bearer token de la API del retailer durante ttl.
// El retailer bloquea la IP si se pide un token antes de que caduque el anterior,
// por eso nunca se refresca antes de tiempo salvo Invalidate explícito.
type TokenCache struct {
	mu        sync.Mutex
	fetch     TokenFetcher
	ttl       time.Duration
	token     string
	expiresAt time.Time
}

// NewTokenCache construye la caché vacía.
func NewTokenCache(fetch TokenFetcher, ttl time.Duration) *TokenCache {
	return &TokenCache{fetch: fetch, ttl: ttl}
}

// GetOrRefresh devuelve el token vigente en now o pide uno nuevo.
// Las llamadas concurrentes esperan a un único refresco.
func (c *TokenCache) GetOrRefresh(ctx context.Context, now time.Time) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && now.Before(c.expiresAt) {
		return c.token, nil
	}
	token, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	c.expiresAt = now.Add(c.ttl)
	return token, nil
}

// Invalidate descarta el token (p. ej. tras un 401).
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

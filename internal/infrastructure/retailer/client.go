// Package retailer cliente HTTP de la API de envíos del retailer (v10).
package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appbilling "github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/domain"
	"github.com/jhoicas/factuur-api/internal/domain/entity"
	"github.com/jhoicas/factuur-api/pkg/clock"
)

const (
	acceptV10 = "application/vnd.retailer.v10+json"

	// pageSize tamaño de página del listado de envíos; una página más corta es la última.
	pageSize = 50
	maxPages = 20
)

var _ appbilling.ShipmentSource = (*Client)(nil)

// Config configuración del cliente.
type Config struct {
	BaseURL     string        // https://api.bol.com/retailer
	AccessURL   string        // endpoint de token (client credentials)
	Credentials string        // base64(client_id:client_secret)
	TokenTTL    time.Duration // vida del token en caché
	Timeout     time.Duration
}

// Client implementa billing.ShipmentSource.
// Usa net/http de la stdlib con timeout explícito.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     *TokenCache
	clock      clock.Clock
}

// NewClient construye el cliente. httpClient puede ser nil.
func NewClient(cfg Config, httpClient *http.Client, clk clock.Clock) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 10 * time.Minute
	}
	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		clock:      clk,
	}
	c.tokens = NewTokenCache(c.requestToken, cfg.TokenTTL)
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// requestToken POST al endpoint de token con credenciales Basic.
func (c *Client) requestToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AccessURL, nil)
	if err != nil {
		return "", fmt.Errorf("retailer: crear petición de token: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.Credentials)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: %w: token rechazado: %s", domain.ErrUpstream, domain.ErrUnauthorized, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: token: HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: token: respuesta ilegible: %v", domain.ErrUpstream, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: token vacío", domain.ErrUpstream)
	}
	return tr.AccessToken, nil
}

// get hace un GET autenticado y decodifica el JSON en out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.tokens.GetOrRefresh(ctx, c.clock.Now())
	if err != nil {
		return err
	}

	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("retailer: crear petición: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptV10)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", domain.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.tokens.Invalidate()
		return fmt.Errorf("%w: %w: GET %s: token no aceptado", domain.ErrUpstream, domain.ErrUnauthorized, path)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: GET %s", domain.ErrNotFound, path)
	case resp.StatusCode/100 != 2:
		return fmt.Errorf("%w: GET %s: HTTP %d", domain.ErrUpstream, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: GET %s: respuesta ilegible: %v", domain.ErrUpstream, path, err)
	}
	return nil
}

type shipmentSummary struct {
	ShipmentID       string    `json:"shipmentId"`
	ShipmentDateTime time.Time `json:"shipmentDateTime"`
}

type shipmentsPage struct {
	Shipments []shipmentSummary `json:"shipments"`
}

// ListShipmentIDs recorre las páginas de envíos FBR y se queda con los del día natural
// de day (comparado en la zona horaria de day). Si la última página permitida sigue
// llena el listado está incompleto y se devuelve domain.ErrUpstream.
func (c *Client) ListShipmentIDs(ctx context.Context, day time.Time) ([]string, error) {
	y, m, d := day.Date()
	var ids []string
	for page := 1; page <= maxPages; page++ {
		var p shipmentsPage
		q := url.Values{}
		q.Set("fulfilment-method", "FBR")
		q.Set("page", fmt.Sprint(page))
		if err := c.get(ctx, "/shipments", q, &p); err != nil {
			return nil, err
		}
		for _, s := range p.Shipments {
			sy, sm, sd := s.ShipmentDateTime.In(day.Location()).Date()
			if sy == y && sm == m && sd == d {
				ids = append(ids, s.ShipmentID)
			}
		}
		if len(p.Shipments) < pageSize {
			return ids, nil
		}
	}
	return nil, fmt.Errorf("%w: listado de envíos truncado: %d páginas completas", domain.ErrUpstream, maxPages)
}

// GetShipment detalle completo de un envío.
func (c *Client) GetShipment(ctx context.Context, shipmentID string) (*entity.OrderRecord, error) {
	var o entity.OrderRecord
	if err := c.get(ctx, "/shipments/"+url.PathEscape(shipmentID), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

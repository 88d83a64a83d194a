package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/factuur-api/internal/application/auth"
	"github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/application/dto"
	"github.com/jhoicas/factuur-api/internal/domain"
	"github.com/jhoicas/factuur-api/internal/domain/entity"
	"github.com/jhoicas/factuur-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/factuur-api/internal/interfaces/http"
	"github.com/jhoicas/factuur-api/pkg/clock"
	"github.com/jhoicas/factuur-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type stubSource struct {
	orders map[string]*entity.OrderRecord
	err    error
}

func (s *stubSource) ListShipmentIDs(context.Context, time.Time) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	ids := make([]string, 0, len(s.orders))
	for id := range s.orders {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *stubSource) GetShipment(_ context.Context, id string) (*entity.OrderRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("envío %s: %w", id, domain.ErrNotFound)
	}
	return o, nil
}

type stubGenerator struct{ err error }

func (g stubGenerator) GenerateInvoicePDF(_ context.Context, inv *billing.InvoiceForPDF) ([]byte, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.3 " + inv.Number), nil
}

type stubMailer struct {
	mu      sync.Mutex
	sent    int
	entered chan struct{}
	gate    chan struct{}
}

func (m *stubMailer) SendInvoice(context.Context, billing.InvoiceMail) error {
	if m.entered != nil {
		select {
		case m.entered <- struct{}{}:
		default:
		}
	}
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	return nil
}
func (m *stubMailer) SendReport(context.Context, string, time.Time, []byte) error {
	return nil
}

func sampleOrder(shipmentID, orderID string) *entity.OrderRecord {
	return &entity.OrderRecord{
		ShipmentID:       shipmentID,
		ShipmentDateTime: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		Order:            entity.OrderRef{OrderID: orderID},
		BillingDetails: entity.Party{
			FirstName: "Jan", Surname: "de Vries", CountryCode: "NL", Email: "jan@example.com",
		},
		Items: []entity.LineItem{{
			Product:   entity.ProductRef{Title: "Boek"},
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("21.00"),
			Offer:     entity.OfferRef{Reference: "c-boeken"},
		}},
	}
}

type testEnv struct {
	app    *fiber.App
	mailer *stubMailer
	token  string
}

func newTestEnv(t *testing.T, source *stubSource, gen stubGenerator) *testEnv {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC))
	mailer := &stubMailer{}
	invoices := billing.NewInvoiceUseCase(gen, clk, time.UTC)
	dispatch := billing.NewDispatchUseCase(source, invoices, mailer, memory.NewDispatchRepository(), nil,
		clk, logger.Nop(), billing.DispatchConfig{Concurrency: 2, Location: time.UTC})

	hash, err := bcrypt.GenerateFromPassword([]byte("geheim"), bcrypt.MinCost)
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     auth.NewAuthUseCase(string(hash), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 5, Issuer: testIssuer}),
		DispatchUC: dispatch,
		InvoiceUC:  invoices,
		JWTSecret:  testJWTSecret,
		Clock:      clk,
		Location:   time.UTC,
		AppName:    "factuur-api",
	})
	return &testEnv{app: app, mailer: mailer, token: tokenForRole(t, auth.RoleAdmin)}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", e.token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthHandler_Token(t *testing.T) {
	env := newTestEnv(t, &stubSource{}, stubGenerator{})

	resp := env.do(t, http.MethodPost, "/api/auth/token", dto.TokenRequest{Password: "geheim"}, false)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.AccessToken)

	bad := env.do(t, http.MethodPost, "/api/auth/token", dto.TokenRequest{Password: "fout"}, false)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)

	empty := env.do(t, http.MethodPost, "/api/auth/token", dto.TokenRequest{}, false)
	defer empty.Body.Close()
	assert.Equal(t, http.StatusBadRequest, empty.StatusCode)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	env := newTestEnv(t, &stubSource{}, stubGenerator{})
	resp := env.do(t, http.MethodPost, "/api/dispatch/run", nil, false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &stubSource{}, stubGenerator{})
	resp := env.do(t, http.MethodGet, "/health", nil, false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dispatch
// ──────────────────────────────────────────────────────────────────────────────

func TestDispatchHandler_RunYListar(t *testing.T) {
	env := newTestEnv(t, &stubSource{orders: map[string]*entity.OrderRecord{
		"s1": sampleOrder("s1", "1043"),
		"s2": sampleOrder("s2", "1044"),
	}}, stubGenerator{})

	resp := env.do(t, http.MethodPost, "/api/dispatch/run", nil, true)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var batch dto.BatchResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&batch))
	assert.Equal(t, 2, batch.Total)
	assert.Equal(t, 2, batch.Sent)
	assert.Equal(t, "2024-06-03", batch.Date)
	assert.Equal(t, 2, env.mailer.sent)

	list := env.do(t, http.MethodGet, "/api/dispatches?date=2024-06-03", nil, true)
	defer list.Body.Close()
	require.Equal(t, http.StatusOK, list.StatusCode)
	var out dto.DispatchListResponse
	require.NoError(t, json.NewDecoder(list.Body).Decode(&out))
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "42.00", out.Items[0].GrandTotal)
}

func TestDispatchHandler_RunSolapado_409(t *testing.T) {
	env := newTestEnv(t, &stubSource{orders: map[string]*entity.OrderRecord{
		"s1": sampleOrder("s1", "1043"),
	}}, stubGenerator{})
	env.mailer.entered = make(chan struct{}, 1)
	env.mailer.gate = make(chan struct{})

	type result struct {
		status int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/dispatch/run", nil)
		req.Header.Set("Authorization", env.token)
		resp, err := env.app.Test(req, -1)
		if err != nil {
			done <- result{err: err}
			return
		}
		resp.Body.Close()
		done <- result{status: resp.StatusCode}
	}()
	<-env.mailer.entered

	resp := env.do(t, http.MethodPost, "/api/dispatch/run", nil, true)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "BATCH_IN_PROGRESS", decodeError(t, resp).Code)

	close(env.mailer.gate)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, http.StatusOK, first.status)
	assert.Equal(t, 1, env.mailer.sent)
}

func TestDispatchHandler_ListarFechaInvalida(t *testing.T) {
	env := newTestEnv(t, &stubSource{}, stubGenerator{})
	resp := env.do(t, http.MethodGet, "/api/dispatches?date=03-06-2024", nil, true)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDispatchHandler_DispatchOneYDuplicado(t *testing.T) {
	env := newTestEnv(t, &stubSource{orders: map[string]*entity.OrderRecord{
		"s1": sampleOrder("s1", "1043"),
	}}, stubGenerator{})

	resp := env.do(t, http.MethodPost, "/api/dispatch/s1", nil, true)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec dto.DispatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "2024-1043", rec.InvoiceNumber)
	assert.Equal(t, entity.DispatchStatusSent, rec.Status)

	again := env.do(t, http.MethodPost, "/api/dispatch/s1", nil, true)
	defer again.Body.Close()
	assert.Equal(t, http.StatusConflict, again.StatusCode)
	assert.Equal(t, "ALREADY_DISPATCHED", decodeError(t, again).Code)
}

func TestDispatchHandler_RetailerCaido(t *testing.T) {
	env := newTestEnv(t, &stubSource{err: fmt.Errorf("%w: HTTP 503", domain.ErrUpstream)}, stubGenerator{})
	resp := env.do(t, http.MethodPost, "/api/dispatch/run", nil, true)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "UPSTREAM", decodeError(t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invoice preview
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoiceHandler_ShipmentInvoice(t *testing.T) {
	env := newTestEnv(t, &stubSource{orders: map[string]*entity.OrderRecord{
		"s1": sampleOrder("s1", "1043"),
	}}, stubGenerator{})

	resp := env.do(t, http.MethodGet, "/api/shipments/s1/invoice", nil, true)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "jouw-invoice-1043.pdf")
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
	assert.Equal(t, 0, env.mailer.sent)

	missing := env.do(t, http.MethodGet, "/api/shipments/nope/invoice", nil, true)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestInvoiceHandler_PreviewDesdeCuerpo(t *testing.T) {
	env := newTestEnv(t, &stubSource{}, stubGenerator{})

	resp := env.do(t, http.MethodPost, "/api/invoices/preview", sampleOrder("s9", "777"), true)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-777", resp.Header.Get("X-Invoice-Number"))
}

func TestInvoiceHandler_PreviewCategoriaVacia(t *testing.T) {
	env := newTestEnv(t, &stubSource{}, stubGenerator{})
	o := sampleOrder("s9", "777")
	o.Items[0].Offer.Reference = ""

	resp := env.do(t, http.MethodPost, "/api/invoices/preview", o, true)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, resp).Code)
}

func TestInvoiceHandler_LogoAusente(t *testing.T) {
	env := newTestEnv(t, &stubSource{}, stubGenerator{err: fmt.Errorf("%w: logo.png", domain.ErrAssetMissing)})

	resp := env.do(t, http.MethodPost, "/api/invoices/preview", sampleOrder("s9", "777"), true)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "ASSET_MISSING", decodeError(t, resp).Code)
}

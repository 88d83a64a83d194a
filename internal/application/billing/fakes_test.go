package billing_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/domain"
	"github.com/jhoicas/factuur-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type fakeGenerator struct {
	mu    sync.Mutex
	calls []*billing.InvoiceForPDF
	err   error
}

func (g *fakeGenerator) GenerateInvoicePDF(_ context.Context, inv *billing.InvoiceForPDF) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, inv)
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.3 " + inv.Number), nil
}

type fakeSource struct {
	mu      sync.Mutex
	ids     []string
	listErr error
	orders  map[string]*entity.OrderRecord
	lastDay time.Time
}

func (s *fakeSource) ListShipmentIDs(_ context.Context, day time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDay = day
	return s.ids, s.listErr
}

func (s *fakeSource) GetShipment(_ context.Context, id string) (*entity.OrderRecord, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("envío %s: %w", id, domain.ErrNotFound)
	}
	return o, nil
}

type fakeMailer struct {
	mu        sync.Mutex
	invoices  []billing.InvoiceMail
	reports   []string
	failFor   string
	reportPDF []byte

	delay   time.Duration // simula un SMTP lento
	entered chan struct{} // avisa de que un envío empezó
	gate    chan struct{} // si no es nil, el envío espera a que se cierre
}

func (m *fakeMailer) SendInvoice(_ context.Context, msg billing.InvoiceMail) error {
	if m.entered != nil {
		select {
		case m.entered <- struct{}{}:
		default:
		}
	}
	if m.gate != nil {
		<-m.gate
	}
	time.Sleep(m.delay)

	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.To == m.failFor {
		return fmt.Errorf("smtp: 550 mailbox unavailable")
	}
	m.invoices = append(m.invoices, msg)
	return nil
}

func (m *fakeMailer) SendReport(_ context.Context, to string, _ time.Time, pdf []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, to)
	m.reportPDF = pdf
	return nil
}

type fakeReports struct {
	last *billing.DailyReport
}

func (r *fakeReports) GenerateDailyReport(_ context.Context, rep *billing.DailyReport) ([]byte, error) {
	r.last = rep
	return []byte("%PDF-report"), nil
}

// order construye un envío válido con una línea.
func order(shipmentID, orderID, email string) *entity.OrderRecord {
	return &entity.OrderRecord{
		ShipmentID:       shipmentID,
		ShipmentDateTime: time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC),
		Order: entity.OrderRef{
			OrderID:             orderID,
			OrderPlacedDateTime: time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC),
		},
		BillingDetails: entity.Party{
			FirstName: "Jan", Surname: "de Vries",
			StreetName: "Dorpsstraat", HouseNumber: "1",
			ZipCode: "1234 AB", City: "Utrecht", CountryCode: "NL",
			Email: email,
		},
		ShipmentDetails: entity.Party{CountryCode: "NL", ZipCode: "1234AB"},
		Items: []entity.LineItem{{
			Product:   entity.ProductRef{Title: "Boek"},
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("21.00"),
			Offer:     entity.OfferRef{Reference: "c-boeken"},
		}},
		Transport: entity.Transport{TrackAndTrace: "3SBOL0987654321"},
	}
}

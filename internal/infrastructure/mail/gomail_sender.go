// Package mail envío de facturas y del informe diario por SMTP (gomail).
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	appbilling "github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/domain"
	"github.com/jhoicas/factuur-api/pkg/clock"
)

const (
	invoiceSubject = "Jouw Factuur"
	logoCID        = "logo"
	dateLayout     = "02-01-2006"
)

var _ appbilling.Mailer = (*GomailSender)(nil)

// Sender transporte SMTP. *gomail.Dialer lo satisface.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config datos del remitente y enlaces.
type Config struct {
	From     string
	TrackURL string // base del enlace track & trace
	LogoPath string
	Brand    string // firma del correo
}

// NewDialer dialer SMTP con TLS implícito o STARTTLS según el puerto.
func NewDialer(host string, port int, user, password string) *gomail.Dialer {
	d := gomail.NewDialer(host, port, user, password)
	d.SSL = port == 465
	return d
}

// GomailSender implementa billing.Mailer.
type GomailSender struct {
	cfg    Config
	sender Sender
	clock  clock.Clock
	body   *template.Template
}

// NewGomailSender construye el mailer.
func NewGomailSender(cfg Config, sender Sender, clk clock.Clock) (*GomailSender, error) {
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("%w: remitente de correo vacío", domain.ErrInvalidInput)
	}
	tpl, err := template.New("invoice").Parse(invoiceBodyHTML)
	if err != nil {
		return nil, fmt.Errorf("mail: plantilla: %w", err)
	}
	if cfg.Brand == "" {
		cfg.Brand = "Jouw Factuur"
	}
	return &GomailSender{cfg: cfg, sender: sender, clock: clk, body: tpl}, nil
}

// TrackLink enlace público de seguimiento: {base}/{code}-{country}-{zip}.
func TrackLink(base, code, country, zip string) string {
	return fmt.Sprintf("%s/%s-%s-%s", strings.TrimRight(base, "/"), code, country, strings.ReplaceAll(zip, " ", ""))
}

type invoiceBodyData struct {
	FirstName    string
	ShipmentDate string
	TrackCode    string
	TrackLink    string
	Brand        string
	Year         int
}

func (s *GomailSender) renderInvoiceBody(msg appbilling.InvoiceMail) (string, error) {
	data := invoiceBodyData{
		FirstName:    msg.FirstName,
		ShipmentDate: msg.ShipmentDate.Format(dateLayout),
		TrackCode:    msg.TrackAndTrace,
		Brand:        s.cfg.Brand,
		Year:         s.clock.Now().Year(),
	}
	if msg.TrackAndTrace != "" {
		data.TrackLink = TrackLink(s.cfg.TrackURL, msg.TrackAndTrace, msg.CountryCode, msg.ZipCode)
	}
	var buf bytes.Buffer
	if err := s.body.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render: %w", err)
	}
	return buf.String(), nil
}

// SendInvoice envía la factura al comprador con el logo embebido y el PDF adjunto.
func (s *GomailSender) SendInvoice(ctx context.Context, msg appbilling.InvoiceMail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("%w: destinatario vacío", domain.ErrInvalidInput)
	}
	logo, err := os.ReadFile(s.cfg.LogoPath)
	if err != nil {
		return fmt.Errorf("%w: logo %s: %v", domain.ErrAssetMissing, s.cfg.LogoPath, err)
	}
	body, err := s.renderInvoiceBody(msg)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", invoiceSubject)
	m.SetBody("text/html", body)
	m.Embed("logo.png",
		gomail.SetCopyFunc(copyBytes(logo)),
		gomail.SetHeader(map[string][]string{"Content-ID": {"<" + logoCID + ">"}}),
	)
	m.Attach(msg.Filename,
		gomail.SetCopyFunc(copyBytes(msg.PDF)),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
	)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: enviar a %s: %w", msg.To, err)
	}
	return nil
}

// SendReport envía el informe diario al operador.
func (s *GomailSender) SendReport(ctx context.Context, to string, day time.Time, pdf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("%w: destinatario vacío", domain.ErrInvalidInput)
	}
	date := day.Format(dateLayout)

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Facturen verzonden "+date)
	m.SetBody("text/plain", "Overzicht van de facturen van "+date+" in de bijlage.")
	m.Attach("facturen-"+day.Format("2006-01-02")+".pdf",
		gomail.SetCopyFunc(copyBytes(pdf)),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
	)
	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: informe a %s: %w", to, err)
	}
	return nil
}

func copyBytes(b []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	}
}

const invoiceBodyHTML = `<div style="text-align: center; font-family: Arial, sans-serif;">
  <h3>Bedankt voor uw aankoop</h3>
  <img src="cid:logo" alt="Logo" style="width: 100px; height: auto;">
  <p>Beste {{.FirstName}},</p>
  <p>Bedankt voor uw aankoop.</p>
  <p>Uw bestelling is verzonden.</p>
  <p>Datum van verzending: {{.ShipmentDate}}</p>
{{- if .TrackLink}}
  <p>Track en trace: <a href="{{.TrackLink}}" target="_blank">{{.TrackCode}}</a></p>
  <p><a href="{{.TrackLink}}" style="display: inline-block; padding: 10px 20px; font-size: 16px; color: white; background-color: #007BFF; text-decoration: none; border-radius: 5px;">Volg uw bestelling</a></p>
  <p>Mocht de link niet werken, kopieer dan onderstaande link.</p>
  <p>{{.TrackLink}}</p>
{{- end}}
  <br/>
  <p>Met vriendelijke groet,</p>
  <p>{{.Brand}}</p>
  <footer style="margin-top: 20px;">
    <p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p>
  </footer>
</div>
`

package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/factuur-api/internal/domain"
	"github.com/jhoicas/factuur-api/internal/domain/entity"
	"github.com/jhoicas/factuur-api/internal/domain/repository"
	"github.com/jhoicas/factuur-api/pkg/clock"
	"github.com/jhoicas/factuur-api/pkg/logger"
)

// DispatchConfig parámetros del lote diario.
type DispatchConfig struct {
	Concurrency int    // envíos procesados en paralelo (1 = secuencial)
	ReportEmail string // destinatario del informe diario; vacío = sin informe
	Location    *time.Location
}

// BatchResult resumen de una ejecución del lote.
type BatchResult struct {
	Day     time.Time
	Total   int
	Sent    int
	Failed  int
	Skipped int
	Entries []DailyReportEntry
}

// DispatchUseCase orquesta el lote diario: envíos del día → factura → correo → registro.
// Un mismo envío nunca se procesa dos veces a la vez (inflight) y solo corre un lote (running).
type DispatchUseCase struct {
	source   ShipmentSource
	invoices *InvoiceUseCase
	mailer   Mailer
	repo     repository.DispatchRepository
	reports  ReportPDFGenerator
	clock    clock.Clock
	log      *logger.Logger
	cfg      DispatchConfig

	running  sync.Mutex
	inflight singleflight.Group
}

// NewDispatchUseCase construye el caso de uso inyectando todas sus dependencias.
// reports puede ser nil si no se quiere informe.
func NewDispatchUseCase(
	source ShipmentSource,
	invoices *InvoiceUseCase,
	mailer Mailer,
	repo repository.DispatchRepository,
	reports ReportPDFGenerator,
	clk clock.Clock,
	log *logger.Logger,
	cfg DispatchConfig,
) *DispatchUseCase {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &DispatchUseCase{
		source:   source,
		invoices: invoices,
		mailer:   mailer,
		repo:     repo,
		reports:  reports,
		clock:    clk,
		log:      log,
		cfg:      cfg,
	}
}

// RunDaily procesa los envíos de hoy. Un envío fallido se registra como FAILED y
// no detiene el lote; solo un error al listar los envíos aborta la ejecución.
// Si otro lote sigue en curso retorna domain.ErrBatchInProgress sin hacer nada.
func (uc *DispatchUseCase) RunDaily(ctx context.Context) (*BatchResult, error) {
	if !uc.running.TryLock() {
		return nil, domain.ErrBatchInProgress
	}
	defer uc.running.Unlock()

	day := uc.clock.Now().In(uc.cfg.Location)

	ids, err := uc.source.ListShipmentIDs(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("listar envíos del día: %w", err)
	}
	uc.log.Info().Int("shipments", len(ids)).Str("day", day.Format(time.DateOnly)).Msg("lote diario iniciado")

	type outcome struct {
		rec *entity.InvoiceDispatch
		err error
	}
	outcomes := make([]outcome, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := uc.processOnce(gctx, id)
			outcomes[i] = outcome{rec: rec, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{Day: day, Total: len(ids)}
	for i, o := range outcomes {
		switch {
		case errors.Is(o.err, domain.ErrAlreadyDispatched):
			result.Skipped++
			continue
		case o.err != nil:
			result.Failed++
			uc.log.Error().Err(o.err).Str("shipment_id", ids[i]).Msg("envío de factura fallido")
		default:
			result.Sent++
		}
		result.Entries = append(result.Entries, reportEntry(ids[i], o.rec, o.err))
	}

	uc.log.Info().
		Int("sent", result.Sent).Int("failed", result.Failed).Int("skipped", result.Skipped).
		Msg("lote diario terminado")

	uc.sendReport(ctx, result)
	return result, nil
}

// DispatchOne procesa un único envío. Retorna domain.ErrAlreadyDispatched si ya se envió.
func (uc *DispatchUseCase) DispatchOne(ctx context.Context, shipmentID string) (*entity.InvoiceDispatch, error) {
	return uc.processOnce(ctx, shipmentID)
}

// PreviewShipment genera la factura de un envío sin enviarla ni registrarla.
func (uc *DispatchUseCase) PreviewShipment(ctx context.Context, shipmentID string) (*GeneratedInvoice, error) {
	order, err := uc.source.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return uc.invoices.Generate(ctx, order)
}

// ListDispatches lista los registros de un día.
func (uc *DispatchUseCase) ListDispatches(ctx context.Context, day time.Time) ([]*entity.InvoiceDispatch, error) {
	return uc.repo.ListByDay(ctx, day.In(uc.cfg.Location))
}

// processOnce agrupa las llamadas concurrentes para el mismo envío: solo la primera
// consulta, envía y registra; las demás reciben su resultado. Una llamada posterior ya
// encuentra el registro SENT.
func (uc *DispatchUseCase) processOnce(ctx context.Context, shipmentID string) (*entity.InvoiceDispatch, error) {
	ch := uc.inflight.DoChan(shipmentID, func() (any, error) {
		return uc.process(ctx, shipmentID)
	})
	select {
	case res := <-ch:
		rec, _ := res.Val.(*entity.InvoiceDispatch)
		return rec, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (uc *DispatchUseCase) process(ctx context.Context, shipmentID string) (*entity.InvoiceDispatch, error) {
	existing, err := uc.repo.GetByShipmentID(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("consultar registro del envío %s: %w", shipmentID, err)
	}
	if existing != nil && existing.Sent() {
		return existing, domain.ErrAlreadyDispatched
	}

	rec := &entity.InvoiceDispatch{
		ID:         uuid.New().String(),
		ShipmentID: shipmentID,
		CreatedAt:  uc.clock.Now(),
	}
	sendErr := uc.send(ctx, rec)
	if sendErr != nil {
		rec.Status = entity.DispatchStatusFailed
		rec.Error = sendErr.Error()
	} else {
		rec.Status = entity.DispatchStatusSent
	}

	// El correo ya salió: un fallo al registrar solo se registra en el log.
	if err := uc.repo.Save(ctx, rec); err != nil {
		uc.log.Error().Err(err).Str("shipment_id", shipmentID).Msg("registrar envío de factura")
	}
	if sendErr == nil {
		uc.log.Info().
			Str("shipment_id", shipmentID).
			Str("order_id", rec.OrderID).
			Str("invoice_number", rec.InvoiceNumber).
			Msg("factura enviada")
	}
	return rec, sendErr
}

// send recupera el envío, genera la factura y la manda por correo, rellenando rec.
func (uc *DispatchUseCase) send(ctx context.Context, rec *entity.InvoiceDispatch) error {
	order, err := uc.source.GetShipment(ctx, rec.ShipmentID)
	if err != nil {
		return fmt.Errorf("obtener envío: %w", err)
	}
	rec.OrderID = order.Order.OrderID
	rec.BuyerEmail = order.BillingDetails.Email
	if strings.TrimSpace(rec.BuyerEmail) == "" {
		return fmt.Errorf("%w: billingDetails.email vacío", domain.ErrInvalidInput)
	}

	inv, err := uc.invoices.Generate(ctx, order)
	if err != nil {
		return err
	}
	rec.InvoiceNumber = inv.Number
	rec.NetTotal = inv.Totals.TotalExclusiveTax.Round(2)
	rec.TaxTotal = inv.Totals.TotalTaxAmount.Round(2)
	rec.GrandTotal = inv.Totals.TotalInclusiveTax().Round(2)

	err = uc.mailer.SendInvoice(ctx, InvoiceMail{
		To:            rec.BuyerEmail,
		FirstName:     order.BillingDetails.FirstName,
		ShipmentDate:  order.ShipmentDateTime.In(uc.cfg.Location),
		TrackAndTrace: order.Transport.TrackAndTrace,
		CountryCode:   order.ShipmentDetails.CountryCode,
		ZipCode:       order.ShipmentDetails.ZipCode,
		Filename:      inv.Filename,
		PDF:           inv.PDF,
	})
	if err != nil {
		return fmt.Errorf("enviar correo: %w", err)
	}
	return nil
}

func (uc *DispatchUseCase) sendReport(ctx context.Context, result *BatchResult) {
	if uc.reports == nil || uc.cfg.ReportEmail == "" || len(result.Entries) == 0 {
		return
	}
	out, err := uc.reports.GenerateDailyReport(ctx, &DailyReport{Day: result.Day, Entries: result.Entries})
	if err != nil {
		uc.log.Error().Err(err).Msg("generar informe diario")
		return
	}
	if err := uc.mailer.SendReport(ctx, uc.cfg.ReportEmail, result.Day, out); err != nil {
		uc.log.Error().Err(err).Msg("enviar informe diario")
	}
}

func reportEntry(shipmentID string, rec *entity.InvoiceDispatch, err error) DailyReportEntry {
	e := DailyReportEntry{ShipmentID: shipmentID, Status: entity.DispatchStatusFailed}
	if rec != nil {
		e.OrderID = rec.OrderID
		e.InvoiceNumber = rec.InvoiceNumber
		e.BuyerEmail = rec.BuyerEmail
		e.Status = rec.Status
		if rec.Status == entity.DispatchStatusSent {
			e.GrandTotal = "EUR " + rec.GrandTotal.StringFixed(2)
		}
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

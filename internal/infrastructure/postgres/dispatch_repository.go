package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/factuur-api/internal/domain/entity"
	"github.com/jhoicas/factuur-api/internal/domain/repository"
)

var _ repository.DispatchRepository = (*DispatchRepo)(nil)

const dispatchSchema = `
CREATE TABLE IF NOT EXISTS invoice_dispatches (
	id             UUID PRIMARY KEY,
	shipment_id    TEXT NOT NULL UNIQUE,
	order_id       TEXT NOT NULL,
	invoice_number TEXT NOT NULL,
	buyer_email    TEXT NOT NULL DEFAULT '',
	net_total      NUMERIC(12,2) NOT NULL DEFAULT 0,
	tax_total      NUMERIC(12,2) NOT NULL DEFAULT 0,
	grand_total    NUMERIC(12,2) NOT NULL DEFAULT 0,
	status         TEXT NOT NULL,
	error          TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_invoice_dispatches_created_at ON invoice_dispatches (created_at);`

const dispatchColumns = `id, shipment_id, order_id, invoice_number, buyer_email,
	net_total, tax_total, grand_total, status, error, created_at`

// DispatchRepo implementación PostgreSQL de DispatchRepository (usable con pool o tx).
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

// EnsureSchema crea la tabla si no existe.
func (r *DispatchRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, dispatchSchema); err != nil {
		return fmt.Errorf("crear esquema invoice_dispatches: %w", err)
	}
	return nil
}

// Save inserta o reemplaza el registro por shipment_id. Un reintento conserva el id original.
func (r *DispatchRepo) Save(ctx context.Context, d *entity.InvoiceDispatch) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO invoice_dispatches (` + dispatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (shipment_id) DO UPDATE
		SET order_id       = EXCLUDED.order_id,
		    invoice_number = EXCLUDED.invoice_number,
		    buyer_email    = EXCLUDED.buyer_email,
		    net_total      = EXCLUDED.net_total,
		    tax_total      = EXCLUDED.tax_total,
		    grand_total    = EXCLUDED.grand_total,
		    status         = EXCLUDED.status,
		    error          = EXCLUDED.error,
		    created_at     = EXCLUDED.created_at
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		d.ID, d.ShipmentID, d.OrderID, d.InvoiceNumber, d.BuyerEmail,
		d.NetTotal, d.TaxTotal, d.GrandTotal, d.Status, nullIfEmpty(d.Error), d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("guardar dispatch %s: %w", d.ShipmentID, err)
	}
	return nil
}

// GetByShipmentID devuelve nil, nil si no hay registro.
func (r *DispatchRepo) GetByShipmentID(ctx context.Context, shipmentID string) (*entity.InvoiceDispatch, error) {
	query := `SELECT ` + dispatchColumns + ` FROM invoice_dispatches WHERE shipment_id = $1`
	d, err := scanDispatch(r.q.QueryRow(ctx, query, shipmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch: %w", err)
	}
	return d, nil
}

// ListByDay registros creados en el día natural de day, en orden de creación.
func (r *DispatchRepo) ListByDay(ctx context.Context, day time.Time) ([]*entity.InvoiceDispatch, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	query := `SELECT ` + dispatchColumns + `
		FROM invoice_dispatches
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.InvoiceDispatch, 0)
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDispatch(row pgx.Row) (*entity.InvoiceDispatch, error) {
	var d entity.InvoiceDispatch
	var errText *string
	if err := row.Scan(
		&d.ID, &d.ShipmentID, &d.OrderID, &d.InvoiceNumber, &d.BuyerEmail,
		&d.NetTotal, &d.TaxTotal, &d.GrandTotal, &d.Status, &errText, &d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.Error = derefString(errText)
	return &d, nil
}

package repository

import (
	"context"
	"time"

	"github.com/jhoicas/factuur-api/internal/domain/entity"
)

// DispatchRepository define el puerto de persistencia para los envíos de facturas.
type DispatchRepository interface {
	// Save inserta o reemplaza el registro del envío (clave: shipment_id).
	Save(ctx context.Context, d *entity.InvoiceDispatch) error
	// GetByShipmentID devuelve nil, nil si el envío no tiene registro.
	GetByShipmentID(ctx context.Context, shipmentID string) (*entity.InvoiceDispatch, error)
	// ListByDay lista los registros creados en el día natural de day (en su zona horaria).
	ListByDay(ctx context.Context, day time.Time) ([]*entity.InvoiceDispatch, error)
}

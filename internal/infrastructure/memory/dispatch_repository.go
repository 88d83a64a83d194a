// Package memory repositorios en memoria para desarrollo local sin PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/factuur-api/internal/domain/entity"
	"github.com/jhoicas/factuur-api/internal/domain/repository"
)

var _ repository.DispatchRepository = (*DispatchRepo)(nil)

// DispatchRepo implementación en memoria de DispatchRepository. Seguro para uso concurrente.
type DispatchRepo struct {
	mu   sync.RWMutex
	byID map[string]entity.InvoiceDispatch // clave: shipment_id
}

// NewDispatchRepository construye el repositorio vacío.
func NewDispatchRepository() *DispatchRepo {
	return &DispatchRepo{byID: make(map[string]entity.InvoiceDispatch)}
}

// Save inserta o reemplaza por shipment_id.
func (r *DispatchRepo) Save(_ context.Context, d *entity.InvoiceDispatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[d.ShipmentID] = *d
	return nil
}

// GetByShipmentID devuelve una copia del registro o nil.
func (r *DispatchRepo) GetByShipmentID(_ context.Context, shipmentID string) (*entity.InvoiceDispatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[shipmentID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// ListByDay registros creados en el día natural de day, ordenados por creación.
func (r *DispatchRepo) ListByDay(_ context.Context, day time.Time) ([]*entity.InvoiceDispatch, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.InvoiceDispatch, 0)
	for _, d := range r.byID {
		if !d.CreatedAt.Before(start) && d.CreatedAt.Before(end) {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

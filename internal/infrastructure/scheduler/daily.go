// Package scheduler ejecuta el lote de facturación una vez al día a hora fija.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/factuur-api/pkg/clock"
	"github.com/jhoicas/factuur-api/pkg/logger"
)

// Job trabajo programado.
type Job func(ctx context.Context) error

// Daily dispara un Job cada día a Hour:Minute en Location.
type Daily struct {
	Hour     int
	Minute   int
	Location *time.Location
	// Timeout por ejecución; 0 = sin límite.
	Timeout time.Duration

	clock clock.Clock
	log   *logger.Logger
}

// NewDaily valida la hora y construye el planificador.
func NewDaily(hour, minute int, loc *time.Location, clk clock.Clock, log *logger.Logger) (*Daily, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("scheduler: hora inválida %02d:%02d", hour, minute)
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Daily{Hour: hour, Minute: minute, Location: loc, clock: clk, log: log.Named("scheduler")}, nil
}

// NextRun primera ejecución estrictamente posterior a now.
// Se calcula sobre la fecha de calendario para respetar los cambios de horario.
func (d *Daily) NextRun(now time.Time) time.Time {
	local := now.In(d.Location)
	y, m, day := local.Date()
	next := time.Date(y, m, day, d.Hour, d.Minute, 0, 0, d.Location)
	if !next.After(local) {
		next = time.Date(y, m, day+1, d.Hour, d.Minute, 0, 0, d.Location)
	}
	return next
}

// Run bloquea hasta que ctx se cancela, ejecutando job a cada hora programada.
// Un error del job se registra y no detiene el planificador.
func (d *Daily) Run(ctx context.Context, job Job) {
	for {
		next := d.NextRun(d.clock.Now())
		wait := next.Sub(d.clock.Now())
		if wait < 0 {
			wait = 0
		}
		d.log.Info().Time("next_run", next).Msg("próxima ejecución programada")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		d.runOnce(ctx, job)
	}
}

func (d *Daily) runOnce(ctx context.Context, job Job) {
	runCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Msg("pánico en trabajo programado")
		}
	}()

	start := d.clock.Now()
	if err := job(runCtx); err != nil {
		d.log.Error().Err(err).Msg("trabajo programado falló")
		return
	}
	d.log.Info().Dur("duration", d.clock.Now().Sub(start)).Msg("trabajo programado completado")
}

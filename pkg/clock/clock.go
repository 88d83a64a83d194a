// Package clock abstrae la hora actual para poder inyectarla en tests.
package clock

import (
	"sync"
	"time"
)

// Clock fuente de la hora actual.
type Clock interface {
	Now() time.Time
}

// System usa time.Now.
type System struct{}

// Now devuelve la hora del sistema.
func (System) Now() time.Time { return time.Now() }

// Fake reloj manual para tests. Seguro para uso concurrente.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake crea un reloj fijo en t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now devuelve la hora fijada.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance adelanta el reloj d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

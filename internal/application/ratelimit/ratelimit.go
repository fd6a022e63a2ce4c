// Package ratelimit implementa el limitador de ventana deslizante que protege
// al escritor único de sobrecarga. Solo muta contadores en memoria: nunca toca
// la base de datos.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/tu-usuario/steel-pos/internal/domain"
)

// OpCreateInvoice clase de operación limitada por el motor.
const OpCreateInvoice = "create_invoice"

type window struct {
	count   int
	resetAt time.Time
}

// Limiter ventana deslizante por clase de operación, con reloj inyectable
// para poder testearlo y resetearlo (nada de estado global de módulo).
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	size    time.Duration
	now     func() time.Time
}

// New construye el limitador. limit operaciones por ventana de tamaño size.
// Valores no positivos caen a los defaults: un techo en cero rechazaría toda
// operación.
func New(limit int, size time.Duration) *Limiter {
	if limit <= 0 {
		limit = 60
	}
	if size <= 0 {
		size = time.Minute
	}
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		size:    size,
		now:     time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check incrementa el contador de la ventana vigente para la clase de
// operación; si supera el techo, falla con ErrRateLimitExceeded y el caller
// no debe continuar. Las ventanas vencidas se desalojan perezosamente.
func (l *Limiter) Check(kind string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[kind]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.size)}
		l.windows[kind] = w
	}

	w.count++
	if w.count > l.limit {
		return fmt.Errorf("%w: %s (%d en la ventana vigente, máximo %d)",
			domain.ErrRateLimitExceeded, kind, w.count-1, l.limit)
	}

	// Desalojo perezoso del resto de clases vencidas para que el mapa no crezca.
	for k, other := range l.windows {
		if k != kind && !now.Before(other.resetAt) {
			delete(l.windows, k)
		}
	}
	return nil
}

// Reset limpia todos los contadores (tests y apagado).
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*window)
}

// Package serializer implementa la cola FIFO de admisión que garantiza un
// único escritor contra la base embebida: una goroutine propietaria drena la
// cola y ejecuta las operaciones de a una, en orden de llegada. Nada de flags
// globales: el estado vive en el actor y se inyecta donde se necesita.
package serializer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/steel-pos/internal/domain"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

// Operation operación de escritura a serializar. El resultado (o el error)
// se entrega solo al caller que la encoló; fallas de la cola nunca se filtran
// entre callers no relacionados.
type Operation func(ctx context.Context) (any, error)

// Gauge contador de profundidad de cola (lo satisface prometheus.Gauge).
type Gauge interface {
	Inc()
	Dec()
}

// Config tunables del serializador.
type Config struct {
	QueueSize        int           // capacidad de la cola pendiente
	AdmissionTimeout time.Duration // espera máxima para que una operación arranque
	InterOpDelay     time.Duration // pausa entre operaciones (reduce contención del motor)
}

type result struct {
	value any
	err   error
}

type request struct {
	id      string
	op      Operation
	ctx     context.Context
	startBy time.Time // límite de admisión: si no arrancó antes, OperationTimeout
	reply   chan result
}

// Serializer actor con acceso exclusivo al handle de escritura.
type Serializer struct {
	cfg      Config
	log      *logger.Logger
	depth    Gauge
	requests chan *request
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

// New construye el serializador y arranca la goroutine de drenaje.
// depth puede ser nil si no se exportan métricas.
func New(cfg Config, log *logger.Logger, depth Gauge) *Serializer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.AdmissionTimeout <= 0 {
		cfg.AdmissionTimeout = 30 * time.Second
	}
	s := &Serializer{
		cfg:      cfg,
		log:      log,
		depth:    depth,
		requests: make(chan *request, cfg.QueueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go s.drain()
	return s
}

// Enqueue encola la operación y bloquea hasta su resultado. Garantías:
// operaciones encoladas después nunca arrancan antes que las anteriores; a lo
// sumo una operación está en vuelo contra la base en cada instante.
func (s *Serializer) Enqueue(ctx context.Context, id string, op Operation) (any, error) {
	if id == "" {
		id = uuid.New().String()
	}
	req := &request{
		id:      id,
		op:      op,
		ctx:     ctx,
		startBy: time.Now().Add(s.cfg.AdmissionTimeout),
		reply:   make(chan result, 1),
	}

	admission := time.NewTimer(s.cfg.AdmissionTimeout)
	defer admission.Stop()

	select {
	case s.requests <- req:
		if s.depth != nil {
			s.depth.Inc()
		}
	case <-admission.C:
		// Cola llena durante toda la ventana de admisión.
		return nil, fmt.Errorf("%w: operación %s no admitida", domain.ErrOperationTimeout, id)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, domain.ErrSerializerClosed
	}

	// El actor siempre responde: con el resultado de la operación, con
	// OperationTimeout si venció la admisión, o con ErrSerializerClosed al cerrar.
	select {
	case res := <-req.reply:
		return res.value, res.err
	case <-s.stopped:
		// El actor terminó; puede haber alcanzado a responder.
		select {
		case res := <-req.reply:
			return res.value, res.err
		default:
			return nil, domain.ErrSerializerClosed
		}
	}
}

// drain es la goroutine propietaria: toma la siguiente operación solo cuando
// la anterior terminó (éxito o falla), con una pausa corta entre operaciones.
func (s *Serializer) drain() {
	defer close(s.stopped)
	for {
		// El cierre tiene prioridad sobre lo pendiente en cola.
		select {
		case <-s.done:
			s.flush()
			return
		default:
		}
		select {
		case <-s.done:
			s.flush()
			return
		case req := <-s.requests:
			if s.depth != nil {
				s.depth.Dec()
			}
			if time.Now().After(req.startBy) {
				req.reply <- result{err: fmt.Errorf("%w: operación %s esperó más de %s en cola",
					domain.ErrOperationTimeout, req.id, s.cfg.AdmissionTimeout)}
				continue
			}
			if err := req.ctx.Err(); err != nil {
				req.reply <- result{err: err}
				continue
			}

			req.reply <- s.run(req)

			if s.cfg.InterOpDelay > 0 {
				select {
				case <-time.After(s.cfg.InterOpDelay):
				case <-s.done:
					s.flush()
					return
				}
			}
		}
	}
}

// run ejecuta la operación conteniendo pánicos: un pánico se convierte en el
// error de ese caller y el actor sigue vivo para el resto de la cola.
func (s *Serializer) run(req *request) (res result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("operation_id", req.id).Interface("panic", r).
				Msg("pánico dentro de una operación serializada")
			res = result{err: fmt.Errorf("pánico en operación %s: %v", req.id, r)}
		}
	}()
	v, err := req.op(req.ctx)
	return result{value: v, err: err}
}

// flush responde a todo lo pendiente al cerrar.
func (s *Serializer) flush() {
	for {
		select {
		case req := <-s.requests:
			if s.depth != nil {
				s.depth.Dec()
			}
			req.reply <- result{err: domain.ErrSerializerClosed}
		default:
			return
		}
	}
}

// Close detiene el actor. Operaciones pendientes reciben ErrSerializerClosed;
// la operación en vuelo (si hay) termina antes de que Close retorne.
func (s *Serializer) Close() {
	s.once.Do(func() { close(s.done) })
	<-s.stopped
}

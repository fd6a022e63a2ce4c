// Package events implementa la publicación de eventos de dominio post-commit:
// un bus en memoria con fan-out a suscriptores (log estructurado, hub de
// WebSocket del panel). La entrega es best-effort: el commit ya ocurrió y
// ninguna falla de suscriptor lo revierte.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

// Event evento de dominio emitido tras un commit exitoso.
type Event struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload"`
	At      time.Time      `json:"at"`
}

// Subscriber recibe eventos. Corre en la goroutine del publicador: los
// suscriptores deben ser rápidos o despachar a su propia cola.
type Subscriber interface {
	Notify(evt Event)
}

// Bus fan-out síncrono a los suscriptores registrados. Satisface el puerto
// Notifier de la capa de aplicación.
type Bus struct {
	subs []Subscriber
	log  *logger.Logger
}

// NewBus construye el bus.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registra un suscriptor. No es seguro llamarlo concurrentemente
// con Publish: el registro ocurre en el arranque, antes de servir tráfico.
func (b *Bus) Subscribe(s Subscriber) {
	b.subs = append(b.subs, s)
}

// Publish entrega el evento a cada suscriptor. Un pánico de un suscriptor se
// contiene y se registra: jamás tumba el flujo de facturación.
func (b *Bus) Publish(name string, payload map[string]any) {
	evt := Event{ID: uuid.NewString(), Name: name, Payload: payload, At: time.Now()}
	for _, s := range b.subs {
		b.notify(s, evt)
	}
}

func (b *Bus) notify(s Subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("event", evt.Name).
				Msg("pánico en suscriptor de eventos, contenido")
		}
	}()
	s.Notify(evt)
}

package events

import (
	"github.com/tu-usuario/steel-pos/internal/infrastructure/metrics"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

// LogSubscriber deja cada evento en el log estructurado y cuenta la métrica.
type LogSubscriber struct {
	log *logger.Logger
}

// NewLogSubscriber construye el suscriptor.
func NewLogSubscriber(log *logger.Logger) *LogSubscriber {
	return &LogSubscriber{log: log}
}

// Notify implementa Subscriber.
func (s *LogSubscriber) Notify(evt Event) {
	metrics.EventsPublished.WithLabelValues(evt.Name).Inc()
	s.log.Info().Str("event", evt.Name).Interface("payload", evt.Payload).
		Msg("evento de dominio")
}

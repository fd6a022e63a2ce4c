package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/steel-pos/internal/infrastructure/events"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

type captureSubscriber struct {
	got []events.Event
}

func (s *captureSubscriber) Notify(evt events.Event) {
	s.got = append(s.got, evt)
}

type panicSubscriber struct{}

func (panicSubscriber) Notify(events.Event) { panic("suscriptor roto") }

func TestBus_EntregaEnOrden(t *testing.T) {
	bus := events.NewBus(logger.NewNop())
	sub := &captureSubscriber{}
	bus.Subscribe(sub)

	bus.Publish("invoice_created", map[string]any{"bill_number": "INV-000001"})
	bus.Publish("stock_updated", map[string]any{"product_id": int64(1)})

	require.Len(t, sub.got, 2)
	assert.Equal(t, "invoice_created", sub.got[0].Name)
	assert.Equal(t, "stock_updated", sub.got[1].Name)
	assert.NotEmpty(t, sub.got[0].ID)
	assert.False(t, sub.got[0].At.IsZero())
}

// Un suscriptor que entra en pánico no corta la entrega al resto.
func TestBus_PanicoContenido(t *testing.T) {
	bus := events.NewBus(logger.NewNop())
	sub := &captureSubscriber{}
	bus.Subscribe(panicSubscriber{})
	bus.Subscribe(sub)

	require.NotPanics(t, func() {
		bus.Publish("invoice_created", nil)
	})
	assert.Len(t, sub.got, 1)
}

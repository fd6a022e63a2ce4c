// Package metrics expone los contadores Prometheus del motor de facturación.
// Se publican en el listener de monitoreo, separado del puerto de la API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvoicesCreated facturas committeadas con éxito.
	InvoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steelpos_invoices_created_total",
		Help: "Facturas creadas y committeadas",
	})

	// ValidationRejected propuestas rechazadas por el validador.
	ValidationRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steelpos_validation_rejected_total",
		Help: "Facturas rechazadas en validación",
	})

	// RateLimited operaciones rechazadas por la ventana de tasa.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steelpos_rate_limited_total",
		Help: "Operaciones rechazadas por límite de tasa",
	})

	// StockRejected facturas rechazadas por stock insuficiente.
	StockRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steelpos_stock_rejected_total",
		Help: "Facturas rechazadas por stock insuficiente",
	})

	// TxRetries reintentos de transacción por contención transitoria.
	TxRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steelpos_tx_retries_total",
		Help: "Reintentos de transacción por contención",
	})

	// TxConflicts transacciones agotadas sin lograr commit.
	TxConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steelpos_tx_conflicts_total",
		Help: "Transacciones abandonadas tras agotar reintentos",
	})

	// QueueDepth operaciones actualmente encoladas en el serializador.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "steelpos_queue_depth",
		Help: "Operaciones en la cola del serializador",
	})

	// EventsPublished eventos de dominio publicados post-commit.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steelpos_events_published_total",
		Help: "Eventos de dominio publicados",
	}, []string{"event"})
)

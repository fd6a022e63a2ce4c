// Package monitoring expone el listener de observación, separado del puerto
// de la API: métricas Prometheus, stream de eventos por WebSocket y un
// healthcheck de la base.
package monitoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tu-usuario/steel-pos/internal/infrastructure/events"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

// Server listener HTTP de monitoreo.
type Server struct {
	db   *sql.DB
	hub  *events.Hub
	log  *logger.Logger
	srv  *http.Server
	addr string
}

// NewServer construye el servidor de monitoreo.
func NewServer(db *sql.DB, hub *events.Hub, addr string, log *logger.Logger) *Server {
	return &Server{db: db, hub: hub, addr: addr, log: log}
}

// Start arranca el listener. Bloquea hasta que el servidor cierre.
func (s *Server) Start() error {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/ws", s.hub.HandleWS)
	r.HandleFunc("/healthz", s.healthz).Methods("GET")

	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Str("addr", s.addr).Msg("listener de monitoreo arriba")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown apaga el listener de forma ordenada.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

package events

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub reenvía los eventos de dominio a los clientes WebSocket conectados al
// panel de monitoreo. Suscriptor del bus: recibe en la goroutine del
// publicador y despacha por un canal propio para no bloquear el commit.
type Hub struct {
	log        *logger.Logger
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Event
	done       chan struct{}
	once       sync.Once
}

// NewHub construye el hub y arranca la goroutine de difusión.
func NewHub(log *logger.Logger) *Hub {
	h := &Hub{
		log:       log,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, 64),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

// Notify implementa Subscriber. Si el canal está lleno el evento se descarta:
// el panel es observación, nunca backpressure sobre la facturación.
func (h *Hub) Notify(evt Event) {
	select {
	case h.broadcast <- evt:
	default:
		h.log.Warn().Str("event", evt.Name).Msg("canal del hub lleno, evento descartado")
	}
}

// HandleWS maneja la conexión WebSocket de un cliente del panel.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("upgrade de WebSocket fallido")
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			return
		}
	}
}

func (h *Hub) run() {
	for {
		select {
		case evt := <-h.broadcast:
			h.clientsMux.Lock()
			for client := range h.clients {
				if err := client.WriteJSON(evt); err != nil {
					client.Close()
					delete(h.clients, client)
				}
			}
			h.clientsMux.Unlock()
		case <-h.done:
			return
		}
	}
}

// Close detiene la difusión y cierra las conexiones.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.done)
		h.clientsMux.Lock()
		for client := range h.clients {
			client.Close()
			delete(h.clients, client)
		}
		h.clientsMux.Unlock()
	})
}

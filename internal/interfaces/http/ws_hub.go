package http

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/ports"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// clientBuffer mensajes pendientes por cliente; si se llena, el evento se descarta para ese cliente.
const clientBuffer = 32

// eventMessage es lo que recibe el cliente por /ws/eventos.
type eventMessage struct {
	Tipo     string    `json:"tipo"`
	Entidade string    `json:"entidade"`
	ID       string    `json:"id"`
	Em       time.Time `json:"em"`
}

// Hub difunde los eventos del bus a las conexiones WebSocket abiertas.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	log     *logger.Logger
}

// NewHub construye el hub sin clientes.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{clients: make(map[*websocket.Conn]chan []byte), log: log.Component("ws")}
}

// Attach suscribe el hub al bus de eventos. La función devuelta cancela la suscripción.
func (h *Hub) Attach(events ports.EventSubscriber) func() {
	return events.Subscribe(h.Broadcast)
}

// Broadcast encola el evento para cada cliente sin bloquear al publicador.
func (h *Hub) Broadcast(ev entity.Event) {
	msg, err := json.Marshal(eventMessage{Tipo: ev.Type, Entidade: ev.Entity, ID: ev.EntityID, Em: ev.At})
	if err != nil {
		h.log.Error().Err(err).Msg("serializar evento")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- msg:
		default:
			h.log.Warn().Str("remote", conn.RemoteAddr().String()).Msg("cliente lento, evento descartado")
		}
	}
}

// Clients devuelve el número de conexiones abiertas.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Upgrade rechaza con 426 las peticiones que no son upgrade de WebSocket.
func (h *Hub) Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fail(c, fiber.StatusUpgradeRequired, "conexão WebSocket requerida")
	}
}

// Handler atiende una conexión: escribe los eventos encolados hasta que el cliente se desconecta.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ch := h.register(conn)
		defer h.unregister(conn)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case msg := <-ch:
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}
	})
}

func (h *Hub) register(conn *websocket.Conn) chan []byte {
	ch := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[conn] = ch
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Int("clientes", n).Msg("cliente conectado")
	return ch
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()
	_ = conn.Close()
	h.log.Debug().Int("clientes", n).Msg("cliente desconectado")
}

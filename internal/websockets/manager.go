package websockets

import (
	"encoding/json"
	"sync"

	"surveyhub/config"
	"surveyhub/internal/database"
	"surveyhub/internal/events"
	"surveyhub/internal/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Manager fans survey events out to connected websocket clients. Events
// arrive over the shared event bus, so every server instance sees saves made
// through any other instance.
type Manager struct {
	eventBus *events.EventBus
	config   config.Config
	log      logger.Logger

	mu      sync.RWMutex
	clients map[string]chan []byte
}

func New(db database.DB, eventBus *events.EventBus, config config.Config) (*Manager, error) {
	m := &Manager{
		eventBus: eventBus,
		config:   config,
		clients:  make(map[string]chan []byte),
		log:      logger.New("websockets"),
	}

	log := m.log.Function("New")
	eventBus.Subscribe(func(event events.Event) {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Er("failed to marshal event", err)
			return
		}
		m.broadcast(payload)
	})

	return m, nil
}

func (m *Manager) broadcast(payload []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ch := range m.clients {
		select {
		case ch <- payload:
		default:
			// Slow client, drop the frame rather than block the relay.
		}
	}
}

// HandleWebSocket runs the connection loop for one client. It blocks until
// the client disconnects.
func (m *Manager) HandleWebSocket(conn *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	id := uuid.NewString()
	ch := make(chan []byte, 32)

	m.mu.Lock()
	m.clients[id] = ch
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.clients, id)
		m.mu.Unlock()
		conn.Close()
	}()

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
		case payload := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Er("failed to write to client", err, "client", id)
				return
			}
		case <-done:
			return
		}
	}
}


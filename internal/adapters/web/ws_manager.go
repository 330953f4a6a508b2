package web

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/netscenehq/netscene/internal/core/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin requests carry no Origin header.
		return r.Header.Get("Origin") == "" ||
			r.Header.Get("Origin") == "http://"+r.Host ||
			r.Header.Get("Origin") == "https://"+r.Host
	},
}

// WSMessage is the envelope pushed to connected front-ends.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// WSManager broadcasts freshly built scenes to websocket subscribers.
// It implements ports.ScenePublisher.
type WSManager struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewWSManager creates an empty subscriber set.
func NewWSManager() *WSManager {
	return &WSManager{clients: make(map[*websocket.Conn]bool)}
}

// HandleWebSocket upgrades the connection and keeps it registered until
// the peer goes away. The server never reads application data from
// clients; the read loop only services close frames.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = true
	m.mu.Unlock()

	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PublishScene pushes a scene to every connected client. Write failures
// drop the client.
func (m *WSManager) PublishScene(scene domain.Scene) {
	msg := WSMessage{Type: "scene", Payload: scene}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
}

// ClientCount reports the current subscriber count.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wonny/screener/internal/progress"
	"github.com/wonny/screener/pkg/logger"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is the envelope of every websocket frame
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ProgressHub streams progress events to websocket clients. It is a progress.Observer.
// ⭐ SSOT: 실시간 진행 상황 브로드캐스트는 여기서만
type ProgressHub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	mu         sync.RWMutex
	instanceID string // clients use it to detect a server restart
	logger     *logger.Logger
}

// NewProgressHub creates an empty hub
func NewProgressHub(log *logger.Logger) *ProgressHub {
	h := &ProgressHub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		instanceID: uuid.NewString(),
		logger:     log,
	}
	log.WithField("instance_id", h.instanceID).Debug("Progress hub initialized")
	return h
}

// HandleWebSocket upgrades the request and keeps the client registered until it disconnects
// GET /ws/progress
func (h *ProgressHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade websocket connection")
		return
	}

	lock := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = lock
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", total).Debug("Websocket client connected")

	h.send(conn, lock, WSMessage{
		Type:    "hello",
		Payload: map[string]string{"instance_id": h.instanceID},
	})

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.WithField("clients", remaining).Debug("Websocket client disconnected")
	}()

	// 클라이언트 메시지는 무시, 연결 유지용
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Warn("Websocket error")
			}
			return
		}
	}
}

// Notify implements progress.Observer
func (h *ProgressHub) Notify(e progress.Event) {
	h.Broadcast(WSMessage{Type: "progress", Payload: e})
}

// Broadcast sends msg to every connected client
func (h *ProgressHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal websocket message")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	locks := make([]*sync.Mutex, 0, len(h.clients))
	for conn, lock := range h.clients {
		conns = append(conns, conn)
		locks = append(locks, lock)
	}
	h.mu.RUnlock()

	for i, conn := range conns {
		h.write(conn, locks[i], data)
	}
}

// Clients returns the number of connected clients
func (h *ProgressHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *ProgressHub) send(conn *websocket.Conn, lock *sync.Mutex, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.write(conn, lock, data)
}

func (h *ProgressHub) write(conn *websocket.Conn, lock *sync.Mutex, data []byte) {
	lock.Lock()
	defer lock.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.WithError(err).Debug("Failed to send websocket message")
	}
}

var _ progress.Observer = (*ProgressHub)(nil)

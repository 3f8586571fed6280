package kds

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/satouyama/pesto-sub001/utils"
)

// TopicOrders is the shared channel every order mutation is announced on.
const TopicOrders = "orders"

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher sends a payload to every subscriber of a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// Hub keeps every KDS client (chef, staff, admin) connected over websocket
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
	utils.InfoLogger.WithField("role", role).Info("KDS client connected")
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish writes {event: topic, data: payload} to every connected client.
// Clients that fail the write are dropped.
func (h *Hub) Publish(_ context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(Message{Event: topic, Data: payload})
	if err != nil {
		return err
	}
	h.send(data)
	return nil
}

func (h *Hub) send(data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithField("role", role).Errorf("Error sending message to client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

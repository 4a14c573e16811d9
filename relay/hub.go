package relay

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one websocket subscriber in a table room.
type Client struct {
	ID      string
	TableID string
	Send    chan []byte
	Conn    *websocket.Conn
}

// Hub fans shared-key updates out to every other client at the same table.
// It also caches the latest value per key so a late joiner starts from the
// current truth instead of waiting for the next write.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan BroadcastMessage

	mu      sync.RWMutex
	clients map[string]map[*Client]bool // tableID -> clients
	latest  map[string]map[string][]byte // tableID -> key -> last payload
}

// BroadcastMessage is a key update to fan out within a table.
type BroadcastMessage struct {
	TableID string
	Sender  *Client
	Key     string
	Data    []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan BroadcastMessage),
		clients:    make(map[string]map[*Client]bool),
		latest:     make(map[string]map[string][]byte),
	}
}

// Run processes registration and broadcast traffic until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.TableID] == nil {
				h.clients[client.TableID] = make(map[*Client]bool)
			}
			h.clients[client.TableID][client] = true
			// Replay the table's latest values so the joiner catches up.
			for _, data := range h.latest[client.TableID] {
				select {
				case client.Send <- data:
				default:
				}
			}
			h.mu.Unlock()
		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.TableID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
				}
			}
			h.mu.Unlock()
		case msg := <-h.Broadcast:
			h.mu.Lock()
			if h.latest[msg.TableID] == nil {
				h.latest[msg.TableID] = make(map[string][]byte)
			}
			h.latest[msg.TableID][msg.Key] = msg.Data
			for client := range h.clients[msg.TableID] {
				if client == msg.Sender {
					continue
				}
				select {
				case client.Send <- msg.Data:
				default:
					close(client.Send)
					delete(h.clients[msg.TableID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request into a table-room subscription. The
// table id comes from the query string; the client id is optional and
// generated when absent.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table")
	if tableID == "" {
		http.Error(w, "missing table id", http.StatusBadRequest)
		return
	}
	clientID := r.URL.Query().Get("client")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[relay] upgrade: %v", err)
		return
	}

	client := &Client{
		ID:      clientID,
		TableID: tableID,
		Send:    make(chan []byte, 32),
		Conn:    conn,
	}
	h.Register <- client

	go h.writePump(client)
	go h.readPump(client)
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		h.Unregister <- c
		_ = c.Conn.Close()
	}()
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[relay] bad message from %s: %v", c.ID, err)
			continue
		}
		if msg.Type != TypeSet || msg.Key == "" {
			continue
		}
		h.Broadcast <- BroadcastMessage{
			TableID: c.TableID,
			Sender:  c,
			Key:     msg.Key,
			Data:    data,
		}
	}
}

func (h *Hub) writePump(c *Client) {
	for data := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

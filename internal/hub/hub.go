package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"btcchart/internal/chart"

	"github.com/gorilla/websocket"
)

// Hub pushes chart snapshots to every connected page.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan chart.Snapshot
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex

	// Initial is sent to a client right after it connects.
	Initial      func() chart.Snapshot
	// WriteTimeout bounds each write; a page that stops reading is dropped.
	WriteTimeout time.Duration
}

const defaultWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func New(initial func() chart.Snapshot) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan chart.Snapshot, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		Initial:    initial,

		WriteTimeout: defaultWriteTimeout,
	}
}

func (h *Hub) Start() {
	go h.run()
}

// Stop closes every client and ends the run loop.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mutex.Unlock()
			log.Printf("[INFO] page connected, total pages: %d", n)
			if h.Initial != nil {
				h.send(client, h.Initial())
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			n := len(h.clients)
			h.mutex.Unlock()
			log.Printf("[INFO] page disconnected, total pages: %d", n)

		case snap := <-h.broadcast:
			h.mutex.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mutex.RUnlock()

			for _, client := range clients {
				h.send(client, snap)
			}
		}
	}
}

func (h *Hub) send(client *websocket.Conn, snap chart.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[ERROR] marshal snapshot: %v", err)
		return
	}
	client.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
	if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("[WARN] write to page: %v", err)
		h.mutex.Lock()
		delete(h.clients, client)
		h.mutex.Unlock()
		client.Close()
	}
}

// HandleWebSocket upgrades the request and keeps reading until the page goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] websocket upgrade: %v", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[WARN] websocket read: %v", err)
				}
				return
			}
		}
	}()
}

// Publish queues snap for every connected page. It matches chart.Listener.
func (h *Hub) Publish(snap chart.Snapshot) {
	select {
	case h.broadcast <- snap:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

package debug

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// WebSocketHub maneja las conexiones WebSocket del dashboard de debugging
type WebSocketHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

var (
	Hub *WebSocketHub
)

func init() {
	Hub = &WebSocketHub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		clients:    make(map[*websocket.Conn]bool),
	}
	go Hub.run()
}

func (h *WebSocketHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("🔌 Dashboard conectado. Total clientes: %d", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("🔌 Dashboard desconectado. Total clientes: %d", total)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Printf("Error enviando mensaje al dashboard: %v", err)
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount retorna cuántos dashboards están conectados
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocketFiber maneja las conexiones WebSocket de Fiber
func HandleWebSocketFiber(conn *websocket.Conn) {
	Hub.register <- conn

	defer func() {
		Hub.unregister <- conn
	}()

	// El dashboard no envía comandos; solo se lee para detectar el cierre
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// LogMessage representa un mensaje de log para el dashboard
type LogMessage struct {
	Type     string                 `json:"type"`
	Source   string                 `json:"source"`
	Level    string                 `json:"level"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SendLog envía un log al dashboard
func SendLog(source, level, message string, metadata map[string]interface{}) {
	broadcast(LogMessage{
		Type:     "log",
		Source:   source,
		Level:    level,
		Message:  message,
		Metadata: metadata,
	})
}

// ScrapingStatusMessage representa el estado del scraping
type ScrapingStatusMessage struct {
	Type   string         `json:"type"`
	Status ScrapingStatus `json:"status"`
}

type ScrapingStatus struct {
	NextRide struct {
		Strategy       string `json:"strategy"`
		LastRun        int64  `json:"lastRun"`
		Status         string `json:"status"`
		ItemsProcessed int    `json:"itemsProcessed"`
		Errors         int    `json:"errors"`
	} `json:"nextRide"`
}

// SendScrapingStatus envía el estado del scraping al dashboard
func SendScrapingStatus(status ScrapingStatus) {
	broadcast(ScrapingStatusMessage{
		Type:   "scraping_status",
		Status: status,
	})
}

func broadcast(msg interface{}) {
	if Hub == nil || Hub.ClientCount() == 0 {
		return // No hay clientes conectados
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error al serializar mensaje para dashboard: %v", err)
		return
	}

	select {
	case Hub.broadcast <- data:
	default:
		// Canal lleno, saltar mensaje
	}
}

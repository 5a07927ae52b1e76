package transport

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"equalizer/internal/log"

	"github.com/gorilla/websocket"
)

// controlTimeout bounds how long Send waits for queue space for a message
// that cannot be dropped.
const controlTimeout = time.Second

// WebSocketTransport implements the Transport interface for WebSocket
// connections. Every message is broadcast as JSON to all clients on /ws.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	server    *http.Server
	timeout   time.Duration

	closeMu sync.RWMutex // Guards closed against Send.
	closed  bool
	done    chan struct{} // Closed when the broadcast loop exits.
}

// NewWebSocketTransport creates a WebSocketTransport and starts serving on addr.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := newWebSocketTransport(addr)
	wst.start()
	return wst
}

// newWebSocketTransport creates the transport and its broadcast loop without
// listening, so tests can mount Handler on their own server.
func newWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local visualizers are served from anywhere
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		timeout:   controlTimeout,
		done:      make(chan struct{}),
	}
	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP handler serving /ws.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)
	return mux
}

// start begins the WebSocket server
func (wst *WebSocketTransport) start() {
	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: wst.Handler(),
	}

	go func() {
		log.Infof("WebSocketTransport: Starting WebSocket server on %s", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	count := len(wst.clients)
	wst.clientsMu.Unlock()
	log.Infof("WebSocketTransport: Client connected, total: %d", count)

	// Clients never send; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		wst.clientsMu.Lock()
		delete(wst.clients, conn)
		count := len(wst.clients)
		wst.clientsMu.Unlock()
		conn.Close()
		log.Infof("WebSocketTransport: Client disconnected, total: %d", count)
	}()
}

// handleBroadcasts sends messages to all connected clients
func (wst *WebSocketTransport) handleBroadcasts() {
	defer close(wst.done)
	for data := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteJSON(data); err != nil {
				log.Warnf("WebSocketTransport: Error sending to client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Send queues data for broadcast. When the queue is full a setData or
// setXRange update is dropped, since the next tick carries newer data.
// Anything else waits up to the control timeout and then fails with
// ErrQueueFull.
func (wst *WebSocketTransport) Send(data any) error {
	wst.closeMu.RLock()
	defer wst.closeMu.RUnlock()
	if wst.closed {
		return ErrClosed
	}
	select {
	case wst.broadcast <- data:
		return nil
	default:
	}

	if Supersedable(data) {
		log.Debugf("WebSocketTransport: Queue full, dropping %T", data)
		return nil
	}
	timer := time.NewTimer(wst.timeout)
	defer timer.Stop()
	select {
	case wst.broadcast <- data:
		return nil
	case <-timer.C:
		log.Warnf("WebSocketTransport: Queue full for %s, dropping %T", wst.timeout, data)
		return ErrQueueFull
	}
}

// Close shuts down the WebSocket server. It is safe to call more than once.
func (wst *WebSocketTransport) Close() error {
	wst.closeMu.Lock()
	if wst.closed {
		wst.closeMu.Unlock()
		return nil
	}
	wst.closed = true
	close(wst.broadcast)
	wst.closeMu.Unlock()
	<-wst.done

	log.Infof("WebSocketTransport: Closing server")
	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)

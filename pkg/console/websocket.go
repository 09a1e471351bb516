package console

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"heatmon/pkg/crash"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	readLimit  = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Das Gerät steht im lokalen Netz, jede Herkunft ist erlaubt
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades requests to websocket console clients
type Handler struct {
	hub *Hub
	log zerolog.Logger
}

// NewHandler serves console clients from hub
func NewHandler(hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, log: log.With().Str("component", "console").Logger()}
}

// ServeHTTP registers the connection with a fresh id and pumps log lines to
// it until either side goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	id := uuid.NewString()
	send := make(chan []byte, ClientBuffer)
	if !h.hub.Register(id, send) {
		_ = conn.Close()
		return
	}
	h.log.Debug().Str("client", id).Str("remote", r.RemoteAddr).Msg("Console client connected")

	crash.SafeGo("console-write", func() { h.writePump(conn, send) })
	h.readPump(conn, id)
}

// readPump verwirft eingehende Nachrichten und erkennt den Verbindungsabbau
func (h *Handler) readPump(conn *websocket.Conn, id string) {
	// ein defekter Client darf den Dienst nicht beenden
	defer crash.RecoverAndLog("console-read")
	defer func() {
		h.hub.Unregister(id)
		_ = conn.Close()
		h.log.Debug().Str("client", id).Msg("Console client disconnected")
	}()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Str("client", id).Msg("Websocket read error")
			}
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, send <-chan []byte) {
	defer crash.RecoverAndLog("console-write")
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

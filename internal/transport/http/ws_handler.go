package http

import (
	"log"
	"net/http"

	"cyberquiz-service/internal/app"
	"github.com/gorilla/websocket"
)

// WSHandler streams availability countdown ticks to connected clients so the
// intro screen can show a live timer without polling.
type WSHandler struct {
	countdown *app.Countdown
	upgrader  websocket.Upgrader
}

func NewWSHandler(countdown *app.Countdown) *WSHandler {
	return &WSHandler{
		countdown: countdown,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and relays countdown ticks until the client
// disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticks, cancel := h.countdown.Subscribe(r.Context())
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			if err := conn.WriteJSON(tick); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

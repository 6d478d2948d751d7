package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"trivia-admin-service/internal/app"
)

// WSHandler streams hub events to connected admin dashboards. The feed is
// write-only; inbound frames are drained solely to notice disconnects.
type WSHandler struct {
	hub      *app.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *app.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades the request and forwards every published event until the
// observer goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe()
	defer cancel()

	// Hello frame tells the dashboard the subscription is live.
	if err := conn.WriteJSON(outboundMessage{Type: "connected"}); err != nil {
		log.Printf("ws write error: %v", err)
		return
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: event.Name, Payload: event.Payload}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-readerDone:
			return
		}
	}
}

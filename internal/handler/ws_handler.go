package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"uchat/internal/app/chat"
	"uchat/internal/pkg/logx"
)

// HandleWebSocket upgrades the HTTP connection and hands it over to the chat
// hub. The read pump runs on the request goroutine; the write pump gets its
// own.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote an HTTP error response.
			logx.Warn("Failed to upgrade websocket connection.", "error", err, "remote", r.RemoteAddr)
			return
		}

		client := chat.NewClient(deps.Hub, conn)

		go client.WritePump()

		deps.Hub.Register(client)

		client.ReadPump()
	}
}

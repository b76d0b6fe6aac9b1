package server

import (
	"inkwell/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventStreamHandler upgrades the request to a WebSocket and streams blog
// events (publishes, comments, reactions) to the client until it hangs up.
// The stream is read-only: inbound messages are drained and discarded.
func (s *Server) EventStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(conn)
		if err != nil {
			middleware.Logger.Warn("event stream registration rejected", "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}

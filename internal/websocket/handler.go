package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades admin page connections and serves them as hub
// clients. originPatterns is passed to the upgrader; empty means same-origin
// only.
func HandleWebSocket(hub *Hub, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.CloseNow()

		err = NewClient(hub, conn, r.RemoteAddr).Serve(r.Context())
		switch {
		case err == nil, errors.Is(err, context.Canceled):
		case ws.CloseStatus(err) == ws.StatusNormalClosure, ws.CloseStatus(err) == ws.StatusGoingAway:
		default:
			logger.Debug("websocket closed", "remote", r.RemoteAddr, "error", err)
		}
	}
}

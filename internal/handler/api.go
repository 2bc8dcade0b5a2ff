package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/fontgroup/internal/websocket"
)

// Every API response uses this envelope. Success mirrors the HTTP status.
type envelope struct {
	Success int    `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// msgFailed is shown for any failure that has no more specific message.
const msgFailed = "sorry operation failed try again"

// writeJSON encodes before writing the header so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response", "error", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(envelope{Success: status, Message: msgFailed})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: http.StatusOK, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: status, Message: message})
}

var errMissingID = errors.New("missing id")

// parseID reads the id from the query string, then from a {id} path value.
func parseID(r *http.Request) (int64, error) {
	s := r.URL.Query().Get("id")
	if s == "" {
		s = r.PathValue("id")
	}
	if s == "" {
		return 0, errMissingID
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

type broadcaster struct {
	hub *websocket.Hub
}

func (b broadcaster) broadcast(msg websocket.Message) {
	if b.hub != nil {
		b.hub.Broadcast(msg)
	}
}

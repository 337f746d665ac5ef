package roster

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cakedek/myitemlibrary/internal/validate"
)

// Event types accepted on the presence socket.
const (
	EventJoin  = "join"
	EventLeave = "leave"
	EventSync  = "sync"
)

const maxEventSize = 64 << 10

// Event is a single presence update sent by the game runtime.
type Event struct {
	Type    string   `json:"type"`
	Player  string   `json:"player,omitempty"`
	Players []string `json:"players,omitempty"`
}

// Reply is written back for every event received.
type Reply struct {
	Type   string `json:"type,omitempty"`
	Online int    `json:"online,omitempty"`
	Error  string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// PresenceHandler upgrades to a WebSocket and applies presence events to
// Roster. Closing the socket leaves the roster untouched.
type PresenceHandler struct {
	Roster *Memory
}

func (h *PresenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("presence upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer ws.Close()

	ws.SetReadLimit(maxEventSize)
	slog.Info("presence feed connected", "remote", r.RemoteAddr)

	for {
		var ev Event
		if err := ws.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("presence feed read failed", "error", err, "remote", r.RemoteAddr)
			}
			break
		}

		reply := Reply{Type: "ack"}
		if err := h.apply(ev); err != nil {
			reply = Reply{Error: err.Error()}
		} else {
			reply.Online = h.Roster.Len()
		}

		if err := ws.WriteJSON(reply); err != nil {
			slog.Warn("presence feed write failed", "error", err, "remote", r.RemoteAddr)
			break
		}
	}

	slog.Info("presence feed disconnected", "remote", r.RemoteAddr, "online", h.Roster.Len())
}

func (h *PresenceHandler) apply(ev Event) error {
	switch ev.Type {
	case EventJoin, EventLeave:
		if !validate.IsValidPlayerName(ev.Player) {
			return fmt.Errorf("invalid player name %q", ev.Player)
		}
		if ev.Type == EventJoin {
			h.Roster.Join(ev.Player)
		} else {
			h.Roster.Leave(ev.Player)
		}
	case EventSync:
		for _, p := range ev.Players {
			if !validate.IsValidPlayerName(p) {
				return fmt.Errorf("invalid player name %q", p)
			}
		}
		h.Roster.Reset(ev.Players)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// README: Websocket endpoint: join, captain location ingest, disconnect.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"swiftcab/internal/realtime"
	"swiftcab/internal/types"
)

type WSHandler struct {
	gateway  *realtime.Gateway
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWSHandler(gateway *realtime.Gateway, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the app origin; the token
			// already gates everything that matters.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// inboundMessage is the client → server wire shape.
type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinMsg struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
}

// locationMsg mirrors the mobile clients, which send latitude under
// the misspelled key "ltd". Kept for wire compatibility.
type locationMsg struct {
	CaptainID string `json:"captainId"`
	Location  *struct {
		Ltd *float64 `json:"ltd"`
		Lng *float64 `json:"lng"`
	} `json:"location"`
}

// Handle upgrades the request and pumps messages until the peer goes
// away. The first useful message must be a join; everything before it
// is answered with an error event.
func (h *WSHandler) Handle(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	conn := realtime.NewConn(ws)
	defer conn.Close()

	ctx := c.Request.Context()
	var connectionID string
	defer func() {
		if connectionID != "" {
			h.gateway.Unregister(ctx, connectionID)
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(conn, "malformed message")
			continue
		}

		switch msg.Event {
		case "join":
			var join joinMsg
			if err := json.Unmarshal(msg.Data, &join); err != nil || join.UserID == "" {
				h.sendError(conn, "join requires userId")
				continue
			}
			id, err := h.gateway.Register(ctx, types.ID(join.UserID), conn)
			if err != nil {
				h.sendError(conn, "unknown account")
				continue
			}
			if connectionID != "" {
				h.gateway.Unregister(ctx, connectionID)
			}
			connectionID = id

		case "update-location-captain":
			var loc locationMsg
			if err := json.Unmarshal(msg.Data, &loc); err != nil ||
				loc.CaptainID == "" || loc.Location == nil ||
				loc.Location.Ltd == nil || loc.Location.Lng == nil {
				h.sendError(conn, "invalid location payload")
				continue
			}
			p := types.Point{Lat: *loc.Location.Ltd, Lng: *loc.Location.Lng}
			if err := h.gateway.UpdateCaptainLocation(ctx, types.ID(loc.CaptainID), p); err != nil {
				if errors.Is(err, realtime.ErrBadLocation) {
					h.sendError(conn, "invalid location payload")
					continue
				}
				h.logger.Warn("location update failed", "captain_id", loc.CaptainID, "error", err)
			}

		default:
			h.sendError(conn, "unknown event")
		}
	}
}

func (h *WSHandler) sendError(conn realtime.Conn, msg string) {
	_ = conn.WriteJSON(realtime.Envelope{
		Event: realtime.EventError,
		Data:  map[string]string{"message": msg},
	})
}

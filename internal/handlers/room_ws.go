// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codebattle/arena/internal/arena"
	"github.com/codebattle/arena/internal/auth"
	"github.com/codebattle/arena/internal/middleware"
)

// RoomWSHandler upgrades the connection for one room's event stream:
// /room/ws/{room_id}. The client receives joined/submitted/resolved events as
// JSON; the stream closes normally after the resolution event. Failures after
// the upgrade close with the codes in ws_codes.go.
func RoomWSHandler(logger *logrus.Logger, s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimPrefix(r.URL.Path, "/room/ws/")
		roomID, err := uuid.Parse(strings.Trim(idStr, "/"))
		if err != nil {
			http.Error(w, "invalid room_id in path (/room/ws/{room_id})", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"arena"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", roomID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		if c.Subprotocol() != "arena" {
			c.Close(websocket.StatusCode(BadSubprotocolError), "client must use the 'arena' subprotocol")
			return
		}

		token := extractCookieToken(r.Header.Get("Cookie"), "auth_token")
		userIDStr, err := auth.AuthenticateJWT(token)
		if err != nil {
			c.Close(websocket.StatusCode(InvalidAuthTokenError), "authentication failed")
			return
		}
		if _, err := uuid.Parse(userIDStr); err != nil {
			c.Close(websocket.StatusCode(InvalidUserIDError), "malformed user id in token")
			return
		}

		events, cancelSub, err := s.Engine.SubscribeRoom(roomID, 16)
		if err != nil {
			c.Close(websocket.StatusCode(InvalidRoomIDError), "room not found")
			return
		}
		defer cancelSub()

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Drain client frames so we notice a close; the stream is server-push
		// only.
		go func() {
			defer cancel()
			for {
				if _, _, err := c.Read(ctx); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
				return
			case ev, ok := <-events:
				if !ok {
					c.Close(websocket.StatusNormalClosure, "room stream ended")
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					logger.WithError(err).Warn("failed to encode room event")
					continue
				}
				if err := c.Write(ctx, websocket.MessageText, data); err != nil {
					middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
					return
				}
				if ev.Type == arena.EventMatchResolved {
					c.Close(websocket.StatusNormalClosure, "match resolved")
					middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
					return
				}
			}
		}
	}
}

package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/reelfeed/server/internal/service/feed"
)

func (c *controller) watchFeed(w http.ResponseWriter, r *http.Request) {
	videoId := chi.URLParam(r, "video-id")
	if videoId == "" {
		c.logger.DebugContext(r.Context(), "empty video id")
		return
	}

	// the browser cannot set headers on a websocket handshake, so the
	// upstream token travels as a query param
	userId := r.URL.Query().Get("user-id")
	userToken := r.URL.Query().Get("token")

	created, err := c.feedService.CreateSession(r.Context(), &feed.CreateSessionParams{
		VideoId:   videoId,
		UserId:    userId,
		UserToken: userToken,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to create session", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		c.disconnect(r.Context(), created.SessionId, nil)
		return
	}
	defer c.disconnect(r.Context(), created.SessionId, conn)
	defer conn.Close()

	if err := c.connRepo.Add(conn, created.SessionId); err != nil {
		c.logger.WarnContext(r.Context(), "failed to register connection", "error", err)
		return
	}

	if err := c.writeToConn(r.Context(), conn, &Output{
		Type: "FEED_STATE",
		Payload: map[string]any{
			"session_token": created.AuthToken,
			"title":         created.Title,
			"display_name":  created.DisplayName,
			"cover":         created.Cover,
			"view":          created.View,
		},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write json", "error", err)
		return
	}

	ctx := context.WithValue(r.Context(), sessionIdCtxKey, created.SessionId)

	if err := c.wsmux.ServeConn(ctx, conn, c.onWSError); err != nil {
		c.logger.InfoContext(r.Context(), "connection closed", "error", err)
		return
	}
}

func (c *controller) disconnect(ctx context.Context, sessionId string, conn *websocket.Conn) {
	c.clearTouch(sessionId)

	if err := c.connRepo.RemoveBySessionId(sessionId); err != nil {
		c.logger.DebugContext(ctx, "failed to remove connection", "error", err)
	}

	if err := c.feedService.DisconnectSession(ctx, sessionId); err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect session", "error", err)
	}

	if conn != nil {
		c.sender.Forget(conn)
	}
}

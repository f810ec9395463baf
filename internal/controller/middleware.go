package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/reelfeed/server/pkg/ctxlogger"
	"github.com/reelfeed/server/pkg/wsrouter"
)

func (c *controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.generateTimeBasedId()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c *controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

func (c *controller) messageLoggingMw(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
	return func(ctx context.Context, conn *websocket.Conn, payload any) error {
		ctx = ctxlogger.AppendCtx(ctx, slog.String("message_id", c.generateTimeBasedId()))
		c.logger.DebugContext(ctx, "message",
			"message_type", wsrouter.GetMessageTypeFromCtx(ctx),
		)

		return next(ctx, conn, payload)
	}
}

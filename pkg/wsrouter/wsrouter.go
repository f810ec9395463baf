package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

type WSRouter struct {
	routes      map[string]HandlerFunc[json.RawMessage]
	middlewares []Middleware
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc[json.RawMessage])}
}

func (r *WSRouter) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// Handle registers a typed handler for a message type. The payload is
// unmarshalled into T before middlewares and the handler run.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var typed T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &typed); err != nil {
				return fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		wrapped := func(ctx context.Context, conn *websocket.Conn, payload any) error {
			return handler(ctx, conn, payload.(T))
		}
		for i := len(r.middlewares) - 1; i >= 0; i-- {
			wrapped = r.middlewares[i](wrapped)
		}

		return wrapped(ctx, conn, typed)
	}
}

// ServeConn reads messages from the connection until the read fails and
// routes each one to its registered handler. Handler errors are reported
// through onError and do not terminate the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn, onError func(ctx context.Context, conn *websocket.Conn, err error)) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, ok := r.routes[msg.Type]
		if !ok {
			if onError != nil {
				onError(ctx, conn, fmt.Errorf("unknown message type: %s", msg.Type))
			}
			continue
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)
		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			if onError != nil {
				onError(msgCtx, conn, err)
			}
		}
	}
}

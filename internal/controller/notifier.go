package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/reelfeed/server/internal/service/feed"
)

type iConnLookup interface {
	GetConn(sessionId string) (*websocket.Conn, error)
}

// GateNotifier pushes asynchronous gate outcomes to the session's
// websocket connection. A session that disconnected before its outcome
// arrived is silently skipped. All connection writes go through it, the
// handler loop included, since gorilla allows one concurrent writer per
// connection.
type GateNotifier struct {
	connRepo iConnLookup
	logger   *slog.Logger

	mu      sync.Mutex
	writers map[*websocket.Conn]*sync.Mutex
}

func NewGateNotifier(connRepo iConnLookup, logger *slog.Logger) *GateNotifier {
	return &GateNotifier{
		connRepo: connRepo,
		logger:   logger,
		writers:  make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (n *GateNotifier) writer(conn *websocket.Conn) *sync.Mutex {
	n.mu.Lock()
	defer n.mu.Unlock()

	w, ok := n.writers[conn]
	if !ok {
		w = &sync.Mutex{}
		n.writers[conn] = w
	}

	return w
}

func (n *GateNotifier) Write(conn *websocket.Conn, output *Output) error {
	w := n.writer(conn)
	w.Lock()
	defer w.Unlock()

	return conn.WriteJSON(output)
}

// Forget drops the connection's write lock. Call after the session's
// gate is cancelled, once no more frames can be written to the
// connection.
func (n *GateNotifier) Forget(conn *websocket.Conn) {
	n.mu.Lock()
	delete(n.writers, conn)
	n.mu.Unlock()
}

func (n *GateNotifier) Notify(ctx context.Context, sessionId string, event feed.GateEvent) {
	conn, err := n.connRepo.GetConn(sessionId)
	if err != nil {
		n.logger.DebugContext(ctx, "no connection for gate event",
			"session_id", sessionId, "event_type", event.Type)
		return
	}

	output := Output{Type: event.Type}
	switch event.Type {
	case feed.GateEventUnlocked:
		output.Payload = map[string]any{"episodes": event.Episodes}
	case feed.GateEventError:
		output.Payload = map[string]any{"message": event.Error}
	}

	if err := n.Write(conn, &output); err != nil {
		n.logger.WarnContext(ctx, "failed to write gate event",
			"session_id", sessionId, "event_type", event.Type, "error", err)
	}
}

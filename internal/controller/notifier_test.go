package controller

import (
	"log/slog"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// Write locks are keyed per connection so one stalled client cannot
// hold up frames to the others.
func TestGateNotifierWriteLocks(t *testing.T) {
	n := NewGateNotifier(nil, slog.Default())

	a := &websocket.Conn{}
	b := &websocket.Conn{}

	assert.Same(t, n.writer(a), n.writer(a))
	assert.NotSame(t, n.writer(a), n.writer(b))

	n.Forget(a)

	n.mu.Lock()
	_, kept := n.writers[a]
	n.mu.Unlock()
	assert.False(t, kept)
}

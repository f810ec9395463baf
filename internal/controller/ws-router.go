package controller

import (
	"github.com/reelfeed/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.messageLoggingMw)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)

	// gestures
	wsrouter.Handle(mux, "TOUCH_START", c.handleTouchStart)
	wsrouter.Handle(mux, "TOUCH_END", c.handleTouchEnd)
	wsrouter.Handle(mux, "KEY_PRESS", c.handleKeyPress)

	// playback
	wsrouter.Handle(mux, "FIRST_PLAY", c.handleFirstPlay)
	wsrouter.Handle(mux, "SELECT_EPISODE", c.handleSelectEpisode)

	// unlock gate
	wsrouter.Handle(mux, "UNLOCK_OPTION", c.handleUnlockOption)
	wsrouter.Handle(mux, "DISMISS_GATE", c.handleDismissGate)

	return mux
}

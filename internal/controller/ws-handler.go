package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/reelfeed/server/internal/service/feed"
	"github.com/reelfeed/server/pkg/wsrouter"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type EmptyStruct struct{}

func (es *EmptyStruct) UnmarshalJSON([]byte) error {
	return nil
}

func (c *controller) handleAlive(ctx context.Context, conn *websocket.Conn, input EmptyStruct) error {
	return nil
}

type TouchStartInput struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	At int64   `json:"at"`
}

// handleTouchStart remembers the touch origin per session until the
// matching TOUCH_END arrives.
func (c *controller) handleTouchStart(ctx context.Context, conn *websocket.Conn, input TouchStartInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	c.touchMu.Lock()
	c.touchStarts[sessionId] = feed.TouchPoint{X: input.X, Y: input.Y, At: input.At}
	c.touchMu.Unlock()

	return nil
}

type TouchEndInput struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	At int64   `json:"at"`
}

func (c *controller) handleTouchEnd(ctx context.Context, conn *websocket.Conn, input TouchEndInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	c.touchMu.Lock()
	start, ok := c.touchStarts[sessionId]
	delete(c.touchStarts, sessionId)
	c.touchMu.Unlock()
	if !ok {
		return errors.New("touch end without touch start")
	}

	resp, err := c.feedService.HandleTouch(ctx, &feed.TouchParams{
		SessionId: sessionId,
		Start:     start,
		End:       feed.TouchPoint{X: input.X, Y: input.Y, At: input.At},
	})
	if err != nil {
		return fmt.Errorf("failed to handle touch: %w", err)
	}

	return c.writeGestureOutcome(ctx, conn, &resp)
}

type KeyPressInput struct {
	Key string `json:"key"`
}

func (c *controller) handleKeyPress(ctx context.Context, conn *websocket.Conn, input KeyPressInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	resp, err := c.feedService.HandleKey(ctx, &feed.KeyParams{
		SessionId: sessionId,
		Key:       input.Key,
	})
	if err != nil {
		return fmt.Errorf("failed to handle key: %w", err)
	}

	return c.writeGestureOutcome(ctx, conn, &resp)
}

func (c *controller) writeGestureOutcome(ctx context.Context, conn *websocket.Conn, resp *feed.GestureResponse) error {
	if resp.Move != nil {
		if err := c.writeToConn(ctx, conn, &Output{
			Type: "FEED_CHANGED",
			Payload: map[string]any{
				"moved": resp.Move.Moved,
				"view":  resp.Move.View,
			},
		}); err != nil {
			return fmt.Errorf("failed to write feed changed: %w", err)
		}

		if resp.Move.Gate != nil {
			if err := c.writeToConn(ctx, conn, &Output{
				Type:    "GATE_OPENED",
				Payload: resp.Move.Gate,
			}); err != nil {
				return fmt.Errorf("failed to write gate opened: %w", err)
			}
		}

		return nil
	}

	if resp.View != nil {
		if err := c.writeToConn(ctx, conn, &Output{
			Type: "PLAYBACK_CHANGED",
			Payload: map[string]any{
				"view": resp.View,
			},
		}); err != nil {
			return fmt.Errorf("failed to write playback changed: %w", err)
		}
	}

	return nil
}

func (c *controller) handleFirstPlay(ctx context.Context, conn *websocket.Conn, input EmptyStruct) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	view, err := c.feedService.FirstPlay(ctx, sessionId)
	if err != nil {
		return fmt.Errorf("failed to handle first play: %w", err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "PLAYBACK_CHANGED",
		Payload: map[string]any{
			"view": view,
		},
	}); err != nil {
		return fmt.Errorf("failed to write playback changed: %w", err)
	}

	return nil
}

type SelectEpisodeInput struct {
	EpisodeId string `json:"episode_id"`
}

func (c *controller) handleSelectEpisode(ctx context.Context, conn *websocket.Conn, input SelectEpisodeInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	resp, err := c.feedService.SelectEpisode(ctx, &feed.SelectEpisodeParams{
		SessionId: sessionId,
		EpisodeId: input.EpisodeId,
	})
	if err != nil {
		return fmt.Errorf("failed to select episode: %w", err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "FEED_CHANGED",
		Payload: map[string]any{
			"moved": resp.Gate == nil,
			"view":  resp.View,
		},
	}); err != nil {
		return fmt.Errorf("failed to write feed changed: %w", err)
	}

	if resp.Gate != nil {
		if err := c.writeToConn(ctx, conn, &Output{
			Type:    "GATE_OPENED",
			Payload: resp.Gate,
		}); err != nil {
			return fmt.Errorf("failed to write gate opened: %w", err)
		}
	}

	return nil
}

type UnlockOptionInput struct {
	EpisodeId string `json:"episode_id"`
	Option    int    `json:"option"`
}

func (c *controller) handleUnlockOption(ctx context.Context, conn *websocket.Conn, input UnlockOptionInput) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	resp, err := c.feedService.Unlock(ctx, &feed.UnlockParams{
		SessionId: sessionId,
		EpisodeId: input.EpisodeId,
		Option:    input.Option,
	})
	if err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}

	switch {
	case resp.GuestRequired:
		return c.writeToConn(ctx, conn, &Output{Type: "GUEST_REQUIRED"})

	case resp.RechargeRequired:
		return c.writeToConn(ctx, conn, &Output{Type: "RECHARGE_REQUIRED"})

	case resp.Unlocked:
		return c.writeToConn(ctx, conn, &Output{
			Type: "UNLOCKED",
			Payload: map[string]any{
				"episodes": resp.Episodes,
			},
		})

	default:
		return c.writeToConn(ctx, conn, &Output{
			Type: "ORDER_CREATED",
			Payload: map[string]any{
				"order_id": resp.OrderId,
				"pay_url":  resp.PayURL,
			},
		})
	}
}

func (c *controller) handleDismissGate(ctx context.Context, conn *websocket.Conn, input EmptyStruct) error {
	sessionId := c.getSessionIdFromCtx(ctx)

	if err := c.feedService.DismissGate(ctx, sessionId); err != nil {
		return fmt.Errorf("failed to dismiss gate: %w", err)
	}

	return nil
}

func (c *controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) error {
	return c.sender.Write(conn, output)
}

func (c *controller) onWSError(ctx context.Context, conn *websocket.Conn, err error) {
	c.logger.DebugContext(ctx, "failed to handle message",
		"message_type", wsrouter.GetMessageTypeFromCtx(ctx),
		"error", err,
	)

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "ERROR",
		Payload: map[string]any{
			"message": err.Error(),
		},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", err)
	}
}

func (c *controller) clearTouch(sessionId string) {
	c.touchMu.Lock()
	delete(c.touchStarts, sessionId)
	c.touchMu.Unlock()
}

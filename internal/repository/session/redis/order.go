package redis

import (
	"context"
	"fmt"

	"github.com/reelfeed/server/internal/repository/session"
)

func (r repo) SetPendingOrder(ctx context.Context, params *session.SetPendingOrderParams) error {
	orderKey := r.getOrderKey(params.SessionId)
	if err := r.rc.HSet(ctx, orderKey, params.Order).Err(); err != nil {
		return fmt.Errorf("failed to set pending order: %w", err)
	}

	r.rc.Expire(ctx, orderKey, r.expireDuration)

	return nil
}

func (r repo) GetPendingOrder(ctx context.Context, sessionId string) (session.PendingOrder, error) {
	orderKey := r.getOrderKey(sessionId)

	res, err := r.rc.Exists(ctx, orderKey).Result()
	if err != nil {
		return session.PendingOrder{}, fmt.Errorf("failed to check if order exists: %w", err)
	}
	if res == 0 {
		return session.PendingOrder{}, session.ErrOrderNotFound
	}

	var order session.PendingOrder
	if err := r.rc.HGetAll(ctx, orderKey).Scan(&order); err != nil {
		return session.PendingOrder{}, fmt.Errorf("failed to get pending order: %w", err)
	}

	return order, nil
}

func (r repo) RemovePendingOrder(ctx context.Context, sessionId string) error {
	res, err := r.rc.Del(ctx, r.getOrderKey(sessionId)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove pending order: %w", err)
	}

	if res == 0 {
		return session.ErrOrderNotFound
	}

	return nil
}

package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/reelfeed/server/internal/repository/session"
)

// Play URLs are merged last-write-wins; a slower fetch overwriting a faster
// one is acceptable since URLs do not change within a session.
func (r repo) SetPlayURL(ctx context.Context, params *session.SetPlayURLParams) error {
	playURLsKey := r.getPlayURLsKey(params.SessionId)
	if err := r.rc.HSet(ctx, playURLsKey, params.EpisodeId, params.PlayURL).Err(); err != nil {
		return fmt.Errorf("failed to set play url: %w", err)
	}

	r.rc.Expire(ctx, playURLsKey, r.expireDuration)

	return nil
}

func (r repo) GetPlayURL(ctx context.Context, sessionId, episodeId string) (string, bool, error) {
	playURL, err := r.rc.HGet(ctx, r.getPlayURLsKey(sessionId), episodeId).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get play url: %w", err)
	}

	return playURL, true, nil
}

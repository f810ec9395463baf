package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reelfeed/server/internal/repository/session"
)

func (r repo) SetFeed(ctx context.Context, params *session.SetFeedParams) error {
	pipe := r.rc.TxPipeline()

	feed := session.Feed{
		VideoId:            params.VideoId,
		CurrentIndex:       params.CurrentIndex,
		EpisodeCount:       len(params.Episodes),
		FreeEpisodes:       params.FreeEpisodes,
		SingleEpisodePrice: params.SingleEpisodePrice,
		AllEpisodesPrice:   params.AllEpisodesPrice,
		UserId:             params.UserId,
		UserToken:          params.UserToken,
	}
	feedKey := r.getFeedKey(params.SessionId)
	pipe.HSet(ctx, feedKey, feed)
	pipe.Expire(ctx, feedKey, r.expireDuration)

	r.setEpisodesPipe(ctx, pipe, params.SessionId, params.Episodes)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set feed: %w", err)
	}

	return nil
}

func (r repo) GetFeed(ctx context.Context, sessionId string) (session.Feed, error) {
	feedKey := r.getFeedKey(sessionId)

	res, err := r.rc.Exists(ctx, feedKey).Result()
	if err != nil {
		return session.Feed{}, fmt.Errorf("failed to check if feed exists: %w", err)
	}
	if res == 0 {
		return session.Feed{}, session.ErrSessionNotFound
	}

	var feed session.Feed
	if err := r.rc.HGetAll(ctx, feedKey).Scan(&feed); err != nil {
		return session.Feed{}, fmt.Errorf("failed to get feed: %w", err)
	}

	r.rc.Expire(ctx, feedKey, r.expireDuration)

	return feed, nil
}

func (r repo) UpdateCurrentIndex(ctx context.Context, sessionId string, index int) error {
	feedKey := r.getFeedKey(sessionId)
	cmd := r.rc.Exists(ctx, feedKey)
	if err := cmd.Err(); err != nil {
		return err
	}

	if cmd.Val() == 0 {
		return session.ErrSessionNotFound
	}

	if err := r.rc.HSet(ctx, feedKey, "current_index", index).Err(); err != nil {
		return err
	}

	r.rc.Expire(ctx, feedKey, r.expireDuration)

	return nil
}

func (r repo) SetUser(ctx context.Context, params *session.SetUserParams) error {
	feedKey := r.getFeedKey(params.SessionId)
	cmd := r.rc.Exists(ctx, feedKey)
	if err := cmd.Err(); err != nil {
		return err
	}

	if cmd.Val() == 0 {
		return session.ErrSessionNotFound
	}

	if err := r.rc.HSet(ctx, feedKey,
		"user_id", params.UserId,
		"user_token", params.UserToken,
	).Err(); err != nil {
		return err
	}

	r.rc.Expire(ctx, feedKey, r.expireDuration)

	return nil
}

func (r repo) SetInteracted(ctx context.Context, sessionId string) error {
	interactedKey := r.getInteractedKey(sessionId)
	if err := r.rc.Set(ctx, interactedKey, "1", r.expireDuration).Err(); err != nil {
		return fmt.Errorf("failed to set interacted: %w", err)
	}

	return nil
}

func (r repo) IsInteracted(ctx context.Context, sessionId string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.getInteractedKey(sessionId)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if interacted: %w", err)
	}

	return res > 0, nil
}

// AcquireTransitionLock returns false while a previous transition is still
// in flight. The lock expires on its own after ttl.
func (r repo) AcquireTransitionLock(ctx context.Context, sessionId string, ttl time.Duration) (bool, error) {
	ok, err := r.rc.SetNX(ctx, r.getTransitionKey(sessionId), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire transition lock: %w", err)
	}

	return ok, nil
}

func (r repo) RemoveSession(ctx context.Context, sessionId string) error {
	episodeIds, err := r.rc.ZRange(ctx, r.getEpisodeListKey(sessionId), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to get episode ids: %w", err)
	}

	keys := []string{
		r.getFeedKey(sessionId),
		r.getEpisodeListKey(sessionId),
		r.getPlayURLsKey(sessionId),
		r.getOrderKey(sessionId),
		r.getTransitionKey(sessionId),
		r.getInteractedKey(sessionId),
	}
	for _, episodeId := range episodeIds {
		keys = append(keys, r.getEpisodeKey(sessionId, episodeId))
	}

	if err := r.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	return nil
}

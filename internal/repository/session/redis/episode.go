package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/reelfeed/server/internal/repository/session"
)

func (r repo) setEpisodesPipe(ctx context.Context, pipe redis.Pipeliner, sessionId string, episodes []session.Episode) {
	episodeListKey := r.getEpisodeListKey(sessionId)
	pipe.Del(ctx, episodeListKey)

	for i, episode := range episodes {
		pipe.ZAdd(ctx, episodeListKey, redis.Z{Score: float64(i), Member: episode.Id})

		episodeKey := r.getEpisodeKey(sessionId, episode.Id)
		pipe.HSet(ctx, episodeKey, episode)
		pipe.Expire(ctx, episodeKey, r.expireDuration)
	}
	pipe.Expire(ctx, episodeListKey, r.expireDuration)
}

// SetEpisodes replaces the ordered episode list, e.g. after an entitlement
// refresh flips lock flags.
func (r repo) SetEpisodes(ctx context.Context, params *session.SetEpisodesParams) error {
	pipe := r.rc.TxPipeline()
	r.setEpisodesPipe(ctx, pipe, params.SessionId, params.Episodes)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set episodes: %w", err)
	}

	return nil
}

func (r repo) GetEpisodes(ctx context.Context, sessionId string) ([]session.Episode, error) {
	episodeIds, err := r.rc.ZRange(ctx, r.getEpisodeListKey(sessionId), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get episode ids: %w", err)
	}

	episodes := make([]session.Episode, 0, len(episodeIds))
	for _, episodeId := range episodeIds {
		episode, err := r.GetEpisode(ctx, sessionId, episodeId)
		if err != nil {
			return nil, err
		}

		episodes = append(episodes, episode)
	}

	return episodes, nil
}

func (r repo) GetEpisode(ctx context.Context, sessionId, episodeId string) (session.Episode, error) {
	episodeKey := r.getEpisodeKey(sessionId, episodeId)

	res, err := r.rc.Exists(ctx, episodeKey).Result()
	if err != nil {
		return session.Episode{}, fmt.Errorf("failed to check if episode exists: %w", err)
	}
	if res == 0 {
		return session.Episode{}, session.ErrEpisodeNotFound
	}

	var episode session.Episode
	if err := r.rc.HGetAll(ctx, episodeKey).Scan(&episode); err != nil {
		return session.Episode{}, fmt.Errorf("failed to get episode: %w", err)
	}

	r.rc.Expire(ctx, episodeKey, r.expireDuration)

	return episode, nil
}

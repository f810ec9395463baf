package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
	}
}

func (r repo) getFeedKey(sessionId string) string {
	return "session:" + sessionId + ":feed"
}

func (r repo) getEpisodeListKey(sessionId string) string {
	return "session:" + sessionId + ":episode-list"
}

func (r repo) getEpisodeKey(sessionId, episodeId string) string {
	return "session:" + sessionId + ":episode:" + episodeId
}

func (r repo) getPlayURLsKey(sessionId string) string {
	return "session:" + sessionId + ":playurls"
}

func (r repo) getOrderKey(sessionId string) string {
	return "session:" + sessionId + ":order"
}

func (r repo) getTransitionKey(sessionId string) string {
	return "session:" + sessionId + ":transition"
}

func (r repo) getInteractedKey(sessionId string) string {
	return "session:" + sessionId + ":interacted"
}

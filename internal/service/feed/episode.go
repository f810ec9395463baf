package feed

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/reelfeed/server/internal/repository/session"
)

// The upstream encodes the episode number as the last three digits of the
// mp4 filename. It is only a heuristic overlay: the server-declared lock
// flag always wins, and a disagreement is logged instead of resolved.
var episodeNumberRe = regexp.MustCompile(`(\d{3})\.mp4$`)

func episodeNumberFromURL(playURL string) int {
	withoutParams, _, _ := strings.Cut(playURL, "?")

	match := episodeNumberRe.FindStringSubmatch(withoutParams)
	if match == nil {
		return 0
	}

	number, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}

	return number
}

func (s *service) flagEntitlementDiscrepancy(ctx context.Context, episode session.Episode, playURL string, freeEpisodes int) {
	if !episode.IsLocked || playURL == "" || freeEpisodes <= 0 {
		return
	}

	number := episodeNumberFromURL(playURL)
	if number > 0 && number <= freeEpisodes {
		s.logger.WarnContext(ctx, "episode is free by url heuristic but locked by entitlement",
			"episode_id", episode.Id,
			"episode_number", number,
			"free_episodes", freeEpisodes,
		)
	}
}

package drama

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) GetVideo(ctx context.Context, videoId string) (Video, error) {
	var video Video
	if err := c.do(ctx, http.MethodGet, "/videos/"+videoId, "", nil, &video); err != nil {
		return Video{}, fmt.Errorf("failed to get video: %w", err)
	}

	return video, nil
}

// GetUserEpisodes returns the episode list with entitlement-aware lock
// flags. Token is optional; without it every paid episode is locked.
func (c *Client) GetUserEpisodes(ctx context.Context, videoId, token string) (UserEpisodes, error) {
	var userEpisodes UserEpisodes
	if err := c.do(ctx, http.MethodGet, "/videos/"+videoId+"/user-episodes", token, nil, &userEpisodes); err != nil {
		return UserEpisodes{}, fmt.Errorf("failed to get user episodes: %w", err)
	}

	return userEpisodes, nil
}

func (c *Client) GetEpisodePlayURL(ctx context.Context, videoId, episodeId string) (string, error) {
	var source PlaySource
	if err := c.do(ctx, http.MethodGet, "/videos/"+videoId+"/"+episodeId, "", nil, &source); err != nil {
		return "", fmt.Errorf("failed to get episode play url: %w", err)
	}

	return source.PlayURL, nil
}

func (c *Client) GetHomeConfig(ctx context.Context) (HomeConfig, error) {
	var homeConfig HomeConfig
	if err := c.do(ctx, http.MethodGet, "/home-config", "", nil, &homeConfig); err != nil {
		return HomeConfig{}, fmt.Errorf("failed to get home config: %w", err)
	}

	return homeConfig, nil
}

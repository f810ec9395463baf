package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeed/server/internal/repository/session"
)

func TestEpisodeNumberFromURL(t *testing.T) {
	tests := []struct {
		name    string
		playURL string
		want    int
	}{
		{
			name:    "plain filename",
			playURL: "https://cdn.example/drama/001.mp4",
			want:    1,
		},
		{
			name:    "query string stripped",
			playURL: "https://cdn.example/drama/012.mp4?sign=abc&expires=1756512000",
			want:    12,
		},
		{
			name:    "only the last three digits count",
			playURL: "https://cdn.example/drama/1024.mp4",
			want:    24,
		},
		{
			name:    "fewer than three digits",
			playURL: "https://cdn.example/drama/12.mp4",
			want:    0,
		},
		{
			name:    "no digits",
			playURL: "https://cdn.example/drama/intro.mp4",
			want:    0,
		},
		{
			name:    "not an mp4",
			playURL: "https://cdn.example/drama/003.m3u8",
			want:    0,
		},
		{
			name:    "empty",
			playURL: "",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, episodeNumberFromURL(tt.playURL))
		})
	}
}

// The filename heuristic never overrides the entitlement flag. An episode
// the server declares locked stays locked in the view even when its play
// url parses inside the free range.
func TestLockedEpisodeStaysLockedDespiteFreeURL(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(3, 2)
	s, _, _ := setupService(t, client, nil)

	created, err := s.CreateSession(ctx, &CreateSessionParams{
		VideoId:   "video-1",
		UserId:    "user-1",
		UserToken: "token-1",
	})
	require.NoError(t, err)

	err = s.sessionRepo.SetPlayURL(ctx, &session.SetPlayURLParams{
		SessionId: created.SessionId,
		EpisodeId: "ep-2",
		PlayURL:   "https://cdn.example/drama/001.mp4",
	})
	require.NoError(t, err)

	view, err := s.GetState(ctx, created.SessionId)
	require.NoError(t, err)

	var slot *Slot
	for i := range view.Slots {
		if view.Slots[i].EpisodeId == "ep-2" {
			slot = &view.Slots[i]
		}
	}
	require.NotNil(t, slot)
	assert.True(t, slot.IsLocked)
	assert.Equal(t, SlotIdle, slot.State)
}

package drama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(&Config{
		BaseURL:      url,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	})
}

func TestGetUserEpisodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/v1/user-episodes", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"episodes":[{"id":"e1","title":"EP01","isLocked":false},{"id":"e2","title":"EP02","isLocked":true}],"video":{"id":"v1","title":"t","singleEpisodePrice":2.5,"allEpisodesPrice":19.9}}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	userEpisodes, err := c.GetUserEpisodes(context.Background(), "v1", "tok")
	require.NoError(t, err)
	assert.Len(t, userEpisodes.Episodes, 2)
	assert.False(t, userEpisodes.Episodes[0].IsLocked)
	assert.True(t, userEpisodes.Episodes[1].IsLocked)
	assert.Equal(t, 2.5, userEpisodes.Video.SingleEpisodePrice)
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		statusCode int
		want       error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusInternalServerError, ErrServer},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.statusCode)
			w.Write([]byte(`{"success":false,"error":"nope"}`))
		}))

		c := newTestClient(srv.URL)
		_, err := c.GetVideo(context.Background(), "v1")
		require.Error(t, err)
		assert.ErrorIs(t, err, tt.want, "status %d", tt.statusCode)

		srv.Close()
	}
}

func TestBalanceUnlockInsufficientBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/balance/unlock-single-episode", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"insufficient balance"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.BalanceUnlockSingleEpisode(context.Background(), "tok", &UnlockEpisodeParams{
		UserId:    "u1",
		EpisodeId: "e2",
		Price:     2.5,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestQueryOrderPaid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"status":2}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	status, err := c.QueryOrder(context.Background(), "tok", "order-1")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPaid, status)
}

func TestUnsuccessfulEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"video is gone"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.GetVideo(context.Background(), "v1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRetriesExhausted(t *testing.T) {
	c := NewClient(&Config{
		BaseURL:      "http://127.0.0.1:1",
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	})

	_, err := c.GetVideo(context.Background(), "v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

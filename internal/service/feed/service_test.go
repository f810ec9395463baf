package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeed/server/internal/client/drama"
	sessionRedis "github.com/reelfeed/server/internal/repository/session/redis"
)

type fakeDramaClient struct {
	mu sync.Mutex

	video       drama.Video
	episodes    []drama.Episode
	orderStati  []int
	queryCalls  int
	createOrder drama.CreatedOrder

	playURLRequests []string
	unlockSingle    int
	unlockAll       int
	balanceErr      error
	balanceSingle   int
	balanceAll      int
}

func newFakeDramaClient(episodeCount, locked int) *fakeDramaClient {
	c := &fakeDramaClient{
		video: drama.Video{
			Id:                 "video-1",
			Title:              "Test Drama",
			SingleEpisodePrice: 1.5,
			AllEpisodesPrice:   9.9,
			FreeEpisodes:       episodeCount - locked,
		},
		createOrder: drama.CreatedOrder{
			Order:  drama.Order{OrderID: "order-1"},
			PayURL: "https://pay.example/qr/order-1",
		},
	}
	for i := 0; i < episodeCount; i++ {
		c.episodes = append(c.episodes, drama.Episode{
			Id:       fmt.Sprintf("ep-%d", i+1),
			Title:    fmt.Sprintf("EP%02d", i+1),
			IsLocked: i >= episodeCount-locked,
		})
	}
	return c
}

func (c *fakeDramaClient) GetVideo(ctx context.Context, videoId string) (drama.Video, error) {
	return c.video, nil
}

func (c *fakeDramaClient) GetUserEpisodes(ctx context.Context, videoId, token string) (drama.UserEpisodes, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	episodes := make([]drama.Episode, len(c.episodes))
	copy(episodes, c.episodes)
	return drama.UserEpisodes{Episodes: episodes, Video: c.video}, nil
}

func (c *fakeDramaClient) GetEpisodePlayURL(ctx context.Context, videoId, episodeId string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playURLRequests = append(c.playURLRequests, episodeId)
	return "https://cdn.example/" + episodeId + "/001.mp4", nil
}

func (c *fakeDramaClient) CreateOrder(ctx context.Context, token string, params *drama.CreateOrderParams) (drama.CreatedOrder, error) {
	return c.createOrder, nil
}

func (c *fakeDramaClient) QueryOrder(ctx context.Context, token, orderId string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queryCalls >= len(c.orderStati) {
		return 1, nil
	}
	status := c.orderStati[c.queryCalls]
	c.queryCalls++
	return status, nil
}

func (c *fakeDramaClient) unlockAllLocked() {
	for i := range c.episodes {
		c.episodes[i].IsLocked = false
	}
}

func (c *fakeDramaClient) UnlockSingleEpisode(ctx context.Context, token string, params *drama.UnlockEpisodeParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unlockSingle++
	for i := range c.episodes {
		if c.episodes[i].Id == params.EpisodeId {
			c.episodes[i].IsLocked = false
		}
	}
	return nil
}

func (c *fakeDramaClient) UnlockAllEpisodes(ctx context.Context, token string, params *drama.UnlockVideoParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unlockAll++
	c.unlockAllLocked()
	return nil
}

func (c *fakeDramaClient) BalanceUnlockSingleEpisode(ctx context.Context, token string, params *drama.UnlockEpisodeParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balanceErr != nil {
		return c.balanceErr
	}
	c.balanceSingle++
	for i := range c.episodes {
		if c.episodes[i].Id == params.EpisodeId {
			c.episodes[i].IsLocked = false
		}
	}
	return nil
}

func (c *fakeDramaClient) BalanceUnlockAllEpisodes(ctx context.Context, token string, params *drama.UnlockVideoParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balanceErr != nil {
		return c.balanceErr
	}
	c.balanceAll++
	c.unlockAllLocked()
	return nil
}

func (c *fakeDramaClient) SignIn(ctx context.Context, username, password string) (drama.Session, error) {
	return drama.Session{
		User:  drama.User{Id: "user-guest", Username: username},
		Token: "guest-token",
	}, nil
}

func (c *fakeDramaClient) RegisterTemp(ctx context.Context, username, password string, expireDays int) (drama.TempSession, error) {
	return drama.TempSession{Token: "temp-token"}, nil
}

type recordingNotifier struct {
	events chan GateEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan GateEvent, 16)}
}

func (n *recordingNotifier) Notify(ctx context.Context, sessionId string, event GateEvent) {
	n.events <- event
}

func (n *recordingNotifier) wait(t *testing.T, timeout time.Duration) GateEvent {
	t.Helper()
	select {
	case event := <-n.events:
		return event
	case <-time.After(timeout):
		t.Fatal("no gate event arrived")
		return GateEvent{}
	}
}

func setupService(t *testing.T, client *fakeDramaClient, cfg *Config) (*service, *miniredis.Miniredis, *recordingNotifier) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := sessionRedis.NewRepo(rc, 10*time.Minute)
	notifier := newRecordingNotifier()

	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}

	return NewService(repo, client, notifier, slog.Default(), cfg), mr, notifier
}

func TestFeedNavigation(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(5, 3)
	s, mr, _ := setupService(t, client, nil)

	created, err := s.CreateSession(ctx, &CreateSessionParams{
		VideoId:   "video-1",
		UserId:    "user-1",
		UserToken: "token-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.SessionId)
	assert.NotEmpty(t, created.AuthToken)
	assert.Equal(t, 0, created.View.CurrentIndex)
	assert.Equal(t, 5, created.View.EpisodeCount)

	sessionId := created.SessionId

	// retreat at the first episode stays put
	resp, err := s.Retreat(ctx, sessionId)
	require.NoError(t, err)
	assert.False(t, resp.Moved)
	assert.Equal(t, 0, resp.View.CurrentIndex)

	// advancing into the locked region still moves, with a gate alongside
	expectGate := []bool{false, true, true, true}
	for step, wantGate := range expectGate {
		mr.FastForward(time.Second)
		resp, err = s.Advance(ctx, sessionId)
		require.NoError(t, err)
		assert.True(t, resp.Moved, "step %d", step)
		assert.Equal(t, step+1, resp.View.CurrentIndex)
		if wantGate {
			require.NotNil(t, resp.Gate, "step %d", step)
			assert.Equal(t, 1.5, resp.Gate.SingleEpisodePrice)
			assert.Equal(t, 9.9, resp.Gate.AllEpisodesPrice)
			assert.False(t, resp.Gate.GuestRequired)
		} else {
			assert.Nil(t, resp.Gate, "step %d", step)
		}
	}

	// advance past the last episode stays put
	mr.FastForward(time.Second)
	resp, err = s.Advance(ctx, sessionId)
	require.NoError(t, err)
	assert.False(t, resp.Moved)
	assert.Equal(t, 4, resp.View.CurrentIndex)

	// locked episodes are never prefetched
	for _, episodeId := range client.playURLRequests {
		assert.NotContains(t, []string{"ep-3", "ep-4", "ep-5"}, episodeId)
	}
}

func TestTransitionLock(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(5, 0)
	s, mr, _ := setupService(t, client, nil)

	created, err := s.CreateSession(ctx, &CreateSessionParams{VideoId: "video-1"})
	require.NoError(t, err)

	mr.FastForward(time.Second)
	first, err := s.Advance(ctx, created.SessionId)
	require.NoError(t, err)
	assert.True(t, first.Moved)

	// second gesture inside the cooldown is dropped, not queued
	second, err := s.Advance(ctx, created.SessionId)
	require.NoError(t, err)
	assert.False(t, second.Moved)
	assert.Equal(t, 1, second.View.CurrentIndex)

	mr.FastForward(time.Second)
	third, err := s.Advance(ctx, created.SessionId)
	require.NoError(t, err)
	assert.True(t, third.Moved)
	assert.Equal(t, 2, third.View.CurrentIndex)
}

func TestTapTogglesWithoutMoving(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(3, 0)
	s, _, _ := setupService(t, client, nil)

	created, err := s.CreateSession(ctx, &CreateSessionParams{VideoId: "video-1"})
	require.NoError(t, err)

	current, ok := currentSlot(created.View.Slots)
	require.True(t, ok)
	assert.True(t, current.ShowTapOverlay)
	assert.Equal(t, SlotReadyPaused, current.State)

	// first tap flips the interaction flag and starts playback
	resp, err := s.HandleTouch(ctx, &TouchParams{
		SessionId: created.SessionId,
		Start:     TouchPoint{X: 100, Y: 200, At: 0},
		End:       TouchPoint{X: 102, Y: 203, At: 120},
	})
	require.NoError(t, err)
	assert.Equal(t, GestureTap, resp.Gesture)
	assert.Nil(t, resp.Move)
	require.NotNil(t, resp.View)
	assert.Equal(t, 0, resp.View.CurrentIndex)

	current, ok = currentSlot(resp.View.Slots)
	require.True(t, ok)
	assert.False(t, current.ShowTapOverlay)
	assert.Equal(t, SlotPlaying, current.State)

	// later taps pass through to the player untouched
	resp, err = s.HandleTouch(ctx, &TouchParams{
		SessionId: created.SessionId,
		Start:     TouchPoint{X: 100, Y: 200, At: 0},
		End:       TouchPoint{X: 102, Y: 203, At: 120},
	})
	require.NoError(t, err)
	assert.Equal(t, GestureTap, resp.Gesture)
	assert.Nil(t, resp.View)
}

func TestKeyboardNavigation(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(3, 0)
	s, mr, _ := setupService(t, client, nil)

	created, err := s.CreateSession(ctx, &CreateSessionParams{VideoId: "video-1"})
	require.NoError(t, err)

	mr.FastForward(time.Second)
	resp, err := s.HandleKey(ctx, &KeyParams{SessionId: created.SessionId, Key: "ArrowDown"})
	require.NoError(t, err)
	assert.Equal(t, GestureAdvance, resp.Gesture)
	require.NotNil(t, resp.Move)
	assert.True(t, resp.Move.Moved)
	assert.Equal(t, 1, resp.Move.View.CurrentIndex)

	mr.FastForward(time.Second)
	resp, err = s.HandleKey(ctx, &KeyParams{SessionId: created.SessionId, Key: "ArrowUp"})
	require.NoError(t, err)
	assert.Equal(t, GestureRetreat, resp.Gesture)
	require.NotNil(t, resp.Move)
	assert.True(t, resp.Move.Moved)
	assert.Equal(t, 0, resp.Move.View.CurrentIndex)

	resp, err = s.HandleKey(ctx, &KeyParams{SessionId: created.SessionId, Key: "Space"})
	require.NoError(t, err)
	assert.Equal(t, GestureNone, resp.Gesture)
	assert.Nil(t, resp.Move)
}

func TestSelectLockedEpisodeOpensGateInPlace(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(5, 3)
	s, _, _ := setupService(t, client, nil)

	created, err := s.CreateSession(ctx, &CreateSessionParams{
		VideoId: "video-1", UserId: "user-1", UserToken: "token-1",
	})
	require.NoError(t, err)

	resp, err := s.SelectEpisode(ctx, &SelectEpisodeParams{
		SessionId: created.SessionId,
		EpisodeId: "ep-4",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Gate)
	assert.Equal(t, "ep-4", resp.Gate.EpisodeId)
	// position is unchanged until the episode is actually unlocked
	assert.Equal(t, 0, resp.View.CurrentIndex)
}

func TestScanPaymentUnlocks(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(5, 3)
	client.orderStati = []int{1, 1, 1, drama.OrderStatusPaid}

	s, _, notifier := setupService(t, client, &Config{
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  2 * time.Second,
	})

	created, err := s.CreateSession(ctx, &CreateSessionParams{
		VideoId: "video-1", UserId: "user-1", UserToken: "token-1",
	})
	require.NoError(t, err)

	resp, err := s.Unlock(ctx, &UnlockParams{
		SessionId: created.SessionId,
		EpisodeId: "ep-3",
		Option:    OptionScanSingle,
	})
	require.NoError(t, err)
	assert.False(t, resp.Unlocked)
	assert.Equal(t, "order-1", resp.OrderId)
	assert.Equal(t, "https://pay.example/qr/order-1", resp.PayURL)

	event := notifier.wait(t, time.Second)
	assert.Equal(t, GateEventUnlocked, event.Type)
	require.NotEmpty(t, event.Episodes)
	assert.False(t, event.Episodes[2].IsLocked)

	client.mu.Lock()
	assert.Equal(t, 1, client.unlockSingle, "unlock must run exactly once")
	queryCalls := client.queryCalls
	client.mu.Unlock()

	// polling stopped after the paid status
	time.Sleep(50 * time.Millisecond)
	client.mu.Lock()
	assert.Equal(t, queryCalls, client.queryCalls)
	client.mu.Unlock()
}

func TestScanPaymentTimeout(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(5, 3)
	client.orderStati = []int{1}

	s, _, notifier := setupService(t, client, &Config{
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  50 * time.Millisecond,
	})

	created, err := s.CreateSession(ctx, &CreateSessionParams{
		VideoId: "video-1", UserId: "user-1", UserToken: "token-1",
	})
	require.NoError(t, err)

	_, err = s.Unlock(ctx, &UnlockParams{
		SessionId: created.SessionId,
		EpisodeId: "ep-3",
		Option:    OptionScanAll,
	})
	require.NoError(t, err)

	event := notifier.wait(t, time.Second)
	assert.Equal(t, GateEventPaymentTimeout, event.Type)

	client.mu.Lock()
	assert.Zero(t, client.unlockAll, "timed out order must not unlock")
	client.mu.Unlock()
}

func TestDismissGateStopsPolling(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(5, 3)
	client.orderStati = []int{1, 1, 1, drama.OrderStatusPaid}

	s, _, notifier := setupService(t, client, &Config{
		PollInterval: 20 * time.Millisecond,
		PollTimeout:  2 * time.Second,
	})

	created, err := s.CreateSession(ctx, &CreateSessionParams{
		VideoId: "video-1", UserId: "user-1", UserToken: "token-1",
	})
	require.NoError(t, err)

	_, err = s.Unlock(ctx, &UnlockParams{
		SessionId: created.SessionId,
		EpisodeId: "ep-3",
		Option:    OptionScanSingle,
	})
	require.NoError(t, err)

	require.NoError(t, s.DismissGate(ctx, created.SessionId))

	select {
	case event := <-notifier.events:
		t.Fatalf("unexpected gate event after dismiss: %s", event.Type)
	case <-time.After(150 * time.Millisecond):
	}

	client.mu.Lock()
	assert.Zero(t, client.unlockSingle)
	client.mu.Unlock()
}

func TestBalanceUnlock(t *testing.T) {
	ctx := context.Background()

	t.Run("sufficient balance unlocks synchronously", func(t *testing.T) {
		client := newFakeDramaClient(5, 3)
		s, _, _ := setupService(t, client, nil)

		created, err := s.CreateSession(ctx, &CreateSessionParams{
			VideoId: "video-1", UserId: "user-1", UserToken: "token-1",
		})
		require.NoError(t, err)

		resp, err := s.Unlock(ctx, &UnlockParams{
			SessionId: created.SessionId,
			EpisodeId: "ep-3",
			Option:    OptionBalanceSingle,
		})
		require.NoError(t, err)
		assert.True(t, resp.Unlocked)
		assert.False(t, resp.RechargeRequired)
		require.Len(t, resp.Episodes, 5)
		assert.False(t, resp.Episodes[2].IsLocked)
		assert.Equal(t, 1, client.balanceSingle)
	})

	t.Run("insufficient balance offers recharge", func(t *testing.T) {
		client := newFakeDramaClient(5, 3)
		client.balanceErr = drama.ErrInsufficientBalance
		s, _, _ := setupService(t, client, nil)

		created, err := s.CreateSession(ctx, &CreateSessionParams{
			VideoId: "video-1", UserId: "user-1", UserToken: "token-1",
		})
		require.NoError(t, err)

		resp, err := s.Unlock(ctx, &UnlockParams{
			SessionId: created.SessionId,
			EpisodeId: "ep-3",
			Option:    OptionBalanceAll,
		})
		require.NoError(t, err)
		assert.False(t, resp.Unlocked)
		assert.True(t, resp.RechargeRequired)

		// entitlement is unchanged
		view, err := s.GetState(ctx, created.SessionId)
		require.NoError(t, err)
		assert.Equal(t, 5, view.EpisodeCount)
		episodes, err := s.sessionRepo.GetEpisodes(ctx, created.SessionId)
		require.NoError(t, err)
		assert.True(t, episodes[2].IsLocked)
	})
}

func TestGuestFlow(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(5, 3)
	s, _, _ := setupService(t, client, nil)

	created, err := s.CreateSession(ctx, &CreateSessionParams{VideoId: "video-1"})
	require.NoError(t, err)

	// unauthenticated sessions cannot purchase
	resp, err := s.Unlock(ctx, &UnlockParams{
		SessionId: created.SessionId,
		EpisodeId: "ep-3",
		Option:    OptionBalanceSingle,
	})
	require.NoError(t, err)
	assert.True(t, resp.GuestRequired)

	guest, err := s.RegisterGuest(ctx, created.SessionId)
	require.NoError(t, err)
	assert.NotEmpty(t, guest.Username)
	assert.NotEmpty(t, guest.Password)
	assert.Equal(t, "user-guest", guest.UserId)
	assert.Len(t, guest.Episodes, 5)

	// the session is now authenticated and may purchase
	resp, err = s.Unlock(ctx, &UnlockParams{
		SessionId: created.SessionId,
		EpisodeId: "ep-3",
		Option:    OptionBalanceSingle,
	})
	require.NoError(t, err)
	assert.True(t, resp.Unlocked)
}

func TestDisconnectRemovesSession(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(3, 0)
	s, _, _ := setupService(t, client, nil)

	created, err := s.CreateSession(ctx, &CreateSessionParams{VideoId: "video-1"})
	require.NoError(t, err)

	require.NoError(t, s.DisconnectSession(ctx, created.SessionId))

	_, err = s.GetState(ctx, created.SessionId)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestParseSessionToken(t *testing.T) {
	ctx := context.Background()
	client := newFakeDramaClient(3, 0)
	s, _, _ := setupService(t, client, nil)

	created, err := s.CreateSession(ctx, &CreateSessionParams{VideoId: "video-1"})
	require.NoError(t, err)

	claims, err := s.ParseSessionToken(created.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, created.SessionId, claims.SessionId)

	_, err = s.ParseSessionToken("not-a-token")
	assert.Error(t, err)
}

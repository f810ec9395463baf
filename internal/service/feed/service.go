package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/reelfeed/server/internal/client/drama"
	"github.com/reelfeed/server/internal/repository/session"
	"github.com/reelfeed/server/pkg/randstr"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrUnknownOption   = errors.New("unknown unlock option")
)

type iSessionRepo interface {
	// feed
	SetFeed(context.Context, *session.SetFeedParams) error
	GetFeed(context.Context, string) (session.Feed, error)
	UpdateCurrentIndex(ctx context.Context, sessionId string, index int) error
	SetUser(context.Context, *session.SetUserParams) error
	SetInteracted(context.Context, string) error
	IsInteracted(context.Context, string) (bool, error)
	AcquireTransitionLock(ctx context.Context, sessionId string, ttl time.Duration) (bool, error)
	RemoveSession(context.Context, string) error
	// episodes
	SetEpisodes(context.Context, *session.SetEpisodesParams) error
	GetEpisodes(context.Context, string) ([]session.Episode, error)
	GetEpisode(ctx context.Context, sessionId, episodeId string) (session.Episode, error)
	// play urls
	SetPlayURL(context.Context, *session.SetPlayURLParams) error
	GetPlayURL(ctx context.Context, sessionId, episodeId string) (string, bool, error)
	// pending order
	SetPendingOrder(context.Context, *session.SetPendingOrderParams) error
	GetPendingOrder(context.Context, string) (session.PendingOrder, error)
	RemovePendingOrder(context.Context, string) error
}

type iDramaClient interface {
	GetVideo(ctx context.Context, videoId string) (drama.Video, error)
	GetUserEpisodes(ctx context.Context, videoId, token string) (drama.UserEpisodes, error)
	GetEpisodePlayURL(ctx context.Context, videoId, episodeId string) (string, error)
	CreateOrder(ctx context.Context, token string, params *drama.CreateOrderParams) (drama.CreatedOrder, error)
	QueryOrder(ctx context.Context, token, orderId string) (int, error)
	UnlockSingleEpisode(ctx context.Context, token string, params *drama.UnlockEpisodeParams) error
	UnlockAllEpisodes(ctx context.Context, token string, params *drama.UnlockVideoParams) error
	BalanceUnlockSingleEpisode(ctx context.Context, token string, params *drama.UnlockEpisodeParams) error
	BalanceUnlockAllEpisodes(ctx context.Context, token string, params *drama.UnlockVideoParams) error
	SignIn(ctx context.Context, username, password string) (drama.Session, error)
	RegisterTemp(ctx context.Context, username, password string, expireDays int) (drama.TempSession, error)
}

// iNotifier delivers asynchronous gate outcomes (paid, timeout) to whoever
// holds the session's connection.
type iNotifier interface {
	Notify(ctx context.Context, sessionId string, event GateEvent)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	Secret             string
	TransitionDuration time.Duration
	PollInterval       time.Duration
	PollTimeout        time.Duration
	GuestExpireDays    int
}

type service struct {
	sessionRepo        iSessionRepo
	dramaClient        iDramaClient
	notifier           iNotifier
	generator          iGenerator
	logger             *slog.Logger
	secret             string
	transitionDuration time.Duration
	pollInterval       time.Duration
	pollTimeout        time.Duration
	guestExpireDays    int

	// one cancellable poll per gate instance, released on every exit path
	gatesMu sync.Mutex
	gates   map[string]*gateHandle
}

func NewService(sessionRepo iSessionRepo, dramaClient iDramaClient, notifier iNotifier, logger *slog.Logger, cfg *Config) *service {
	s := service{
		sessionRepo:        sessionRepo,
		dramaClient:        dramaClient,
		notifier:           notifier,
		logger:             logger,
		secret:             cfg.Secret,
		transitionDuration: cfg.TransitionDuration,
		pollInterval:       cfg.PollInterval,
		pollTimeout:        cfg.PollTimeout,
		guestExpireDays:    cfg.GuestExpireDays,
		gates:              make(map[string]*gateHandle),
	}

	if s.transitionDuration == 0 {
		s.transitionDuration = 300 * time.Millisecond
	}
	if s.pollInterval == 0 {
		s.pollInterval = 5 * time.Second
	}
	if s.pollTimeout == 0 {
		s.pollTimeout = 60 * time.Second
	}
	if s.guestExpireDays == 0 {
		s.guestExpireDays = 7
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	s.generator = randstr.New(letterBytes)

	return &s
}

package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reelfeed/server/internal/client/drama"
	"github.com/reelfeed/server/internal/repository/session"
)

// Purchase options, matching the four buttons of the gate panel.
const (
	OptionScanSingle = iota + 1
	OptionScanAll
	OptionBalanceSingle
	OptionBalanceAll
)

type UnlockParams struct {
	SessionId string
	EpisodeId string
	Option    int
}

type UnlockResponse struct {
	// balance path resolved synchronously
	Unlocked bool
	Episodes []Episode
	// scan path: the client opens PayURL while the server polls
	OrderId string
	PayURL  string
	// insufficient balance, offer the recharge flow
	RechargeRequired bool
	// no authenticated or guest session yet
	GuestRequired bool
}

func (s *service) Unlock(ctx context.Context, params *UnlockParams) (UnlockResponse, error) {
	feed, err := s.getFeed(ctx, params.SessionId)
	if err != nil {
		return UnlockResponse{}, err
	}

	if feed.UserId == "" || feed.UserToken == "" {
		return UnlockResponse{GuestRequired: true}, nil
	}

	switch params.Option {
	case OptionScanSingle, OptionScanAll:
		return s.startScanPayment(ctx, params.SessionId, feed, params.EpisodeId, params.Option)
	case OptionBalanceSingle, OptionBalanceAll:
		return s.balanceUnlock(ctx, params.SessionId, feed, params.EpisodeId, params.Option)
	default:
		return UnlockResponse{}, ErrUnknownOption
	}
}

func (s *service) startScanPayment(ctx context.Context, sessionId string, feed session.Feed, episodeId string, option int) (UnlockResponse, error) {
	amount := feed.SingleEpisodePrice
	if option == OptionScanAll {
		amount = feed.AllEpisodesPrice
	}

	created, err := s.dramaClient.CreateOrder(ctx, feed.UserToken, &drama.CreateOrderParams{
		UserId: feed.UserId,
		Amount: amount,
	})
	if err != nil {
		return UnlockResponse{}, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.sessionRepo.SetPendingOrder(ctx, &session.SetPendingOrderParams{
		SessionId: sessionId,
		Order: session.PendingOrder{
			OrderId:     created.Order.OrderID,
			PayURL:      created.PayURL,
			Amount:      amount,
			TargetId:    episodeId,
			AllEpisodes: option == OptionScanAll,
		},
	}); err != nil {
		return UnlockResponse{}, fmt.Errorf("failed to set pending order: %w", err)
	}

	s.startPolling(sessionId, feed, created.Order.OrderID, episodeId, option)

	return UnlockResponse{
		OrderId: created.Order.OrderID,
		PayURL:  created.PayURL,
	}, nil
}

func (s *service) balanceUnlock(ctx context.Context, sessionId string, feed session.Feed, episodeId string, option int) (UnlockResponse, error) {
	var err error
	if option == OptionBalanceSingle {
		err = s.dramaClient.BalanceUnlockSingleEpisode(ctx, feed.UserToken, &drama.UnlockEpisodeParams{
			UserId:    feed.UserId,
			EpisodeId: episodeId,
			Price:     feed.SingleEpisodePrice,
		})
	} else {
		err = s.dramaClient.BalanceUnlockAllEpisodes(ctx, feed.UserToken, &drama.UnlockVideoParams{
			UserId:  feed.UserId,
			VideoId: feed.VideoId,
			Price:   feed.AllEpisodesPrice,
		})
	}
	if err != nil {
		if errors.Is(err, drama.ErrInsufficientBalance) {
			return UnlockResponse{RechargeRequired: true}, nil
		}
		return UnlockResponse{}, fmt.Errorf("failed to unlock with balance: %w", err)
	}

	episodes, err := s.refreshEntitlement(ctx, sessionId, feed)
	if err != nil {
		return UnlockResponse{}, err
	}

	return UnlockResponse{Unlocked: true, Episodes: episodes}, nil
}

type gateHandle struct {
	cancel context.CancelFunc
}

func (s *service) startPolling(sessionId string, feed session.Feed, orderId, episodeId string, option int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pollTimeout)

	handle := &gateHandle{cancel: cancel}
	s.gatesMu.Lock()
	if prev, ok := s.gates[sessionId]; ok {
		prev.cancel()
	}
	s.gates[sessionId] = handle
	s.gatesMu.Unlock()

	go s.pollOrder(ctx, handle, sessionId, feed, orderId, episodeId, option)
}

// cancelGate tears down the session's gate instance, if any. Index
// changes, gate dismissal and session teardown all route through here.
func (s *service) cancelGate(sessionId string) {
	s.gatesMu.Lock()
	defer s.gatesMu.Unlock()

	if handle, ok := s.gates[sessionId]; ok {
		handle.cancel()
		delete(s.gates, sessionId)
	}
}

func (s *service) releaseGate(sessionId string, handle *gateHandle) {
	s.gatesMu.Lock()
	defer s.gatesMu.Unlock()

	handle.cancel()
	if s.gates[sessionId] == handle {
		delete(s.gates, sessionId)
	}
}

// pollOrder checks the order status on a fixed interval until it is paid,
// the ceiling expires or the gate is cancelled. Whichever fires first wins
// and releases the timers.
func (s *service) pollOrder(ctx context.Context, handle *gateHandle, sessionId string, feed session.Feed, orderId, episodeId string, option int) {
	defer s.releaseGate(sessionId, handle)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				// payment never confirmed, abandon the order
				cleanupCtx := context.WithoutCancel(ctx)
				if err := s.sessionRepo.RemovePendingOrder(cleanupCtx, sessionId); err != nil && !errors.Is(err, session.ErrOrderNotFound) {
					s.logger.Warn("failed to remove pending order", "error", err)
				}
				s.notifier.Notify(cleanupCtx, sessionId, GateEvent{Type: GateEventPaymentTimeout})
			}
			return

		case <-ticker.C:
			status, err := s.dramaClient.QueryOrder(ctx, feed.UserToken, orderId)
			if err != nil {
				s.logger.WarnContext(ctx, "failed to query order status",
					"order_id", orderId, "error", err)
				continue
			}
			if status != drama.OrderStatusPaid {
				continue
			}

			// first paid-status response wins; finish even if the
			// ceiling expires during the unlock call
			doneCtx := context.WithoutCancel(ctx)
			s.finishScanPayment(doneCtx, sessionId, feed, episodeId, option)
			return
		}
	}
}

func (s *service) finishScanPayment(ctx context.Context, sessionId string, feed session.Feed, episodeId string, option int) {
	var err error
	if option == OptionScanSingle {
		err = s.dramaClient.UnlockSingleEpisode(ctx, feed.UserToken, &drama.UnlockEpisodeParams{
			UserId:    feed.UserId,
			EpisodeId: episodeId,
			Price:     feed.SingleEpisodePrice,
		})
	} else {
		err = s.dramaClient.UnlockAllEpisodes(ctx, feed.UserToken, &drama.UnlockVideoParams{
			UserId:  feed.UserId,
			VideoId: feed.VideoId,
			Price:   feed.AllEpisodesPrice,
		})
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to unlock after payment", "error", err)
		s.notifier.Notify(ctx, sessionId, GateEvent{Type: GateEventError, Error: err.Error()})
		return
	}

	episodes, err := s.refreshEntitlement(ctx, sessionId, feed)
	if err != nil {
		s.notifier.Notify(ctx, sessionId, GateEvent{Type: GateEventError, Error: err.Error()})
		return
	}

	if err := s.sessionRepo.RemovePendingOrder(ctx, sessionId); err != nil && !errors.Is(err, session.ErrOrderNotFound) {
		s.logger.WarnContext(ctx, "failed to remove pending order", "error", err)
	}

	s.notifier.Notify(ctx, sessionId, GateEvent{Type: GateEventUnlocked, Episodes: episodes})
}

// DismissGate closes the gate without purchasing. Entitlement is left
// unchanged.
func (s *service) DismissGate(ctx context.Context, sessionId string) error {
	s.cancelGate(sessionId)

	if err := s.sessionRepo.RemovePendingOrder(ctx, sessionId); err != nil && !errors.Is(err, session.ErrOrderNotFound) {
		return fmt.Errorf("failed to remove pending order: %w", err)
	}

	return nil
}

// refreshEntitlement re-queries the entitlement service and replaces the
// session's lock flags with the authoritative answer.
func (s *service) refreshEntitlement(ctx context.Context, sessionId string, feed session.Feed) ([]Episode, error) {
	userEpisodes, err := s.dramaClient.GetUserEpisodes(ctx, feed.VideoId, feed.UserToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh entitlement: %w", err)
	}

	stored := make([]session.Episode, 0, len(userEpisodes.Episodes))
	episodes := make([]Episode, 0, len(userEpisodes.Episodes))
	for _, episode := range userEpisodes.Episodes {
		stored = append(stored, session.Episode{
			Id:       episode.Id,
			Title:    episode.Title,
			IsLocked: episode.IsLocked,
		})
		episodes = append(episodes, Episode{
			Id:       episode.Id,
			Title:    episode.Title,
			IsLocked: episode.IsLocked,
		})
	}

	if err := s.sessionRepo.SetEpisodes(ctx, &session.SetEpisodesParams{
		SessionId: sessionId,
		Episodes:  stored,
	}); err != nil {
		return nil, fmt.Errorf("failed to store refreshed episodes: %w", err)
	}

	return episodes, nil
}

type GuestResponse struct {
	Username string
	Password string
	UserId   string
	Episodes []Episode
}

// RegisterGuest performs the one-tap guest flow: random credentials,
// temp registration upstream, sign-in, then an entitlement refresh for
// the now-authenticated session. The credentials are returned so the
// client can show them once.
func (s *service) RegisterGuest(ctx context.Context, sessionId string) (GuestResponse, error) {
	feed, err := s.getFeed(ctx, sessionId)
	if err != nil {
		return GuestResponse{}, err
	}

	username := "user_" + s.generator.GenerateRandomString(6)
	password := s.generator.GenerateRandomString(8)

	if _, err := s.dramaClient.RegisterTemp(ctx, username, password, s.guestExpireDays); err != nil {
		return GuestResponse{}, fmt.Errorf("failed to register temp user: %w", err)
	}

	userSession, err := s.dramaClient.SignIn(ctx, username, password)
	if err != nil {
		return GuestResponse{}, fmt.Errorf("failed to sign in guest: %w", err)
	}

	if err := s.sessionRepo.SetUser(ctx, &session.SetUserParams{
		SessionId: sessionId,
		UserId:    userSession.User.Id,
		UserToken: userSession.Token,
	}); err != nil {
		return GuestResponse{}, fmt.Errorf("failed to set session user: %w", err)
	}

	feed.UserId = userSession.User.Id
	feed.UserToken = userSession.Token
	episodes, err := s.refreshEntitlement(ctx, sessionId, feed)
	if err != nil {
		return GuestResponse{}, err
	}

	return GuestResponse{
		Username: username,
		Password: password,
		UserId:   userSession.User.Id,
		Episodes: episodes,
	}, nil
}

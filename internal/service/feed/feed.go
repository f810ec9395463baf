package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/reelfeed/server/internal/repository/session"
)

type CreateSessionParams struct {
	VideoId   string
	UserId    string
	UserToken string
}

type CreateSessionResponse struct {
	SessionId   string
	AuthToken   string
	Title       string
	DisplayName string
	Cover       string
	View        FeedView
}

func (s *service) CreateSession(ctx context.Context, params *CreateSessionParams) (CreateSessionResponse, error) {
	video, err := s.dramaClient.GetVideo(ctx, params.VideoId)
	if err != nil {
		return CreateSessionResponse{}, fmt.Errorf("failed to get video: %w", err)
	}

	userEpisodes, err := s.dramaClient.GetUserEpisodes(ctx, params.VideoId, params.UserToken)
	if err != nil {
		return CreateSessionResponse{}, fmt.Errorf("failed to get user episodes: %w", err)
	}

	episodes := make([]session.Episode, 0, len(userEpisodes.Episodes))
	for _, episode := range userEpisodes.Episodes {
		episodes = append(episodes, session.Episode{
			Id:       episode.Id,
			Title:    episode.Title,
			IsLocked: episode.IsLocked,
		})
	}

	singleEpisodePrice := userEpisodes.Video.SingleEpisodePrice
	if singleEpisodePrice == 0 {
		singleEpisodePrice = video.SingleEpisodePrice
	}
	allEpisodesPrice := userEpisodes.Video.AllEpisodesPrice
	if allEpisodesPrice == 0 {
		allEpisodesPrice = video.AllEpisodesPrice
	}

	sessionId := uuid.NewString()
	if err := s.sessionRepo.SetFeed(ctx, &session.SetFeedParams{
		SessionId:          sessionId,
		VideoId:            params.VideoId,
		CurrentIndex:       0,
		FreeEpisodes:       video.FreeEpisodes,
		SingleEpisodePrice: singleEpisodePrice,
		AllEpisodesPrice:   allEpisodesPrice,
		UserId:             params.UserId,
		UserToken:          params.UserToken,
		Episodes:           episodes,
	}); err != nil {
		return CreateSessionResponse{}, fmt.Errorf("failed to set feed: %w", err)
	}

	s.prefetchWindow(ctx, sessionId, params.VideoId, episodes, 0)

	view, err := s.buildView(ctx, sessionId)
	if err != nil {
		return CreateSessionResponse{}, err
	}

	authToken, err := s.generateJWT(sessionId)
	if err != nil {
		return CreateSessionResponse{}, fmt.Errorf("failed to generate jwt: %w", err)
	}

	return CreateSessionResponse{
		SessionId:   sessionId,
		AuthToken:   authToken,
		Title:       video.Title,
		DisplayName: video.DisplayName,
		Cover:       video.Cover,
		View:        view,
	}, nil
}

type MoveResponse struct {
	Moved bool
	View  FeedView
	Gate  *GateOffer
}

func (s *service) Advance(ctx context.Context, sessionId string) (MoveResponse, error) {
	return s.move(ctx, sessionId, 1)
}

func (s *service) Retreat(ctx context.Context, sessionId string) (MoveResponse, error) {
	return s.move(ctx, sessionId, -1)
}

func (s *service) move(ctx context.Context, sessionId string, delta int) (MoveResponse, error) {
	feed, err := s.getFeed(ctx, sessionId)
	if err != nil {
		return MoveResponse{}, err
	}

	newIndex := feed.CurrentIndex + delta
	if newIndex < 0 || newIndex >= feed.EpisodeCount {
		// boundary, no wraparound
		view, err := s.buildView(ctx, sessionId)
		if err != nil {
			return MoveResponse{}, err
		}
		return MoveResponse{Moved: false, View: view}, nil
	}

	acquired, err := s.sessionRepo.AcquireTransitionLock(ctx, sessionId, s.transitionDuration)
	if err != nil {
		return MoveResponse{}, fmt.Errorf("failed to acquire transition lock: %w", err)
	}
	if !acquired {
		// a previous transition is still in flight
		view, err := s.buildView(ctx, sessionId)
		if err != nil {
			return MoveResponse{}, err
		}
		return MoveResponse{Moved: false, View: view}, nil
	}

	// a new position invalidates any gate opened for the previous one
	s.cancelGate(sessionId)

	if err := s.sessionRepo.UpdateCurrentIndex(ctx, sessionId, newIndex); err != nil {
		return MoveResponse{}, fmt.Errorf("failed to update current index: %w", err)
	}

	episodes, err := s.sessionRepo.GetEpisodes(ctx, sessionId)
	if err != nil {
		return MoveResponse{}, fmt.Errorf("failed to get episodes: %w", err)
	}

	s.prefetchWindow(ctx, sessionId, feed.VideoId, episodes, newIndex)

	view, err := s.buildView(ctx, sessionId)
	if err != nil {
		return MoveResponse{}, err
	}

	resp := MoveResponse{Moved: true, View: view}
	if slot, ok := currentSlot(view.Slots); ok && slot.IsLocked {
		resp.Gate = s.gateOffer(feed, slot.EpisodeId, slot.Title)
	}

	return resp, nil
}

type TouchParams struct {
	SessionId string
	Start     TouchPoint
	End       TouchPoint
}

type GestureResponse struct {
	Gesture Gesture
	Move    *MoveResponse
	// set when the first qualifying input flipped the interaction flag
	// and the playback directive changed with it
	View *FeedView
}

func (s *service) HandleTouch(ctx context.Context, params *TouchParams) (GestureResponse, error) {
	return s.handleGesture(ctx, params.SessionId, ClassifyTouch(params.Start, params.End))
}

type KeyParams struct {
	SessionId string
	Key       string
}

func (s *service) HandleKey(ctx context.Context, params *KeyParams) (GestureResponse, error) {
	return s.handleGesture(ctx, params.SessionId, ClassifyKey(params.Key))
}

func (s *service) handleGesture(ctx context.Context, sessionId string, gesture Gesture) (GestureResponse, error) {
	switch gesture {
	case GestureTap:
		flipped, err := s.recordInteraction(ctx, sessionId)
		if err != nil {
			return GestureResponse{}, err
		}
		if !flipped {
			// pass-through, the player handles the tap itself
			return GestureResponse{Gesture: gesture}, nil
		}

		view, err := s.buildView(ctx, sessionId)
		if err != nil {
			return GestureResponse{}, err
		}
		return GestureResponse{Gesture: gesture, View: &view}, nil

	case GestureAdvance, GestureRetreat:
		if _, err := s.recordInteraction(ctx, sessionId); err != nil {
			return GestureResponse{}, err
		}

		delta := 1
		if gesture == GestureRetreat {
			delta = -1
		}
		move, err := s.move(ctx, sessionId, delta)
		if err != nil {
			return GestureResponse{}, err
		}
		return GestureResponse{Gesture: gesture, Move: &move}, nil

	default:
		return GestureResponse{Gesture: GestureNone}, nil
	}
}

// FirstPlay handles the tap on the first-time overlay.
func (s *service) FirstPlay(ctx context.Context, sessionId string) (FeedView, error) {
	if _, err := s.recordInteraction(ctx, sessionId); err != nil {
		return FeedView{}, err
	}

	return s.buildView(ctx, sessionId)
}

type SelectEpisodeParams struct {
	SessionId string
	EpisodeId string
}

type SelectEpisodeResponse struct {
	View FeedView
	Gate *GateOffer
}

// SelectEpisode jumps to an episode picked from the list. A locked episode
// opens the gate without moving the current position.
func (s *service) SelectEpisode(ctx context.Context, params *SelectEpisodeParams) (SelectEpisodeResponse, error) {
	feed, err := s.getFeed(ctx, params.SessionId)
	if err != nil {
		return SelectEpisodeResponse{}, err
	}

	episodes, err := s.sessionRepo.GetEpisodes(ctx, params.SessionId)
	if err != nil {
		return SelectEpisodeResponse{}, fmt.Errorf("failed to get episodes: %w", err)
	}

	index := -1
	for i, episode := range episodes {
		if episode.Id == params.EpisodeId {
			index = i
			break
		}
	}
	if index == -1 {
		return SelectEpisodeResponse{}, ErrEpisodeNotFound
	}

	if episodes[index].IsLocked {
		view, err := s.buildView(ctx, params.SessionId)
		if err != nil {
			return SelectEpisodeResponse{}, err
		}
		return SelectEpisodeResponse{
			View: view,
			Gate: s.gateOffer(feed, episodes[index].Id, episodes[index].Title),
		}, nil
	}

	if _, err := s.recordInteraction(ctx, params.SessionId); err != nil {
		return SelectEpisodeResponse{}, err
	}

	if err := s.sessionRepo.UpdateCurrentIndex(ctx, params.SessionId, index); err != nil {
		return SelectEpisodeResponse{}, fmt.Errorf("failed to update current index: %w", err)
	}

	s.cancelGate(params.SessionId)
	s.prefetchWindow(ctx, params.SessionId, feed.VideoId, episodes, index)

	view, err := s.buildView(ctx, params.SessionId)
	if err != nil {
		return SelectEpisodeResponse{}, err
	}

	return SelectEpisodeResponse{View: view}, nil
}

func (s *service) GetState(ctx context.Context, sessionId string) (FeedView, error) {
	return s.buildView(ctx, sessionId)
}

// DisconnectSession is the designated cancellation point: it releases the
// gate timers and drops the session state.
func (s *service) DisconnectSession(ctx context.Context, sessionId string) error {
	s.cancelGate(sessionId)

	if err := s.sessionRepo.RemoveSession(ctx, sessionId); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	return nil
}

func (s *service) recordInteraction(ctx context.Context, sessionId string) (bool, error) {
	interacted, err := s.sessionRepo.IsInteracted(ctx, sessionId)
	if err != nil {
		return false, fmt.Errorf("failed to check interaction: %w", err)
	}
	if interacted {
		return false, nil
	}

	if err := s.sessionRepo.SetInteracted(ctx, sessionId); err != nil {
		return false, fmt.Errorf("failed to set interaction: %w", err)
	}

	return true, nil
}

// prefetchWindow resolves play URLs for the three indices around
// currentIndex. Locked episodes and cache hits are skipped; the fetches
// run concurrently and merge last-write-wins.
func (s *service) prefetchWindow(ctx context.Context, sessionId, videoId string, episodes []session.Episode, currentIndex int) {
	var wg sync.WaitGroup

	for position := -1; position <= 1; position++ {
		index := currentIndex + position
		if index < 0 || index >= len(episodes) {
			continue
		}

		episode := episodes[index]
		if episode.IsLocked {
			continue
		}

		if _, cached, err := s.sessionRepo.GetPlayURL(ctx, sessionId, episode.Id); err != nil || cached {
			continue
		}

		wg.Add(1)
		go func(episode session.Episode) {
			defer wg.Done()

			playURL, err := s.dramaClient.GetEpisodePlayURL(ctx, videoId, episode.Id)
			if err != nil {
				// the slot stays in loading, nothing fatal
				s.logger.WarnContext(ctx, "failed to prefetch play url",
					"episode_id", episode.Id, "error", err)
				return
			}

			if err := s.sessionRepo.SetPlayURL(ctx, &session.SetPlayURLParams{
				SessionId: sessionId,
				EpisodeId: episode.Id,
				PlayURL:   playURL,
			}); err != nil {
				s.logger.WarnContext(ctx, "failed to cache play url",
					"episode_id", episode.Id, "error", err)
			}
		}(episode)
	}

	wg.Wait()
}

func (s *service) buildView(ctx context.Context, sessionId string) (FeedView, error) {
	feed, err := s.getFeed(ctx, sessionId)
	if err != nil {
		return FeedView{}, err
	}

	episodes, err := s.sessionRepo.GetEpisodes(ctx, sessionId)
	if err != nil {
		return FeedView{}, fmt.Errorf("failed to get episodes: %w", err)
	}

	interacted, err := s.sessionRepo.IsInteracted(ctx, sessionId)
	if err != nil {
		return FeedView{}, fmt.Errorf("failed to check interaction: %w", err)
	}

	playURLs := make(map[string]string, 3)
	for position := -1; position <= 1; position++ {
		index := feed.CurrentIndex + position
		if index < 0 || index >= len(episodes) {
			continue
		}

		episode := episodes[index]
		playURL, cached, err := s.sessionRepo.GetPlayURL(ctx, sessionId, episode.Id)
		if err != nil {
			return FeedView{}, fmt.Errorf("failed to get play url: %w", err)
		}
		if cached {
			playURLs[episode.Id] = playURL
			s.flagEntitlementDiscrepancy(ctx, episode, playURL, feed.FreeEpisodes)
		}
	}

	return FeedView{
		VideoId:      feed.VideoId,
		CurrentIndex: feed.CurrentIndex,
		EpisodeCount: len(episodes),
		Slots:        computeSlots(episodes, playURLs, feed.CurrentIndex, interacted),
	}, nil
}

func (s *service) gateOffer(feed session.Feed, episodeId, episodeTitle string) *GateOffer {
	return &GateOffer{
		EpisodeId:          episodeId,
		EpisodeTitle:       episodeTitle,
		SingleEpisodePrice: feed.SingleEpisodePrice,
		AllEpisodesPrice:   feed.AllEpisodesPrice,
		GuestRequired:      feed.UserToken == "",
	}
}

func (s *service) getFeed(ctx context.Context, sessionId string) (session.Feed, error) {
	feed, err := s.sessionRepo.GetFeed(ctx, sessionId)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return session.Feed{}, ErrSessionNotFound
		}
		return session.Feed{}, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/reelfeed/server/internal/client/drama"
	"github.com/reelfeed/server/internal/service/feed"
	"github.com/reelfeed/server/pkg/validator"
	"github.com/reelfeed/server/pkg/wsrouter"
)

type iFeedService interface {
	CreateSession(context.Context, *feed.CreateSessionParams) (feed.CreateSessionResponse, error)
	ParseSessionToken(string) (*feed.Claims, error)
	GetState(context.Context, string) (feed.FeedView, error)
	HandleTouch(context.Context, *feed.TouchParams) (feed.GestureResponse, error)
	HandleKey(context.Context, *feed.KeyParams) (feed.GestureResponse, error)
	FirstPlay(context.Context, string) (feed.FeedView, error)
	SelectEpisode(context.Context, *feed.SelectEpisodeParams) (feed.SelectEpisodeResponse, error)
	Unlock(context.Context, *feed.UnlockParams) (feed.UnlockResponse, error)
	DismissGate(context.Context, string) error
	RegisterGuest(context.Context, string) (feed.GuestResponse, error)
	DisconnectSession(context.Context, string) error
}

type iConnectionRepo interface {
	Add(conn *websocket.Conn, sessionId string) error
	RemoveBySessionId(sessionId string) error
	GetConn(sessionId string) (*websocket.Conn, error)
}

// iDramaGateway covers the upstream endpoints the REST surface proxies
// without session state of its own.
type iDramaGateway interface {
	SignIn(ctx context.Context, username, password string) (drama.Session, error)
	SignUp(ctx context.Context, username, password string) (drama.Session, error)
	GetHomeConfig(ctx context.Context) (drama.HomeConfig, error)
	GetUser(ctx context.Context, token, userId string) (drama.User, error)
	UpdateNickname(ctx context.Context, token, nickname string) error
	Recharge(ctx context.Context, token string, params *drama.RechargeParams) (drama.CreatedOrder, error)
	RechargeVIP(ctx context.Context, token string, params *drama.RechargeParams) (drama.CreatedOrder, error)
	GetChargingRecords(ctx context.Context, token string) ([]drama.ChargingRecord, error)
	GetVVVIPRecord(ctx context.Context, token string) (drama.VVVIPRecord, error)
}

type controller struct {
	feedService iFeedService
	gateway     iDramaGateway
	connRepo    iConnectionRepo
	upgrader    websocket.Upgrader
	sender      *GateNotifier
	validate    *validator.Validator
	logger      *slog.Logger
	wsmux       *wsrouter.WSRouter

	// touch origins awaiting their TOUCH_END
	touchMu     sync.Mutex
	touchStarts map[string]feed.TouchPoint
}

func NewController(feedService iFeedService, gateway iDramaGateway, connRepo iConnectionRepo, sender *GateNotifier, logger *slog.Logger) *controller {
	c := &controller{
		feedService: feedService,
		gateway:     gateway,
		connRepo:    connRepo,
		sender:      sender,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:    validator.NewValidator(),
		logger:      logger,
		touchStarts: make(map[string]feed.TouchPoint),
	}
	c.wsmux = c.getWSRouter()

	return c
}

package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/reelfeed/server/internal/client/drama"
	"github.com/reelfeed/server/internal/controller"
	"github.com/reelfeed/server/internal/repository/connection/inmemory"
	sessionRedis "github.com/reelfeed/server/internal/repository/session/redis"
	"github.com/reelfeed/server/internal/service/feed"
	"github.com/reelfeed/server/pkg/ctxlogger"
	"github.com/reelfeed/server/pkg/redisclient"
)

type AppConfig struct {
	Secret            string  `json:"-"`
	Host              string  `json:"host"`
	Port              int     `json:"port"`
	LogLevel          string  `json:"log_level"`
	LogPath           string  `json:"log_path"`
	RedisPort         int     `json:"redis_port"`
	RedisHost         string  `json:"redis_host"`
	RedisPassword     string  `json:"-"`
	UpstreamBaseURL   string  `json:"upstream_base_url"`
	UpstreamRetries   int     `json:"upstream_retries"`
	PollIntervalSec   float64 `json:"poll_interval_sec"`
	PollTimeoutSec    float64 `json:"poll_timeout_sec"`
	SessionExpireHour int     `json:"session_expire_hour"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.UpstreamBaseURL == "" {
		return fmt.Errorf("upstream base url must be set")
	}
	if cfg.PollIntervalSec <= 0 {
		return fmt.Errorf("poll interval must be greater than 0")
	}
	if cfg.PollTimeoutSec <= cfg.PollIntervalSec {
		return fmt.Errorf("poll timeout must be greater than poll interval")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	sessionExpire := time.Duration(cfg.SessionExpireHour) * time.Hour
	if sessionExpire == 0 {
		sessionExpire = 24 * time.Hour
	}

	sessionRepo := sessionRedis.NewRepo(rc, sessionExpire)
	connectionRepo := inmemory.NewRepo()

	dramaClient := drama.NewClient(&drama.Config{
		BaseURL:    cfg.UpstreamBaseURL,
		MaxRetries: cfg.UpstreamRetries,
	})

	notifier := controller.NewGateNotifier(connectionRepo, logger)
	feedService := feed.NewService(sessionRepo, dramaClient, notifier, logger, &feed.Config{
		Secret:       cfg.Secret,
		PollInterval: time.Duration(cfg.PollIntervalSec * float64(time.Second)),
		PollTimeout:  time.Duration(cfg.PollTimeoutSec * float64(time.Second)),
	})
	controller := controller.NewController(feedService, dramaClient, connectionRepo, notifier, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}

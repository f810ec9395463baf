package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/reelfeed/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
	}
	logPath = configVar[string]{
		envKey:       "SERVER_LOG_PATH",
		flagKey:      "log-path",
		defaultValue: "/var/log/reelfeed/server.log",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	upstreamBaseURL = configVar[string]{
		envKey:       "UPSTREAM_BASE_URL",
		flagKey:      "upstream-base-url",
		defaultValue: "http://localhost:8080/api",
	}
	upstreamRetries = configVar[int]{
		envKey:       "UPSTREAM_RETRIES",
		flagKey:      "upstream-retries",
		defaultValue: 3,
	}
	pollInterval = configVar[float64]{
		envKey:       "PAYMENT_POLL_INTERVAL",
		flagKey:      "poll-interval",
		defaultValue: 5,
	}
	pollTimeout = configVar[float64]{
		envKey:       "PAYMENT_POLL_TIMEOUT",
		flagKey:      "poll-timeout",
		defaultValue: 60,
	}
	sessionExpire = configVar[int]{
		envKey:       "SESSION_EXPIRE_HOURS",
		flagKey:      "session-expire-hours",
		defaultValue: 24,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, "Server secret")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(logPath.flagKey, logPath.defaultValue, "Log file path")
	pflag.String(upstreamBaseURL.flagKey, upstreamBaseURL.defaultValue, "Base URL of the drama API")
	pflag.Int(upstreamRetries.flagKey, upstreamRetries.defaultValue, "Retries per upstream request")
	pflag.Float64(pollInterval.flagKey, pollInterval.defaultValue, "Payment polling interval in seconds")
	pflag.Float64(pollTimeout.flagKey, pollTimeout.defaultValue, "Payment polling ceiling in seconds")
	pflag.Int(sessionExpire.flagKey, sessionExpire.defaultValue, "Feed session TTL in hours")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(secret.flagKey, secret.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(logPath.flagKey, logPath.envKey)
	viper.BindEnv(upstreamBaseURL.flagKey, upstreamBaseURL.envKey)
	viper.BindEnv(upstreamRetries.flagKey, upstreamRetries.envKey)
	viper.BindEnv(pollInterval.flagKey, pollInterval.envKey)
	viper.BindEnv(pollTimeout.flagKey, pollTimeout.envKey)
	viper.BindEnv(sessionExpire.flagKey, sessionExpire.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(secret.flagKey, secret.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(logPath.flagKey, logPath.defaultValue)
	viper.SetDefault(upstreamBaseURL.flagKey, upstreamBaseURL.defaultValue)
	viper.SetDefault(upstreamRetries.flagKey, upstreamRetries.defaultValue)
	viper.SetDefault(pollInterval.flagKey, pollInterval.defaultValue)
	viper.SetDefault(pollTimeout.flagKey, pollTimeout.defaultValue)
	viper.SetDefault(sessionExpire.flagKey, sessionExpire.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	config := &app.AppConfig{
		Secret:            viper.GetString(secret.flagKey),
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		LogPath:           viper.GetString(logPath.flagKey),
		UpstreamBaseURL:   viper.GetString(upstreamBaseURL.flagKey),
		UpstreamRetries:   viper.GetInt(upstreamRetries.flagKey),
		PollIntervalSec:   viper.GetFloat64(pollInterval.flagKey),
		PollTimeoutSec:    viper.GetFloat64(pollTimeout.flagKey),
		SessionExpireHour: viper.GetInt(sessionExpire.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}

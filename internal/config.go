package internal

import (
	"chat-sync/errors"
	"fmt"
	"strings"
	"time"
)

type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
)

type Config struct {
	LogLevel           string        `env:"LOG_LEVEL,default=INFO"`
	StoreBackend       string        `env:"STORE_BACKEND,default=memory"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,default=./data/chat-sync"`
	DeliveryBufferSize int           `env:"DELIVERY_BUFFER_SIZE,default=256"`
	ReplayLastSnapshot bool          `env:"REPLAY_LAST_SNAPSHOT,default=true"`
	WriteMaxAttempts   int           `env:"WRITE_MAX_ATTEMPTS,default=3"`
	WriteBackoffMin    time.Duration `env:"WRITE_BACKOFF_MIN,default=100ms"`
	WriteBackoffMax    time.Duration `env:"WRITE_BACKOFF_MAX,default=2s"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval     time.Duration `env:"METRIC_INTERVAL,default=30s"`
	AuthTokenDuration  time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	AuthSecret         string        `env:"AUTH_SECRET,required=true"`
}

// Backend resolves STORE_BACKEND, case insensitive.
func (c Config) Backend() (Backend, error) {
	switch backend := Backend(strings.ToLower(strings.TrimSpace(c.StoreBackend))); backend {
	case BackendMemory, BackendBadger:
		return backend, nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownBackend, c.StoreBackend)
	}
}

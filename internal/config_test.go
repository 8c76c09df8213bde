package internal

import (
	"chat-sync/errors"
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("AUTH_SECRET", "a_test_secret_long_enough_for_hs256")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal("INFO", config.LogLevel)
	req.Equal(256, config.DeliveryBufferSize)
	req.True(config.ReplayLastSnapshot)
	req.Equal(3, config.WriteMaxAttempts)
	req.Equal(100*time.Millisecond, config.WriteBackoffMin)
	req.Equal(24*time.Hour, config.AuthTokenDuration)
	backend, err := config.Backend()
	req.NoError(err)
	req.Equal(BackendMemory, backend)
}

func TestConfig_Backend(t *testing.T) {
	req := require.New(t)

	backend, err := Config{StoreBackend: " Badger "}.Backend()
	req.NoError(err)
	req.Equal(BackendBadger, backend)

	_, err = Config{StoreBackend: "postgres"}.Backend()
	req.ErrorIs(err, errors.ErrUnknownBackend)
}

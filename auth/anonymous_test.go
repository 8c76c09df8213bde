package auth

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "a_test_secret_long_enough_for_hs256"

func TestAnonymousProvider_Sign_In_And_Out(t *testing.T) {
	req := require.New(t)
	provider, err := NewAnonymousProvider(slog.Default(), Settings{Secret: testSecret, TokenDuration: time.Hour})
	req.NoError(err)

	// Before signing in nobody is there
	_, ok := provider.CurrentUserID()
	req.False(ok)

	// When signing in
	userID, err := provider.SignInAnonymously(context.Background())
	req.NoError(err)
	_, err = uuid.Parse(userID)
	req.NoError(err)

	// Then the user is current
	current, ok := provider.CurrentUserID()
	req.True(ok)
	req.Equal(userID, current)

	// When signing out, the user is gone
	provider.SignOut()
	_, ok = provider.CurrentUserID()
	req.False(ok)
}

func TestAnonymousProvider_Each_Sign_In_Is_A_New_User(t *testing.T) {
	req := require.New(t)
	provider, err := NewAnonymousProvider(slog.Default(), Settings{Secret: testSecret, TokenDuration: time.Hour})
	req.NoError(err)

	first, err := provider.SignInAnonymously(context.Background())
	req.NoError(err)
	second, err := provider.SignInAnonymously(context.Background())
	req.NoError(err)

	req.NotEqual(first, second)
}

func TestAnonymousProvider_Expired_Session_Is_Absent(t *testing.T) {
	req := require.New(t)
	provider, err := NewAnonymousProvider(slog.Default(), Settings{Secret: testSecret, TokenDuration: time.Minute})
	req.NoError(err)
	at := time.Now()
	provider.signer.now = func() time.Time { return at }

	_, err = provider.SignInAnonymously(context.Background())
	req.NoError(err)

	// When the clock moves past the token lifetime
	at = at.Add(2 * time.Minute)

	// Then nobody is signed in
	_, ok := provider.CurrentUserID()
	req.False(ok)
}

func TestAnonymousProvider_Cancelled_Context(t *testing.T) {
	req := require.New(t)
	provider, err := NewAnonymousProvider(slog.Default(), Settings{Secret: testSecret, TokenDuration: time.Hour})
	req.NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = provider.SignInAnonymously(ctx)

	req.ErrorIs(err, context.Canceled)
}

func TestTokenSigner_Rejects_Foreign_Key(t *testing.T) {
	req := require.New(t)
	signer := tokenSigner{key: []byte(testSecret), duration: time.Hour, now: time.Now}
	other := tokenSigner{key: []byte(strings.Repeat("x", 40)), duration: time.Hour, now: time.Now}

	token, err := other.generate("u1")
	req.NoError(err)

	_, err = signer.validate(token)
	req.Error(err)
}

func TestSettingsValidation(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{"Valid settings", Settings{testSecret, time.Hour}, false},
		{"Missing secret", Settings{"", time.Hour}, true},
		{"Secret too short", Settings{"short", time.Hour}, true},
		{"No duration", Settings{testSecret, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateSettings(tt.settings)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

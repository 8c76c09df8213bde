package auth

import (
	"chat-sync/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AnonymousProvider signs users in without credentials.
// The session lives in a signed token, a user whose token expired is
// considered signed out.
type AnonymousProvider struct {
	mu     sync.RWMutex
	log    *slog.Logger
	signer tokenSigner
	token  string
}

func NewAnonymousProvider(log *slog.Logger, settings Settings) (*AnonymousProvider, error) {
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid auth settings: %w", err)
	}
	return &AnonymousProvider{
		log:    log,
		signer: tokenSigner{key: []byte(settings.Secret), duration: settings.TokenDuration, now: time.Now},
	}, nil
}

// SignInAnonymously creates a fresh user id. There is a single attempt,
// callers decide whether to try again.
func (p *AnonymousProvider) SignInAnonymously(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	userID := uuid.NewString()
	token, err := p.signer.generate(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTokenGeneration, err)
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()

	p.log.Info("Signed in anonymously", "user_id", userID)
	return userID, nil
}

func (p *AnonymousProvider) CurrentUserID() (string, bool) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()
	if token == "" {
		return "", false
	}
	claims, err := p.signer.validate(token)
	if err != nil {
		p.log.Debug("Session no longer valid", "error", err)
		return "", false
	}
	return claims.UserID, true
}

func (p *AnonymousProvider) SignOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
}

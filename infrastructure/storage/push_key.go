package storage

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// PushKeyGenerator hands out ULIDs: unique, and sorting them as strings
// gives creation order, even for keys made within the same millisecond.
type PushKeyGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	lastMs  uint64
	now     func() time.Time
}

func NewPushKeyGenerator() *PushKeyGenerator {
	return &PushKeyGenerator{entropy: ulid.Monotonic(rand.Reader, 0), now: time.Now}
}

func (g *PushKeyGenerator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// A clock going backwards must not break the ordering
	ms := ulid.Timestamp(g.now())
	if ms < g.lastMs {
		ms = g.lastMs
	}
	id, err := ulid.New(ms, g.entropy)
	if err != nil {
		return "", err
	}
	g.lastMs = ms
	return id.String(), nil
}

package reservations

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/redis"
)

const guardScope = "submit"

// SubmitGuard protects the submit path against double fire. The in-process
// flag rejects a second call while one is in flight for the same owner, so
// one user's slow submission never blocks another's; the redis fingerprint
// key suppresses an identical resubmission for its TTL, including from
// another process.
type SubmitGuard struct {
	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
	store    redis.GuardStore
	ttl      time.Duration
}

// NewSubmitGuard wires a guard over the given store.
func NewSubmitGuard(store redis.GuardStore, ttl time.Duration) *SubmitGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SubmitGuard{
		inflight: make(map[uuid.UUID]struct{}),
		store:    store,
		ttl:      ttl,
	}
}

// GuardLease is a held guard. Exactly one of Commit or Abort must be called.
type GuardLease struct {
	guard   *SubmitGuard
	ownerID uuid.UUID
	key     string
}

// Acquire takes the guard for one submission attempt by the given owner.
func (g *SubmitGuard) Acquire(ctx context.Context, ownerID uuid.UUID, fingerprint string) (*GuardLease, error) {
	if !g.take(ownerID) {
		return nil, apperr.New(apperr.CodeConflict, "a submission is already in progress")
	}
	key := g.store.GuardKey(guardScope, fingerprint)
	ok, err := g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		g.release(ownerID)
		return nil, apperr.Wrap(apperr.CodeDependency, err, "failed to reach the submit guard store")
	}
	if !ok {
		g.release(ownerID)
		return nil, apperr.New(apperr.CodeIdempotency, "an identical submission was just processed")
	}
	return &GuardLease{guard: g, ownerID: ownerID, key: key}, nil
}

func (g *SubmitGuard) take(ownerID uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.inflight[ownerID]; held {
		return false
	}
	g.inflight[ownerID] = struct{}{}
	return true
}

func (g *SubmitGuard) release(ownerID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, ownerID)
}

// Commit releases the in-process flag and leaves the fingerprint key to
// expire, so an identical resubmission keeps being rejected for the TTL.
func (l *GuardLease) Commit() {
	l.guard.release(l.ownerID)
}

// Abort releases the guard entirely so the caller may retry after a failed
// submission.
func (l *GuardLease) Abort(ctx context.Context) {
	_ = l.guard.store.Del(ctx, l.key)
	l.guard.release(l.ownerID)
}

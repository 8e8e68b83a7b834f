package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cyberquiz-service/internal/domain"
	"cyberquiz-service/internal/infra/kv"
)

// SessionTTL bounds how long a granted admin session stays valid.
const SessionTTL = time.Hour

// SessionValid reports whether the session still authorizes admin
// operations at the given instant.
func SessionValid(session domain.AdminSession, now time.Time) bool {
	return session.Authorized && now.Sub(session.GrantedAt) < SessionTTL
}

// Gate is a timestamp-TTL cache of the external authorization decision. It
// performs no verification of its own and is explicitly not a real security
// boundary.
type Gate struct {
	store kv.Store
	now   func() time.Time
}

func NewGate(store kv.Store) *Gate {
	return NewGateWithClock(store, time.Now)
}

// NewGateWithClock is test-only for deterministic expiry checks.
func NewGateWithClock(store kv.Store, now func() time.Time) *Gate {
	return &Gate{store: store, now: now}
}

// IsAuthorized reports whether a stored, unexpired session exists. Read
// failures and corrupt data count as unauthorized.
func (g *Gate) IsAuthorized(ctx context.Context) bool {
	data, err := g.store.Get(ctx, kv.KeyAdminSession)
	if err != nil {
		if err != kv.ErrNotFound {
			log.Printf("admin session read failed, treating as unauthorized: %v", err)
		}
		return false
	}
	var session domain.AdminSession
	if err := json.Unmarshal(data, &session); err != nil {
		log.Printf("admin session corrupt, treating as unauthorized: %v", err)
		return false
	}
	return SessionValid(session, g.now())
}

// Grant records a fresh authorization. Callers invoke this only after the
// external verification reported success.
func (g *Gate) Grant(ctx context.Context, userData map[string]any) (domain.AdminSession, error) {
	session := domain.AdminSession{
		Authorized: true,
		GrantedAt:  g.now(),
		UserData:   userData,
	}
	data, err := json.Marshal(session)
	if err != nil {
		return domain.AdminSession{}, fmt.Errorf("encode admin session: %w", err)
	}
	if err := g.store.Set(ctx, kv.KeyAdminSession, data); err != nil {
		return domain.AdminSession{}, fmt.Errorf("persist admin session: %w", err)
	}
	return session, nil
}

// Revoke clears the stored session.
func (g *Gate) Revoke(ctx context.Context) error {
	if err := g.store.Delete(ctx, kv.KeyAdminSession); err != nil {
		return fmt.Errorf("clear admin session: %w", err)
	}
	return nil
}

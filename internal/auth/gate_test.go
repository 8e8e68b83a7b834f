package auth

import (
	"context"
	"testing"
	"time"

	"cyberquiz-service/internal/domain"
	"cyberquiz-service/internal/infra/kv"
	"cyberquiz-service/internal/infra/memory"
)

func TestSessionValidTTLBoundary(t *testing.T) {
	granted := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	session := domain.AdminSession{Authorized: true, GrantedAt: granted}

	if !SessionValid(session, granted.Add(59*time.Minute+59*time.Second)) {
		t.Fatalf("expected valid at 59m59s")
	}
	if SessionValid(session, granted.Add(time.Hour)) {
		t.Fatalf("expected expired at exactly one hour")
	}
	if SessionValid(domain.AdminSession{Authorized: false, GrantedAt: granted}, granted) {
		t.Fatalf("unauthorized session must never validate")
	}
}

func TestGateGrantAndExpiry(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	gate := NewGateWithClock(store, func() time.Time { return now })

	if gate.IsAuthorized(ctx) {
		t.Fatalf("expected unauthorized before grant")
	}

	if _, err := gate.Grant(ctx, map[string]any{"source": "test"}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !gate.IsAuthorized(ctx) {
		t.Fatalf("expected authorized after grant")
	}

	// The stored decision expires purely by timestamp.
	now = now.Add(SessionTTL)
	if gate.IsAuthorized(ctx) {
		t.Fatalf("expected expiry after TTL")
	}
}

func TestGateRevoke(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	gate := NewGate(store)

	if _, err := gate.Grant(ctx, nil); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := gate.Revoke(ctx); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if gate.IsAuthorized(ctx) {
		t.Fatalf("expected unauthorized after revoke")
	}
	if _, err := store.Get(ctx, kv.KeyAdminSession); err != kv.ErrNotFound {
		t.Fatalf("expected cleared session key, got %v", err)
	}
}

func TestGateToleratesCorruptSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	if err := store.Set(ctx, kv.KeyAdminSession, []byte("42")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if NewGate(store).IsAuthorized(ctx) {
		t.Fatalf("corrupt session must read as unauthorized")
	}
}

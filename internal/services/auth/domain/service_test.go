package domain

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

const orcidJosiah = "0000-0002-1825-0097"

func base64Encode(value []byte) string {
	return base64.StdEncoding.EncodeToString(value)
}

type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]SessionRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]SessionRecord)}
}

func (f *fakeStore) PutSession(_ context.Context, session SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, sessionID string) (SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return SessionRecord{}, ErrNotFound
	}
	return session, nil
}

func (f *fakeStore) RevokeSession(_ context.Context, sessionID string, revokedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	at := revokedAt.UTC()
	session.RevokedAt = &at
	f.sessions[sessionID] = session
	return nil
}

func testSessionConfig(t *testing.T) SessionConfig {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate session keypair: %v", err)
	}
	return SessionConfig{
		Issuer:     "preprint.review-auth",
		Audience:   "preprint.review",
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		TTL:        time.Hour,
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(prefix string) func() (string, error) {
	next := 0
	return func() (string, error) {
		next++
		return fmt.Sprintf("%s-%d", prefix, next), nil
	}
}

func TestSelectStrategy(t *testing.T) {
	t.Parallel()

	mock, err := SelectStrategy("  Mock ", ORCIDConfig{})
	if err != nil {
		t.Fatalf("select mock: %v", err)
	}
	if mock.Name() != StrategyMock {
		t.Fatalf("mock.Name() = %q, want %q", mock.Name(), StrategyMock)
	}

	orcid, err := SelectStrategy("orcid", ORCIDConfig{ClientID: "client-1"})
	if err != nil {
		t.Fatalf("select orcid: %v", err)
	}
	if orcid.Name() != StrategyORCID {
		t.Fatalf("orcid.Name() = %q, want %q", orcid.Name(), StrategyORCID)
	}

	if _, err := SelectStrategy("ldap", ORCIDConfig{}); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("unknown strategy error = %v, want ErrUnknownStrategy", err)
	}
	if _, err := SelectStrategy("", ORCIDConfig{}); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("empty strategy error = %v, want ErrUnknownStrategy", err)
	}
}

func TestMockStrategy_CompleteLoginNormalizesORCID(t *testing.T) {
	t.Parallel()

	strategy := NewMockStrategy()
	identity, err := strategy.CompleteLogin(context.Background(), CompleteLoginInput{
		ORCID: "https://orcid.org/0000-0002-1694-233x",
	})
	if err != nil {
		t.Fatalf("complete login: %v", err)
	}
	if identity.ORCID != "0000-0002-1694-233X" {
		t.Fatalf("identity.ORCID = %q, want 0000-0002-1694-233X", identity.ORCID)
	}

	if _, err := strategy.CompleteLogin(context.Background(), CompleteLoginInput{ORCID: "   "}); !errors.Is(err, ErrEmptyOrcid) {
		t.Fatalf("empty orcid error = %v, want ErrEmptyOrcid", err)
	}
}

func TestMockStrategy_BeginLoginIssuesUniqueStates(t *testing.T) {
	t.Parallel()

	strategy := NewMockStrategy()
	first, err := strategy.BeginLogin(context.Background(), BeginLoginInput{})
	if err != nil {
		t.Fatalf("first begin login: %v", err)
	}
	second, err := strategy.BeginLogin(context.Background(), BeginLoginInput{})
	if err != nil {
		t.Fatalf("second begin login: %v", err)
	}
	if first.State == "" || first.State == second.State {
		t.Fatalf("states %q and %q, want distinct non-empty values", first.State, second.State)
	}
	if first.AuthorizeURL != "" {
		t.Fatalf("mock challenge has authorize URL %q, want none", first.AuthorizeURL)
	}
}

func TestCompleteLogin_MintsValidatableSession(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.May, 11, 8, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := NewService(store, NewMockStrategy(), testSessionConfig(t), fixedClock(at), sequentialIDGenerator("sess"))

	session, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{ORCID: orcidJosiah})
	if err != nil {
		t.Fatalf("complete login: %v", err)
	}
	if session.ID != "sess-1" {
		t.Fatalf("session.ID = %q, want sess-1", session.ID)
	}
	if session.Identity.ORCID != orcidJosiah {
		t.Fatalf("session identity = %q, want %q", session.Identity.ORCID, orcidJosiah)
	}
	if !session.ExpiresAt.Equal(at.Add(time.Hour)) {
		t.Fatalf("session.ExpiresAt = %v, want %v", session.ExpiresAt, at.Add(time.Hour))
	}
	if !strings.Contains(session.Token, ".") {
		t.Fatalf("session token %q is not a JWT", session.Token)
	}

	claims, err := svc.ValidateSession(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("validate session: %v", err)
	}
	if claims.ORCID != orcidJosiah {
		t.Fatalf("claims.ORCID = %q, want %q", claims.ORCID, orcidJosiah)
	}
	if claims.JWTID != session.ID {
		t.Fatalf("claims.JWTID = %q, want %q", claims.JWTID, session.ID)
	}
}

func TestValidateSession_RejectsTamperedAndForeignTokens(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.May, 11, 8, 0, 0, 0, time.UTC)
	store := newFakeStore()
	cfg := testSessionConfig(t)
	svc := NewService(store, NewMockStrategy(), cfg, fixedClock(at), sequentialIDGenerator("sess"))

	session, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{ORCID: orcidJosiah})
	if err != nil {
		t.Fatalf("complete login: %v", err)
	}

	if _, err := svc.ValidateSession(context.Background(), session.Token+"x"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("tampered token error = %v, want ErrTokenInvalid", err)
	}
	if _, err := svc.ValidateSession(context.Background(), ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("empty token error = %v, want ErrTokenInvalid", err)
	}

	// Tokens signed by a different key never validate.
	otherSvc := NewService(newFakeStore(), NewMockStrategy(), testSessionConfig(t), fixedClock(at), sequentialIDGenerator("other"))
	foreign, err := otherSvc.CompleteLogin(context.Background(), CompleteLoginInput{ORCID: orcidJosiah})
	if err != nil {
		t.Fatalf("foreign complete login: %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), foreign.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("foreign token error = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateSession_ExpiryAndRevocation(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.May, 11, 8, 0, 0, 0, time.UTC)
	now := at
	store := newFakeStore()
	svc := NewService(store, NewMockStrategy(), testSessionConfig(t), func() time.Time { return now }, sequentialIDGenerator("sess"))

	session, err := svc.CompleteLogin(context.Background(), CompleteLoginInput{ORCID: orcidJosiah})
	if err != nil {
		t.Fatalf("complete login: %v", err)
	}

	now = at.Add(2 * time.Hour)
	if _, err := svc.ValidateSession(context.Background(), session.Token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired token error = %v, want ErrTokenExpired", err)
	}

	now = at
	if err := svc.RevokeSession(context.Background(), session.ID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	if _, err := svc.ValidateSession(context.Background(), session.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("revoked token error = %v, want ErrTokenInvalid", err)
	}

	// Revoking an unknown session is a no-op.
	if err := svc.RevokeSession(context.Background(), "sess-unknown"); err != nil {
		t.Fatalf("revoke unknown session: %v", err)
	}
}

func TestLoadSessionConfigFromEnv(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	t.Setenv("PREPRINT_REVIEW_AUTH_SESSION_ISSUER", "preprint.review-auth")
	t.Setenv("PREPRINT_REVIEW_AUTH_SESSION_AUDIENCE", "preprint.review")
	t.Setenv("PREPRINT_REVIEW_AUTH_SESSION_PUBLIC_KEY", base64Encode(publicKey))
	t.Setenv("PREPRINT_REVIEW_AUTH_SESSION_PRIVATE_KEY", base64Encode(privateKey))
	t.Setenv("PREPRINT_REVIEW_AUTH_SESSION_TTL", "30m")

	cfg, err := LoadSessionConfigFromEnv()
	if err != nil {
		t.Fatalf("load session config: %v", err)
	}
	if cfg.Issuer != "preprint.review-auth" || cfg.Audience != "preprint.review" {
		t.Fatalf("config issuer/audience = %q/%q", cfg.Issuer, cfg.Audience)
	}
	if cfg.TTL != 30*time.Minute {
		t.Fatalf("config TTL = %v, want 30m", cfg.TTL)
	}
	if len(cfg.PublicKey) != ed25519.PublicKeySize || len(cfg.PrivateKey) != ed25519.PrivateKeySize {
		t.Fatalf("config key sizes = %d/%d", len(cfg.PublicKey), len(cfg.PrivateKey))
	}

	t.Setenv("PREPRINT_REVIEW_AUTH_SESSION_ISSUER", "")
	if _, err := LoadSessionConfigFromEnv(); err == nil {
		t.Fatal("missing issuer config loaded without error")
	}
}

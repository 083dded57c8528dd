package session

import (
	"context"
	"testing"
	"time"

	"github.com/nimbushare/openidconnect/identity"
)

type fakeStore struct {
	sessions map[string]*identity.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]*identity.Session)}
}

func (s *fakeStore) SaveSession(_ context.Context, rec *identity.Session) error {
	s.sessions[rec.ID] = rec
	return nil
}

func (s *fakeStore) FindSession(_ context.Context, id string) (*identity.Session, error) {
	return s.sessions[id], nil
}

func (s *fakeStore) DeleteSession(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func TestStoreStrategyRoundTrip(t *testing.T) {
	strategy := NewStoreStrategy(newFakeStore(), time.Hour)

	created, err := strategy.Create("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	validated, err := strategy.Validate(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validated.UserUID != "alice" || validated.ID != created.ID {
		t.Fatalf("unexpected session: %+v", validated)
	}
}

func TestStoreStrategyUnknownToken(t *testing.T) {
	strategy := NewStoreStrategy(newFakeStore(), time.Hour)

	if _, err := strategy.Validate("no-such-token"); err == nil {
		t.Fatal("expected error for unknown token")
	}
}

func TestStoreStrategyExpired(t *testing.T) {
	store := newFakeStore()
	strategy := NewStoreStrategy(store, -time.Minute)

	created, err := strategy.Create("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := strategy.Validate(created.ID); err == nil {
		t.Fatal("expected error for expired session")
	}
	if store.sessions[created.ID] != nil {
		t.Error("expired session must be deleted")
	}
}

func TestStoreStrategyRevoke(t *testing.T) {
	strategy := NewStoreStrategy(newFakeStore(), time.Hour)

	created, _ := strategy.Create("alice")
	if err := strategy.Revoke(created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := strategy.Validate(created.ID); err == nil {
		t.Fatal("expected revoked token to stop validating")
	}
}

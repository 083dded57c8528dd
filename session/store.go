package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nimbushare/openidconnect/identity"
)

// Store persists sessions for the database strategy. Find returns nil for
// an unknown id, not an error.
type Store interface {
	SaveSession(ctx context.Context, s *identity.Session) error
	FindSession(ctx context.Context, id string) (*identity.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// StoreStrategy issues opaque tokens backed by a session store. Unlike the
// JWT strategy, sessions can be revoked by deleting the row.
type StoreStrategy struct {
	store  Store
	expiry time.Duration
}

func NewStoreStrategy(store Store, expiry time.Duration) *StoreStrategy {
	return &StoreStrategy{store: store, expiry: expiry}
}

func (s *StoreStrategy) Create(userUID string) (*Session, error) {
	now := time.Now()
	rec := &identity.Session{
		ID:        uuid.New().String(),
		UserUID:   userUID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.expiry),
	}
	if err := s.store.SaveSession(context.Background(), rec); err != nil {
		return nil, err
	}
	return &Session{
		ID:        rec.ID,
		UserUID:   rec.UserUID,
		ExpiresAt: rec.ExpiresAt,
		IssuedAt:  rec.IssuedAt,
	}, nil
}

func (s *StoreStrategy) Validate(token string) (*Session, error) {
	rec, err := s.store.FindSession(context.Background(), token)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("unknown session token")
	}
	if time.Now().After(rec.ExpiresAt) {
		// Expired rows are garbage either way.
		s.store.DeleteSession(context.Background(), rec.ID)
		return nil, errors.New("session expired")
	}
	return &Session{
		ID:        rec.ID,
		UserUID:   rec.UserUID,
		ExpiresAt: rec.ExpiresAt,
		IssuedAt:  rec.IssuedAt,
	}, nil
}

// Revoke deletes a stored session so its token stops validating.
func (s *StoreStrategy) Revoke(token string) error {
	return s.store.DeleteSession(context.Background(), token)
}

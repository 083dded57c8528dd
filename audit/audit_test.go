package audit

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nimbushare/openidconnect/identity"
)

type fakeStore struct {
	events []*identity.LoginEvent
	err    error
}

func (s *fakeStore) SaveEvent(_ context.Context, event *identity.LoginEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func TestRecord(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, zap.NewNop())

	rec.Record(context.Background(), EventLoginSuccess, "alice", "ok", "", "198.51.100.7")

	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	event := store.events[0]
	if event.Type != EventLoginSuccess || event.UserUID != "alice" || event.IPAddress != "198.51.100.7" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.ID == "" || event.CreatedAt.IsZero() {
		t.Fatal("expected id and timestamp to be populated")
	}
}

func TestRecordStoreFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	rec := NewRecorder(store, zap.NewNop())

	rec.Record(context.Background(), EventLoginFailure, "", "failed", "boom", "")
}

func TestRecordNilRecorder(t *testing.T) {
	var rec *Recorder
	rec.Record(context.Background(), EventLoginSuccess, "alice", "ok", "", "")
}

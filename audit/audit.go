// Package audit records SSO login outcomes for operators. Recording is
// strictly best-effort: a broken audit sink must never break a login.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nimbushare/openidconnect/identity"
)

const (
	EventLoginSuccess    = "sso.login.success"
	EventLoginFailure    = "sso.login.failure"
	EventLoginBlocked    = "sso.login.blocked"
	EventUserProvisioned = "sso.user.provisioned"
)

// Store persists audit events.
type Store interface {
	SaveEvent(ctx context.Context, event *identity.LoginEvent) error
}

// Recorder writes audit events to a store.
type Recorder struct {
	store Store
	log   *zap.Logger
}

func NewRecorder(store Store, log *zap.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Record persists one event. Failures are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, eventType, userUID, status, message, ip string) {
	if r == nil || r.store == nil {
		return
	}
	event := &identity.LoginEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		UserUID:   userUID,
		Status:    status,
		Message:   message,
		IPAddress: ip,
		CreatedAt: time.Now(),
	}
	if err := r.store.SaveEvent(ctx, event); err != nil {
		r.log.Error("can't record audit event",
			zap.String("type", eventType), zap.Error(err))
	}
}

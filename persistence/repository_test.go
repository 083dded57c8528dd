package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/nimbushare/openidconnect/identity"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository("sqlite", ":memory:", false)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Low cost keeps the test fast; production uses the default.
	repo.SetHasher(NewBcryptHasher(bcryptMinCostForTests))
	return repo
}

const bcryptMinCostForTests = 4

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "alice", "secret-password")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.UID() != "alice" {
		t.Errorf("uid: got %q", created.UID())
	}

	got, err := repo.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.UID() != "alice" {
		t.Fatalf("expected alice, got %v", got)
	}

	// The raw password must never land in the database.
	var model identity.User
	if err := repo.DB().First(&model, "uid = ?", "alice").Error; err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if model.PasswordHash == "secret-password" || model.PasswordHash == "" {
		t.Error("password must be stored as a hash")
	}
	if !NewBcryptHasher(bcryptMinCostForTests).Compare("secret-password", model.PasswordHash) {
		t.Error("stored hash must verify against the original password")
	}
}

func TestGetAbsent(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("absent account must be nil, not an error")
	}
}

func TestCreateDuplicateFails(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := repo.Create(ctx, "alice", "pw2"); err == nil {
		t.Error("duplicate uid must be rejected by the store")
	}
}

func TestGetByEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, uid := range []string{"alice", "bob", "carol"} {
		u, err := repo.Create(ctx, uid, "pw")
		if err != nil {
			t.Fatalf("create %s: %v", uid, err)
		}
		email := "shared@example.com"
		if uid == "carol" {
			email = "carol@example.com"
		}
		if err := u.SetEMailAddress(ctx, email); err != nil {
			t.Fatalf("set email: %v", err)
		}
	}

	shared, err := repo.GetByEmail(ctx, "shared@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if len(shared) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(shared))
	}

	single, err := repo.GetByEmail(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if len(single) != 1 || single[0].UID() != "carol" {
		t.Errorf("expected carol, got %v", single)
	}

	none, err := repo.GetByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}

func TestSetters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.Create(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := u.SetEMailAddress(ctx, "foo@example.com"); err != nil {
		t.Fatalf("set email: %v", err)
	}
	if err := u.SetDisplayName(ctx, "Alice A."); err != nil {
		t.Fatalf("set display name: %v", err)
	}

	got, err := repo.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EMailAddress() != "foo@example.com" || got.DisplayName() != "Alice A." {
		t.Errorf("persisted attributes wrong: %q / %q", got.EMailAddress(), got.DisplayName())
	}
}

func TestSetUserValueUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SetUserValue(ctx, "alice", "core", "lostpassword", "100:token-a"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetUserValue(ctx, "alice", "core", "lostpassword", "200:token-b"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := repo.GetUserValue(ctx, "alice", "core", "lostpassword")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "200:token-b" {
		t.Errorf("expected the overwritten value, got %q", got)
	}

	unset, err := repo.GetUserValue(ctx, "alice", "core", "other")
	if err != nil {
		t.Fatalf("get unset: %v", err)
	}
	if unset != "" {
		t.Errorf("unset key must read empty, got %q", unset)
	}
}

func TestSessionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := &identity.Session{ID: uuid.New().String(), UserUID: "alice"}
	if err := repo.SaveSession(ctx, rec); err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, err := repo.FindSession(ctx, rec.ID)
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if got == nil || got.UserUID != "alice" {
		t.Fatalf("expected alice's session, got %v", got)
	}

	absent, err := repo.FindSession(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("find absent: %v", err)
	}
	if absent != nil {
		t.Error("unknown session id must read nil, not an error")
	}

	if err := repo.DeleteSession(ctx, rec.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	gone, err := repo.FindSession(ctx, rec.ID)
	if err != nil {
		t.Fatalf("find deleted: %v", err)
	}
	if gone != nil {
		t.Error("deleted session must be gone")
	}
}

func TestSaveEvent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	event := &identity.LoginEvent{
		ID:      uuid.New().String(),
		Type:    "sso.login.success",
		UserUID: "alice",
		Status:  "success",
	}
	if err := repo.SaveEvent(ctx, event); err != nil {
		t.Fatalf("save event: %v", err)
	}

	var count int64
	if err := repo.DB().Model(&identity.LoginEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one event, got %d", count)
	}
}

// Package persistence implements the account, preference and audit storage
// collaborators on GORM.
package persistence

import (
	"context"
	"errors"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nimbushare/openidconnect/identity"
	"github.com/nimbushare/openidconnect/lookup"
)

func init() {
	Register("sqlite", sqlite.Open)
	Register("postgres", postgres.Open)
	Register("mysql", mysql.Open)
}

// Repository is the GORM-backed implementation of lookup.UserStore and
// lookup.PreferenceStore, plus the audit event sink.
type Repository struct {
	db     *gorm.DB
	hasher *BcryptHasher
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

// SetHasher overrides the password hasher; the default is bcrypt at the
// package's standard cost.
func (r *Repository) SetHasher(h *BcryptHasher) {
	r.hasher = h
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&identity.User{},
		&identity.Preference{},
		&identity.Session{},
		&identity.LoginEvent{},
	)
}

// GetByEmail returns every account with the given email. Email is not
// unique; the caller decides what multiple matches mean.
func (r *Repository) GetByEmail(ctx context.Context, email string) ([]lookup.User, error) {
	var users []identity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Order("uid").Find(&users).Error; err != nil {
		return nil, err
	}
	handles := make([]lookup.User, 0, len(users))
	for i := range users {
		handles = append(handles, &userHandle{repo: r, model: users[i]})
	}
	return handles, nil
}

// Get returns the account with the given uid, or nil when none exists.
func (r *Repository) Get(ctx context.Context, uid string) (lookup.User, error) {
	var user identity.User
	err := r.db.WithContext(ctx).First(&user, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &userHandle{repo: r, model: user}, nil
}

// Create creates an account with a hashed credential. The primary key on
// uid turns a racing duplicate create into an error for the caller.
func (r *Repository) Create(ctx context.Context, uid, password string) (lookup.User, error) {
	hasher := r.hasher
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := identity.User{UID: uid, PasswordHash: hash}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &userHandle{repo: r, model: user}, nil
}

// SetUserValue upserts one per-user setting.
func (r *Repository) SetUserValue(ctx context.Context, uid, app, key, value string) error {
	pref := identity.Preference{UserUID: uid, App: app, Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_uid"}, {Name: "app"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
}

// GetUserValue reads one per-user setting; empty string when unset.
func (r *Repository) GetUserValue(ctx context.Context, uid, app, key string) (string, error) {
	var pref identity.Preference
	err := r.db.WithContext(ctx).
		First(&pref, "user_uid = ? AND app = ? AND key = ?", uid, app, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return pref.Value, nil
}

// SaveEvent persists one audit record.
func (r *Repository) SaveEvent(ctx context.Context, event *identity.LoginEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// SaveSession persists a stored session.
func (r *Repository) SaveSession(ctx context.Context, s *identity.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// FindSession returns a stored session, or nil when the id is unknown.
func (r *Repository) FindSession(ctx context.Context, id string) (*identity.Session, error) {
	var s identity.Session
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a stored session.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&identity.Session{}, "id = ?", id).Error
}

// userHandle is the lookup.User implementation handed out by the
// repository. Setters persist immediately.
type userHandle struct {
	repo  *Repository
	model identity.User
}

func (u *userHandle) UID() string          { return u.model.UID }
func (u *userHandle) DisplayName() string  { return u.model.DisplayName }
func (u *userHandle) EMailAddress() string { return u.model.Email }

func (u *userHandle) SetEMailAddress(ctx context.Context, email string) error {
	if err := u.update(ctx, "email", email); err != nil {
		return err
	}
	u.model.Email = email
	return nil
}

func (u *userHandle) SetDisplayName(ctx context.Context, name string) error {
	if err := u.update(ctx, "display_name", name); err != nil {
		return err
	}
	u.model.DisplayName = name
	return nil
}

func (u *userHandle) update(ctx context.Context, column string, value string) error {
	return u.repo.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("uid = ?", u.model.UID).
		Update(column, value).Error
}

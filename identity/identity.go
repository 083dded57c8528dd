// Package identity holds the persistence models for local accounts and
// their per-user settings.
package identity

import (
	"time"

	"gorm.io/gorm"
)

// User is a local account. UID is the account name and primary key; email
// carries no uniqueness constraint, matching how the account store behaves
// in deployments where several accounts share a mailbox.
type User struct {
	UID          string         `gorm:"primaryKey" json:"uid"`
	Email        string         `gorm:"index" json:"email"`
	DisplayName  string         `json:"display_name"`
	PasswordHash string         `json:"-"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Preference is one per-user key/value setting, namespaced by the app that
// owns it (the password-reset token lives at core/lostpassword).
type Preference struct {
	UserUID   string    `gorm:"primaryKey" json:"user_uid"`
	App       string    `gorm:"primaryKey" json:"app"`
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Preference) TableName() string { return "preferences" }

// Session is one stored login session, used by the database session
// strategy. The JWT strategy never touches this table.
type Session struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserUID   string    `gorm:"index" json:"user_uid"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

func (Session) TableName() string { return "sessions" }

// LoginEvent is one audit record of an SSO login attempt.
type LoginEvent struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"index" json:"type"`   // e.g. "sso.login.success"
	UserUID   string    `gorm:"index" json:"user_uid"`
	Status    string    `json:"status"`              // "success", "failure"
	Message   string    `json:"message"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (LoginEvent) TableName() string { return "login_events" }

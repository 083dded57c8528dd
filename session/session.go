// Package session issues and validates the host session handed out after a
// successful SSO login.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is an authenticated session for a resolved account.
type Session struct {
	ID        string    `json:"id"`
	UserUID   string    `json:"user_uid"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Strategy is a session issuance mechanism.
type Strategy interface {
	Create(userUID string) (*Session, error)
	Validate(token string) (*Session, error)
}

// JWTConfig holds the configuration for JWT-based sessions.
type JWTConfig struct {
	SigningMethod jwt.SigningMethod
	SigningKey    any
	VerifyingKey  any
	Expiry        time.Duration
}

// JWTStrategy issues stateless JWT sessions.
type JWTStrategy struct {
	config JWTConfig
}

func NewJWTStrategy(config JWTConfig) *JWTStrategy {
	return &JWTStrategy{config: config}
}

// NewHS256Strategy is a convenience constructor for HS256 sessions.
func NewHS256Strategy(secret string, expiry time.Duration) *JWTStrategy {
	return &JWTStrategy{
		config: JWTConfig{
			SigningMethod: jwt.SigningMethodHS256,
			SigningKey:    []byte(secret),
			VerifyingKey:  []byte(secret),
			Expiry:        expiry,
		},
	}
}

// Claims is the data stored in the session JWT.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *JWTStrategy) Create(userUID string) (*Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.Expiry)
	sid := uuid.New().String()

	claims := Claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(s.config.SigningMethod, claims)
	signed, err := token.SignedString(s.config.SigningKey)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:        signed,
		UserUID:   userUID,
		ExpiresAt: expiresAt,
		IssuedAt:  now,
	}, nil
}

func (s *JWTStrategy) Validate(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.config.SigningMethod.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.config.VerifyingKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return &Session{
		ID:        tokenString,
		UserUID:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
		IssuedAt:  claims.IssuedAt.Time,
	}, nil
}

// Package provider wraps the OpenID Connect handshake with the configured
// identity provider. Discovery, token exchange and ID-token verification
// are entirely the library's business; this package only turns a verified
// callback into a claim set for the lookup core.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/nimbushare/openidconnect/claims"
	"github.com/nimbushare/openidconnect/config"
)

// Client talks to one identity provider.
type Client struct {
	name     string
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config
	log      *zap.Logger
}

// NewClient discovers the provider's endpoints from its issuer URL.
func NewClient(ctx context.Context, cfg config.Provider, log *zap.Logger) (*Client, error) {
	p, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("provider: discover %s: %w", cfg.Issuer, err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     p.Endpoint(),
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &Client{
		name:     cfg.DisplayName,
		provider: p,
		verifier: p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth:    oauthCfg,
		log:      log,
	}, nil
}

// Name returns the provider's configured display name.
func (c *Client) Name() string { return c.name }

// AuthCodeURL returns the provider's authorization URL for the given state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens, verifies the ID token
// and returns its claims flattened for configured-attribute lookup.
func (c *Client) Exchange(ctx context.Context, code string) (claims.Set, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("provider: exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("provider: no id_token in token response")
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("provider: verify id token: %w", err)
	}

	var raw map[string]any
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("provider: parse claims: %w", err)
	}

	c.log.Debug("id token verified",
		zap.String("issuer", idToken.Issuer),
		zap.String("subject", idToken.Subject),
	)
	return claims.FromMap(raw), nil
}

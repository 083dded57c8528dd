// Package loginpage decides what the host's login page does for an
// unauthenticated visitor when an OpenID Connect provider is configured:
// offer the provider as an alternative login, and optionally skip the local
// login form entirely by redirecting to the provider.
package loginpage

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultLoginButtonName labels the alternative login option when no name
// is configured.
const DefaultLoginButtonName = "OpenID Connect"

// RedirectRoute is the host route that starts the provider handshake.
const RedirectRoute = "openidconnect.redirect"

const loginPath = "/login"

// Session exposes the authentication state of the current request.
type Session interface {
	IsLoggedIn() bool
}

// Request exposes the URI of the current request.
type Request interface {
	RequestURI() string
}

// Registrar registers the provider as an alternative login option on the
// login page.
type Registrar interface {
	RegisterAlternativeLogin(name string)
}

// Redirector issues the redirect response for the current request.
type Redirector interface {
	Redirect(url string)
}

// URLBuilder resolves a host route name to a URL.
type URLBuilder interface {
	LinkToRoute(route string, params map[string]string) string
}

// Options configure one Handle call.
type Options struct {
	LoginButtonName         string
	AutoRedirectOnLoginPage bool
}

// Decision records what Handle did, for callers and tests.
type Decision struct {
	ButtonRegistered bool
	Redirected       bool
	RedirectURL      string
}

// Behaviour applies the login page policy. It holds no state between
// requests; every Handle call decides exactly once.
type Behaviour struct {
	session    Session
	request    Request
	registrar  Registrar
	redirector Redirector
	urls       URLBuilder
	log        *zap.Logger
}

func NewBehaviour(session Session, request Request, registrar Registrar, redirector Redirector, urls URLBuilder, log *zap.Logger) *Behaviour {
	return &Behaviour{
		session:    session,
		request:    request,
		registrar:  registrar,
		redirector: redirector,
		urls:       urls,
		log:        log,
	}
}

// Handle applies the policy for the current request.
//
// Authenticated visitors are left alone. Everyone else gets the alternative
// login button; the auto redirect fires only on the bare login page, never
// on deep links — redirecting every unauthenticated request would break
// links into the application and loop when the provider redirects back to a
// non-login URL.
func (b *Behaviour) Handle(opts Options) Decision {
	if b.session.IsLoggedIn() {
		return Decision{}
	}

	name := opts.LoginButtonName
	if name == "" {
		name = DefaultLoginButtonName
	}
	b.registrar.RegisterAlternativeLogin(name)
	d := Decision{ButtonRegistered: true}

	if !opts.AutoRedirectOnLoginPage {
		return d
	}
	if !isLoginPage(b.request.RequestURI()) {
		return d
	}

	target := b.urls.LinkToRoute(RedirectRoute, nil)
	b.log.Debug("redirecting to openid connect provider", zap.String("url", target))
	b.redirector.Redirect(target)
	d.Redirected = true
	d.RedirectURL = target
	return d
}

// isLoginPage reports whether the request is for the bare login page.
func isLoginPage(requestURI string) bool {
	u, err := url.Parse(requestURI)
	if err != nil {
		return false
	}
	return strings.TrimSuffix(u.Path, "/") == loginPath
}

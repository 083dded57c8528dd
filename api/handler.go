// Package api exposes the SSO flow over HTTP: the provider handshake, the
// callback that resolves claims to an account, and the login page policy.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nimbushare/openidconnect/audit"
	"github.com/nimbushare/openidconnect/claims"
	"github.com/nimbushare/openidconnect/config"
	"github.com/nimbushare/openidconnect/loginpage"
	"github.com/nimbushare/openidconnect/lookup"
	"github.com/nimbushare/openidconnect/ratelimit"
	"github.com/nimbushare/openidconnect/session"
)

const (
	sessionCookieName = "nimbushare_session"
	stateCookieName   = "oidc_state"

	stateLength    = 32
	stateCookieTTL = 10 * time.Minute

	callbackLimit  = 10
	callbackWindow = time.Minute
)

// OIDCClient is the provider side of the handshake.
type OIDCClient interface {
	// Name is the provider's display name, shown on the login button.
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (claims.Set, error)
}

// Deps are the collaborators of the HTTP handler.
type Deps struct {
	Resolver *lookup.Manager
	Client   OIDCClient
	Sessions session.Strategy
	Limiter  ratelimit.Limiter
	Audit    *audit.Recorder
	Routes   *Routes
	Random   lookup.RandomGenerator
	Provider config.Provider
	Logger   *zap.Logger
}

type Handler struct {
	deps Deps
	log  *zap.Logger
}

func NewHandler(deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{deps: deps, log: log}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/login", h.HandleLoginPage)
	g.GET("/sso/redirect", h.HandleRedirect)
	g.GET("/sso/callback", h.HandleCallback)

	// Protected routes
	protected := g.Group("")
	protected.Use(h.AuthMiddleware)
	protected.GET("/whoami", h.HandleWhoAmI)
}

// HandleLoginPage applies the login page policy: register the provider as
// an alternative login and, when configured, redirect straight to it.
func (h *Handler) HandleLoginPage(c echo.Context) error {
	registrar := &buttonRegistrar{}
	redirector := &echoRedirector{c: c}

	behaviour := loginpage.NewBehaviour(
		&echoSession{c: c, sessions: h.deps.Sessions},
		echoRequest{c: c},
		registrar,
		redirector,
		h.deps.Routes,
		h.log,
	)
	decision := behaviour.Handle(loginpage.Options{
		LoginButtonName:         h.deps.Client.Name(),
		AutoRedirectOnLoginPage: h.deps.Provider.AutoRedirect,
	})
	if decision.Redirected {
		return redirector.err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"alternative_logins": registrar.names,
	})
}

// HandleRedirect starts the handshake: mint a state, remember it in a
// cookie and send the visitor to the provider.
func (h *Handler) HandleRedirect(c echo.Context) error {
	state, err := h.deps.Random.Generate(stateLength, lookup.CharsetAlnum)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Internal server error", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, h.deps.Client.AuthCodeURL(state))
}

// HandleCallback finishes the handshake: verify the state, exchange the
// code, resolve the claims to an account and hand out a session.
func (h *Handler) HandleCallback(c echo.Context) error {
	ctx := c.Request().Context()
	ip := c.RealIP()

	allowed, _, err := h.deps.Limiter.Allow(ctx, "callback:"+ip, callbackLimit, callbackWindow)
	if err != nil {
		// A broken limiter must not lock every user out.
		h.log.Warn("rate limiter unavailable", zap.Error(err))
		allowed = true
	}
	if !allowed {
		h.deps.Audit.Record(ctx, audit.EventLoginBlocked, "", "blocked", "too many attempts", ip)
		return h.Error(c, http.StatusTooManyRequests, "Too many login attempts", nil)
	}

	if errCode := c.QueryParam("error"); errCode != "" {
		h.deps.Audit.Record(ctx, audit.EventLoginFailure, "", "failed", errCode, ip)
		return h.Error(c, http.StatusUnauthorized, "Login failed",
			fmt.Errorf("provider returned %s: %s", errCode, c.QueryParam("error_description")))
	}

	state := c.QueryParam("state")
	cookie, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || cookie.Value != state {
		return h.Error(c, http.StatusBadRequest, "Invalid state", nil)
	}
	c.SetCookie(&http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	cs, err := h.deps.Client.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		h.deps.Audit.Record(ctx, audit.EventLoginFailure, "", "failed", "token exchange failed", ip)
		return h.Error(c, http.StatusUnauthorized, "OpenID Connect verification failed", err)
	}

	res, err := h.deps.Resolver.Resolve(ctx, cs)
	if err != nil {
		return h.resolveError(c, err, ip)
	}

	uid := res.User.UID()
	if res.Provisioned {
		h.deps.Audit.Record(ctx, audit.EventUserProvisioned, uid, "provisioned", "", ip)
	}
	if res.WelcomeMailError != nil {
		h.log.Warn("unable to send the invitation mail",
			zap.String("user", uid), zap.Error(res.WelcomeMailError))
	}
	h.deps.Audit.Record(ctx, audit.EventLoginSuccess, uid, "ok", "", ip)

	s, err := h.deps.Sessions.Create(uid)
	if err != nil {
		return h.Error(c, http.StatusInternalServerError, "Internal server error", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":    uid,
		"session": s,
		"token":   s.ID,
	})
}

// resolveError maps a failed resolution to an HTTP response. Configuration
// problems stay out of the login page; the operator gets the hint in the
// log instead.
func (h *Handler) resolveError(c echo.Context, err error, ip string) error {
	ctx := c.Request().Context()

	var cfgErr *lookup.ConfigError
	if errors.As(err, &cfgErr) {
		h.log.Error("openid connect is not configured correctly", zap.Error(cfgErr))
		return h.Error(c, http.StatusInternalServerError, "Internal server error", nil)
	}

	var loginErr *lookup.LoginError
	if errors.As(err, &loginErr) {
		h.deps.Audit.Record(ctx, audit.EventLoginFailure, "", string(loginErr.Kind), loginErr.Message, ip)
		return h.Error(c, http.StatusUnauthorized, loginErr.Message, nil)
	}

	return h.Error(c, http.StatusInternalServerError, "Internal server error", err)
}

func (h *Handler) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return h.Error(c, http.StatusUnauthorized, "Authorization required", nil)
		}

		s, err := h.deps.Sessions.Validate(token)
		if err != nil {
			return h.Error(c, http.StatusUnauthorized, "Unauthorized", err)
		}

		c.Set("session", s)
		return next(c)
	}
}

func (h *Handler) HandleWhoAmI(c echo.Context) error {
	s := c.Get("session").(*session.Session)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "authenticated",
		"session": s,
	})
}

// Helper for uniform error responses
func (h *Handler) Error(c echo.Context, code int, message string, err error) error {
	resp := map[string]interface{}{
		"status": message,
		"code":   code,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	return c.JSON(code, resp)
}

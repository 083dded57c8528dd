package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nimbushare/openidconnect/session"
)

// echoSession reads the authentication state of the current request from
// the session cookie or the Authorization header.
type echoSession struct {
	c        echo.Context
	sessions session.Strategy
}

func (s *echoSession) IsLoggedIn() bool {
	token := bearerToken(s.c)
	if token == "" {
		return false
	}
	_, err := s.sessions.Validate(token)
	return err == nil
}

type echoRequest struct {
	c echo.Context
}

func (r echoRequest) RequestURI() string {
	return r.c.Request().RequestURI
}

// buttonRegistrar collects the alternative login options registered for the
// current request so the login page can render them.
type buttonRegistrar struct {
	names []string
}

func (r *buttonRegistrar) RegisterAlternativeLogin(name string) {
	r.names = append(r.names, name)
}

type echoRedirector struct {
	c   echo.Context
	err error
}

func (r *echoRedirector) Redirect(url string) {
	r.err = r.c.Redirect(http.StatusFound, url)
}

// bearerToken extracts the session token from the request, preferring the
// Authorization header over the session cookie.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && header[:len(prefix)] == prefix {
			return header[len(prefix):]
		}
		return header
	}
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

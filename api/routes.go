package api

import (
	"net/url"
	"strings"

	"github.com/nimbushare/openidconnect/loginpage"
)

// routePaths maps host route names to their paths. Route names are what the
// rest of the code links against; the paths are an HTTP-layer detail.
var routePaths = map[string]string{
	loginpage.RedirectRoute:      "/sso/redirect",
	"settings.users.setpassword": "/settings/users/setpassword",
}

// Routes resolves named routes to URLs under the service base URL.
type Routes struct {
	base string
}

func NewRoutes(baseURL string) *Routes {
	return &Routes{base: strings.TrimSuffix(baseURL, "/")}
}

// LinkToRoute resolves a route name to a path relative to the host root.
func (r *Routes) LinkToRoute(route string, params map[string]string) string {
	path, ok := routePaths[route]
	if !ok {
		path = "/" + strings.ReplaceAll(route, ".", "/")
	}
	if len(params) == 0 {
		return path
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return path + "?" + values.Encode()
}

// LinkToRouteAbsolute resolves a route name to an absolute URL.
func (r *Routes) LinkToRouteAbsolute(route string, params map[string]string) string {
	return r.base + r.LinkToRoute(route, params)
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSConfig holds CORS configuration. "*" in any list allows everything.
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}

// AllowAll permits any origin, method and header.
var AllowAll = CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{"*"},
	AllowHeaders: []string{"*"},
}

func CORS(cfg CORSConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			h := c.Response().Header()
			origin := req.Header.Get(echo.HeaderOrigin)
			if origin == "" || !allowed(cfg.AllowOrigins, origin) {
				return next(c)
			}

			h.Add(echo.HeaderVary, echo.HeaderOrigin)
			h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			h.Set(echo.HeaderAccessControlAllowCredentials, "true")

			if req.Method != http.MethodOptions {
				return next(c)
			}

			// preflight
			if contains(cfg.AllowMethods, "*") {
				if m := req.Header.Get(echo.HeaderAccessControlRequestMethod); m != "" {
					h.Set(echo.HeaderAccessControlAllowMethods, m)
				}
			} else if len(cfg.AllowMethods) > 0 {
				h.Set(echo.HeaderAccessControlAllowMethods, strings.Join(cfg.AllowMethods, ", "))
			}
			if contains(cfg.AllowHeaders, "*") {
				if rh := req.Header.Get(echo.HeaderAccessControlRequestHeaders); rh != "" {
					h.Set(echo.HeaderAccessControlAllowHeaders, rh)
				}
			} else if len(cfg.AllowHeaders) > 0 {
				h.Set(echo.HeaderAccessControlAllowHeaders, strings.Join(cfg.AllowHeaders, ", "))
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}

func allowed(list []string, origin string) bool {
	return contains(list, "*") || contains(list, origin)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/washhub/carwash-web/internal/core/domain"
)

// RequireRole guards an HTML route. It never renders an error page:
//   - unauthenticated: redirect to the login page, remembering the target
//   - profile incomplete: redirect to profile completion
//   - any other role mismatch: redirect to the caller's own landing page
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a := AccessFrom(c)
			switch {
			case !a.Authenticated():
				return c.Redirect(http.StatusSeeOther, LoginURL(c.Request()))
			case a.Kind == domain.AccessProfileIncomplete:
				return c.Redirect(http.StatusSeeOther, domain.PathCompleteProfile)
			case !a.Allows(roles...):
				return c.Redirect(http.StatusSeeOther, a.Landing())
			}
			return next(c)
		}
	}
}

// RequireIdentity lets through any signed-in identity, with or without a
// usable profile.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !AccessFrom(c).Authenticated() {
				return c.Redirect(http.StatusSeeOther, LoginURL(c.Request()))
			}
			return next(c)
		}
	}
}

// GuestOnly sends signed-in users away from the login and sign-up pages.
func GuestOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if a := AccessFrom(c); a.Authenticated() {
				return c.Redirect(http.StatusSeeOther, a.Landing())
			}
			return next(c)
		}
	}
}

// LoginURL builds the login redirect for r. Only GET targets are remembered.
func LoginURL(r *http.Request) string {
	if r.Method != http.MethodGet {
		return domain.PathLogin
	}
	return domain.PathLogin + "?next=" + url.QueryEscape(r.URL.RequestURI())
}

// SafeNext returns next when it is a local path, and "" otherwise.
func SafeNext(next string) string {
	if len(next) < 1 || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return ""
	}
	return next
}

package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/pkg/i18n"
)

// Context keys set by the middleware in this package.
const (
	ctxAccess    = "access"
	ctxSession   = "session"
	ctxLocalizer = "localizer"
)

// AccessFrom returns the Access resolved for this request. Requests that did
// not pass through the session middleware are anonymous.
func AccessFrom(c echo.Context) domain.Access {
	if a, ok := c.Get(ctxAccess).(domain.Access); ok {
		return a
	}
	return domain.Anonymous()
}

// SessionFrom returns the server-side session of this request, or nil.
func SessionFrom(c echo.Context) *domain.Session {
	s, _ := c.Get(ctxSession).(*domain.Session)
	return s
}

// LocalizerFrom returns the request's localizer.
func LocalizerFrom(c echo.Context) *i18n.Localizer {
	if l, ok := c.Get(ctxLocalizer).(*i18n.Localizer); ok {
		return l
	}
	return fallbackCatalog.Localizer(i18n.DefaultLanguage)
}

// CSRFToken returns the token issued by echo's CSRF middleware, or "".
func CSRFToken(c echo.Context) string {
	tok, _ := c.Get(echomiddleware.DefaultCSRFConfig.ContextKey).(string)
	return tok
}

// SetAccess stores a; exposed for handler tests.
func SetAccess(c echo.Context, a domain.Access) {
	c.Set(ctxAccess, a)
}

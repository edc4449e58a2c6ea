package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/washhub/carwash-web/internal/api/middleware"
	"github.com/washhub/carwash-web/internal/api/view"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/infrastructure/supabase"
)

const flashCookie = "wh_flash"

// newPage builds the page skeleton for c and consumes a pending flash message.
func newPage(c echo.Context, title string) *view.Page {
	p := view.NewPage(title, middleware.AccessFrom(c), middleware.LocalizerFrom(c), middleware.CSRFToken(c))
	if ck, err := c.Cookie(flashCookie); err == nil && ck.Value != "" {
		if key, err := url.QueryUnescape(ck.Value); err == nil {
			p.Flash = key
		}
		c.SetCookie(&http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, HttpOnly: true})
	}
	return p
}

// redirectWithFlash redirects to target and shows key there.
func redirectWithFlash(c echo.Context, target, key string) error {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(key),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusSeeOther, target)
}

func render(c echo.Context, name string, p *view.Page) error {
	return c.Render(http.StatusOK, name, p)
}

// renderForm re-renders a form after a failed submit. Validation failures are
// shown next to their field; failures the user can act on become a flash
// message. Anything else is returned to the error handler.
func renderForm(c echo.Context, status int, name string, p *view.Page, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		p.Errors[ve.Field] = ve.Key
	case errors.Is(err, domain.ErrInvalidCredentials):
		p.Flash, p.FlashError = "auth.invalidCredentials", true
	case errors.Is(err, domain.ErrUserExists):
		p.Flash, p.FlashError = "auth.userExists", true
	case errors.Is(err, domain.ErrOAuthFlowExpired):
		p.Flash, p.FlashError = "auth.oauthExpired", true
	case errors.Is(err, domain.ErrInvalidTransition):
		p.Flash, p.FlashError = "errors.invalidTransition", true
	case isRemote(err):
		p.Flash, p.FlashError = "errors.remote", true
	default:
		return err
	}
	return c.Render(status, name, p)
}

// fill copies the posted values of fields into p.Form.
func fill(c echo.Context, p *view.Page, fields ...string) {
	for _, f := range fields {
		p.Form[f] = c.FormValue(f)
	}
}

// access returns the caller's Access; routes are guarded, so it is always
// authenticated here.
func access(c echo.Context) domain.Access {
	return middleware.AccessFrom(c)
}

// isRemote reports whether err came from the hosted backend or the network
// path to it.
func isRemote(err error) bool {
	var apiErr *supabase.APIError
	var netErr *url.Error
	return errors.As(err, &apiErr) || errors.As(err, &netErr)
}

func domainNotFound(err error) bool {
	return errors.Is(err, domain.ErrLaundryNotFound) ||
		errors.Is(err, domain.ErrBookingNotFound) ||
		errors.Is(err, domain.ErrProfileNotFound)
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

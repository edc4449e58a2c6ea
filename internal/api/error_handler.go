package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/api/middleware"
	"github.com/washhub/carwash-web/internal/api/view"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/infrastructure/supabase"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

type errorPage struct {
	Status  int
	Message string // translation key
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"error": "<message>"} under /api and the localized error page elsewhere.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, key, msg := resolveError(err, log, c)
		if isAPIRequest(c) {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		p := view.NewPage("errors.title", middleware.AccessFrom(c), middleware.LocalizerFrom(c), middleware.CSRFToken(c))
		p.Data = errorPage{Status: code, Message: key}
		if rerr := c.Render(code, "error", p); rerr != nil {
			log.Error().Err(rerr).Msg("failed to render error page")
			_ = c.String(code, http.StatusText(code))
		}
	}
}

func isAPIRequest(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/health")
}

// resolveError returns the status, the translation key for the error page
// and the message for the JSON envelope.
func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Echo's own errors (bind failures, 404 from router, CSRF, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		switch he.Code {
		case http.StatusNotFound:
			return he.Code, "errors.notFound", msg
		case http.StatusForbidden:
			if strings.Contains(strings.ToLower(msg), "csrf") {
				return he.Code, "errors.csrf", msg
			}
			return he.Code, "errors.forbidden", msg
		case http.StatusBadRequest:
			if strings.Contains(strings.ToLower(msg), "csrf") {
				return he.Code, "errors.csrf", msg
			}
		}
		return he.Code, "errors.generic", msg
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Key, ve.Error()
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrLaundryNotFound),
		errors.Is(err, domain.ErrServiceNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, "errors.notFound", err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "errors.forbidden", "access forbidden"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "errors.invalidTransition", err.Error()
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "errors.unauthorized", "unauthenticated"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "auth.userExists", "user already exists"
	}

	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) {
		log.Warn().
			Err(err).
			Int("backend_status", apiErr.Status).
			Str("reason", apiErr.Reason()).
			Str("path", c.Path()).
			Msg("backend request failed")
		return http.StatusBadGateway, "errors.remote", "backend unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "errors.generic", "internal server error"
}

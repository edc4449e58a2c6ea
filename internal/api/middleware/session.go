package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/api/metrics"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const (
	// SessionCookie carries a signed token naming the server-side session.
	SessionCookie = "wh_session"
	// OAuthCookie carries the id of an in-flight OAuth flow.
	OAuthCookie = "wh_oauth"

	sessionIssuer = "carwash-web"
)

type sessionLoader interface {
	LoadSession(ctx context.Context, sessionID string) (*domain.Session, error)
	DropSession(ctx context.Context, sessionID string) error
}

// SessionOptions configures SessionManager.
type SessionOptions struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
}

// SessionManager issues the session cookie and resolves every request's
// Access from it.
type SessionManager struct {
	opts     SessionOptions
	sessions sessionLoader
	resolver ports.SessionResolver
	log      zerolog.Logger
	now      func() time.Time
}

func NewSessionManager(opts SessionOptions, sessions sessionLoader, resolver ports.SessionResolver, log zerolog.Logger) *SessionManager {
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &SessionManager{opts: opts, sessions: sessions, resolver: resolver, log: log, now: time.Now}
}

// Middleware resolves the Access of the request on every call, so a sign-in
// or sign-out is visible to the very next request. The backend token of the
// session is attached to the request context for the repositories.
//
// A failing session store or auth backend never fails the request: it is
// served as anonymous and the guards decide what that means for the route.
// The cookie is kept so the session is picked up again once the dependency
// recovers.
func (m *SessionManager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access := m.resolve(c)
			metrics.SessionResolutionsTotal.WithLabelValues(string(access.Kind)).Inc()
			c.Set(ctxAccess, access)
			return next(c)
		}
	}
}

func (m *SessionManager) resolve(c echo.Context) domain.Access {
	sid := m.SessionID(c)
	if sid == "" {
		return domain.Anonymous()
	}

	ctx := c.Request().Context()
	sess, err := m.sessions.LoadSession(ctx, sid)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			m.Clear(c)
			return domain.Anonymous()
		}
		m.resolutionFailed(c, "load", err)
		return domain.Anonymous()
	}

	access, err := m.resolver.Resolve(ctx, sess.AccessToken)
	if err != nil {
		m.resolutionFailed(c, "resolve", err)
		return domain.Anonymous()
	}
	if !access.Authenticated() {
		// The backend no longer accepts the session's token.
		if err := m.sessions.DropSession(ctx, sid); err != nil {
			m.log.Warn().Err(err).Str("session_id", sid).Msg("drop rejected session")
		}
		m.Clear(c)
		return access
	}

	c.Set(ctxSession, sess)
	c.SetRequest(c.Request().WithContext(ports.WithAccessToken(ctx, sess.AccessToken)))
	return access
}

func (m *SessionManager) resolutionFailed(c echo.Context, stage string, err error) {
	metrics.SessionResolutionFailuresTotal.WithLabelValues(stage).Inc()
	m.log.Error().Err(err).
		Str("stage", stage).
		Str("path", c.Path()).
		Msg("session resolution failed, serving request as anonymous")
}

// Issue sets the session cookie for sess.
func (m *SessionManager) Issue(c echo.Context, sess *domain.Session) error {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sess.ID,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.opts.TTL)),
	})
	signed, err := token.SignedString(m.opts.Secret)
	if err != nil {
		return err
	}

	c.SetCookie(m.cookie(SessionCookie, signed, int(m.opts.TTL.Seconds())))
	return nil
}

// Clear removes the session cookie.
func (m *SessionManager) Clear(c echo.Context) {
	c.SetCookie(m.cookie(SessionCookie, "", -1))
}

// SessionID returns the session id named by a valid session cookie, or "".
func (m *SessionManager) SessionID(c echo.Context) string {
	ck, err := c.Cookie(SessionCookie)
	if err != nil || ck.Value == "" {
		return ""
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(ck.Value, claims, func(*jwt.Token) (any, error) {
		return m.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid {
		m.log.Debug().Err(err).Msg("rejected session cookie")
		return ""
	}
	return claims.ID
}

// SetFlowCookie remembers the OAuth flow id until the provider calls back.
func (m *SessionManager) SetFlowCookie(c echo.Context, flowID string, ttl time.Duration) {
	c.SetCookie(m.cookie(OAuthCookie, flowID, int(ttl.Seconds())))
}

// TakeFlowCookie returns the OAuth flow id and clears its cookie.
func (m *SessionManager) TakeFlowCookie(c echo.Context) string {
	ck, err := c.Cookie(OAuthCookie)
	if err != nil {
		return ""
	}
	c.SetCookie(m.cookie(OAuthCookie, "", -1))
	return ck.Value
}

func (m *SessionManager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

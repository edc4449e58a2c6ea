package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

// Auth implements ports.AuthProvider against the hosted auth service.
type Auth struct {
	c *Client

	mu        sync.RWMutex
	listeners map[int]ports.AuthListener
	nextID    int
}

// NewAuth returns the auth provider of c.
func NewAuth(c *Client) *Auth {
	return &Auth{c: c, listeners: make(map[int]ports.AuthListener)}
}

var _ ports.AuthProvider = (*Auth)(nil)

type userResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	ConfirmedAt      *time.Time `json:"confirmed_at"`
}

func (u userResponse) identity() domain.Identity {
	confirmed := u.EmailConfirmedAt
	if confirmed == nil {
		confirmed = u.ConfirmedAt
	}
	return domain.Identity{ID: u.ID, Email: u.Email, ConfirmedAt: confirmed}
}

type sessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	User         userResponse `json:"user"`

	// Sign-up without auto-confirmation answers with the bare user object.
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s sessionResponse) session() *domain.AuthSession {
	expires := time.Unix(s.ExpiresAt, 0).UTC()
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		expires = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second).UTC()
	}
	return &domain.AuthSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    expires,
		Identity:     s.User.identity(),
	}
}

func (a *Auth) token(ctx context.Context, grant string, body any) (*domain.AuthSession, error) {
	var out sessionResponse
	err := a.c.do(ctx, request{
		operation: "token_" + grant,
		table:     "auth",
		method:    http.MethodPost,
		path:      "/auth/v1/token",
		query:     url.Values{"grant_type": {grant}},
		body:      body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.session(), nil
}

func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	s, err := a.token(ctx, "password", map[string]string{"email": email, "password": password})
	if err != nil {
		if isStatus(err, http.StatusBadRequest) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	a.emit(ports.AuthEvent{Type: ports.AuthSignedIn, UserID: s.Identity.ID})
	return s, nil
}

func (a *Auth) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.SignUpResult, error) {
	var out sessionResponse
	err := a.c.do(ctx, request{
		operation: "signup",
		table:     "auth",
		method:    http.MethodPost,
		path:      "/auth/v1/signup",
		body: map[string]any{
			"email":    email,
			"password": password,
			"data":     metadata,
		},
	}, &out)
	if err != nil {
		if isUserExists(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	if out.AccessToken == "" {
		return &domain.SignUpResult{
			Identity: domain.Identity{ID: out.ID, Email: out.Email},
		}, nil
	}

	s := out.session()
	a.emit(ports.AuthEvent{Type: ports.AuthSignedIn, UserID: s.Identity.ID})
	return &domain.SignUpResult{Identity: s.Identity, Session: s}, nil
}

func (a *Auth) SignOut(ctx context.Context, accessToken string) error {
	id, _ := a.GetUser(ctx, accessToken)

	err := a.c.do(ctx, request{
		operation: "logout",
		table:     "auth",
		method:    http.MethodPost,
		path:      "/auth/v1/logout",
		token:     accessToken,
	}, nil)
	// An already revoked token is as signed out as it gets.
	if err != nil && !isStatus(err, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound) {
		return err
	}

	ev := ports.AuthEvent{Type: ports.AuthSignedOut}
	if id != nil {
		ev.UserID = id.ID
	}
	a.emit(ev)
	return nil
}

func (a *Auth) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	if accessToken == "" {
		return nil, domain.ErrUnauthenticated
	}
	var out userResponse
	err := a.c.do(ctx, request{
		operation: "user",
		table:     "auth",
		method:    http.MethodGet,
		path:      "/auth/v1/user",
		token:     accessToken,
	}, &out)
	if err != nil {
		if isStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	id := out.identity()
	return &id, nil
}

func (a *Auth) RefreshSession(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	s, err := a.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
	if err != nil {
		if isStatus(err, http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	a.emit(ports.AuthEvent{Type: ports.AuthTokenRefreshed, UserID: s.Identity.ID})
	return s, nil
}

// AuthorizeURL builds the provider redirect of the PKCE flow. The browser is
// sent there; the backend calls back with ?code=.
func (a *Auth) AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error) {
	if provider == "" {
		return "", errors.New("supabase: oauth provider is required")
	}
	q := url.Values{
		"provider":              {provider},
		"redirect_to":           {redirectTo},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"s256"},
	}
	return a.c.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

func (a *Auth) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.AuthSession, error) {
	s, err := a.token(ctx, "pkce", map[string]string{"auth_code": code, "code_verifier": codeVerifier})
	if err != nil {
		if isStatus(err, http.StatusBadRequest, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrOAuthFlowExpired, err)
		}
		return nil, err
	}
	a.emit(ports.AuthEvent{Type: ports.AuthSignedIn, UserID: s.Identity.ID})
	return s, nil
}

// Subscribe registers l for auth events.
func (a *Auth) Subscribe(l ports.AuthListener) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

func (a *Auth) emit(ev ports.AuthEvent) {
	a.mu.RLock()
	ls := make([]ports.AuthListener, 0, len(a.listeners))
	for _, l := range a.listeners {
		ls = append(ls, l)
	}
	a.mu.RUnlock()

	for _, l := range ls {
		l(ev)
	}
}

func isStatus(err error, statuses ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, s := range statuses {
		if apiErr.Status == s {
			return true
		}
	}
	return false
}

func isUserExists(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Reason() == "user_already_exists" || apiErr.Reason() == "email_exists" {
		return true
	}
	return apiErr.Status == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(apiErr.Error()), "already registered")
}

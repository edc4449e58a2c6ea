package ports

import (
	"context"

	"github.com/washhub/carwash-web/internal/core/domain"
)

// AuthEventType names a session change signalled by the auth provider.
type AuthEventType string

const (
	AuthSignedIn       AuthEventType = "signed_in"
	AuthSignedOut      AuthEventType = "signed_out"
	AuthTokenRefreshed AuthEventType = "token_refreshed"
)

// AuthEvent is delivered to subscribers after the provider confirms a change.
type AuthEvent struct {
	Type   AuthEventType
	UserID string
}

// AuthListener receives auth events. It is called synchronously and must not block.
type AuthListener func(AuthEvent)

// AuthProvider is the hosted authentication service.
type AuthProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.SignUpResult, error)
	SignOut(ctx context.Context, accessToken string) error
	// GetUser returns domain.ErrUnauthenticated when the token is not accepted.
	GetUser(ctx context.Context, accessToken string) (*domain.Identity, error)
	RefreshSession(ctx context.Context, refreshToken string) (*domain.AuthSession, error)
	AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error)
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.AuthSession, error)
	// Subscribe registers l and returns a function that removes it.
	Subscribe(l AuthListener) (unsubscribe func())
}

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
}

// SignUpOutcome tells the caller whether the user is signed in already or
// must confirm the address first.
type SignUpOutcome struct {
	Session              *domain.Session
	ConfirmationRequired bool
}

// AuthService drives sign-in, sign-up, sign-out and the OAuth redirect flow.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, in SignUpInput) (*SignUpOutcome, error)
	SignOut(ctx context.Context, sessionID string) error
	BeginOAuth(ctx context.Context, provider string) (redirectURL, flowID string, err error)
	CompleteOAuth(ctx context.Context, flowID, code string) (*domain.Session, error)
	// LoadSession fetches a session and refreshes its tokens when they are about to expire.
	LoadSession(ctx context.Context, sessionID string) (*domain.Session, error)
	// DropSession deletes a session the backend no longer accepts.
	DropSession(ctx context.Context, sessionID string) error
}

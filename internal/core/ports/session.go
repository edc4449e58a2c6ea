package ports

import (
	"context"
	"time"

	"github.com/washhub/carwash-web/internal/core/domain"
)

// SessionStore keeps server-side sessions and in-flight OAuth verifiers.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error
	// Get returns domain.ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	SaveVerifier(ctx context.Context, flowID, verifier string, ttl time.Duration) error
	// TakeVerifier returns and removes the verifier; domain.ErrOAuthFlowExpired when absent.
	TakeVerifier(ctx context.Context, flowID string) (string, error)
}

// SessionResolver turns a backend access token into the request's Access.
type SessionResolver interface {
	Resolve(ctx context.Context, accessToken string) (domain.Access, error)
}

type accessTokenKey struct{}

// WithAccessToken attaches the signed-in user's backend token to ctx so that
// repositories issue requests on the user's behalf.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessToken returns the token stored by WithAccessToken, or "".
func AccessToken(ctx context.Context) string {
	tok, _ := ctx.Value(accessTokenKey{}).(string)
	return tok
}

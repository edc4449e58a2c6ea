package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

type sessionResolver struct {
	auth     ports.AuthProvider
	profiles ports.ProfileRepository
	log      zerolog.Logger
}

// NewSessionResolver returns the single place where a request's Access is
// derived. Every screen and guard consumes its result instead of reading the
// role field on its own.
func NewSessionResolver(auth ports.AuthProvider, profiles ports.ProfileRepository, log zerolog.Logger) ports.SessionResolver {
	return &sessionResolver{auth: auth, profiles: profiles, log: log}
}

// Resolve fetches the current identity and then its profile row.
//   - no token or a rejected token: unauthenticated
//   - identity without a profile row: profile incomplete
//   - profile whose role is empty or unrecognised: role unknown
func (r *sessionResolver) Resolve(ctx context.Context, accessToken string) (domain.Access, error) {
	if accessToken == "" {
		return domain.Anonymous(), nil
	}

	identity, err := r.auth.GetUser(ctx, accessToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return domain.Anonymous(), nil
		}
		return domain.Access{}, fmt.Errorf("resolve session: get user: %w", err)
	}

	profile, err := r.profiles.FindByID(ports.WithAccessToken(ctx, accessToken), identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			r.log.Debug().Str("user_id", identity.ID).Msg("identity has no profile row")
			return domain.AccessFor(*identity, nil), nil
		}
		return domain.Access{}, fmt.Errorf("resolve session: find profile: %w", err)
	}

	access := domain.AccessFor(*identity, profile)
	if access.Kind == domain.AccessRoleUnknown {
		r.log.Warn().Str("user_id", identity.ID).Str("role", profile.Role).Msg("profile carries unrecognised role")
	}
	return access, nil
}

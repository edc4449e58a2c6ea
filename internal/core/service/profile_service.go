package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

type profileService struct {
	profiles ports.ProfileRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewProfileService returns the service behind the profile-completion screen.
func NewProfileService(profiles ports.ProfileRepository, log zerolog.Logger) ports.ProfileService {
	return &profileService{profiles: profiles, log: log, now: time.Now}
}

func (s *profileService) Complete(ctx context.Context, identity domain.Identity, in ports.ProfileInput) (*domain.UserProfile, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)

	if name == "" {
		return nil, domain.Invalid("name", "validation.required")
	}
	if phone == "" {
		return nil, domain.Invalid("phone", "validation.required")
	}
	if !domain.ValidPhone(phone) {
		return nil, domain.Invalid("phone", "validation.phone")
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok || !role.SelfAssignable() {
		return nil, domain.Invalid("role", "validation.role")
	}

	saved, err := s.profiles.Upsert(ctx, &domain.UserProfile{
		ID:        identity.ID,
		Name:      name,
		Phone:     phone,
		Role:      string(role),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("complete profile: %w", err)
	}

	s.log.Info().Str("user_id", identity.ID).Str("role", string(role)).Msg("profile completed")
	return saved, nil
}

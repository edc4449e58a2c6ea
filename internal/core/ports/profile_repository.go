package ports

import (
	"context"

	"github.com/washhub/carwash-web/internal/core/domain"
)

// ProfileRepository persists rows of the application's users table.
type ProfileRepository interface {
	// FindByID returns domain.ErrProfileNotFound when no row matches.
	FindByID(ctx context.Context, id string) (*domain.UserProfile, error)
	Create(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error)
	Upsert(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error)
}

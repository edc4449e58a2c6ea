package ports

import (
	"context"

	"github.com/washhub/carwash-web/internal/core/domain"
)

// LaundryRepository persists rows of the laundries table.
type LaundryRepository interface {
	List(ctx context.Context) ([]*domain.Laundry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Laundry, error)
	// FindByID returns domain.ErrLaundryNotFound when no row matches.
	FindByID(ctx context.Context, id string) (*domain.Laundry, error)
	Create(ctx context.Context, l *domain.Laundry) (*domain.Laundry, error)
	Update(ctx context.Context, l *domain.Laundry) (*domain.Laundry, error)
}

// ServiceRepository persists rows of the services table.
type ServiceRepository interface {
	ListByLaundry(ctx context.Context, laundryID string) ([]*domain.Service, error)
	// FindByID returns domain.ErrServiceNotFound when no row matches.
	FindByID(ctx context.Context, id string) (*domain.Service, error)
	Create(ctx context.Context, s *domain.Service) (*domain.Service, error)
	Update(ctx context.Context, s *domain.Service) (*domain.Service, error)
}

// BookingRepository persists rows of the bookings table.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	// FindByID returns domain.ErrBookingNotFound when no row matches.
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByLaundry(ctx context.Context, laundryID string) ([]*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
}

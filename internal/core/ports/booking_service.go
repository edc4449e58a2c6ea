package ports

import (
	"context"

	"github.com/washhub/carwash-web/internal/core/domain"
)

// ProfileInput is the profile-completion form.
type ProfileInput struct {
	Name  string
	Phone string
	Role  string
}

// ProfileService completes or edits the caller's profile row.
type ProfileService interface {
	Complete(ctx context.Context, identity domain.Identity, in ProfileInput) (*domain.UserProfile, error)
}

// LaundryInput is the create/edit laundry form.
type LaundryInput struct {
	Name        string
	Location    string
	Phone       string
	TimeSlots   []string
	Description string
}

// LaundryService manages laundry listings.
type LaundryService interface {
	ListAll(ctx context.Context) ([]*domain.Laundry, error)
	ListOwned(ctx context.Context, ownerID string) ([]*domain.Laundry, error)
	Get(ctx context.Context, id string) (*domain.Laundry, error)
	// GetOwned returns domain.ErrForbidden when ownerID does not own the laundry.
	GetOwned(ctx context.Context, ownerID, id string) (*domain.Laundry, error)
	Create(ctx context.Context, ownerID string, in LaundryInput) (*domain.Laundry, error)
	Update(ctx context.Context, ownerID, id string, in LaundryInput) (*domain.Laundry, error)
}

// ServiceInput is the add/edit service form.
type ServiceInput struct {
	Name        string
	Description string
	Price       float64
	Duration    int
}

// CatalogService manages the services a laundry offers.
type CatalogService interface {
	List(ctx context.Context, laundryID string) ([]*domain.Service, error)
	Add(ctx context.Context, ownerID, laundryID string, in ServiceInput) (*domain.Service, error)
	Update(ctx context.Context, ownerID, serviceID string, in ServiceInput) (*domain.Service, error)
}

// CreateBookingInput is the booking form.
type CreateBookingInput struct {
	LaundryID string
	ServiceID string
	Date      string
	Time      string
}

// BookingHistory is a booking together with its recorded status changes.
type BookingHistory struct {
	Booking *domain.Booking
	Records []*domain.AuditRecord
}

// BookingService creates bookings and moves them through their lifecycle.
type BookingService interface {
	Create(ctx context.Context, customer domain.Access, in CreateBookingInput) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Booking, error)
	Transition(ctx context.Context, owner domain.Access, bookingID string, to domain.BookingStatus) (*domain.Booking, error)
	History(ctx context.Context, owner domain.Access, bookingID string) (*BookingHistory, error)
}

// ContactInput is the contact form.
type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// ContactService records contact-page messages.
type ContactService interface {
	Submit(ctx context.Context, in ContactInput) error
}

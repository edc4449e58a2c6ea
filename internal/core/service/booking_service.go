package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const (
	bookingDateLayout = "2006-01-02"
	historyLimit      = 50
)

type BookingService struct {
	bookings  ports.BookingRepository
	laundries ports.LaundryRepository
	services  ports.ServiceRepository
	audits    ports.AuditRepository
	sink      ports.AuditSink
	logger    zerolog.Logger
	now       func() time.Time
}

func NewBookingService(
	bookings ports.BookingRepository,
	laundries ports.LaundryRepository,
	services ports.ServiceRepository,
	audits ports.AuditRepository,
	sink ports.AuditSink,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		laundries: laundries,
		services:  services,
		audits:    audits,
		sink:      sink,
		logger:    logger,
		now:       time.Now,
	}
}

// Create books a service at a laundry for the signed-in customer. The service
// name and price are copied onto the booking so later catalog edits do not
// rewrite history.
func (s *BookingService) Create(ctx context.Context, customer domain.Access, in ports.CreateBookingInput) (*domain.Booking, error) {
	if !customer.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	if in.ServiceID == "" {
		return nil, domain.Invalid("service_id", "validation.required")
	}
	if in.Date == "" {
		return nil, domain.Invalid("date", "validation.required")
	}
	if _, err := time.Parse(bookingDateLayout, in.Date); err != nil {
		return nil, domain.Invalid("date", "validation.date")
	}
	if in.Time == "" {
		return nil, domain.Invalid("time", "validation.required")
	}

	laundry, err := s.laundries.FindByID(ctx, in.LaundryID)
	if err != nil {
		return nil, err
	}
	svc, err := s.services.FindByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.LaundryID != laundry.ID {
		return nil, domain.ErrServiceNotFound
	}
	if len(laundry.TimeSlots) > 0 && !laundry.HasSlot(in.Time) {
		return nil, domain.Invalid("time", "validation.slot")
	}

	booking := &domain.Booking{
		LaundryID: laundry.ID,
		Service:   svc.Name,
		UserID:    customer.UserID(),
		UserName:  customer.DisplayName(),
		Date:      in.Date,
		Time:      in.Time,
		Status:    domain.BookingPending,
		Amount:    svc.Price,
		CreatedAt: s.now().UTC(),
	}

	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		s.logger.Error().Err(err).Str("laundry_id", laundry.ID).Msg("failed to create booking")
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info().Str("booking_id", created.ID).Str("laundry_id", laundry.ID).Str("user_id", booking.UserID).Msg("booking created")
	return created, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ListForOwner collects the bookings of every laundry the owner runs, newest
// appointment first.
func (s *BookingService) ListForOwner(ctx context.Context, ownerID string) ([]*domain.Booking, error) {
	laundries, err := s.laundries.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner bookings: %w", err)
	}

	var all []*domain.Booking
	for _, l := range laundries {
		bs, err := s.bookings.ListByLaundry(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("list owner bookings: laundry %s: %w", l.ID, err)
		}
		all = append(all, bs...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date > all[j].Date
		}
		return all[i].Time > all[j].Time
	})
	return all, nil
}

func (s *BookingService) ListRecent(ctx context.Context, limit int) ([]*domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.bookings.ListRecent(ctx, limit)
}

// Transition applies an owner decision to a booking. Only the owner of the
// booking's laundry, or an admin, may move it, and only along the booking
// state machine.
func (s *BookingService) Transition(ctx context.Context, owner domain.Access, bookingID string, to domain.BookingStatus) (*domain.Booking, error) {
	b, err := s.authorizedBooking(ctx, owner, bookingID)
	if err != nil {
		return nil, err
	}

	from := b.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("transition booking: %w (from %s to %s)", domain.ErrInvalidTransition, from, to)
	}

	if err := s.bookings.UpdateStatus(ctx, b.ID, to); err != nil {
		return nil, fmt.Errorf("transition booking: %w", err)
	}
	b.Status = to

	s.sink.Record(domain.AuditRecord{
		Kind:    domain.AuditBookingStatus,
		Subject: b.ID,
		Actor:   owner.UserID(),
		From:    string(from),
		To:      string(to),
		At:      s.now().UTC(),
	})

	s.logger.Info().
		Str("booking_id", b.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("booking status changed")
	return b, nil
}

// History returns a booking and its recorded status changes, oldest first.
func (s *BookingService) History(ctx context.Context, owner domain.Access, bookingID string) (*ports.BookingHistory, error) {
	b, err := s.authorizedBooking(ctx, owner, bookingID)
	if err != nil {
		return nil, err
	}
	records, err := s.audits.ListBySubject(ctx, domain.AuditBookingStatus, b.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("booking history: %w", err)
	}
	return &ports.BookingHistory{Booking: b, Records: records}, nil
}

func (s *BookingService) authorizedBooking(ctx context.Context, owner domain.Access, bookingID string) (*domain.Booking, error) {
	if !owner.Allows(domain.RoleOwner, domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if owner.Allows(domain.RoleAdmin) {
		return b, nil
	}

	l, err := s.laundries.FindByID(ctx, b.LaundryID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != owner.UserID() {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

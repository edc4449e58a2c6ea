package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const tableBookings = "bookings"

type bookingRow struct {
	ID        string     `json:"id,omitempty"`
	LaundryID string     `json:"laundry_id"`
	Service   string     `json:"service"`
	UserID    string     `json:"user_id"`
	UserName  string     `json:"user_name"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Status    string     `json:"status"`
	Amount    float64    `json:"amount"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (r bookingRow) toDomain() *domain.Booking {
	b := &domain.Booking{
		ID:        r.ID,
		LaundryID: r.LaundryID,
		Service:   r.Service,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Date:      r.Date,
		Time:      r.Time,
		Status:    domain.BookingStatus(r.Status),
		Amount:    r.Amount,
	}
	if r.CreatedAt != nil {
		b.CreatedAt = *r.CreatedAt
	}
	return b
}

// BookingRepository implements ports.BookingRepository over the bookings table.
type BookingRepository struct {
	c *Client
}

func NewBookingRepository(c *Client) ports.BookingRepository {
	return &BookingRepository{c: c}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	row := bookingRow{
		LaundryID: b.LaundryID,
		Service:   b.Service,
		UserID:    b.UserID,
		UserName:  b.UserName,
		Date:      b.Date,
		Time:      b.Time,
		Status:    string(b.Status),
		Amount:    b.Amount,
	}
	if !b.CreatedAt.IsZero() {
		t := b.CreatedAt
		row.CreatedAt = &t
	}

	var rows []bookingRow
	if err := r.c.From(tableBookings).Insert(ctx, row, &rows); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create booking: empty representation")
	}
	return rows[0].toDomain(), nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	var rows []bookingRow
	if err := r.c.From(tableBookings).Eq("id", id).Limit(1).Select(ctx, &rows); err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrBookingNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *BookingRepository) ListByLaundry(ctx context.Context, laundryID string) ([]*domain.Booking, error) {
	return r.list(ctx, r.c.From(tableBookings).Eq("laundry_id", laundryID).Order("date", false).Order("time", false))
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	return r.list(ctx, r.c.From(tableBookings).Eq("user_id", userID).Order("date", false).Order("time", false))
}

func (r *BookingRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Booking, error) {
	return r.list(ctx, r.c.From(tableBookings).Order("created_at", false).Limit(limit))
}

func (r *BookingRepository) list(ctx context.Context, q *Query) ([]*domain.Booking, error) {
	var rows []bookingRow
	if err := q.Select(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	out := make([]*domain.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	var rows []bookingRow
	err := r.c.From(tableBookings).Eq("id", id).Update(ctx, map[string]string{"status": string(status)}, &rows)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if len(rows) == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

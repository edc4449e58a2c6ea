package supabase

import (
	"context"
	"fmt"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const tableLaundries = "laundries"

type laundryRow struct {
	ID          string   `json:"id,omitempty"`
	OwnerID     string   `json:"owner_id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Phone       string   `json:"phone"`
	TimeSlots   []string `json:"time_slots"`
	Description string   `json:"description"`
}

func (r laundryRow) toDomain() *domain.Laundry {
	slots := r.TimeSlots
	if slots == nil {
		slots = []string{}
	}
	return &domain.Laundry{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Location:    r.Location,
		Phone:       r.Phone,
		TimeSlots:   slots,
		Description: r.Description,
	}
}

func laundryRowFrom(l *domain.Laundry) laundryRow {
	slots := l.TimeSlots
	if slots == nil {
		slots = []string{}
	}
	return laundryRow{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Name:        l.Name,
		Location:    l.Location,
		Phone:       l.Phone,
		TimeSlots:   slots,
		Description: l.Description,
	}
}

// LaundryRepository implements ports.LaundryRepository over the laundries table.
type LaundryRepository struct {
	c *Client
}

func NewLaundryRepository(c *Client) ports.LaundryRepository {
	return &LaundryRepository{c: c}
}

func (r *LaundryRepository) List(ctx context.Context) ([]*domain.Laundry, error) {
	return r.list(ctx, r.c.From(tableLaundries).Order("name", true))
}

func (r *LaundryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Laundry, error) {
	return r.list(ctx, r.c.From(tableLaundries).Eq("owner_id", ownerID).Order("name", true))
}

func (r *LaundryRepository) list(ctx context.Context, q *Query) ([]*domain.Laundry, error) {
	var rows []laundryRow
	if err := q.Select(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list laundries: %w", err)
	}
	out := make([]*domain.Laundry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LaundryRepository) FindByID(ctx context.Context, id string) (*domain.Laundry, error) {
	var rows []laundryRow
	if err := r.c.From(tableLaundries).Eq("id", id).Limit(1).Select(ctx, &rows); err != nil {
		return nil, fmt.Errorf("find laundry: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrLaundryNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *LaundryRepository) Create(ctx context.Context, l *domain.Laundry) (*domain.Laundry, error) {
	row := laundryRowFrom(l)
	row.ID = ""

	var rows []laundryRow
	if err := r.c.From(tableLaundries).Insert(ctx, row, &rows); err != nil {
		return nil, fmt.Errorf("create laundry: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create laundry: empty representation")
	}
	return rows[0].toDomain(), nil
}

func (r *LaundryRepository) Update(ctx context.Context, l *domain.Laundry) (*domain.Laundry, error) {
	row := laundryRowFrom(l)
	row.ID = ""

	var rows []laundryRow
	if err := r.c.From(tableLaundries).Eq("id", l.ID).Update(ctx, row, &rows); err != nil {
		return nil, fmt.Errorf("update laundry: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrLaundryNotFound
	}
	return rows[0].toDomain(), nil
}

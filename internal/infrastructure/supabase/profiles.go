package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const tableUsers = "users"

type userRow struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (r userRow) toDomain() *domain.UserProfile {
	p := &domain.UserProfile{ID: r.ID, Name: r.Name, Phone: r.Phone, Role: r.Role}
	if r.CreatedAt != nil {
		p.CreatedAt = *r.CreatedAt
	}
	return p
}

func userRowFrom(p *domain.UserProfile) userRow {
	row := userRow{ID: p.ID, Name: p.Name, Phone: p.Phone, Role: p.Role}
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt
		row.CreatedAt = &t
	}
	return row
}

// ProfileRepository implements ports.ProfileRepository over the users table.
type ProfileRepository struct {
	c *Client
}

func NewProfileRepository(c *Client) ports.ProfileRepository {
	return &ProfileRepository{c: c}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	var rows []userRow
	if err := r.c.From(tableUsers).Eq("id", id).Limit(1).Select(ctx, &rows); err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error) {
	var rows []userRow
	if err := r.c.From(tableUsers).Insert(ctx, userRowFrom(p), &rows); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return firstUser(rows, p), nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error) {
	var rows []userRow
	if err := r.c.From(tableUsers).Upsert(ctx, userRowFrom(p), &rows); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return firstUser(rows, p), nil
}

// firstUser returns the stored representation, or the input when row-level
// security hides the written row from the caller.
func firstUser(rows []userRow, fallback *domain.UserProfile) *domain.UserProfile {
	if len(rows) == 0 {
		clone := *fallback
		return &clone
	}
	return rows[0].toDomain()
}

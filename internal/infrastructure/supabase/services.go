package supabase

import (
	"context"
	"fmt"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const tableServices = "services"

type serviceRow struct {
	ID          string  `json:"id,omitempty"`
	LaundryID   string  `json:"laundry_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
}

func (r serviceRow) toDomain() *domain.Service {
	return &domain.Service{
		ID:          r.ID,
		LaundryID:   r.LaundryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Duration:    r.Duration,
	}
}

// ServiceRepository implements ports.ServiceRepository over the services table.
type ServiceRepository struct {
	c *Client
}

func NewServiceRepository(c *Client) ports.ServiceRepository {
	return &ServiceRepository{c: c}
}

func (r *ServiceRepository) ListByLaundry(ctx context.Context, laundryID string) ([]*domain.Service, error) {
	var rows []serviceRow
	if err := r.c.From(tableServices).Eq("laundry_id", laundryID).Order("name", true).Select(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make([]*domain.Service, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*domain.Service, error) {
	var rows []serviceRow
	if err := r.c.From(tableServices).Eq("id", id).Limit(1).Select(ctx, &rows); err != nil {
		return nil, fmt.Errorf("find service: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrServiceNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	row := serviceRow{
		LaundryID:   s.LaundryID,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Duration:    s.Duration,
	}
	var rows []serviceRow
	if err := r.c.From(tableServices).Insert(ctx, row, &rows); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create service: empty representation")
	}
	return rows[0].toDomain(), nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	patch := map[string]any{
		"name":        s.Name,
		"description": s.Description,
		"price":       s.Price,
		"duration":    s.Duration,
	}
	var rows []serviceRow
	if err := r.c.From(tableServices).Eq("id", s.ID).Update(ctx, patch, &rows); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrServiceNotFound
	}
	return rows[0].toDomain(), nil
}

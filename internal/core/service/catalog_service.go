package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

type catalogService struct {
	services  ports.ServiceRepository
	laundries ports.LaundryService
	log       zerolog.Logger
}

// NewCatalogService returns a CatalogService. Ownership is checked through
// the laundry service before every write.
func NewCatalogService(services ports.ServiceRepository, laundries ports.LaundryService, log zerolog.Logger) ports.CatalogService {
	return &catalogService{services: services, laundries: laundries, log: log}
}

func (s *catalogService) List(ctx context.Context, laundryID string) ([]*domain.Service, error) {
	return s.services.ListByLaundry(ctx, laundryID)
}

func (s *catalogService) Add(ctx context.Context, ownerID, laundryID string, in ports.ServiceInput) (*domain.Service, error) {
	in, err := cleanServiceInput(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.laundries.GetOwned(ctx, ownerID, laundryID); err != nil {
		return nil, err
	}

	created, err := s.services.Create(ctx, &domain.Service{
		LaundryID:   laundryID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Duration:    in.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("add service: %w", err)
	}

	s.log.Info().Str("service_id", created.ID).Str("laundry_id", laundryID).Msg("service added")
	return created, nil
}

func (s *catalogService) Update(ctx context.Context, ownerID, serviceID string, in ports.ServiceInput) (*domain.Service, error) {
	in, err := cleanServiceInput(in)
	if err != nil {
		return nil, err
	}

	svc, err := s.services.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.laundries.GetOwned(ctx, ownerID, svc.LaundryID); err != nil {
		return nil, err
	}

	svc.Name = in.Name
	svc.Description = in.Description
	svc.Price = in.Price
	svc.Duration = in.Duration

	updated, err := s.services.Update(ctx, svc)
	if err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return updated, nil
}

func cleanServiceInput(in ports.ServiceInput) (ports.ServiceInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" {
		return in, domain.Invalid("name", "validation.required")
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return in, domain.Invalid("price", "validation.price")
	}
	if in.Duration <= 0 {
		return in, domain.Invalid("duration", "validation.duration")
	}
	return in, nil
}

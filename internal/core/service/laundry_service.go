package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

type laundryService struct {
	repo ports.LaundryRepository
	log  zerolog.Logger
}

// NewLaundryService returns a LaundryService backed by repo.
func NewLaundryService(repo ports.LaundryRepository, log zerolog.Logger) ports.LaundryService {
	return &laundryService{repo: repo, log: log}
}

func (s *laundryService) ListAll(ctx context.Context) ([]*domain.Laundry, error) {
	return s.repo.List(ctx)
}

func (s *laundryService) ListOwned(ctx context.Context, ownerID string) ([]*domain.Laundry, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *laundryService) Get(ctx context.Context, id string) (*domain.Laundry, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *laundryService) GetOwned(ctx context.Context, ownerID, id string) (*domain.Laundry, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return l, nil
}

func (s *laundryService) Create(ctx context.Context, ownerID string, in ports.LaundryInput) (*domain.Laundry, error) {
	in, err := cleanLaundryInput(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Laundry{
		OwnerID:     ownerID,
		Name:        in.Name,
		Location:    in.Location,
		Phone:       in.Phone,
		TimeSlots:   in.TimeSlots,
		Description: in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create laundry: %w", err)
	}

	s.log.Info().Str("laundry_id", created.ID).Str("owner_id", ownerID).Msg("laundry created")
	return created, nil
}

func (s *laundryService) Update(ctx context.Context, ownerID, id string, in ports.LaundryInput) (*domain.Laundry, error) {
	in, err := cleanLaundryInput(in)
	if err != nil {
		return nil, err
	}

	l, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	l.Name = in.Name
	l.Location = in.Location
	l.Phone = in.Phone
	l.TimeSlots = in.TimeSlots
	l.Description = in.Description

	updated, err := s.repo.Update(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("update laundry: %w", err)
	}
	return updated, nil
}

func cleanLaundryInput(in ports.LaundryInput) (ports.LaundryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" {
		return in, domain.Invalid("name", "validation.required")
	}
	if in.Location == "" {
		return in, domain.Invalid("location", "validation.required")
	}
	if in.Phone == "" {
		return in, domain.Invalid("phone", "validation.required")
	}
	if !domain.ValidPhone(in.Phone) {
		return in, domain.Invalid("phone", "validation.phone")
	}
	in.TimeSlots = cleanSlots(in.TimeSlots)
	return in, nil
}

// cleanSlots trims, drops empties and removes duplicates while keeping order.
func cleanSlots(slots []string) []string {
	seen := make(map[string]struct{}, len(slots))
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

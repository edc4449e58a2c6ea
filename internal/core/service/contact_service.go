package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

type contactService struct {
	inquiries ports.InquiryRepository
	mailer    ports.Mailer
	log       zerolog.Logger
	now       func() time.Time
}

// NewContactService stores contact messages and forwards them by email.
// mailer may be nil, in which case messages are only stored.
func NewContactService(inquiries ports.InquiryRepository, mailer ports.Mailer, log zerolog.Logger) ports.ContactService {
	return &contactService{inquiries: inquiries, mailer: mailer, log: log, now: time.Now}
}

func (s *contactService) Submit(ctx context.Context, in ports.ContactInput) error {
	inq := &domain.Inquiry{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: s.now().UTC(),
	}
	if inq.Name == "" {
		return domain.Invalid("name", "validation.required")
	}
	if inq.Email == "" {
		return domain.Invalid("email", "validation.required")
	}
	if _, err := mail.ParseAddress(inq.Email); err != nil {
		return domain.Invalid("email", "validation.email")
	}
	if inq.Message == "" {
		return domain.Invalid("message", "validation.required")
	}

	if err := s.inquiries.Create(ctx, inq); err != nil {
		return fmt.Errorf("submit inquiry: %w", err)
	}

	// Delivery is best effort; the stored inquiry is the record.
	if s.mailer != nil {
		if err := s.mailer.SendInquiry(ctx, inq); err != nil {
			s.log.Warn().Err(err).Str("email", inq.Email).Msg("failed to forward inquiry")
		}
	}
	return nil
}

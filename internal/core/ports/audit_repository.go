package ports

import (
	"context"

	"github.com/washhub/carwash-web/internal/core/domain"
)

// AuditRepository stores the audit trail outside the hosted backend.
type AuditRepository interface {
	Insert(ctx context.Context, rec *domain.AuditRecord) error
	ListBySubject(ctx context.Context, kind domain.AuditKind, subject string, limit int) ([]*domain.AuditRecord, error)
}

// AuditSink accepts records for asynchronous persistence. It never blocks
// the caller and never reports write failures.
type AuditSink interface {
	Record(rec domain.AuditRecord)
}

// InquiryRepository stores contact-page messages.
type InquiryRepository interface {
	Create(ctx context.Context, inq *domain.Inquiry) error
}

// Mailer forwards contact-page messages to the team inbox.
type Mailer interface {
	SendInquiry(ctx context.Context, inq *domain.Inquiry) error
}

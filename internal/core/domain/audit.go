package domain

import "time"

// AuditKind names what an AuditRecord describes.
type AuditKind string

const (
	AuditBookingStatus AuditKind = "booking_status"
	AuditAuthEvent     AuditKind = "auth_event"
)

// AuditRecord is an append-only trail entry kept outside the hosted backend.
type AuditRecord struct {
	Kind    AuditKind `json:"kind"`
	Subject string    `json:"subject"` // booking id or user id
	Actor   string    `json:"actor"`
	From    string    `json:"from,omitempty"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
}

// Inquiry is a message left on the contact page.
type Inquiry struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

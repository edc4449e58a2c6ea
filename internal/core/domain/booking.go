package domain

import "time"

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
)

// validTransitions defines the only status changes any screen may issue.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingAccepted, BookingRejected},
	BookingAccepted: {BookingCompleted},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BookingStatusFromAction maps an owner action ("accept", "reject",
// "complete") to the status it produces.
func BookingStatusFromAction(action string) (BookingStatus, bool) {
	switch action {
	case "accept":
		return BookingAccepted, true
	case "reject":
		return BookingRejected, true
	case "complete":
		return BookingCompleted, true
	}
	return "", false
}

// Booking is a scheduled service request linking a user, a laundry and a service.
type Booking struct {
	ID        string        `json:"id"`
	LaundryID string        `json:"laundry_id"`
	Service   string        `json:"service"`
	UserID    string        `json:"user_id"`
	UserName  string        `json:"user_name"`
	Date      string        `json:"date"`
	Time      string        `json:"time"`
	Status    BookingStatus `json:"status"`
	Amount    float64       `json:"amount"`
	CreatedAt time.Time     `json:"created_at"`
}

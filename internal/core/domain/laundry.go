package domain

// Laundry is a car-wash business listing.
type Laundry struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Phone       string   `json:"phone"`
	TimeSlots   []string `json:"time_slots"`
	Description string   `json:"description"`
}

// HasSlot reports whether slot is one of the laundry's advertised time slots.
func (l *Laundry) HasSlot(slot string) bool {
	for _, s := range l.TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Service is a priced offering of a laundry. Duration is in minutes.
type Service struct {
	ID          string  `json:"id"`
	LaundryID   string  `json:"laundry_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
}

package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const adminRecentBookings = 50

// AdminHandler serves the read-only overview for admins.
type AdminHandler struct {
	laundries ports.LaundryService
	bookings  ports.BookingService
}

func NewAdminHandler(laundries ports.LaundryService, bookings ports.BookingService) *AdminHandler {
	return &AdminHandler{laundries: laundries, bookings: bookings}
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	all, err := h.laundries.ListAll(ctx)
	if err != nil {
		return err
	}
	recent, err := h.bookings.ListRecent(ctx, adminRecentBookings)
	if err != nil {
		return err
	}

	p := newPage(c, "admin.title")
	p.Data = struct {
		Laundries []*domain.Laundry
		Bookings  []*domain.Booking
	}{all, recent}
	return render(c, "admin", p)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/washhub/carwash-web/internal/api/metrics"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

// BookingHandler serves the customer screens.
type BookingHandler struct {
	laundries     ports.LaundryService
	catalog       ports.CatalogService
	bookings      ports.BookingService
	redirectDelay time.Duration
}

func NewBookingHandler(
	laundries ports.LaundryService,
	catalog ports.CatalogService,
	bookings ports.BookingService,
	redirectDelay time.Duration,
) *BookingHandler {
	return &BookingHandler{laundries: laundries, catalog: catalog, bookings: bookings, redirectDelay: redirectDelay}
}

type bookingRequest struct {
	ServiceID string `form:"service_id" validate:"required"`
	Date      string `form:"date"       validate:"required,datetime=2006-01-02"`
	Time      string `form:"time"       validate:"required"`
}

type bookingFormData struct {
	Laundry  *domain.Laundry
	Services []*domain.Service
}

// Laundries lists every laundry a customer can book.
func (h *BookingHandler) Laundries(c echo.Context) error {
	list, err := h.laundries.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	p := newPage(c, "booking.chooseLaundry")
	p.Data = list
	return render(c, "laundries", p)
}

func (h *BookingHandler) Form(c echo.Context) error {
	data, err := h.formData(c.Request().Context(), c.Param("laundryID"))
	if err != nil {
		return err
	}
	p := newPage(c, "booking.book")
	p.Data = data
	if len(data.Services) > 0 {
		p.Form["service_id"] = c.QueryParam("service")
	}
	return render(c, "booking_form", p)
}

// Create writes a pending booking and shows the confirmation. The browser
// moves on to the booking list once the delay has elapsed, counted from the
// moment the booking was stored.
func (h *BookingHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	laundryID := c.Param("laundryID")

	data, err := h.formData(ctx, laundryID)
	if err != nil {
		return err
	}
	p := newPage(c, "booking.book")
	p.Data = data
	fill(c, p, "service_id", "date", "time")

	var req bookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(req); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "booking_form", p, err)
	}

	b, err := h.bookings.Create(ctx, access(c), ports.CreateBookingInput{
		LaundryID: laundryID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Time:      req.Time,
	})
	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) {
			err = domain.Invalid("service_id", "validation.service")
		}
		if domainNotFound(err) {
			return err
		}
		return renderForm(c, http.StatusUnprocessableEntity, "booking_form", p, err)
	}

	metrics.BookingsCreatedTotal.Inc()

	done := newPage(c, "booking.successTitle")
	done.Data = b
	done.RefreshAfter = int(h.redirectDelay.Round(time.Second).Seconds())
	if done.RefreshAfter < 1 {
		done.RefreshAfter = 1
	}
	done.RefreshURL = "/my-bookings"
	return c.Render(http.StatusCreated, "booking_success", done)
}

// Mine lists the caller's own bookings, newest first.
func (h *BookingHandler) Mine(c echo.Context) error {
	list, err := h.bookings.ListForUser(c.Request().Context(), access(c).UserID())
	if err != nil {
		return err
	}
	p := newPage(c, "nav.myBookings")
	p.Data = list
	return render(c, "my_bookings", p)
}

func (h *BookingHandler) formData(ctx context.Context, laundryID string) (*bookingFormData, error) {
	l, err := h.laundries.Get(ctx, laundryID)
	if err != nil {
		return nil, err
	}
	services, err := h.catalog.List(ctx, laundryID)
	if err != nil {
		return nil, err
	}
	return &bookingFormData{Laundry: l, Services: services}, nil
}

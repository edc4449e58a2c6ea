package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/washhub/carwash-web/internal/api/metrics"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

// OwnerHandler serves the car-wash owner screens. Every route is behind
// RequireRole(owner); ownership of the addressed laundry is checked by the
// services.
type OwnerHandler struct {
	laundries ports.LaundryService
	catalog   ports.CatalogService
	bookings  ports.BookingService
}

func NewOwnerHandler(laundries ports.LaundryService, catalog ports.CatalogService, bookings ports.BookingService) *OwnerHandler {
	return &OwnerHandler{laundries: laundries, catalog: catalog, bookings: bookings}
}

type laundryRequest struct {
	Name        string `form:"name"        validate:"required"`
	Location    string `form:"location"    validate:"required"`
	Phone       string `form:"phone"       validate:"required,phone"`
	TimeSlots   string `form:"time_slots"`
	Description string `form:"description"`
}

func (r laundryRequest) input() ports.LaundryInput {
	return ports.LaundryInput{
		Name:        r.Name,
		Location:    r.Location,
		Phone:       r.Phone,
		TimeSlots:   strings.FieldsFunc(r.TimeSlots, func(r rune) bool { return r == '\n' || r == '\r' || r == ',' }),
		Description: r.Description,
	}
}

type serviceRequest struct {
	Name        string  `form:"name"        validate:"required"`
	Description string  `form:"description"`
	Price       float64 `form:"price"       validate:"gt=0"`
	Duration    int     `form:"duration"    validate:"gt=0"`
}

type laundryFormData struct {
	ID     string
	Action string
}

type ownerServicesData struct {
	Laundry  *domain.Laundry
	Services []*domain.Service
}

type ownerBookingsData struct {
	Bookings     []*domain.Booking
	LaundryNames map[string]string
}

var laundryFields = []string{"name", "location", "phone", "time_slots", "description"}

func (h *OwnerHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID := access(c).UserID()

	owned, err := h.laundries.ListOwned(ctx, ownerID)
	if err != nil {
		return err
	}
	bookings, err := h.bookings.ListForOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	pending := 0
	for _, b := range bookings {
		if b.Status == domain.BookingPending {
			pending++
		}
	}

	p := newPage(c, "owner.dashboardTitle")
	p.Data = struct {
		Laundries []*domain.Laundry
		Pending   int
	}{owned, pending}
	return render(c, "owner_dashboard", p)
}

func (h *OwnerHandler) NewLaundry(c echo.Context) error {
	p := newPage(c, "nav.newLaundry")
	p.Data = laundryFormData{Action: "/owner/laundries"}
	return render(c, "laundry_form", p)
}

func (h *OwnerHandler) CreateLaundry(c echo.Context) error {
	p := newPage(c, "nav.newLaundry")
	p.Data = laundryFormData{Action: "/owner/laundries"}
	fill(c, p, laundryFields...)

	var req laundryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(req); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "laundry_form", p, err)
	}

	if _, err := h.laundries.Create(c.Request().Context(), access(c).UserID(), req.input()); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "laundry_form", p, err)
	}
	return redirectWithFlash(c, "/owner/dashboard", "owner.laundrySaved")
}

func (h *OwnerHandler) EditLaundry(c echo.Context) error {
	l, err := h.laundries.GetOwned(c.Request().Context(), access(c).UserID(), c.Param("id"))
	if err != nil {
		return err
	}

	p := newPage(c, "owner.editLaundry")
	p.Data = laundryFormData{ID: l.ID, Action: "/owner/laundries/" + l.ID}
	p.Form["name"] = l.Name
	p.Form["location"] = l.Location
	p.Form["phone"] = l.Phone
	p.Form["time_slots"] = strings.Join(l.TimeSlots, "\n")
	p.Form["description"] = l.Description
	return render(c, "laundry_form", p)
}

func (h *OwnerHandler) UpdateLaundry(c echo.Context) error {
	id := c.Param("id")
	p := newPage(c, "owner.editLaundry")
	p.Data = laundryFormData{ID: id, Action: "/owner/laundries/" + id}
	fill(c, p, laundryFields...)

	var req laundryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(req); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "laundry_form", p, err)
	}

	if _, err := h.laundries.Update(c.Request().Context(), access(c).UserID(), id, req.input()); err != nil {
		if domainNotFound(err) || errors.Is(err, domain.ErrForbidden) {
			return err
		}
		return renderForm(c, http.StatusUnprocessableEntity, "laundry_form", p, err)
	}
	return redirectWithFlash(c, "/owner/dashboard", "owner.laundrySaved")
}

func (h *OwnerHandler) Services(c echo.Context) error {
	data, err := h.servicesData(c.Request().Context(), access(c).UserID(), c.Param("id"))
	if err != nil {
		return err
	}
	p := newPage(c, "owner.services")
	p.Data = data
	return render(c, "owner_services", p)
}

func (h *OwnerHandler) AddService(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID := access(c).UserID()
	laundryID := c.Param("id")

	data, err := h.servicesData(ctx, ownerID, laundryID)
	if err != nil {
		return err
	}
	p := newPage(c, "owner.services")
	p.Data = data
	fill(c, p, "name", "description", "price", "duration")

	in, err := h.bindService(c)
	if err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "owner_services", p, err)
	}
	if _, err := h.catalog.Add(ctx, ownerID, laundryID, in); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "owner_services", p, err)
	}
	return redirectWithFlash(c, "/owner/laundries/"+laundryID+"/services", "owner.serviceSaved")
}

func (h *OwnerHandler) UpdateService(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID := access(c).UserID()
	laundryID := c.Param("id")
	back := "/owner/laundries/" + laundryID + "/services"

	in, err := h.bindService(c)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return redirectWithFlash(c, back, ve.Key)
		}
		return err
	}
	if _, err := h.catalog.Update(ctx, ownerID, c.Param("serviceID"), in); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return redirectWithFlash(c, back, ve.Key)
		}
		return err
	}
	return redirectWithFlash(c, back, "owner.serviceSaved")
}

func (h *OwnerHandler) Bookings(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID := access(c).UserID()

	list, err := h.bookings.ListForOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	owned, err := h.laundries.ListOwned(ctx, ownerID)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(owned))
	for _, l := range owned {
		names[l.ID] = l.Name
	}

	p := newPage(c, "nav.bookings")
	p.Data = ownerBookingsData{Bookings: list, LaundryNames: names}
	return render(c, "owner_bookings", p)
}

// UpdateStatus applies accept, reject or complete to a booking.
func (h *OwnerHandler) UpdateStatus(c echo.Context) error {
	to, ok := domain.BookingStatusFromAction(c.FormValue("action"))
	if !ok {
		return redirectWithFlash(c, "/owner/bookings", "errors.invalidTransition")
	}

	_, err := h.bookings.Transition(c.Request().Context(), access(c), c.Param("id"), to)
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return redirectWithFlash(c, "/owner/bookings", "errors.invalidTransition")
	case err != nil:
		return err
	}
	metrics.BookingTransitionsTotal.WithLabelValues(string(to)).Inc()
	return redirectWithFlash(c, "/owner/bookings", "owner.statusUpdated")
}

func (h *OwnerHandler) History(c echo.Context) error {
	history, err := h.bookings.History(c.Request().Context(), access(c), c.Param("id"))
	if err != nil {
		return err
	}

	p := newPage(c, "owner.history")
	p.Data = history
	return render(c, "booking_history", p)
}

func (h *OwnerHandler) servicesData(ctx context.Context, ownerID, laundryID string) (*ownerServicesData, error) {
	l, err := h.laundries.GetOwned(ctx, ownerID, laundryID)
	if err != nil {
		return nil, err
	}
	services, err := h.catalog.List(ctx, laundryID)
	if err != nil {
		return nil, err
	}
	return &ownerServicesData{Laundry: l, Services: services}, nil
}

// bindService reads the service form. Unparseable numbers are reported on
// the field they came from.
func (h *OwnerHandler) bindService(c echo.Context) (ports.ServiceInput, error) {
	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		if _, perr := parseNumber(c.FormValue("price")); perr != nil {
			return ports.ServiceInput{}, domain.Invalid("price", "validation.price")
		}
		return ports.ServiceInput{}, domain.Invalid("duration", "validation.duration")
	}
	if err := c.Validate(req); err != nil {
		return ports.ServiceInput{}, err
	}
	// "Inf" parses and passes gt=0, but cannot be stored.
	if math.IsInf(req.Price, 0) {
		return ports.ServiceInput{}, domain.Invalid("price", "validation.price")
	}
	return ports.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Duration:    req.Duration,
	}, nil
}

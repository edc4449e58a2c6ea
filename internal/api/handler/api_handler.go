package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

// APIHandler exposes a read-only JSON view of the marketplace.
type APIHandler struct {
	laundries ports.LaundryService
	catalog   ports.CatalogService
	bookings  ports.BookingService
}

func NewAPIHandler(laundries ports.LaundryService, catalog ports.CatalogService, bookings ports.BookingService) *APIHandler {
	return &APIHandler{laundries: laundries, catalog: catalog, bookings: bookings}
}

// --- Response types ---

type sessionResponse struct {
	Kind        domain.AccessKind   `json:"kind"`
	Identity    *domain.Identity    `json:"identity,omitempty"`
	Profile     *domain.UserProfile `json:"profile,omitempty"`
	Landing     string              `json:"landing"`
	DisplayName string              `json:"display_name,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: len(items)}
}

// Session describes the caller's resolved access.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *APIHandler) Session(c echo.Context) error {
	a := access(c)
	return c.JSON(http.StatusOK, sessionResponse{
		Kind:        a.Kind,
		Identity:    a.Identity,
		Profile:     a.Profile,
		Landing:     a.Landing(),
		DisplayName: a.DisplayName(),
	})
}

// Laundries lists every laundry.
//
// @Summary      List laundries
// @Tags         laundries
// @Produce      json
// @Success      200  {object}  listResponse[domain.Laundry]
// @Failure      502  {object}  map[string]string
// @Router       /laundries [get]
func (h *APIHandler) Laundries(c echo.Context) error {
	list, err := h.laundries.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(list))
}

// Laundry returns one laundry.
//
// @Summary      Get laundry
// @Tags         laundries
// @Produce      json
// @Param        id   path      string  true  "Laundry ID"
// @Success      200  {object}  domain.Laundry
// @Failure      404  {object}  map[string]string
// @Router       /laundries/{id} [get]
func (h *APIHandler) Laundry(c echo.Context) error {
	l, err := h.laundries.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

// LaundryServices lists the services a laundry offers.
//
// @Summary      List services of a laundry
// @Tags         laundries
// @Produce      json
// @Param        id   path      string  true  "Laundry ID"
// @Success      200  {object}  listResponse[domain.Service]
// @Failure      404  {object}  map[string]string
// @Router       /laundries/{id}/services [get]
func (h *APIHandler) LaundryServices(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.laundries.Get(ctx, c.Param("id")); err != nil {
		return err
	}
	list, err := h.catalog.List(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(list))
}

// Bookings lists the bookings visible to the caller: an owner's laundries'
// bookings, or the most recent bookings for an admin.
//
// @Summary      List bookings
// @Tags         bookings
// @Produce      json
// @Param        limit  query     int  false  "Admin only: max rows (default 100)"
// @Success      200    {object}  listResponse[domain.Booking]
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Security     SessionCookie
// @Router       /bookings [get]
func (h *APIHandler) Bookings(c echo.Context) error {
	ctx := c.Request().Context()
	a := access(c)

	var (
		list []*domain.Booking
		err  error
	)
	if a.Kind == domain.AccessAdmin {
		var q struct {
			Limit int `query:"limit"`
		}
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		list, err = h.bookings.ListRecent(ctx, q.Limit)
	} else {
		list, err = h.bookings.ListForOwner(ctx, a.UserID())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(list))
}

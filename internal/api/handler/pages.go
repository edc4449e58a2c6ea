package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/api/metrics"
	"github.com/washhub/carwash-web/internal/core/ports"
)

// PagesHandler serves the informational pages and the contact form.
type PagesHandler struct {
	contact ports.ContactService
	log     zerolog.Logger
}

func NewPagesHandler(contact ports.ContactService, log zerolog.Logger) *PagesHandler {
	return &PagesHandler{contact: contact, log: log}
}

type contactRequest struct {
	Name    string `form:"name"    validate:"required"`
	Email   string `form:"email"   validate:"required,email"`
	Message string `form:"message" validate:"required"`
}

func (h *PagesHandler) Home(c echo.Context) error {
	return render(c, "home", newPage(c, "home.title"))
}

func (h *PagesHandler) About(c echo.Context) error {
	return render(c, "about", newPage(c, "about.title"))
}

func (h *PagesHandler) Services(c echo.Context) error {
	return render(c, "services", newPage(c, "services.title"))
}

func (h *PagesHandler) ContactForm(c echo.Context) error {
	return render(c, "contact", newPage(c, "contact.title"))
}

// SubmitContact stores the message and forwards it to the team inbox.
func (h *PagesHandler) SubmitContact(c echo.Context) error {
	p := newPage(c, "contact.title")
	fill(c, p, "name", "email", "message")

	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(req); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "contact", p, err)
	}

	in := ports.ContactInput{Name: req.Name, Email: req.Email, Message: req.Message}
	if err := h.contact.Submit(c.Request().Context(), in); err != nil {
		return renderForm(c, http.StatusUnprocessableEntity, "contact", p, err)
	}
	metrics.ContactInquiriesTotal.Inc()
	return redirectWithFlash(c, "/contact", "contact.sent")
}
